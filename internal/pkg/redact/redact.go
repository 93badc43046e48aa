// redact — безопасные представления чувствительных значений для логов.
package redact

// Token — плейсхолдер вместо любого access/refresh-токена.
func Token() string { return "[REDACTED_TOKEN]" }

// Fingerprint сокращает отпечаток токена/устройства до префикса:
// достаточно для корреляции в логах, бесполезно для подбора.
func Fingerprint(s string) string {
	const keep = 8
	if len(s) <= keep {
		return s
	}

	return s[:keep] + "..."
}
