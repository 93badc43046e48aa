package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", Fingerprint("short"))
	require.Equal(t, "12345678...", Fingerprint("1234567890abcdef"))
	require.Equal(t, "", Fingerprint(""))
}
