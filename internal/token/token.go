// token содержит криптографические примитивы работы с opaque-токенами:
// генерацию секрета, отпечаток для поиска в БД, медленный хэш для проверки
// подлинности и хэширование клиентских признаков.
//
// Разделение отпечаток/хэш: ротация требует индексированного поиска по
// значению токена до того, как вызывающий будет проверен (отпечаток), а
// хранимый фактор аутентификации должен выдерживать офлайн-перебор при
// утечке БД (bcrypt). Один быстрый хэш на обе роли сделал бы токен
// эквивалентом взламываемого пароля, один медленный — сделал бы поиск
// непрактично дорогим.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// opaqueLen — длина секрета в байтах (512 бит энтропии).
const opaqueLen = 64

// NewOpaque генерирует криптографически стойкий opaque-токен
// в URL-safe base64 без паддинга.
func NewOpaque() (string, error) {
	const op = "token.NewOpaque"

	b := make([]byte, opaqueLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Fingerprint возвращает детерминированный дайджест токена (sha256 →
// base64url) для поиска записи в БД. Не обратим к токену, но не является
// фактором аутентификации.
func Fingerprint(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Hash возвращает медленный солёный хэш токена (bcrypt поверх sha256-дайджеста;
// предварительный дайджест укладывает вход в 72-байтовый лимит bcrypt).
func Hash(plain string) (string, error) {
	const op = "token.Hash"

	sum := sha256.Sum256([]byte(plain))
	h, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(h), nil
}

// Verify сравнивает предъявленный токен с медленным хэшем.
func Verify(plain, hash string) bool {
	sum := sha256.Sum256([]byte(plain))
	return bcrypt.CompareHashAndPassword([]byte(hash), sum[:]) == nil
}

// HashClientHint хэширует клиентский признак (IP/User-Agent) для атрибуции.
// Сырое значение никогда не сохраняется; для пустого входа возвращает nil.
func HashClientHint(v string) *string {
	if v == "" {
		return nil
	}

	sum := sha256.Sum256([]byte(v))
	h := base64.RawURLEncoding.EncodeToString(sum[:])
	return &h
}
