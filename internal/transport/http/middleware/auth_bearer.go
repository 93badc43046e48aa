package middleware

import (
	"context"
	"net/http"
	"strings"
)

type bearerTokenKey struct{}

// AuthBearer извлекает bearer-токен из заголовка Authorization и кладёт
// его в контекст. Сам токен здесь не проверяется: решение принимает
// обработчик или guard, чтобы ответ не отличался для разных причин отказа.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			auth := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
				token = strings.TrimSpace(token)
				if token != "" {
					ctx = context.WithValue(ctx, bearerTokenKey{}, token)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerTokenFrom возвращает bearer-токен запроса или пустую строку.
func BearerTokenFrom(ctx context.Context) string {
	if token, ok := ctx.Value(bearerTokenKey{}).(string); ok {
		return token
	}
	return ""
}
