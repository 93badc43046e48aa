package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	pkglog "github.com/pribylovaa/go-news-aggregator/session-service/internal/pkg/log"
)

// Recover перехватывает панику обработчика, логирует стек и
// возвращает клиенту унифицированный 500 без деталей.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					pkglog.From(r.Context()).Error("panic_recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)

					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"code":"internal","message":"internal error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
