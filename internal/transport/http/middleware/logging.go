package middleware

import (
	"log/slog"
	"net/http"
	"time"

	pkglog "github.com/pribylovaa/go-news-aggregator/session-service/internal/pkg/log"
)

// Logging кладёт логгер с request_id в контекст запроса и пишет
// итоговую строку о запросе после его завершения.
func Logging(base *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lg := base.With(
				slog.String("request_id", RequestIDFrom(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			ctx := pkglog.Into(r.Context(), lg)
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r.WithContext(ctx))

			lg.Info("http_request",
				slog.Int("status", sw.status),
				slog.Int("bytes", sw.count),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
