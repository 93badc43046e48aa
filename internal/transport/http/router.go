package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/service"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/transport/http/middleware"
)

// NewRouter собирает маршрутизатор API с общей цепочкой мидлваров:
// recover -> request_id -> logging -> timeout -> bearer.
func NewRouter(svc *service.Service, lg *slog.Logger, timeout time.Duration) http.Handler {
	srv := NewServer(svc)

	r := chi.NewRouter()

	r.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Logging(lg),
		middleware.Timeout(timeout),
		middleware.AuthBearer(),
	)

	r.Post("/sessions", srv.issueSession)
	r.Post("/sessions/refresh", srv.refreshSession)
	r.Post("/sessions/revoke", srv.revokeByRefreshToken)
	r.Delete("/sessions/{id}", srv.revokeSession)
	r.Delete("/users/{user_id}/sessions", srv.revokeUserSessions)

	r.Post("/tokens/validate", srv.validateToken)
	r.Post("/tokens/revoke", srv.revokeAccessToken)

	r.Post("/authz/evaluate", srv.evaluateAuthorization)

	return r
}
