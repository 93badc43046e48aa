// Package http реализует HTTP-поверхность сервиса сессий.
//
// Принципы сопоставления ошибок:
//   - все отказы по учётным данным (битый/просроченный/отозванный токен,
//     простой, повторное использование) схлопываются в одинаковый 401,
//     чтобы ответ не раскрывал причину отказа;
//   - ErrInvalidArgument -> 400, ErrSessionNotFound -> 404;
//   - нехватка прав при известной личности -> 403;
//   - всё остальное -> 500 без деталей (подробности в логах).
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/pkg/log"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/service"
)

// Server — набор HTTP-обработчиков поверх сервисного слоя.
type Server struct {
	svc *service.Service
}

// NewServer возвращает обработчики поверх сервисного слоя.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeUnauthenticated — единый ответ на любой отказ по учётным данным.
func writeUnauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
}

// decodeStrict читает JSON-тело с запретом неизвестных полей.
func decodeStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	// Ровно один JSON-документ в теле.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data")
	}

	return nil
}

// credentialFailure — отказ, который наружу выражается одинаковым 401.
func credentialFailure(err error) bool {
	return errors.Is(err, service.ErrInvalidToken) ||
		errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenRevoked) ||
		errors.Is(err, service.ErrIdleTimeout) ||
		errors.Is(err, service.ErrReuseDetected) ||
		errors.Is(err, service.ErrSessionRevoked)
}

// writeServiceError транслирует ошибку сервисного слоя в HTTP-ответ.
func (s *Server) writeServiceError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid request")
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", "session not found")
	case credentialFailure(err):
		writeUnauthenticated(w)
	default:
		log.From(r.Context()).Error("internal_error",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// clientHints извлекает IP и User-Agent запроса для атрибуции сессии.
func clientHints(r *http.Request) models.ClientHints {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// Первый адрес цепочки — клиентский.
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		ip = strings.TrimSpace(ip)
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	return models.ClientHints{
		IP:        ip,
		UserAgent: r.Header.Get("User-Agent"),
	}
}

// parseRole валидирует строковую роль; пустая строка означает user.
func parseRole(s string) (models.Role, bool) {
	switch s {
	case "":
		return models.RoleUser, true
	case string(models.RoleUser):
		return models.RoleUser, true
	case string(models.RoleAdmin):
		return models.RoleAdmin, true
	default:
		return "", false
	}
}
