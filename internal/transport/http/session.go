package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/service"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/transport/http/middleware"
)

type deviceRequest struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
}

type issueSessionRequest struct {
	UserID      string         `json:"user_id"`
	Role        string         `json:"role,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Name        string         `json:"name,omitempty"`
	Email       string         `json:"email,omitempty"`
	Remember    bool           `json:"remember,omitempty"`
	Client      string         `json:"client,omitempty"`
	Device      *deviceRequest `json:"device,omitempty"`
}

type sessionResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	CreatedAt         time.Time `json:"created_at"`
	AbsoluteExpiresAt time.Time `json:"absolute_expires_at"`
	Client            string    `json:"client"`
	Remember          bool      `json:"remember"`
}

type issuedSessionResponse struct {
	AccessToken     string          `json:"access_token"`
	AccessExpiresAt time.Time       `json:"access_expires_at"`
	RefreshToken    string          `json:"refresh_token"`
	Session         sessionResponse `json:"session"`
}

func toIssuedSessionResponse(is *models.IssuedSession) issuedSessionResponse {
	return issuedSessionResponse{
		AccessToken:     is.AccessToken,
		AccessExpiresAt: is.AccessExpiresAt,
		RefreshToken:    is.RefreshToken,
		Session: sessionResponse{
			ID:                is.Session.ID.String(),
			UserID:            is.Session.UserID.String(),
			CreatedAt:         is.Session.CreatedAt,
			AbsoluteExpiresAt: is.Session.AbsoluteExpiresAt,
			Client:            string(is.Session.Client),
			Remember:          is.Session.Remember,
		},
	}
}

// issueSession — POST /sessions.
//
// Личность пользователя уже подтверждена вызывающей стороной
// (шлюз проверяет пароль/OAuth до обращения сюда).
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request) {
	var req issueSessionRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "user_id must be a UUID")
		return
	}

	role, ok := parseRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "unknown role")
		return
	}

	params := service.IssueSessionParams{
		UserID:      userID,
		Role:        role,
		Permissions: req.Permissions,
		Name:        req.Name,
		Email:       req.Email,
		Remember:    req.Remember,
		Client:      models.ClientKind(req.Client),
		Hints:       clientHints(r),
	}
	if req.Device != nil {
		params.DeviceFingerprint = req.Device.Fingerprint
		params.DeviceName = req.Device.Name
		params.DeviceType = req.Device.Type
	}

	issued, err := s.svc.IssueSession(r.Context(), params)
	if err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toIssuedSessionResponse(issued))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshSession — POST /sessions/refresh. Ротация refresh-токена:
// старый помечается использованным, выпускается новая пара токенов.
func (s *Server) refreshSession(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeStrict(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}

	issued, err := s.svc.RotateRefreshToken(r.Context(), req.RefreshToken, clientHints(r))
	if err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toIssuedSessionResponse(issued))
}

// revokeByRefreshToken — POST /sessions/revoke: выход по самому
// refresh-токену (logout без знания идентификатора сессии).
func (s *Server) revokeByRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeStrict(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}

	if err := s.svc.RevokeByRefreshToken(r.Context(), req.RefreshToken); err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// revokeSession — DELETE /sessions/{id}.
func (s *Server) revokeSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "id must be a UUID")
		return
	}

	if err := s.svc.RevokeSession(r.Context(), id); err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type revokeAllResponse struct {
	Revoked int64 `json:"revoked"`
}

// revokeUserSessions — DELETE /users/{user_id}/sessions: "выйти везде".
// Доступно администратору либо самому пользователю по bearer-токену.
func (s *Server) revokeUserSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "user_id must be a UUID")
		return
	}

	decision, err := s.svc.EvaluateAuthorization(r.Context(),
		service.Requirement{},
		service.RequestContext{BearerToken: middleware.BearerTokenFrom(r.Context())},
	)
	if err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	if decision.Status != service.StatusAuthorized {
		writeUnauthenticated(w)
		return
	}

	if decision.Role != models.RoleAdmin && decision.UserID != userID {
		writeError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
		return
	}

	revoked, err := s.svc.RevokeAllSessionsForUser(r.Context(), userID)
	if err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, revokeAllResponse{Revoked: revoked})
}
