package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/service"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/transport/http/middleware"
)

type webSessionRequest struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

type evaluateRequest struct {
	Roles       []string           `json:"roles,omitempty"`
	Permissions []string           `json:"permissions,omitempty"`
	WebSession  *webSessionRequest `json:"web_session,omitempty"`
}

type evaluateResponse struct {
	Status      string   `json:"status"`
	UserID      string   `json:"user_id,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// evaluateAuthorization — POST /authz/evaluate: решение гарда для
// шлюза. Bearer-токен берётся из заголовка Authorization запроса,
// браузерная сессия (если есть) — из тела.
func (s *Server) evaluateAuthorization(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}

	requirement := service.Requirement{Permissions: req.Permissions}
	for _, raw := range req.Roles {
		role, ok := parseRole(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_argument", "unknown role")
			return
		}
		requirement.Roles = append(requirement.Roles, role)
	}

	rctx := service.RequestContext{
		BearerToken: middleware.BearerTokenFrom(r.Context()),
	}

	if req.WebSession != nil {
		userID, err := uuid.Parse(req.WebSession.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_argument", "web_session.user_id must be a UUID")
			return
		}

		role, ok := parseRole(req.WebSession.Role)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_argument", "unknown role")
			return
		}

		rctx.WebSession = &service.WebSession{
			UserID:      userID,
			Role:        role,
			Permissions: req.WebSession.Permissions,
		}
	}

	decision, err := s.svc.EvaluateAuthorization(r.Context(), requirement, rctx)
	if err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	resp := evaluateResponse{Status: decision.Status.String()}
	if decision.Status != service.StatusUnauthenticated {
		resp.UserID = decision.UserID.String()
		resp.Role = string(decision.Role)
		resp.Permissions = decision.Permissions
	}

	writeJSON(w, http.StatusOK, resp)
}
