package http

import (
	"net/http"
	"time"
)

type validateTokenRequest struct {
	AccessToken string `json:"access_token"`
}

type validateTokenResponse struct {
	Valid       bool       `json:"valid"`
	UserID      string     `json:"user_id,omitempty"`
	SessionID   string     `json:"session_id,omitempty"`
	Role        string     `json:"role,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	Name        string     `json:"name,omitempty"`
	Email       string     `json:"email,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// validateToken — POST /tokens/validate. Непригодный токен — это
// содержательный результат проверки, а не ошибка запроса, поэтому
// ответ всегда 200 с valid=false и без указания причины.
func (s *Server) validateToken(w http.ResponseWriter, r *http.Request) {
	var req validateTokenRequest
	if err := decodeStrict(r, &req); err != nil || req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}

	claims, err := s.svc.ValidateAccessToken(r.Context(), req.AccessToken)
	if err != nil {
		if credentialFailure(err) {
			writeJSON(w, http.StatusOK, validateTokenResponse{Valid: false})
			return
		}

		s.writeServiceError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, validateTokenResponse{
		Valid:       true,
		UserID:      claims.UserID.String(),
		SessionID:   claims.SessionID.String(),
		Role:        string(claims.Role),
		Permissions: claims.Permissions,
		Name:        claims.Name,
		Email:       claims.Email,
		ExpiresAt:   &claims.ExpiresAt,
	})
}

type revokeTokenRequest struct {
	JTI       string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
}

// revokeAccessToken — POST /tokens/revoke: точечный отзыв access-токена
// до его естественного истечения. Идемпотентен.
func (s *Server) revokeAccessToken(w http.ResponseWriter, r *http.Request) {
	var req revokeTokenRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}

	if err := s.svc.RevokeAccessToken(r.Context(), req.JTI, req.ExpiresAt); err != nil {
		s.writeServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
