package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"

	"github.com/google/uuid"
)

// DecisionStatus — исход проверки авторизации.
//
// Unauthenticated и Forbidden — осмысленно разные исходы: первый должен
// вести к повторной аутентификации, второй — нет (личность известна, прав
// не хватает). Гарды поверх этого различия строят редиректы
// signin vs forbidden, поэтому оно сохраняется в точности.
type DecisionStatus int

const (
	StatusAuthorized DecisionStatus = iota
	StatusUnauthenticated
	StatusForbidden
)

func (s DecisionStatus) String() string {
	switch s {
	case StatusAuthorized:
		return "authorized"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Requirement — декларативное требование гарда: roles проверяются по
// принципу "хотя бы одна", permissions — "все перечисленные".
type Requirement struct {
	Roles       []models.Role
	Permissions []string
}

// WebSession — нормализованная форма браузерной сессии внешнего
// веб-коллаборатора (cookie-механизм), запасной путь после bearer.
type WebSession struct {
	UserID      uuid.UUID
	Role        models.Role
	Permissions []string
}

// RequestContext — учётные данные входящего запроса.
type RequestContext struct {
	BearerToken string
	WebSession  *WebSession
}

// Decision — результат EvaluateAuthorization.
type Decision struct {
	Status DecisionStatus
	// Идентичность заполняется для Authorized и Forbidden
	// (в последнем случае личность известна, прав не хватает).
	UserID      uuid.UUID
	Role        models.Role
	Permissions []string
}

// EvaluateAuthorization вычисляет решение для защищённого запроса.
// Порядок: bearer access-токен (подпись, денайлист, живость сессии),
// затем браузерная сессия. Ошибка возвращается только на инфраструктурных
// сбоях; все содержательные отказы выражаются статусом решения.
func (s *Service) EvaluateAuthorization(ctx context.Context, req Requirement, rctx RequestContext) (Decision, error) {
	const op = "service.authz.EvaluateAuthorization"

	if rctx.BearerToken != "" {
		claims, err := s.ValidateAccessToken(ctx, rctx.BearerToken)
		if err != nil {
			if isUnauthenticated(err) {
				return Decision{Status: StatusUnauthenticated}, nil
			}

			return Decision{}, fmt.Errorf("%s: %w", op, err)
		}

		// Подпись валидна, но сессия могла быть отозвана после выпуска.
		session, err := s.storage.SessionByID(ctx, claims.SessionID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Decision{Status: StatusUnauthenticated}, nil
			}

			return Decision{}, fmt.Errorf("%s: %w", op, err)
		}

		if session.Revoked() || session.ExpiredAt(time.Now().UTC()) {
			return Decision{Status: StatusUnauthenticated}, nil
		}

		return s.decide(req, claims.UserID, claims.Role, claims.Permissions), nil
	}

	if ws := rctx.WebSession; ws != nil && ws.UserID != uuid.Nil {
		return s.decide(req, ws.UserID, ws.Role, ws.Permissions), nil
	}

	return Decision{Status: StatusUnauthenticated}, nil
}

// decide сверяет эффективные права с требованием.
func (s *Service) decide(req Requirement, userID uuid.UUID, role models.Role, explicit []string) Decision {
	effective := s.derive(role, explicit)

	if !roleAllowed(req.Roles, role) || !permissionsAllowed(req.Permissions, effective) {
		return Decision{
			Status:      StatusForbidden,
			UserID:      userID,
			Role:        role,
			Permissions: effective,
		}
	}

	return Decision{
		Status:      StatusAuthorized,
		UserID:      userID,
		Role:        role,
		Permissions: effective,
	}
}

func roleAllowed(required []models.Role, role models.Role) bool {
	if len(required) == 0 {
		return true
	}

	for _, r := range required {
		if r == role {
			return true
		}
	}

	return false
}

func permissionsAllowed(required, effective []string) bool {
	if len(required) == 0 {
		return true
	}

	have := make(map[string]struct{}, len(effective))
	for _, p := range effective {
		have[p] = struct{}{}
	}

	for _, p := range required {
		if _, ok := have[p]; !ok {
			return false
		}
	}

	return true
}

// isUnauthenticated сообщает, относится ли ошибка к отказам в
// аутентификации (в отличие от инфраструктурных сбоев).
func isUnauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked)
}
