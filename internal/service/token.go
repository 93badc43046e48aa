package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/pkg/log"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// accessClaims — типизированный состав access-токена. Обязательные поля
// (sub, sid, jti, exp) проверяются при валидации явно: токен без них
// отклоняется, а не трактуется как "пустые значения".
type accessClaims struct {
	SessionID   string   `json:"sid"`
	Role        string   `json:"role"`
	Permissions []string `json:"perms,omitempty"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AccessClaims — результат успешной проверки access-токена.
type AccessClaims struct {
	UserID      uuid.UUID
	SessionID   uuid.UUID
	JTI         string
	Role        models.Role
	Permissions []string
	Name        string
	Email       string
	ExpiresAt   time.Time
}

type accessTokenInput struct {
	UserID      uuid.UUID
	SessionID   uuid.UUID
	Role        models.Role
	Permissions []string
	Name        string
	Email       string
	TTL         time.Duration
	Now         time.Time
}

// generateAccessToken генерирует access-токен, привязанный к сессии.
func (s *Service) generateAccessToken(ctx context.Context, in accessTokenInput) (string, time.Time, error) {
	const op = "service.token.generateAccessToken"

	lg := log.From(ctx)

	expiresAt := in.Now.Add(in.TTL)
	claims := accessClaims{
		SessionID:   in.SessionID.String(),
		Role:        string(in.Role),
		Permissions: in.Permissions,
		Name:        in.Name,
		Email:       in.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(in.Now),
			Issuer:    s.cfg.Issuer,
			Subject:   in.UserID.String(),
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		lg.Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt, nil
}

// ValidateAccessToken валидирует access-токен: подпись, издателя, срок,
// обязательные поля и денайлист jti. Любой сбой чтения денайлиста
// закрывает доступ (fail-closed), а не пропускает токен.
func (s *Service) ValidateAccessToken(ctx context.Context, tokenStr string) (*AccessClaims, error) {
	const op = "service.token.ValidateAccessToken"

	parsed, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Subject == "" || claims.SessionID == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	sid, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	blacklisted, err := s.isBlacklisted(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		log.From(ctx).Error("blacklist_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		// fail-closed: неизвестное состояние денайлиста = токен не проверен.
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if blacklisted {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return &AccessClaims{
		UserID:      uid,
		SessionID:   sid,
		JTI:         claims.ID,
		Role:        models.Role(claims.Role),
		Permissions: claims.Permissions,
		Name:        claims.Name,
		Email:       claims.Email,
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}, nil
}

// RevokeAccessToken точечно отзывает access-токен по jti до expiresAt
// (срочный отзыв конкретного токена при известной компрометации).
func (s *Service) RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	const op = "service.token.RevokeAccessToken"

	if jti == "" || expiresAt.IsZero() {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.storage.BlacklistToken(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Кэш — best-effort: источник истины уже обновлён.
	if s.bcache != nil {
		if err := s.bcache.SetBlacklisted(ctx, jti, time.Until(expiresAt)); err != nil {
			log.From(ctx).Warn("blacklist_cache_set_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return nil
}

// cleanCacheTTL — срок кэширования отрицательного ответа денайлиста.
// Короткий: окно, в котором реплика может не увидеть свежий отзыв.
const cleanCacheTTL = 30 * time.Second

// isBlacklisted проверяет jti: сперва кэш, затем БД с обратной записью.
// Ошибка кэша деградирует до похода в БД; ошибка БД поднимается наверх.
func (s *Service) isBlacklisted(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	const op = "service.token.isBlacklisted"

	if s.bcache != nil {
		blacklisted, ok, err := s.bcache.Get(ctx, jti)
		if err != nil {
			log.From(ctx).Warn("blacklist_cache_get_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if ok {
			return blacklisted, nil
		}
	}

	blacklisted, err := s.storage.IsTokenBlacklisted(ctx, jti)
	if err != nil {
		return false, err
	}

	if s.bcache != nil {
		var cerr error
		if blacklisted {
			cerr = s.bcache.SetBlacklisted(ctx, jti, time.Until(expiresAt))
		} else {
			cerr = s.bcache.SetClean(ctx, jti, cleanCacheTTL)
		}
		if cerr != nil {
			log.From(ctx).Warn("blacklist_cache_set_failed",
				slog.String("op", op),
				slog.String("err", cerr.Error()),
			)
		}
	}

	return blacklisted, nil
}
