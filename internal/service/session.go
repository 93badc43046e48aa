package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/pkg/log"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/pkg/redact"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/policy"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/token"

	"github.com/google/uuid"
)

// IssueSessionParams — параметры выпуска сессии. Проверка учётных данных
// выполняется вызывающей стороной; сюда приходит уже подтверждённая
// личность пользователя.
type IssueSessionParams struct {
	UserID      uuid.UUID
	Role        models.Role
	Permissions []string
	Name        string
	Email       string
	Remember    bool
	Client      models.ClientKind
	// DeviceFingerprint — клиентский отпечаток устройства; пустой —
	// атрибуция по устройству пропускается.
	DeviceFingerprint string
	DeviceName        string
	DeviceType        string
	Hints             models.ClientHints
}

// IssueSession выпускает новую сессию: политика по (роль, remember, клиент),
// best-effort регистрация устройства, запись сессии с фиксированным
// абсолютным горизонтом, первый refresh-токен и access-токен.
// Плэйнтекст refresh-токена возвращается клиенту единственный раз.
func (s *Service) IssueSession(ctx context.Context, p IssueSessionParams) (*models.IssuedSession, error) {
	const op = "service.session.IssueSession"

	if p.UserID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if p.Client != models.ClientMobile {
		p.Client = models.ClientWeb
	}

	now := time.Now().UTC()
	pol := policy.Resolve(p.Role, p.Remember, p.Client)

	// Устройство — только атрибуция: сбой upsert не мешает выпуску.
	deviceID := s.upsertDevice(ctx, &p, now)

	session := &models.Session{
		ID:                uuid.New(),
		UserID:            p.UserID,
		DeviceID:          deviceID,
		CreatedAt:         now,
		LastUsedAt:        now,
		IPHash:            token.HashClientHint(p.Hints.IP),
		UserAgentHash:     token.HashClientHint(p.Hints.UserAgent),
		Remember:          p.Remember,
		IsAdmin:           p.Role == models.RoleAdmin,
		Client:            p.Client,
		AbsoluteExpiresAt: now.Add(pol.RefreshAbsoluteTTL),
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plain, err := s.createRefreshToken(ctx, session, now, pol.RefreshSlidingTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessToken, expiresAt, err := s.generateAccessToken(ctx, accessTokenInput{
		UserID:      p.UserID,
		SessionID:   session.ID,
		Role:        p.Role,
		Permissions: s.derive(p.Role, p.Permissions),
		Name:        p.Name,
		Email:       p.Email,
		TTL:         pol.AccessTokenTTL,
		Now:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sessionsIssuedTotal.Inc()

	return &models.IssuedSession{
		AccessToken:     accessToken,
		AccessExpiresAt: expiresAt,
		RefreshToken:    plain,
		Session:         session,
	}, nil
}

// upsertDevice регистрирует устройство, если передан отпечаток.
// Любая ошибка деградирует до отсутствия атрибуции.
func (s *Service) upsertDevice(ctx context.Context, p *IssueSessionParams, now time.Time) *uuid.UUID {
	const op = "service.session.upsertDevice"

	if p.DeviceFingerprint == "" {
		return nil
	}

	id, err := s.storage.UpsertDevice(ctx, &models.AuthDevice{
		ID:          uuid.New(),
		UserID:      p.UserID,
		Fingerprint: p.DeviceFingerprint,
		Name:        p.DeviceName,
		Type:        p.DeviceType,
		Client:      p.Client,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		log.From(ctx).Warn("device_upsert_failed",
			slog.String("op", op),
			slog.String("fingerprint", redact.Fingerprint(p.DeviceFingerprint)),
			slog.String("err", err.Error()),
		)
		return nil
	}

	return &id
}

// createRefreshToken создаёт первый refresh-токен сессии.
// inactivity-горизонт — от now, абсолютный — всегда горизонт сессии.
func (s *Service) createRefreshToken(ctx context.Context, session *models.Session, now time.Time, slidingTTL time.Duration) (string, error) {
	const (
		op          = "service.session.createRefreshToken"
		maxAttempts = 5
	)

	lg := log.From(ctx)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		plain, rt, err := buildRefreshToken(session, now, slidingTTL)
		if err != nil {
			lg.Error("refresh_build_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return "", err
		}

		if err := s.storage.SaveRefreshToken(ctx, rt); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				// Редкая коллизия отпечатка — пробуем сгенерировать заново.
				continue
			}

			lg.Error("save_refresh_token_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return "", err
		}

		return plain, nil
	}

	lg.Error("refresh_collision_exceeded", slog.String("op", op))

	return "", ErrRefreshTokenCollision
}

// buildRefreshToken генерирует секрет и собирает запись токена.
func buildRefreshToken(session *models.Session, now time.Time, slidingTTL time.Duration) (string, *models.RefreshToken, error) {
	plain, err := token.NewOpaque()
	if err != nil {
		return "", nil, err
	}

	hash, err := token.Hash(plain)
	if err != nil {
		return "", nil, err
	}

	return plain, &models.RefreshToken{
		ID:                  uuid.New(),
		SessionID:           session.ID,
		TokenHash:           hash,
		Fingerprint:         token.Fingerprint(plain),
		CreatedAt:           now,
		InactivityExpiresAt: now.Add(slidingTTL),
		AbsoluteExpiresAt:   session.AbsoluteExpiresAt,
	}, nil
}

// RevokeSession отзывает сессию и все её нетерминальные refresh-токены.
// Отзыв финален; строки не удаляются.
func (s *Service) RevokeSession(ctx context.Context, id uuid.UUID) error {
	const op = "service.session.RevokeSession"

	if id == uuid.Nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.storage.RevokeSession(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	sessionsRevokedTotal.Inc()

	return nil
}

// RevokeAllSessionsForUser отзывает все живые сессии пользователя
// ("выйти везде"); возвращает число отозванных сессий.
func (s *Service) RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "service.session.RevokeAllSessionsForUser"

	if userID == uuid.Nil {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	revoked, err := s.storage.RevokeAllSessionsForUser(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	sessionsRevokedTotal.Add(float64(revoked))

	return revoked, nil
}

// RevokeByRefreshToken отзывает сессию, владеющую предъявленным
// refresh-токеном (logout). Состояние самого токена не важно: он лишь
// идентифицирует сессию, и отзыв уже потреблённого звена так же
// гасит всю цепочку.
func (s *Service) RevokeByRefreshToken(ctx context.Context, plain string) error {
	const op = "service.session.RevokeByRefreshToken"

	if plain == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	rt, err := s.storage.RefreshTokenByFingerprint(ctx, token.Fingerprint(plain))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if !token.Verify(plain, rt.TokenHash) {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := s.storage.RevokeSession(ctx, rt.SessionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sessionsRevokedTotal.Inc()

	return nil
}
