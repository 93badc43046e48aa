package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/identity"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/pkg/log"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/policy"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/token"
)

// RotateRefreshToken обменивает действующий refresh-токен на новую пару
// access+refresh. Refresh-токен одноразовый: повторное предъявление уже
// потреблённого или отозванного звена трактуется как кража (у атакующего
// и легитимного клиента оказались копии), и сессия гасится целиком.
//
// remember и client фиксируются на входе и не перевычисляются; роль и
// права пользователя перечитываются из справочника на каждой ротации.
func (s *Service) RotateRefreshToken(ctx context.Context, plain string, hints models.ClientHints) (*models.IssuedSession, error) {
	const op = "service.rotate.RotateRefreshToken"

	lg := log.From(ctx)

	if plain == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	rt, err := s.storage.RefreshTokenByFingerprint(ctx, token.Fingerprint(plain))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_lookup_not_found", slog.String("op", op))
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Несовпадение медленного хэша при совпавшем отпечатке — коллизия или
	// подделка, но не реплей: без каскадного отзыва.
	if !token.Verify(plain, rt.TokenHash) {
		lg.Warn("refresh_hash_mismatch",
			slog.String("op", op),
			slog.String("session_id", rt.SessionID.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	now := time.Now().UTC()

	// Реплей уже потреблённого или отозванного токена: гасим сессию
	// и всю цепочку.
	if rt.UsedAt != nil || rt.RevokedAt != nil {
		return nil, s.tearDownOnReuse(ctx, rt, op)
	}

	session, err := s.storage.SessionByID(ctx, rt.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if session.Revoked() {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionRevoked)
	}

	if session.ExpiredAt(now) {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	// Скользящее окно истекло при живом абсолютном горизонте:
	// idle-timeout, сессия отзывается, но это не инцидент безопасности.
	if !now.Before(rt.InactivityExpiresAt) {
		if err := s.storage.RevokeSession(ctx, session.ID, now); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sessionsRevokedTotal.Inc()

		lg.Info("refresh_idle_timeout",
			slog.String("op", op),
			slog.String("session_id", session.ID.String()),
		)

		return nil, fmt.Errorf("%s: %w", op, ErrIdleTimeout)
	}

	access, err := s.idp.UserAccess(ctx, session.UserID)
	if err != nil {
		// Пользователь исчез из справочника: сессия больше не имеет
		// владельца, отзываем её и отвечаем как на отозванную.
		if errors.Is(err, identity.ErrUnknownUser) {
			if rerr := s.storage.RevokeSession(ctx, session.ID, now); rerr != nil {
				return nil, fmt.Errorf("%s: %w", op, rerr)
			}
			sessionsRevokedTotal.Inc()

			return nil, fmt.Errorf("%s: %w", op, ErrSessionRevoked)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pol := policy.Resolve(access.Role, session.Remember, session.Client)

	next, err := s.rotate(ctx, rt, session, now, pol.RefreshSlidingTTL, hints)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyUsed) {
			// Проигрыш конкурентной ротации того же токена: для нас это
			// неотличимо от реплея, и исход тот же.
			return nil, s.tearDownOnReuse(ctx, rt, op)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Обновлённое состояние сессии для ответа.
	session.LastUsedAt = now
	if h := token.HashClientHint(hints.IP); h != nil {
		session.IPHash = h
	}
	if h := token.HashClientHint(hints.UserAgent); h != nil {
		session.UserAgentHash = h
	}

	accessToken, expiresAt, err := s.generateAccessToken(ctx, accessTokenInput{
		UserID:      session.UserID,
		SessionID:   session.ID,
		Role:        access.Role,
		Permissions: s.derive(access.Role, access.Permissions),
		Name:        access.Name,
		Email:       access.Email,
		TTL:         pol.AccessTokenTTL,
		Now:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshRotationsTotal.Inc()

	return &models.IssuedSession{
		AccessToken:     accessToken,
		AccessExpiresAt: expiresAt,
		RefreshToken:    next,
		Session:         session,
	}, nil
}

// rotate выполняет атомарную ротацию с ретраями на коллизии отпечатка.
// Все три записи (пометка старого токена, вставка преемника, обновление
// сессии) коммитятся одной транзакцией в хранилище.
func (s *Service) rotate(ctx context.Context, old *models.RefreshToken, session *models.Session, now time.Time, slidingTTL time.Duration, hints models.ClientHints) (string, error) {
	const (
		op          = "service.rotate.rotate"
		maxAttempts = 5
	)

	touch := storage.SessionTouch{
		LastUsedAt:    now,
		IPHash:        token.HashClientHint(hints.IP),
		UserAgentHash: token.HashClientHint(hints.UserAgent),
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		plain, next, err := buildRefreshToken(session, now, slidingTTL)
		if err != nil {
			return "", err
		}

		err = s.storage.RotateRefreshToken(ctx, old.ID, next, touch)
		if err == nil {
			return plain, nil
		}

		if errors.Is(err, storage.ErrAlreadyExists) {
			// Коллизия отпечатка преемника; транзакция откатилась целиком,
			// старый токен остался непотреблённым — можно повторить.
			continue
		}

		return "", err
	}

	log.From(ctx).Error("refresh_collision_exceeded", slog.String("op", op))

	return "", ErrRefreshTokenCollision
}

// tearDownOnReuse гасит сессию после детекции реплея и возвращает
// ErrReuseDetected. Сбой самого отзыва важнее сигнала о реплее:
// он означает, что скомпрометированная сессия осталась живой.
func (s *Service) tearDownOnReuse(ctx context.Context, rt *models.RefreshToken, op string) error {
	lg := log.From(ctx)

	lg.Warn("refresh_reuse_detected",
		slog.String("op", op),
		slog.String("session_id", rt.SessionID.String()),
	)
	reuseDetectedTotal.Inc()

	if err := s.storage.RevokeSession(ctx, rt.SessionID, time.Now().UTC()); err != nil &&
		!errors.Is(err, storage.ErrNotFound) {
		lg.Error("reuse_teardown_failed",
			slog.String("op", op),
			slog.String("session_id", rt.SessionID.String()),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	sessionsRevokedTotal.Inc()

	return fmt.Errorf("%s: %w", op, ErrReuseDetected)
}
