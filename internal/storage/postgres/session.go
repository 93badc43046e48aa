package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveSession создаёт новую сессию.
func (s *Storage) SaveSession(ctx context.Context, session *models.Session) error {
	const op = "storage.postgres.SaveSession"

	query := `
        INSERT INTO sessions(id, user_id, device_id, created_at, last_used_at,
            ip_hash, user_agent_hash, remember, is_admin, client,
            absolute_expires_at, revoked_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `

	_, err := s.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		session.CreatedAt,
		session.LastUsedAt,
		session.IPHash,
		session.UserAgentHash,
		session.Remember,
		session.IsAdmin,
		string(session.Client),
		session.AbsoluteExpiresAt,
		session.RevokedAt,
	)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SessionByID находит сессию по ID.
func (s *Storage) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	const op = "storage.postgres.SessionByID"

	query := `
        SELECT id, user_id, device_id, created_at, last_used_at,
            ip_hash, user_agent_hash, remember, is_admin, client,
            absolute_expires_at, revoked_at
        FROM sessions
        WHERE id = $1
    `

	var session models.Session
	err := s.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceID,
		&session.CreatedAt,
		&session.LastUsedAt,
		&session.IPHash,
		&session.UserAgentHash,
		&session.Remember,
		&session.IsAdmin,
		&session.Client,
		&session.AbsoluteExpiresAt,
		&session.RevokedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &session, nil
}

// RevokeSession проставляет revoked_at сессии и всем её нетерминальным
// refresh-токенам в одной транзакции. Отзыв финален и идемпотентен:
// повторный вызов для уже отозванной сессии — no-op без ошибки.
func (s *Storage) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "storage.postgres.RevokeSession"

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE sessions
            SET revoked_at = $2
            WHERE id = $1 AND revoked_at IS NULL
        `, id, at)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, id,
			).Scan(&exists); err != nil {
				return err
			}

			if !exists {
				return storage.ErrNotFound
			}
			// Уже отозвана — токены были отозваны тогда же.
			return nil
		}

		_, err = tx.Exec(ctx, `
            UPDATE refresh_tokens
            SET revoked_at = $2
            WHERE session_id = $1 AND revoked_at IS NULL AND used_at IS NULL
        `, id, at)

		return err
	})

	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RevokeAllSessionsForUser отзывает все живые сессии пользователя и их
// нетерминальные токены; возвращает число отозванных сессий.
func (s *Storage) RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	const op = "storage.postgres.RevokeAllSessionsForUser"

	var revoked int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE sessions
            SET revoked_at = $2
            WHERE user_id = $1 AND revoked_at IS NULL
        `, userID, at)
		if err != nil {
			return err
		}
		revoked = tag.RowsAffected()

		_, err = tx.Exec(ctx, `
            UPDATE refresh_tokens
            SET revoked_at = $2
            WHERE revoked_at IS NULL AND used_at IS NULL
              AND session_id IN (SELECT id FROM sessions WHERE user_id = $1)
        `, userID, at)

		return err
	})

	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return revoked, nil
}
