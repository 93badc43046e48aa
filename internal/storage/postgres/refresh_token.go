package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SaveRefreshToken сохраняет новый refresh-токен.
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const op = "storage.postgres.SaveRefreshToken"

	if err := insertRefreshToken(ctx, s.db, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// execer покрывает и пул, и транзакцию.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertRefreshToken(ctx context.Context, db execer, token *models.RefreshToken) error {
	query := `
        INSERT INTO refresh_tokens(id, session_id, token_hash, fingerprint,
            created_at, inactivity_expires_at, absolute_expires_at,
            used_at, rotated_to, revoked_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

	_, err := db.Exec(ctx, query,
		token.ID,
		token.SessionID,
		token.TokenHash,
		token.Fingerprint,
		token.CreatedAt,
		token.InactivityExpiresAt,
		token.AbsoluteExpiresAt,
		token.UsedAt,
		token.RotatedTo,
		token.RevokedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return storage.ErrAlreadyExists
		}

		return err
	}

	return nil
}

// RefreshTokenByFingerprint находит refresh-токен по отпечатку.
func (s *Storage) RefreshTokenByFingerprint(ctx context.Context, fingerprint string) (*models.RefreshToken, error) {
	const op = "storage.postgres.RefreshTokenByFingerprint"

	query := `
        SELECT id, session_id, token_hash, fingerprint, created_at,
            inactivity_expires_at, absolute_expires_at, used_at, rotated_to, revoked_at
        FROM refresh_tokens
        WHERE fingerprint = $1
    `

	var token models.RefreshToken
	err := s.db.QueryRow(ctx, query, fingerprint).Scan(
		&token.ID,
		&token.SessionID,
		&token.TokenHash,
		&token.Fingerprint,
		&token.CreatedAt,
		&token.InactivityExpiresAt,
		&token.AbsoluteExpiresAt,
		&token.UsedAt,
		&token.RotatedTo,
		&token.RevokedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &token, nil
}

// RotateRefreshToken — атомарная ротация: пометка старого токена
// used_at/rotated_to, вставка преемника и обновление сессии коммитятся
// вместе. Частичная запись переоткрыла бы окно детекции повторного
// использования, поэтому любой сбой откатывает всё.
//
// Условный UPDATE старого токена (used_at IS NULL AND revoked_at IS NULL)
// под блокировкой строки гарантирует, что из двух конкурентных ротаций
// одного токена ровно одна проходит, а вторая получает ErrAlreadyUsed.
func (s *Storage) RotateRefreshToken(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken, touch storage.SessionTouch) error {
	const op = "storage.postgres.RotateRefreshToken"

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE refresh_tokens
            SET used_at = $2
            WHERE id = $1 AND used_at IS NULL AND revoked_at IS NULL
        `, oldID, next.CreatedAt)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return storage.ErrAlreadyUsed
		}

		if err := insertRefreshToken(ctx, tx, next); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
            UPDATE refresh_tokens
            SET rotated_to = $2
            WHERE id = $1
        `, oldID, next.ID); err != nil {
			return err
		}

		// Признаки обновляются только при наличии новых значений:
		// отсутствие подсказки не затирает прежнюю атрибуцию.
		_, err = tx.Exec(ctx, `
            UPDATE sessions
            SET last_used_at = $2,
                ip_hash = COALESCE($3, ip_hash),
                user_agent_hash = COALESCE($4, user_agent_hash)
            WHERE id = $1
        `, next.SessionID, touch.LastUsedAt, touch.IPHash, touch.UserAgentHash)

		return err
	})

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
