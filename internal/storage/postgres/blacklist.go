package postgres

import (
	"context"
	"fmt"
	"time"
)

// BlacklistToken добавляет jti в денайлист до expiresAt. Повторное
// добавление того же jti — no-op.
func (s *Storage) BlacklistToken(ctx context.Context, jti string, expiresAt time.Time) error {
	const op = "storage.postgres.BlacklistToken"

	query := `
        INSERT INTO token_blacklist(jti, expires_at, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (jti) DO NOTHING
    `

	_, err := s.db.Exec(ctx, query, jti, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsTokenBlacklisted сообщает, числится ли jti в денайлисте.
// Истёкшие записи не учитываются: сам токен к этому моменту уже мёртв.
func (s *Storage) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	const op = "storage.postgres.IsTokenBlacklisted"

	query := `
        SELECT EXISTS(
            SELECT 1 FROM token_blacklist
            WHERE jti = $1 AND expires_at > $2
        )
    `

	var blacklisted bool
	if err := s.db.QueryRow(ctx, query, jti, time.Now().UTC()).Scan(&blacklisted); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return blacklisted, nil
}

// DeleteExpiredBlacklistEntries удаляет записи с истёкшим expires_at.
func (s *Storage) DeleteExpiredBlacklistEntries(ctx context.Context, now time.Time) error {
	const op = "storage.postgres.DeleteExpiredBlacklistEntries"

	query := `
        DELETE FROM token_blacklist
        WHERE expires_at <= $1
    `

	if _, err := s.db.Exec(ctx, query, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
