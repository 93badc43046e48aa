package postgres

import (
	"context"
	"fmt"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"

	"github.com/google/uuid"
)

// UpsertDevice вставляет или обновляет устройство по (user_id, fingerprint)
// и возвращает его id. Пустые name/type при обновлении не затирают прежние.
func (s *Storage) UpsertDevice(ctx context.Context, device *models.AuthDevice) (uuid.UUID, error) {
	const op = "storage.postgres.UpsertDevice"

	query := `
        INSERT INTO auth_devices(id, user_id, fingerprint, name, type, client,
            trusted, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        ON CONFLICT (user_id, fingerprint) DO UPDATE SET
            name = COALESCE(NULLIF(EXCLUDED.name, ''), auth_devices.name),
            type = COALESCE(NULLIF(EXCLUDED.type, ''), auth_devices.type),
            client = EXCLUDED.client,
            updated_at = EXCLUDED.updated_at
        RETURNING id
    `

	var id uuid.UUID
	err := s.db.QueryRow(ctx, query,
		device.ID,
		device.UserID,
		device.Fingerprint,
		device.Name,
		device.Type,
		string(device.Client),
		device.Trusted,
		device.UpdatedAt,
	).Scan(&id)

	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}
