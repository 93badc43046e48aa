package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthDevice - запись об устройстве пользователя. Используется только для
// атрибуции сессий, не является границей доверия: её отсутствие ухудшает
// атрибуцию, но не влияет на выпуск токенов.
type AuthDevice struct {
	ID     uuid.UUID
	UserID uuid.UUID
	// Fingerprint — клиентский отпечаток, уникален в паре с UserID.
	Fingerprint string
	Name        string
	Type        string
	Client      ClientKind
	Trusted     bool
	RevokedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
