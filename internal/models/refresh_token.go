package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken — одно звено цепочки ротации; единственная сущность,
// хранящая секрет (и только в виде медленного хэша).
//
// Инварианты:
//   - токен пригоден для ротации тогда и только тогда, когда
//     UsedAt == nil && RevokedAt == nil && now < InactivityExpiresAt &&
//     now < AbsoluteExpiresAt;
//   - AbsoluteExpiresAt всегда равен AbsoluteExpiresAt владеющей сессии;
//   - цепочка RotatedTo — односвязный список без циклов с ровно одним
//     хвостом (действующим токеном) на живую сессию.
type RefreshToken struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	// TokenHash — медленный солёный хэш секрета (фактор аутентификации).
	TokenHash string
	// Fingerprint — быстрый детерминированный дайджест для поиска в БД;
	// не секрет и не используется для проверки подлинности.
	Fingerprint string
	CreatedAt   time.Time
	// InactivityExpiresAt — скользящий горизонт, задаётся заново при ротации.
	InactivityExpiresAt time.Time
	// AbsoluteExpiresAt копируется из сессии и не может её пережить.
	AbsoluteExpiresAt time.Time
	// UsedAt ставится ровно один раз — в момент ротации.
	UsedAt *time.Time
	// RotatedTo — id токена-преемника; заполняется вместе с UsedAt.
	RotatedTo *uuid.UUID
	RevokedAt *time.Time
}

// Rotatable сообщает, пригоден ли токен для ротации на момент now.
func (t *RefreshToken) Rotatable(now time.Time) bool {
	return t.UsedAt == nil && t.RevokedAt == nil &&
		now.Before(t.InactivityExpiresAt) && now.Before(t.AbsoluteExpiresAt)
}
