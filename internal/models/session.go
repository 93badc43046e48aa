package models

import (
	"time"

	"github.com/google/uuid"
)

// Role — роль пользователя, зафиксированная на момент выпуска сессии.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ClientKind — тип клиента, с которого выполнен вход.
type ClientKind string

const (
	ClientWeb    ClientKind = "web"
	ClientMobile ClientKind = "mobile"
)

// Session — один аутентифицированный контекст браузера/устройства.
//
// Инварианты:
//   - RevokedAt монотонен: однажды установленный, он никогда не сбрасывается;
//   - AbsoluteExpiresAt фиксируется при создании и не продлевается ротацией;
//   - строки сессий никогда не удаляются физически (append-only аудит).
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID
	// DeviceID — слабая ссылка на AuthDevice; nil, если отпечаток не передан.
	DeviceID  *uuid.UUID
	CreatedAt time.Time
	// LastUsedAt обновляется при каждой успешной ротации.
	LastUsedAt time.Time
	// IPHash/UserAgentHash — односторонние хэши клиентских признаков,
	// сырые значения никогда не сохраняются.
	IPHash        *string
	UserAgentHash *string
	Remember      bool
	// IsAdmin денормализуется при создании для быстрого выбора политики.
	IsAdmin           bool
	Client            ClientKind
	AbsoluteExpiresAt time.Time
	RevokedAt         *time.Time
}

// Revoked сообщает, отозвана ли сессия.
func (s *Session) Revoked() bool { return s.RevokedAt != nil }

// ExpiredAt сообщает, истёк ли абсолютный горизонт сессии на момент now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.AbsoluteExpiresAt)
}

// ClientHints — клиентские признаки запроса (только для атрибуции).
type ClientHints struct {
	IP        string
	UserAgent string
}
