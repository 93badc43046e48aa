package models

import "time"

// SessionPolicy — набор горизонтов жизни сессии, чистая функция от
// (роль, remember, клиент). Не персистится.
type SessionPolicy struct {
	// AccessTokenTTL — срок жизни access-токена; короткий во всех ветках,
	// потому что украденный access-токен нельзя отозвать точечно.
	AccessTokenTTL time.Duration
	// RefreshSlidingTTL — скользящее окно неактивности refresh-токена.
	RefreshSlidingTTL time.Duration
	// RefreshAbsoluteTTL — абсолютный горизонт сессии от момента входа.
	RefreshAbsoluteTTL time.Duration
}
