package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound — запись не найдена (сессия/токен/устройство).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (отпечаток токена, jti).
	ErrAlreadyExists = errors.New("already exists")
	// ErrAlreadyUsed — refresh-токен уже потреблён ротацией или отозван;
	// проигравший конкурентную ротацию видит именно эту ошибку.
	ErrAlreadyUsed = errors.New("refresh token already used")
)

// SessionTouch — изменения сессии, применяемые вместе с ротацией.
type SessionTouch struct {
	LastUsedAt    time.Time
	IPHash        *string
	UserAgentHash *string
}

// SessionStorage выполняет операции над сессиями.
type SessionStorage interface {
	// SaveSession создаёт новую сессию.
	SaveSession(ctx context.Context, session *models.Session) error
	// SessionByID находит сессию по ID.
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	// RevokeSession проставляет revoked_at сессии и всем её нетерминальным
	// refresh-токенам в одной транзакции. Повторный отзыв — no-op.
	RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error
	// RevokeAllSessionsForUser отзывает все живые сессии пользователя и их
	// токены; возвращает число отозванных сессий.
	RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

// RefreshTokenStorage выполняет операции над refresh-токенами.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет новый refresh-токен.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByFingerprint находит refresh-токен по отпечатку.
	RefreshTokenByFingerprint(ctx context.Context, fingerprint string) (*models.RefreshToken, error)
	// RotateRefreshToken атомарно: помечает старый токен used_at/rotated_to,
	// вставляет преемника и обновляет last_used_at и хэши признаков сессии.
	// Если старый токен уже потреблён или отозван — ErrAlreadyUsed, и
	// никакие изменения не применяются.
	RotateRefreshToken(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken, touch SessionTouch) error
}

// DeviceStorage выполняет операции над устройствами.
type DeviceStorage interface {
	// UpsertDevice вставляет или обновляет устройство по (user_id, fingerprint)
	// и возвращает его id.
	UpsertDevice(ctx context.Context, device *models.AuthDevice) (uuid.UUID, error)
}

// BlacklistStorage — денайлист jti access-токенов. Независим от хранилища
// сессий; читается только путём проверки access-токена.
type BlacklistStorage interface {
	// BlacklistToken добавляет jti в денайлист до expiresAt. Идемпотентно.
	BlacklistToken(ctx context.Context, jti string, expiresAt time.Time) error
	// IsTokenBlacklisted сообщает, находится ли jti в денайлисте.
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	// DeleteExpiredBlacklistEntries удаляет записи с истёкшим expires_at.
	DeleteExpiredBlacklistEntries(ctx context.Context, now time.Time) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	SessionStorage
	RefreshTokenStorage
	DeviceStorage
	BlacklistStorage
	Close()
}
