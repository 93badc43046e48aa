// service содержит бизнес-логику session-сервиса: выпуск и ротацию
// сессий с refresh-токенами, отзыв, выпуск/проверку access-токенов
// и вычисление решений авторизации.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Вся изменяемая среда — реляционное хранилище; сервис горизонтально
//     масштабируется без внутрипроцессного состояния.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже). Различия между invalid/
//     expired/reuse существуют для логирования и алертинга, но транспорт
//     отдаёт неаутентифицированному клиенту один и тот же ответ.
package service

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/cache"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/config"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"

	"github.com/google/uuid"
)

var (
	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи
	// или отсутствует в хранилище. Транспорт: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — абсолютный горизонт сессии или срок access-токена истёк.
	// Транспорт: 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — access-токен отозван точечно (jti в денайлисте).
	// Транспорт: 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrIdleTimeout — скользящее окно неактивности refresh-токена истекло;
	// сессия отзывается. Транспорт: 401.
	ErrIdleTimeout = errors.New("session idle timeout")

	// ErrReuseDetected — повторное предъявление уже потреблённого или
	// отозванного refresh-токена: доказательство кражи, сессия и вся её
	// цепочка отзываются. Наружу никогда не отдаётся дословно — транспорт
	// отвечает так же, как на обычный ErrInvalidToken (401), чтобы не
	// сообщать атакующему, что реплей замечен.
	ErrReuseDetected = errors.New("refresh token reuse detected")

	// ErrSessionRevoked — сессия отозвана; отзыв финален. Транспорт: 401.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrSessionNotFound — сессия не найдена. Транспорт: 404.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRefreshTokenCollision — исчерпаны попытки сгенерировать уникальный
	// отпечаток refresh-токена (редчайшие коллизии). Транспорт: 500.
	ErrRefreshTokenCollision = errors.New("refresh token collision")

	// ErrInvalidArgument — некорректные параметры вызова. Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IdentityProvider — внешний справочник пользователей: актуальная роль и
// явные гранты запрашиваются заново на каждой ротации (роль могла
// измениться после входа).
type IdentityProvider interface {
	UserAccess(ctx context.Context, userID uuid.UUID) (*models.UserAccess, error)
}

// PermissionDeriver вычисляет эффективный набор прав:
// выводимые из роли ∪ явные гранты.
type PermissionDeriver func(role models.Role, explicit []string) []string

// rolePermissions — права, выводимые из роли.
var rolePermissions = map[models.Role][]string{
	models.RoleAdmin: {
		"sessions:manage",
		"users:manage",
		"content:read",
		"content:write",
		"content:moderate",
	},
	models.RoleUser: {
		"content:read",
		"content:write",
	},
}

// DerivePermissions — дефолтный PermissionDeriver: объединение прав роли
// и явных грантов без дубликатов, порядок стабилен.
func DerivePermissions(role models.Role, explicit []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(rolePermissions[role])+len(explicit))

	for _, p := range rolePermissions[role] {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	for _, p := range explicit {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	return out
}

// Service описывает бизнес-логику session-сервиса.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	idp     IdentityProvider
	derive  PermissionDeriver
	bcache  cache.BlacklistCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig, idp IdentityProvider) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		idp:     idp,
		derive:  DerivePermissions,
	}
}

// SetBlacklistCache устанавливает кэш денайлиста jti (опционально).
func (s *Service) SetBlacklistCache(c cache.BlacklistCache) {
	s.bcache = c
}

// SetPermissionDeriver заменяет дефолтное выведение прав (опционально).
func (s *Service) SetPermissionDeriver(d PermissionDeriver) {
	if d != nil {
		s.derive = d
	}
}
