// policy задаёт таблицу горизонтов жизни сессий.
//
// Resolve — чистая функция без I/O и без ошибок: одинаковые входы всегда
// дают одинаковые TTL. Таблица намеренно зашита в код, а не в конфигурацию:
// горизонты — продуктовое решение уровня безопасности, и их изменение
// должно проходить ревью кода.
package policy

import (
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
)

const (
	day = 24 * time.Hour

	// Админские сессии не получают продления от "remember me":
	// минимальный access-TTL и самые короткие окна refresh.
	adminAccessTTL   = 10 * time.Minute
	adminSlidingTTL  = 7 * day
	adminAbsoluteTTL = 30 * day

	defaultAccessTTL = 15 * time.Minute

	mobileSlidingTTL  = 30 * day
	mobileAbsoluteTTL = 180 * day

	webRememberSlidingTTL  = 30 * day
	webRememberAbsoluteTTL = 90 * day

	webSlidingTTL  = 14 * day
	webAbsoluteTTL = 60 * day
)

// Resolve возвращает политику сессии для (роль, remember, клиент).
// Приоритет правил: админ > мобильный клиент > remember-флаг.
func Resolve(role models.Role, remember bool, client models.ClientKind) models.SessionPolicy {
	if role == models.RoleAdmin {
		return models.SessionPolicy{
			AccessTokenTTL:     adminAccessTTL,
			RefreshSlidingTTL:  adminSlidingTTL,
			RefreshAbsoluteTTL: adminAbsoluteTTL,
		}
	}

	if client == models.ClientMobile {
		// Мобильное приложение считается доверенным устройством,
		// которое переаутентифицируется реже; remember не влияет.
		return models.SessionPolicy{
			AccessTokenTTL:     defaultAccessTTL,
			RefreshSlidingTTL:  mobileSlidingTTL,
			RefreshAbsoluteTTL: mobileAbsoluteTTL,
		}
	}

	if remember {
		return models.SessionPolicy{
			AccessTokenTTL:     defaultAccessTTL,
			RefreshSlidingTTL:  webRememberSlidingTTL,
			RefreshAbsoluteTTL: webRememberAbsoluteTTL,
		}
	}

	return models.SessionPolicy{
		AccessTokenTTL:     defaultAccessTTL,
		RefreshSlidingTTL:  webSlidingTTL,
		RefreshAbsoluteTTL: webAbsoluteTTL,
	}
}
