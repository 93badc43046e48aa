package models

import "time"

// IssuedSession — результат выпуска или ротации сессии.
//
// Описание:
//   - AccessToken — короткоживущий JWT, привязанный к сессии;
//   - RefreshToken — случайный секрет; возвращается клиенту ровно один раз,
//     на сервере хранится только его хэш и отпечаток;
//   - AccessExpiresAt — момент истечения access-токена (UTC).
type IssuedSession struct {
	// AccessToken — JWT для авторизации запросов.
	AccessToken string
	// AccessExpiresAt — время истечения действия access-токена (UTC).
	AccessExpiresAt time.Time
	// RefreshToken — секрет для следующей ротации.
	RefreshToken string
	// Session — состояние сессии после операции.
	Session *Session
}

// UserAccess — актуальные права пользователя, получаемые от внешнего
// справочника на каждой ротации (роль могла измениться после входа).
type UserAccess struct {
	Role Role
	// Permissions — явные гранты помимо выводимых из роли.
	Permissions []string
	Name        string
	Email       string
}
