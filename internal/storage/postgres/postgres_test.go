package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/token"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты пакета postgres:
// - поднимают реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// - применяют миграции из ./migrations;
// - проверяют жизненный цикл сессий, атомарность ротации refresh-токенов
//   (включая конкурентную ротацию одного токена), каскадный отзыв,
//   upsert устройств и денайлист jti.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// repoRootFromThisFile — корень репозитория относительно файла тестов;
// нужен для поиска SQL-миграций независимо от рабочего каталога.
func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

// readMigration — читает содержимое SQL-миграции из подкаталога ./migrations.
func readMigration(t *testing.T, name string) string {
	t.Helper()
	root := repoRootFromThisFile()
	path := filepath.Join(root, "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres — поднимает временный PostgreSQL, применяет миграции и
// возвращает инициализированное хранилище с функцией очистки.
// Без переменной окружения GO_TEST_INTEGRATION тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	// применяем миграции.
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	for _, m := range []string{
		"1_init_auth_devices.up.sql",
		"2_init_sessions.up.sql",
		"3_init_refresh_tokens.up.sql",
		"4_init_token_blacklist.up.sql",
	} {
		_, err = pool.Exec(ctx, readMigration(t, m))
		require.NoError(t, err, "apply migration %s", m)
	}

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

// newSession — живая веб-сессия для вставки в БД.
func newSession(userID uuid.UUID) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:                uuid.New(),
		UserID:            userID,
		CreatedAt:         now,
		LastUsedAt:        now,
		Client:            models.ClientWeb,
		AbsoluteExpiresAt: now.Add(60 * 24 * time.Hour),
	}
}

// newRefreshToken — непотреблённый токен сессии; возвращает плэйнтекст и запись.
func newRefreshToken(t *testing.T, session *models.Session) (string, *models.RefreshToken) {
	t.Helper()

	plain, err := token.NewOpaque()
	require.NoError(t, err)

	hash, err := token.Hash(plain)
	require.NoError(t, err)

	now := time.Now().UTC()
	return plain, &models.RefreshToken{
		ID:                  uuid.New(),
		SessionID:           session.ID,
		TokenHash:           hash,
		Fingerprint:         token.Fingerprint(plain),
		CreatedAt:           now,
		InactivityExpiresAt: now.Add(14 * 24 * time.Hour),
		AbsoluteExpiresAt:   session.AbsoluteExpiresAt,
	}
}
