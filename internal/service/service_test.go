package service

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/config"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/token"
	"github.com/pribylovaa/go-news-aggregator/session-service/mocks"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret: "test-secret-0123456789",
		Issuer:    "session-service",
		Audience:  []string{"api-gateway"},
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockIdentityProvider, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	idp := mocks.NewMockIdentityProvider(ctrl)
	svc := New(st, testCfg(), idp)
	return svc, st, idp, ctrl
}

// liveSession — живая веб-сессия без remember.
func liveSession(userID uuid.UUID) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:                uuid.New(),
		UserID:            userID,
		CreatedAt:         now.Add(-time.Hour),
		LastUsedAt:        now.Add(-time.Hour),
		Remember:          false,
		Client:            models.ClientWeb,
		AbsoluteExpiresAt: now.Add(59 * 24 * time.Hour),
	}
}

// liveRefreshToken — непотреблённый refresh-токен сессии;
// возвращает плэйнтекст и запись хранилища.
func liveRefreshToken(t *testing.T, session *models.Session) (string, *models.RefreshToken) {
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
		CreatedAt:           now.Add(-time.Hour),
		InactivityExpiresAt: now.Add(13 * 24 * time.Hour),
		AbsoluteExpiresAt:   session.AbsoluteExpiresAt,
	}
}

func TestDerivePermissions_UnionWithoutDuplicates(t *testing.T) {
	t.Parallel()

	perms := DerivePermissions(models.RoleUser, []string{"content:read", "reports:view"})

	require.Equal(t, []string{"content:read", "content:write", "reports:view"}, perms)
}

func TestDerivePermissions_AdminIncludesManagement(t *testing.T) {
	t.Parallel()

	perms := DerivePermissions(models.RoleAdmin, nil)

	require.Contains(t, perms, "sessions:manage")
	require.Contains(t, perms, "users:manage")
	require.Contains(t, perms, "content:moderate")
}
