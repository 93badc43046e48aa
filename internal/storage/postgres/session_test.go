package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"
)

func TestIntegration_SaveSession_And_SessionByID_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	session := newSession(uuid.New())
	ip := "hash-of-ip"
	session.IPHash = &ip

	require.NoError(t, st.SaveSession(ctx, session))

	got, err := st.SessionByID(ctx, session.ID)
	require.NoError(t, err)

	require.Equal(t, session.ID, got.ID)
	require.Equal(t, session.UserID, got.UserID)
	require.Nil(t, got.DeviceID)
	require.NotNil(t, got.IPHash)
	require.Equal(t, ip, *got.IPHash)
	require.Nil(t, got.UserAgentHash)
	require.Nil(t, got.RevokedAt)
	require.WithinDuration(t, session.AbsoluteExpiresAt, got.AbsoluteExpiresAt, time.Second)
}

func TestIntegration_SessionByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.SessionByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RevokeSession_CascadesToTokens(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	session := newSession(uuid.New())
	require.NoError(t, st.SaveSession(ctx, session))

	_, rt := newRefreshToken(t, session)
	require.NoError(t, st.SaveRefreshToken(ctx, rt))

	at := time.Now().UTC()
	require.NoError(t, st.RevokeSession(ctx, session.ID, at))

	got, err := st.SessionByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)

	gotRT, err := st.RefreshTokenByFingerprint(ctx, rt.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, gotRT.RevokedAt)
	// Отзыв не подменяет собой факт потребления.
	require.Nil(t, gotRT.UsedAt)
}

func TestIntegration_RevokeSession_Idempotent(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	session := newSession(uuid.New())
	require.NoError(t, st.SaveSession(ctx, session))

	first := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, st.RevokeSession(ctx, session.ID, first))
	require.NoError(t, st.RevokeSession(ctx, session.ID, first.Add(time.Hour)))

	got, err := st.SessionByID(ctx, session.ID)
	require.NoError(t, err)
	// Повторный отзыв не сдвигает исходную метку.
	require.WithinDuration(t, first, *got.RevokedAt, time.Second)
}

func TestIntegration_RevokeSession_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	err := st.RevokeSession(context.Background(), uuid.New(), time.Now().UTC())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RevokeAllSessionsForUser(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	userID := uuid.New()

	first := newSession(userID)
	second := newSession(userID)
	foreign := newSession(uuid.New())
	require.NoError(t, st.SaveSession(ctx, first))
	require.NoError(t, st.SaveSession(ctx, second))
	require.NoError(t, st.SaveSession(ctx, foreign))

	_, rt := newRefreshToken(t, first)
	require.NoError(t, st.SaveRefreshToken(ctx, rt))

	revoked, err := st.RevokeAllSessionsForUser(ctx, userID, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, int64(2), revoked)

	gotForeign, err := st.SessionByID(ctx, foreign.ID)
	require.NoError(t, err)
	require.Nil(t, gotForeign.RevokedAt)

	gotRT, err := st.RefreshTokenByFingerprint(ctx, rt.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, gotRT.RevokedAt)

	// Повторный вызов: живых сессий не осталось.
	revoked, err = st.RevokeAllSessionsForUser(ctx, userID, time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, revoked)
}
