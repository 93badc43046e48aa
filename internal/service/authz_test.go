package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"
)

func TestEvaluateAuthorization_BearerAuthorized(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	session := liveSession(uuid.New())
	signed := generateToken(t, svc, accessTokenInput{
		UserID:    session.UserID,
		SessionID: session.ID,
		Role:      models.RoleUser,
	})

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().SessionByID(gomock.Any(), session.ID).Return(session, nil)

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{Permissions: []string{"content:read"}},
		RequestContext{BearerToken: signed},
	)
	require.NoError(t, err)

	require.Equal(t, StatusAuthorized, decision.Status)
	require.Equal(t, session.UserID, decision.UserID)
	require.Equal(t, models.RoleUser, decision.Role)
	require.Contains(t, decision.Permissions, "content:write")
}

func TestEvaluateAuthorization_ForbiddenKeepsIdentity(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	session := liveSession(uuid.New())
	signed := generateToken(t, svc, accessTokenInput{
		UserID:    session.UserID,
		SessionID: session.ID,
		Role:      models.RoleUser,
	})

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().SessionByID(gomock.Any(), session.ID).Return(session, nil)

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{Roles: []models.Role{models.RoleAdmin}},
		RequestContext{BearerToken: signed},
	)
	require.NoError(t, err)

	// Личность известна, прав не хватает: forbidden, не unauthenticated.
	require.Equal(t, StatusForbidden, decision.Status)
	require.Equal(t, session.UserID, decision.UserID)
}

func TestEvaluateAuthorization_BadBearerUnauthenticated(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{},
		RequestContext{BearerToken: "garbage"},
	)
	require.NoError(t, err)
	require.Equal(t, StatusUnauthenticated, decision.Status)
}

func TestEvaluateAuthorization_RevokedSessionUnauthenticated(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	session := liveSession(uuid.New())
	revoked := time.Now().UTC().Add(-time.Minute)
	session.RevokedAt = &revoked

	signed := generateToken(t, svc, accessTokenInput{
		UserID:    session.UserID,
		SessionID: session.ID,
	})

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().SessionByID(gomock.Any(), session.ID).Return(session, nil)

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{},
		RequestContext{BearerToken: signed},
	)
	require.NoError(t, err)
	require.Equal(t, StatusUnauthenticated, decision.Status)
}

func TestEvaluateAuthorization_MissingSessionUnauthenticated(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	sessionID := uuid.New()
	signed := generateToken(t, svc, accessTokenInput{SessionID: sessionID})

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().SessionByID(gomock.Any(), sessionID).Return(nil, storage.ErrNotFound)

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{},
		RequestContext{BearerToken: signed},
	)
	require.NoError(t, err)
	require.Equal(t, StatusUnauthenticated, decision.Status)
}

func TestEvaluateAuthorization_InfrastructureErrorSurfaces(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	sessionID := uuid.New()
	signed := generateToken(t, svc, accessTokenInput{SessionID: sessionID})

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().SessionByID(gomock.Any(), sessionID).Return(nil, errors.New("db down"))

	_, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{},
		RequestContext{BearerToken: signed},
	)
	require.Error(t, err)
}

func TestEvaluateAuthorization_WebSessionFallback(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{Permissions: []string{"content:read"}},
		RequestContext{WebSession: &WebSession{
			UserID: userID,
			Role:   models.RoleUser,
		}},
	)
	require.NoError(t, err)
	require.Equal(t, StatusAuthorized, decision.Status)
	require.Equal(t, userID, decision.UserID)
}

func TestEvaluateAuthorization_NoCredentials(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{}, RequestContext{})
	require.NoError(t, err)
	require.Equal(t, StatusUnauthenticated, decision.Status)
}

func TestEvaluateAuthorization_AllPermissionsRequired(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	decision, err := svc.EvaluateAuthorization(context.Background(),
		Requirement{Permissions: []string{"content:read", "users:manage"}},
		RequestContext{WebSession: &WebSession{
			UserID: uuid.New(),
			Role:   models.RoleUser,
		}},
	)
	require.NoError(t, err)
	require.Equal(t, StatusForbidden, decision.Status)
}
