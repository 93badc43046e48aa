package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/config"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/service"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/storage"
	"github.com/pribylovaa/go-news-aggregator/session-service/internal/token"
	"github.com/pribylovaa/go-news-aggregator/session-service/mocks"
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockStorage, *service.Service, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	idp := mocks.NewMockIdentityProvider(ctrl)

	svc := service.New(st, config.AuthConfig{
		JWTSecret: "test-secret-0123456789",
		Issuer:    "session-service",
		Audience:  []string{"api-gateway"},
	}, idp)

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(svc, lg, 5*time.Second), st, svc, ctrl
}

func doJSON(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// issueForTest выпускает сессию через сервис, чтобы получить согласованную
// пару access/refresh для запросов к остальным ручкам.
func issueForTest(t *testing.T, svc *service.Service, st *mocks.MockStorage, role models.Role) (*models.IssuedSession, *models.Session) {
	t.Helper()

	var saved *models.Session
	st.EXPECT().SaveSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *models.Session) error {
			saved = s
			return nil
		})
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	issued, err := svc.IssueSession(context.Background(), service.IssueSessionParams{
		UserID: uuid.New(),
		Role:   role,
	})
	require.NoError(t, err)
	return issued, saved
}

func TestIssueSession_HTTP_OK(t *testing.T) {
	t.Parallel()

	h, st, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().SaveSession(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	body := `{"user_id":"` + uuid.NewString() + `","role":"user","client":"web"}`
	rec := doJSON(t, h, http.MethodPost, "/sessions", body, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp issuedSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.Len(t, resp.RefreshToken, 86)
	require.Equal(t, "web", resp.Session.Client)
}

func TestIssueSession_HTTP_BadUserID(t *testing.T) {
	t.Parallel()

	h, _, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	rec := doJSON(t, h, http.MethodPost, "/sessions", `{"user_id":"nope"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueSession_HTTP_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	h, _, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	body := `{"user_id":"` + uuid.NewString() + `","surprise":true}`
	rec := doJSON(t, h, http.MethodPost, "/sessions", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh_HTTP_UnknownTokenCollapsesTo401(t *testing.T) {
	t.Parallel()

	h, st, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().RefreshTokenByFingerprint(gomock.Any(), gomock.Any()).
		Return(nil, storage.ErrNotFound)

	rec := doJSON(t, h, http.MethodPost, "/sessions/refresh", `{"refresh_token":"bogus"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"code":"unauthenticated","message":"authentication required"}`, rec.Body.String())
}

func TestRefresh_HTTP_ReuseSameBodyAsInvalid(t *testing.T) {
	t.Parallel()

	h, st, svc, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	issued, session := issueForTest(t, svc, st, models.RoleUser)

	// Хэш должен совпасть, иначе отказ случится раньше детекции реплея.
	hash, err := token.Hash(issued.RefreshToken)
	require.NoError(t, err)

	used := time.Now().UTC()
	rt := &models.RefreshToken{
		ID:          uuid.New(),
		SessionID:   session.ID,
		TokenHash:   hash,
		Fingerprint: token.Fingerprint(issued.RefreshToken),
		UsedAt:      &used,
	}

	st.EXPECT().RefreshTokenByFingerprint(gomock.Any(), rt.Fingerprint).Return(rt, nil)
	st.EXPECT().RevokeSession(gomock.Any(), session.ID, gomock.Any()).Return(nil)

	rec := doJSON(t, h, http.MethodPost, "/sessions/refresh",
		`{"refresh_token":"`+issued.RefreshToken+`"}`, nil)

	// Реплей наружу неотличим от просто невалидного токена.
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"code":"unauthenticated","message":"authentication required"}`, rec.Body.String())
}

func TestRevokeSession_HTTP_NotFound(t *testing.T) {
	t.Parallel()

	h, st, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	id := uuid.New()
	st.EXPECT().RevokeSession(gomock.Any(), id, gomock.Any()).Return(storage.ErrNotFound)

	rec := doJSON(t, h, http.MethodDelete, "/sessions/"+id.String(), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRevokeUserSessions_HTTP_NoBearer(t *testing.T) {
	t.Parallel()

	h, _, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	rec := doJSON(t, h, http.MethodDelete, "/users/"+uuid.NewString()+"/sessions", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevokeUserSessions_HTTP_SelfAllowed(t *testing.T) {
	t.Parallel()

	h, st, svc, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	issued, session := issueForTest(t, svc, st, models.RoleUser)

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().SessionByID(gomock.Any(), session.ID).Return(session, nil)
	st.EXPECT().RevokeAllSessionsForUser(gomock.Any(), session.UserID, gomock.Any()).
		Return(int64(2), nil)

	rec := doJSON(t, h, http.MethodDelete, "/users/"+session.UserID.String()+"/sessions", "",
		map[string]string{"Authorization": "Bearer " + issued.AccessToken})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp revokeAllResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Revoked)
}

func TestRevokeUserSessions_HTTP_ForeignUserForbidden(t *testing.T) {
	t.Parallel()

	h, st, svc, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	issued, session := issueForTest(t, svc, st, models.RoleUser)

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().SessionByID(gomock.Any(), session.ID).Return(session, nil)

	rec := doJSON(t, h, http.MethodDelete, "/users/"+uuid.NewString()+"/sessions", "",
		map[string]string{"Authorization": "Bearer " + issued.AccessToken})

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestValidateToken_HTTP_InvalidIs200False(t *testing.T) {
	t.Parallel()

	h, _, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	rec := doJSON(t, h, http.MethodPost, "/tokens/validate", `{"access_token":"garbage"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Valid)
	require.Empty(t, resp.UserID)
}

func TestValidateToken_HTTP_OK(t *testing.T) {
	t.Parallel()

	h, st, svc, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	issued, session := issueForTest(t, svc, st, models.RoleUser)

	st.EXPECT().IsTokenBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)

	rec := doJSON(t, h, http.MethodPost, "/tokens/validate",
		`{"access_token":"`+issued.AccessToken+`"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Valid)
	require.Equal(t, session.UserID.String(), resp.UserID)
	require.Equal(t, session.ID.String(), resp.SessionID)
}

func TestRevokeAccessToken_HTTP_OK(t *testing.T) {
	t.Parallel()

	h, st, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	jti := uuid.NewString()
	st.EXPECT().BlacklistToken(gomock.Any(), jti, gomock.Any()).Return(nil)

	body := `{"jti":"` + jti + `","expires_at":"` + time.Now().UTC().Add(10*time.Minute).Format(time.RFC3339) + `"}`
	rec := doJSON(t, h, http.MethodPost, "/tokens/revoke", body, nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEvaluate_HTTP_WebSessionAuthorized(t *testing.T) {
	t.Parallel()

	h, _, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	body := `{"permissions":["content:read"],"web_session":{"user_id":"` + uuid.NewString() + `","role":"user"}}`
	rec := doJSON(t, h, http.MethodPost, "/authz/evaluate", body, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "authorized", resp.Status)
	require.Contains(t, resp.Permissions, "content:read")
}

func TestEvaluate_HTTP_UnknownRoleRejected(t *testing.T) {
	t.Parallel()

	h, _, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	rec := doJSON(t, h, http.MethodPost, "/authz/evaluate", `{"roles":["root"]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate_HTTP_NoCredentialsUnauthenticated(t *testing.T) {
	t.Parallel()

	h, _, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	rec := doJSON(t, h, http.MethodPost, "/authz/evaluate", `{}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "unauthenticated", resp.Status)
	require.Empty(t, resp.UserID)
}
