package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/companyhub/internal/auth"
	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
	_ "github.com/odyssey-erp/companyhub/testing"
)

type stubRepo struct {
	result auth.LoginResult
	err    error
	calls  int
}

func (s *stubRepo) Login(ctx context.Context, username, password string) (auth.LoginResult, error) {
	s.calls++
	return s.result, s.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "exp": exp.Unix()})
	raw, err := token.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return raw
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "session-secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	handler := auth.NewHandler(nil, auth.NewService(repo), templates, sessionManager, csrfManager)
	return handler, sessionManager
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func postLogin(username, password string) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginPage(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req, sess := withSession(t, sessionManager, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)
	require.NoError(t, sessionManager.Commit(req.Context(), res, sess))

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
}

func TestLoginPageRedirectsSignedInUser(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req, sess := withSession(t, sessionManager, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	sess.SignIn("tok", shared.SessionUser{Username: "sam", Role: shared.RoleSalesStaff})
	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/sales", res.Header().Get("Location"))
}

func TestLoginRefusesUnknownRole(t *testing.T) {
	repo := &stubRepo{result: auth.LoginResult{
		Token: "opaque",
		User:  auth.User{ID: "3", Username: "vic", Role: "viewer"},
	}}
	handler, sessionManager := newAuthHandler(t, repo)

	req, sess := withSession(t, sessionManager, postLogin("vic", "secret"))
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), auth.MsgNoAccess)
	assert.False(t, sess.Authenticated())
}

func TestLoginPageSignsOutUnknownRole(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req, sess := withSession(t, sessionManager, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	sess.SignIn("tok", shared.SessionUser{Username: "vic", Role: "viewer"})
	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.False(t, sess.Authenticated())
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := &stubRepo{err: &backend.Error{Status: http.StatusUnauthorized, Message: "Invalid credentials", Err: backend.ErrUnauthorized}}
	handler, sessionManager := newAuthHandler(t, repo)

	req, sess := withSession(t, sessionManager, postLogin("ana", "wrong"))
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid credentials")
	assert.False(t, sess.Authenticated())
	assert.Equal(t, 1, repo.calls)
}

func TestLoginMissingFieldsSkipsBackend(t *testing.T) {
	repo := &stubRepo{}
	handler, sessionManager := newAuthHandler(t, repo)

	req, _ := withSession(t, sessionManager, postLogin("", ""))
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Username is required")
	assert.Zero(t, repo.calls)
}

func TestLoginSuccessStoresTokenAndRedirects(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	repo := &stubRepo{result: auth.LoginResult{
		Token: token,
		User:  auth.User{ID: "7", Username: "ivy", Name: "Ivy Stone", Role: "inventory"},
	}}
	handler, sessionManager := newAuthHandler(t, repo)

	req, sess := withSession(t, sessionManager, postLogin("ivy", "secret"))
	oldID := sess.ID
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)
	require.NoError(t, sessionManager.Commit(req.Context(), res, sess))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/inventory", res.Header().Get("Location"))
	assert.NotEqual(t, oldID, sess.ID)
	assert.Equal(t, token, sess.Token())
	user, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, shared.RoleInventoryStaff, user.Role)

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Welcome back, Ivy Stone", flash.Message)
}

func TestRequireAuth(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	var seenToken string
	protected := handler.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenToken = backend.TokenFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("anonymous", func(t *testing.T) {
		req, _ := withSession(t, sessionManager, httptest.NewRequest(http.MethodGet, "/inventory", nil))
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusSeeOther, res.Code)
		assert.Equal(t, "/auth/login", res.Header().Get("Location"))
	})

	t.Run("valid_token", func(t *testing.T) {
		token := signedToken(t, time.Now().Add(time.Hour))
		req, sess := withSession(t, sessionManager, httptest.NewRequest(http.MethodGet, "/inventory", nil))
		sess.SignIn(token, shared.SessionUser{Username: "ivy", Role: shared.RoleInventoryStaff})
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusNoContent, res.Code)
		assert.Equal(t, token, seenToken)
	})

	t.Run("expired_token", func(t *testing.T) {
		req, sess := withSession(t, sessionManager, httptest.NewRequest(http.MethodGet, "/inventory", nil))
		sess.SignIn(signedToken(t, time.Now().Add(-time.Minute)), shared.SessionUser{Username: "ivy", Role: shared.RoleInventoryStaff})
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusSeeOther, res.Code)
		assert.False(t, sess.Authenticated())
		flash := sess.PopFlash()
		require.NotNil(t, flash)
		assert.Equal(t, "Your session has expired. Please sign in again.", flash.Message)
	})
}

func TestEndSessionIfUnauthorized(t *testing.T) {
	_, sessionManager := newAuthHandler(t, &stubRepo{})
	req, sess := withSession(t, sessionManager, httptest.NewRequest(http.MethodGet, "/sales", nil))
	sess.SignIn("opaque", shared.SessionUser{Username: "sam", Role: shared.RoleSalesStaff})

	res := httptest.NewRecorder()
	assert.False(t, auth.EndSessionIfUnauthorized(res, req, backend.ErrNotFound))
	assert.True(t, sess.Authenticated())

	err := &backend.Error{Status: http.StatusUnauthorized, Err: backend.ErrUnauthorized}
	assert.True(t, auth.EndSessionIfUnauthorized(res, req, err))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.False(t, sess.Authenticated())
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	got, ok := auth.TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = auth.TokenExpiry("opaque-session-token")
	assert.False(t, ok)
}
