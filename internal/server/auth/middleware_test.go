package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func loggedInRequest(t *testing.T, s *Sessions, userID string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, s.Login(rec, userID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user", http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(u.UserName))
	})
}

func TestSessions_LoginSetsCookie(t *testing.T) {
	s := NewSessions("k", time.Hour, true)
	rec := httptest.NewRecorder()
	require.NoError(t, s.Login(rec, "u1"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, common.SessionCookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.NotEqual(t, "u1", c.Value)
}

func TestSessions_LogoutExpiresCookie(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	rec := httptest.NewRecorder()
	s.Logout(rec)

	c := rec.Result().Cookies()[0]
	assert.Equal(t, common.SessionCookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestSessions_CopiedTokenOutlivesLogout(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	req := loggedInRequest(t, s, "u1")

	s.Logout(httptest.NewRecorder())

	id, err := s.UserID(req)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestSessions_UserIDWithoutCookie(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	_, err := s.UserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRequireAuth_RedirectsWithoutSession(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	m := NewMiddleware(s, &fakeUsers{}, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	m.RequireAuth(protected()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestRequireAuth_LoadsUser(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	users := &fakeUsers{users: map[string]*models.User{"u1": {ID: "u1", UserName: "alice"}}}
	m := NewMiddleware(s, users, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	m.RequireAuth(protected()).ServeHTTP(rec, loggedInRequest(t, s, "u1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestRequireAuth_DeletedUserIsLoggedOut(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	m := NewMiddleware(s, &fakeUsers{users: map[string]*models.User{}}, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	m.RequireAuth(protected()).ServeHTTP(rec, loggedInRequest(t, s, "gone"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestRequireAuth_ForgedCookie(t *testing.T) {
	good := NewSessions("k", time.Hour, false)
	forger := NewSessions("other", time.Hour, false)
	users := &fakeUsers{users: map[string]*models.User{"u1": {ID: "u1", UserName: "alice"}}}
	m := NewMiddleware(good, users, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	m.RequireAuth(protected()).ServeHTTP(rec, loggedInRequest(t, forger, "u1"))

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRequireAuth_StoreFailure(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	m := NewMiddleware(s, &fakeUsers{err: errors.New("db down")}, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	m.RequireAuth(protected()).ServeHTTP(rec, loggedInRequest(t, s, "u1"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
