package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/user-portal/internal/users"
)

type mapLoader struct {
	users map[uint]*users.User
	err   error
}

func (l *mapLoader) FindByID(_ context.Context, id uint) (*users.User, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.users[id], nil
}

type sessionHarness struct {
	router  *gin.Engine
	manager *SessionManager
	loader  *mapLoader
	cookies []*http.Cookie
}

func newSessionHarness(t *testing.T) *sessionHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loader := &mapLoader{users: map[uint]*users.User{
		7: {ID: 7, FirstName: "Ann", Email: "ann@x.com"},
	}}
	manager := NewSessionManager(loader, SessionOptions{MaxLifetime: time.Hour, IdleTimeout: 10 * time.Minute})

	router := gin.New()
	router.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret-0123456789"))))
	router.GET("/login/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		if err := manager.Login(c, uint(id)); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/logout", func(c *gin.Context) {
		if err := manager.Logout(c); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/me", manager.LoadIdentity(nil), func(c *gin.Context) {
		if a, ok := IdentityFrom(c).(Authenticated); ok {
			c.String(http.StatusOK, a.DisplayName())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	router.GET("/private", manager.LoadIdentity(nil), RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})

	return &sessionHarness{router: router, manager: manager, loader: loader}
}

func (h *sessionHarness) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		h.cookies = cookies
	}
	return rec
}

func TestSessionLoginCurrentLogout(t *testing.T) {
	h := newSessionHarness(t)

	assert.Equal(t, "anonymous", h.get("/me").Body.String())

	require.Equal(t, http.StatusNoContent, h.get("/login/7").Code)
	assert.Equal(t, "Ann", h.get("/me").Body.String())

	require.Equal(t, http.StatusNoContent, h.get("/logout").Code)
	assert.Equal(t, "anonymous", h.get("/me").Body.String())
}

func TestSessionUnknownUserIsAnonymous(t *testing.T) {
	h := newSessionHarness(t)

	h.get("/login/99")
	assert.Equal(t, "anonymous", h.get("/me").Body.String())
}

func TestSessionIdleTimeout(t *testing.T) {
	h := newSessionHarness(t)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	h.manager.now = func() time.Time { return now }

	h.get("/login/7")
	now = now.Add(9 * time.Minute)
	assert.Equal(t, "Ann", h.get("/me").Body.String())

	now = now.Add(11 * time.Minute)
	assert.Equal(t, "anonymous", h.get("/me").Body.String())
}

func TestSessionMaxLifetime(t *testing.T) {
	h := newSessionHarness(t)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	h.manager.now = func() time.Time { return now }

	h.get("/login/7")
	for i := 0; i < 6; i++ {
		now = now.Add(9 * time.Minute)
		require.Equal(t, "Ann", h.get("/me").Body.String())
	}

	now = now.Add(9 * time.Minute)
	assert.Equal(t, "anonymous", h.get("/me").Body.String())
}

func TestSessionTamperedCookieIsAnonymous(t *testing.T) {
	h := newSessionHarness(t)

	h.get("/login/7")
	require.NotEmpty(t, h.cookies)
	h.cookies[0].Value = h.cookies[0].Value[:len(h.cookies[0].Value)-4] + "AAAA"

	assert.Equal(t, "anonymous", h.get("/me").Body.String())
}

func TestSessionLoaderError(t *testing.T) {
	h := newSessionHarness(t)
	h.get("/login/7")
	h.loader.err = errors.New("db down")

	assert.Equal(t, http.StatusInternalServerError, h.get("/me").Code)
}

func TestLoadIdentityErrorHandler(t *testing.T) {
	h := newSessionHarness(t)
	var handled error
	h.router.GET("/custom", h.manager.LoadIdentity(func(c *gin.Context, err error) {
		handled = err
		assert.False(t, IdentityFrom(c).IsAuthenticated())
		c.String(http.StatusInternalServerError, "error page")
	}), func(c *gin.Context) {
		c.String(http.StatusOK, "reached")
	})

	h.get("/login/7")
	h.loader.err = errors.New("db down")

	rec := h.get("/custom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error page", rec.Body.String())
	assert.EqualError(t, handled, "db down")
}

func TestRequireLoginRedirects(t *testing.T) {
	h := newSessionHarness(t)

	rec := h.get("/private")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	h.get("/login/7")
	rec = h.get("/private")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "secret", rec.Body.String())
}

func TestIdentityFromDefaultsToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, IdentityFrom(c).IsAuthenticated())

	c.Set(ContextIdentityKey, Authenticated{User: &users.User{ID: 3, FirstName: "Bo"}})
	identity, ok := IdentityFrom(c).(Authenticated)
	require.True(t, ok)
	assert.Equal(t, uint(3), identity.UserID())
	assert.Equal(t, "Bo", identity.DisplayName())
}
