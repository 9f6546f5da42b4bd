// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"codeberg.org/oliverandrich/disney-bounding/internal/auth"
	"codeberg.org/oliverandrich/disney-bounding/internal/config"
	"codeberg.org/oliverandrich/disney-bounding/internal/ctxkeys"
	"codeberg.org/oliverandrich/disney-bounding/internal/i18n"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/session"
	"codeberg.org/oliverandrich/disney-bounding/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHashedAsset(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/static/js/app.abc12345.js", true},
		{"/static/css/styles.d073ff63.css", true},
		{"/static/js/app.dev.js", false},
		{"/static/js/app.js", false},
		{"/static/js/app.ABCDEFGH.js", false},  // uppercase not allowed
		{"/static/js/app.abcd123.js", false},   // wrong length
		{"/static/js/app.abcd12345.js", false}, // wrong length
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHashedAsset(tt.path))
		})
	}
}

func TestStaticCacheHeaders(t *testing.T) {
	e := echo.New()
	e.Use(staticCacheHeaders())
	e.GET("/static/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	t.Run("hashed asset gets immutable cache", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/static/js/app.abc12345.js", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	})

	t.Run("dev asset gets no-cache", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/static/js/app.dev.js", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	})

	t.Run("regular asset gets no cache header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/static/js/app.js", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Cache-Control"))
	})
}

func TestI18nMiddleware(t *testing.T) {
	// Initialize i18n bundle
	require.NoError(t, i18n.Init())

	e := echo.New()
	e.Use(i18nMiddleware())

	var locale string
	e.GET("/", func(c echo.Context) error {
		locale = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	t.Run("English header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "en-US")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.True(t, strings.HasPrefix(locale, "en"), "expected locale to start with 'en', got %s", locale)
	})

	t.Run("German header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "de-DE")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.True(t, strings.HasPrefix(locale, "de"), "expected locale to start with 'de', got %s", locale)
	})
}

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestResolver(t *testing.T) (*session.Resolver, *session.Manager, *testutil.TestStore) {
	t.Helper()
	store := testutil.NewTestStore(t)
	mgr, err := session.NewManager(&config.SessionConfig{
		CookieName: "pb_auth",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)
	return session.NewResolver(mgr, store), mgr, store
}

// sessionCookie signs email in against the store and returns the cookie.
func sessionCookie(t *testing.T, mgr *session.Manager, store *testutil.TestStore, email string) *http.Cookie {
	t.Helper()
	ctx := context.Background()
	if _, err := store.FindUserByEmail(ctx, email); err != nil {
		_, err = store.CreateUser(ctx, recordstore.NewUser{Email: email, Password: "placeholder"})
		require.NoError(t, err)
	}
	otpID, err := store.RequestOTP(ctx, email)
	require.NoError(t, err)
	result, err := store.AuthWithOTP(ctx, otpID, store.Mailer.Code(t, email))
	require.NoError(t, err)

	cookie, err := mgr.Create(result.Token, result.User.ID)
	require.NoError(t, err)
	return cookie
}

func withCustomContext(e *echo.Echo) {
	e.Use(customContext(&appcontext.Assets{CSSPath: "/static/css/styles.css", JSPath: "/static/js/app.js"}))
}

func TestLoadSession_NoCookie(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	e := echo.New()
	withCustomContext(e)
	e.Use(loadSession(resolver, &config.AuthConfig{}))

	var cc *appcontext.Context
	e.GET("/", func(c echo.Context) error {
		cc = appcontext.From(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, cc)
	assert.Nil(t, cc.Session)
	assert.False(t, cc.IsAdmin)
	assert.False(t, auth.IsAuthenticated(cc.Request().Context()))
}

func TestLoadSession_ValidCookie(t *testing.T) {
	resolver, mgr, store := newTestResolver(t)
	cookie := sessionCookie(t, mgr, store, "belle@example.com")

	e := echo.New()
	withCustomContext(e)
	e.Use(loadSession(resolver, &config.AuthConfig{}))

	var cc *appcontext.Context
	e.GET("/", func(c echo.Context) error {
		cc = appcontext.From(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.NotNil(t, cc)
	require.NotNil(t, cc.Session)
	assert.Equal(t, "belle@example.com", cc.Session.User.Email)
	assert.NotEmpty(t, cc.Session.Token)
	assert.False(t, cc.IsAdmin)

	user := auth.GetUser(cc.Request().Context())
	require.NotNil(t, user)
	assert.Equal(t, cc.Session.User.ID, user.ID)
}

func TestLoadSession_Admin(t *testing.T) {
	resolver, mgr, store := newTestResolver(t)
	cookie := sessionCookie(t, mgr, store, "mod@example.com")

	e := echo.New()
	withCustomContext(e)
	e.Use(loadSession(resolver, &config.AuthConfig{AdminEmails: []string{"MOD@example.com"}}))

	var admin, ctxAdmin bool
	e.GET("/", func(c echo.Context) error {
		admin = appcontext.From(c).IsAdmin
		ctxAdmin = auth.IsAdmin(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, admin)
	assert.True(t, ctxAdmin)
}

func TestLoadSession_TamperedCookie(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	e := echo.New()
	withCustomContext(e)
	e.Use(loadSession(resolver, &config.AuthConfig{}))

	var sess *session.Session
	e.GET("/", func(c echo.Context) error {
		sess = appcontext.From(c).Session
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "pb_auth", Value: "not-a-signed-value"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sess)
}

func TestLoadSession_RejectedToken(t *testing.T) {
	resolver, mgr, _ := newTestResolver(t)
	cookie, err := mgr.Create("forged-token", "u1")
	require.NoError(t, err)

	e := echo.New()
	withCustomContext(e)
	e.Use(loadSession(resolver, &config.AuthConfig{}))

	var sess *session.Session
	e.GET("/", func(c echo.Context) error {
		sess = appcontext.From(c).Session
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Nil(t, sess)
}

func TestLoadSession_WithoutCustomContext(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	e := echo.New()
	e.Use(loadSession(resolver, &config.AuthConfig{}))

	var ok bool
	e.GET("/", func(c echo.Context) error {
		_, ok = c.(*appcontext.Context)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, ok)
}

func signedIn(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cc := appcontext.From(c)
		cc.Session = &session.Session{User: &models.User{ID: "u1", Email: "belle@example.com"}, Token: "t"}
		return next(cc)
	}
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	withCustomContext(e)
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "protected content")
	}, requireAuth())
	e.POST("/api/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, requireAuth())
	e.GET("/mine", func(c echo.Context) error {
		return c.String(http.StatusOK, "mine")
	}, signedIn, requireAuth())

	t.Run("browser is redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	})

	t.Run("htmx gets HX-Redirect", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("HX-Redirect"))
	})

	t.Run("api gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/protected", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/mine", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "mine", rec.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	withCustomContext(e)
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, signedIn, requireAdmin())
	e.GET("/admin-ok", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, signedIn, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)
			cc.IsAdmin = true
			return next(cc)
		}
	}, requireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin-ok", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCsrfMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(csrfMiddleware(&config.Config{Server: config.ServerConfig{BaseURL: "http://localhost:8080"}}))
	e.POST("/form", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/api/thing", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	t.Run("form post without token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("a=b"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.NotEqual(t, http.StatusOK, rec.Code)
	})

	t.Run("api is exempt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/thing", strings.NewReader("{}"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("get sets cookie", func(t *testing.T) {
		e.GET("/page", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		req := httptest.NewRequest(http.MethodGet, "/page", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Contains(t, rec.Header().Get("Set-Cookie"), "_csrf=")
	})
}

func TestCsrfToContext(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("csrf", "test-token")
			return next(c)
		}
	})
	e.Use(csrfToContext())

	var csrfToken string
	e.GET("/", func(c echo.Context) error {
		csrfToken, _ = c.Request().Context().Value(ctxkeys.CSRFToken{}).(string)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "test-token", csrfToken)
}

func TestStaticCacheHeaders_NonStaticPath(t *testing.T) {
	e := echo.New()
	e.Use(staticCacheHeaders())
	e.GET("/characters/ariel", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/characters/ariel", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestCustomContext(t *testing.T) {
	e := echo.New()
	withCustomContext(e)

	var cc *appcontext.Context
	var cssPath, jsPath string
	e.GET("/", func(c echo.Context) error {
		cc, _ = c.(*appcontext.Context)
		cssPath, _ = c.Request().Context().Value(ctxkeys.CSSPath{}).(string)
		jsPath, _ = c.Request().Context().Value(ctxkeys.JSPath{}).(string)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "login-form")
	e.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, cc)
	assert.True(t, cc.Htmx.IsHtmx)
	assert.Equal(t, "login-form", cc.Htmx.Target)
	assert.Equal(t, "/static/css/styles.css", cc.Assets.CSSPath)
	assert.Equal(t, "/static/css/styles.css", cssPath)
	assert.Equal(t, "/static/js/app.js", jsPath)
	assert.Nil(t, cc.Session)
}
