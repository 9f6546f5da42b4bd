// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/disney-bounding/internal/handlers"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandlers(t *testing.T) (*handlers.AuthHandlers, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return handlers.NewAuth(env.otp, env.sessions), env
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func requestCode(t *testing.T, h *handlers.AuthHandlers, env *testEnv, email string) string {
	t.Helper()
	c, rec := env.context(jsonRequest(http.MethodPost, "/api/auth/request-otp", `{"email":"`+email+`"}`), nil, false)
	require.NoError(t, h.RequestOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["otpId"])
	return resp["otpId"]
}

func TestRequestOTP_BlankEmail(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	c, rec := env.context(jsonRequest(http.MethodPost, "/api/auth/request-otp", `{"email":"  "}`), nil, false)

	require.NoError(t, h.RequestOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"email is required"}`, rec.Body.String())
}

func TestRequestOTP_InvalidJSON(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	c, rec := env.context(jsonRequest(http.MethodPost, "/api/auth/request-otp", `{`), nil, false)

	require.NoError(t, h.RequestOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestOTP_ProvisionsAccount(t *testing.T) {
	h, env := newTestAuthHandlers(t)

	requestCode(t, h, env, "ariel@example.com")

	user, err := env.store.FindUserByEmail(context.Background(), "ariel@example.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVisibility)
	assert.NotEmpty(t, env.store.Mailer.Code(t, "ariel@example.com"))
}

func TestConfirmOTP_Success(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	otpID := requestCode(t, h, env, "ariel@example.com")
	code := env.store.Mailer.Code(t, "ariel@example.com")

	c, rec := env.context(jsonRequest(http.MethodPost, "/api/auth/confirm-otp", `{"otpId":"`+otpID+`","code":"`+code+`"}`), nil, false)
	require.NoError(t, h.ConfirmOTP(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ariel@example.com", resp.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "pb_auth", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	data, err := env.sessions.Parse(req)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, resp.User.ID, data.UserID)

	user, err := env.store.LoadAuth(context.Background(), data.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestConfirmOTP_WrongCode(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	otpID := requestCode(t, h, env, "ariel@example.com")
	wrong := "000000"
	if env.store.Mailer.Code(t, "ariel@example.com") == wrong {
		wrong = "111111"
	}

	c, rec := env.context(jsonRequest(http.MethodPost, "/api/auth/confirm-otp", `{"otpId":"`+otpID+`","code":"`+wrong+`"}`), nil, false)
	require.NoError(t, h.ConfirmOTP(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired code"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestConfirmOTP_MissingFields(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	c, rec := env.context(jsonRequest(http.MethodPost, "/api/auth/confirm-otp", `{"otpId":"x"}`), nil, false)

	require.NoError(t, h.ConfirmOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"otpId and code are required"}`, rec.Body.String())
}

func TestMe(t *testing.T) {
	h, env := newTestAuthHandlers(t)

	c, rec := env.context(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), nil, false)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sess := env.signIn(t, "belle@example.com")
	c, rec = env.context(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), sess, false)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"belle@example.com"`)
}

func TestLogout(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	c, rec := env.context(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), nil, false)

	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "pb_auth", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLogoutPage(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	c, rec := env.context(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), nil, false)

	require.NoError(t, h.LogoutPage(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestLoginPage(t *testing.T) {
	h, env := newTestAuthHandlers(t)

	c, rec := env.context(httptest.NewRequest(http.MethodGet, "/auth/login", nil), nil, false)
	require.NoError(t, h.LoginPage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="email"`)

	c, rec = env.context(httptest.NewRequest(http.MethodGet, "/auth/login", nil), env.signIn(t, "belle@example.com"), false)
	require.NoError(t, h.LoginPage(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLoginCode_Htmx(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	req := formRequest("/auth/login/code", url.Values{"email": {"ariel@example.com"}})
	req.Header.Set("HX-Request", "true")
	c, rec := env.context(req, nil, false)

	require.NoError(t, h.LoginCode(c))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `name="otpId"`)
	assert.Contains(t, body, "We sent a code to ariel@example.com.")
}

func TestLoginCode_BlankEmail(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	c, rec := env.context(formRequest("/auth/login/code", url.Values{"email": {""}}), nil, false)

	require.NoError(t, h.LoginCode(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "email is required")
}

func TestLoginVerify_Htmx(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	otpID := requestCode(t, h, env, "ariel@example.com")

	req := formRequest("/auth/login/verify", url.Values{
		"email": {"ariel@example.com"},
		"otpId": {otpID},
		"code":  {env.store.Mailer.Code(t, "ariel@example.com")},
	})
	req.Header.Set("HX-Request", "true")
	c, rec := env.context(req, nil, false)

	require.NoError(t, h.LoginVerify(c))

	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "pb_auth", rec.Result().Cookies()[0].Name)
}

func TestLoginVerify_WrongCode(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	otpID := requestCode(t, h, env, "ariel@example.com")

	req := formRequest("/auth/login/verify", url.Values{
		"email": {"ariel@example.com"},
		"otpId": {otpID},
		"code":  {"not-a-code"},
	})
	req.Header.Set("HX-Request", "true")
	c, rec := env.context(req, nil, false)

	require.NoError(t, h.LoginVerify(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired code")
	assert.Contains(t, rec.Body.String(), `value="`+otpID+`"`)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginBack(t *testing.T) {
	h, env := newTestAuthHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/auth/login/back?email=ariel%40example.com", nil)
	req.Header.Set("HX-Request", "true")
	c, rec := env.context(req, nil, false)

	require.NoError(t, h.LoginBack(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-post="/auth/login/code"`)
	assert.Contains(t, rec.Body.String(), `value="ariel@example.com"`)
	assert.NotContains(t, rec.Body.String(), "otpId")
	assert.NotContains(t, rec.Body.String(), "<html")
}
