// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/disney-bounding/internal/apperr"
	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"codeberg.org/oliverandrich/disney-bounding/internal/htmx"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/otp"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/session"
	"codeberg.org/oliverandrich/disney-bounding/internal/templates"
	"github.com/labstack/echo/v4"
)

const msgSessionFailed = "Failed to create session"

// AuthHandlers contains handlers for one-time code sign-in.
type AuthHandlers struct {
	otp      *otp.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *otp.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{otp: svc, sessions: sessions}
}

// RequestOTPRequest is the request body for requesting a code.
type RequestOTPRequest struct {
	Email string `json:"email"`
}

// ConfirmOTPRequest is the request body for confirming a code.
type ConfirmOTPRequest struct {
	OTPID string `json:"otpId"`
	Code  string `json:"code"`
}

// RequestOTP handles POST /api/auth/request-otp.
func (h *AuthHandlers) RequestOTP(c echo.Context) error {
	var req RequestOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	otpID, err := h.otp.Request(c.Request().Context(), req.Email)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"otpId": otpID})
}

// ConfirmOTP handles POST /api/auth/confirm-otp and sets the session cookie.
func (h *AuthHandlers) ConfirmOTP(c echo.Context) error {
	var req ConfirmOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	result, err := h.otp.Confirm(c.Request().Context(), req.OTPID, req.Code)
	if err != nil {
		return jsonError(c, err)
	}
	if err := h.startSession(c, result); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": result.User})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandlers) Me(c echo.Context) error {
	user := appcontext.From(c).GetUser()
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

// LoginPage renders the first sign-in step.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	if appcontext.From(c).IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, http.StatusOK, templates.LoginPage(templates.LoginEmailForm(templates.LoginState{})))
}

// LoginCode sends a code to the submitted email and shows the code step.
func (h *AuthHandlers) LoginCode(c echo.Context) error {
	state := templates.LoginState{Email: c.FormValue("email")}

	otpID, err := h.otp.Request(c.Request().Context(), state.Email)
	if err != nil {
		state.Error = apperr.PublicMessage(err)
		form := templates.LoginEmailForm(state)
		return renderPartial(c, apperr.Status(err), form, templates.LoginPage(form))
	}

	state.OTPID = otpID
	form := templates.LoginCodeForm(state)
	return renderPartial(c, http.StatusOK, form, templates.LoginPage(form))
}

// LoginBack returns to the email step. The challenge is discarded.
func (h *AuthHandlers) LoginBack(c echo.Context) error {
	form := templates.LoginEmailForm(templates.LoginState{Email: c.QueryParam("email")})
	return renderPartial(c, http.StatusOK, form, templates.LoginPage(form))
}

// LoginVerify checks the code, sets the session cookie and sends the user home.
func (h *AuthHandlers) LoginVerify(c echo.Context) error {
	state := templates.LoginState{
		Email: c.FormValue("email"),
		OTPID: c.FormValue("otpId"),
	}

	result, err := h.otp.Confirm(c.Request().Context(), state.OTPID, c.FormValue("code"))
	if err == nil {
		err = h.startSession(c, result)
	}
	if err != nil {
		state.Error = apperr.PublicMessage(err)
		form := templates.LoginCodeForm(state)
		return renderPartial(c, apperr.Status(err), form, templates.LoginPage(form))
	}

	htmx.Redirect(c.Response(), c.Request(), "/")
	return nil
}

// LogoutPage clears the session cookie and redirects home.
func (h *AuthHandlers) LogoutPage(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandlers) startSession(c echo.Context, result *recordstore.AuthResult) error {
	cookie, err := h.sessions.Create(result.Token, result.User.ID)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "failed to create session cookie",
			"user_id", result.User.ID, "error", err)
		return apperr.Upstream(msgSessionFailed, err)
	}
	c.SetCookie(cookie)
	slog.InfoContext(c.Request().Context(), "user signed in", "user_id", result.User.ID)
	return nil
}
