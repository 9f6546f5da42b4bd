// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/disney-bounding/internal/apperr"
	"codeberg.org/oliverandrich/disney-bounding/internal/templates"
	"github.com/labstack/echo/v4"
)

// ErrorHandler is the Echo HTTP error handler. API routes get a JSON body,
// pages get the error page.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var message string
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	} else {
		code = apperr.Status(err)
		message = apperr.PublicMessage(err)
		if code >= http.StatusInternalServerError {
			slog.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
		}
	}
	if message == "" {
		message = http.StatusText(code)
	}

	var writeErr error
	switch {
	case c.Request().Method == http.MethodHead:
		writeErr = c.NoContent(code)
	case isAPI(c):
		writeErr = c.JSON(code, map[string]string{"error": message})
	default:
		writeErr = renderError(c, code, message)
	}
	if writeErr != nil {
		slog.ErrorContext(c.Request().Context(), "failed to write error response", "error", writeErr)
	}
}

// renderError renders the error page. Server errors and missing pages use
// translated generic messages.
func renderError(c echo.Context, code int, message string) error {
	ctx := c.Request().Context()
	switch {
	case code == http.StatusNotFound:
		message = templates.T(ctx, "error_not_found")
	case code >= http.StatusInternalServerError:
		message = templates.T(ctx, "error_generic")
	}

	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}
	return Render(c, code, templates.ErrorPage(code, title, message))
}
