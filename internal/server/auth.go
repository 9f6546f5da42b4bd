// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"codeberg.org/oliverandrich/disney-bounding/internal/auth"
	"codeberg.org/oliverandrich/disney-bounding/internal/config"
	"codeberg.org/oliverandrich/disney-bounding/internal/htmx"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/session"
	"github.com/labstack/echo/v4"
)

// loadSession resolves the session cookie on every request. Invalid or
// expired sessions leave the visitor anonymous.
func loadSession(resolver *session.Resolver, authCfg *config.AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)

			sess := resolver.Resolve(c.Request())
			if sess != nil {
				cc.Session = sess
				cc.IsAdmin = authCfg.IsAdmin(sess.User.Email)
				ctx := auth.WithUser(c.Request().Context(), sess.User, cc.IsAdmin)
				c.SetRequest(c.Request().WithContext(ctx))
			}

			return next(cc)
		}
	}
}

// requireAuth rejects anonymous visitors. API clients get a 401, browsers
// are sent to the sign-in page.
func requireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)
			if cc.IsAuthenticated() {
				return next(cc)
			}

			if strings.HasPrefix(c.Request().URL.Path, "/api/") || c.Request().URL.Path == "/events" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			}
			htmx.Redirect(c.Response(), c.Request(), "/auth/login")
			return nil
		}
	}
}

// requireAdmin restricts a route to moderators. Use after requireAuth.
func requireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)
			if !cc.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Moderator access required")
			}
			return next(cc)
		}
	}
}
