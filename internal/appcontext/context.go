// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/oliverandrich/disney-bounding/internal/htmx"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/session"
	"github.com/labstack/echo/v4"
)

// Assets holds paths to static assets.
type Assets struct {
	CSSPath string
	JSPath  string
}

// Context is a custom Echo context with typed fields for htmx, assets and
// the resolved session.
type Context struct {
	echo.Context
	Htmx    *htmx.Request
	Assets  *Assets
	Session *session.Session // nil if not authenticated
	IsAdmin bool
}

// From returns the custom context wrapped around c. Contexts that did not pass
// through the context middleware get a fresh wrapper.
func From(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return &Context{
		Context: c,
		Htmx:    htmx.ParseRequest(c.Request()),
		Assets:  &Assets{},
	}
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	if c.Session == nil {
		return nil
	}
	return c.Session.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.GetUser() != nil
}
