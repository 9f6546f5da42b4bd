// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML pages as templ components.
package templates

import (
	"context"

	"codeberg.org/oliverandrich/disney-bounding/internal/auth"
	"codeberg.org/oliverandrich/disney-bounding/internal/ctxkeys"
	"codeberg.org/oliverandrich/disney-bounding/internal/i18n"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
)

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxkeys.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return i18n.TData(ctx, messageID, data)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// CSSPath returns the path to the hashed CSS file.
func CSSPath(ctx context.Context) string {
	if path, ok := ctx.Value(ctxkeys.CSSPath{}).(string); ok && path != "" {
		return path
	}
	return "/static/css/styles.css"
}

// JSPath returns the path to the hashed JS file.
func JSPath(ctx context.Context) string {
	if path, ok := ctx.Value(ctxkeys.JSPath{}).(string); ok && path != "" {
		return path
	}
	return "/static/js/app.js"
}

// GetUser returns the authenticated user from context, or nil if not logged in.
func GetUser(ctx context.Context) *models.User {
	return auth.GetUser(ctx)
}

// IsAuthenticated returns true if a user is logged in.
func IsAuthenticated(ctx context.Context) bool {
	return auth.IsAuthenticated(ctx)
}

// IsAdmin returns true if the logged-in user may moderate.
func IsAdmin(ctx context.Context) bool {
	return auth.IsAdmin(ctx)
}
