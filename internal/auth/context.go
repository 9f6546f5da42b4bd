// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/oliverandrich/disney-bounding/internal/ctxkeys"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
)

// WithUser stores the signed-in account and its moderator flag in ctx.
func WithUser(ctx context.Context, user *models.User, admin bool) context.Context {
	ctx = context.WithValue(ctx, ctxkeys.User{}, user)
	return context.WithValue(ctx, ctxkeys.Admin{}, admin && user != nil)
}

// GetUser returns the authenticated user from the context, or nil if not authenticated.
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(ctxkeys.User{}).(*models.User); ok {
		return user
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}

// IsAdmin returns true if the authenticated user may moderate submissions.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(ctxkeys.Admin{}).(bool)
	return admin
}
