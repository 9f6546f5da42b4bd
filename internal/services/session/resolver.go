// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"context"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
)

// TokenLoader validates a store token and returns its account.
type TokenLoader interface {
	LoadAuth(ctx context.Context, token string) (*models.User, error)
}

// Session is an authenticated visitor: the account and the store token it
// was loaded from.
type Session struct {
	User  *models.User
	Token string
}

// Resolver turns the session cookie of a request into a Session.
type Resolver struct {
	manager *Manager
	store   TokenLoader
}

// NewResolver creates a resolver.
func NewResolver(manager *Manager, store TokenLoader) *Resolver {
	return &Resolver{manager: manager, store: store}
}

// Manager returns the cookie manager.
func (r *Resolver) Manager() *Manager {
	return r.manager
}

// Resolve returns the session of req, or nil when there is no valid one.
// The token is checked against the store on every call.
func (r *Resolver) Resolve(req *http.Request) *Session {
	data, err := r.manager.Parse(req)
	if err != nil {
		slog.DebugContext(req.Context(), "session cookie unreadable", "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	user, err := r.store.LoadAuth(req.Context(), data.Token)
	if err != nil {
		slog.DebugContext(req.Context(), "session token rejected", "error", err)
		return nil
	}
	return &Session{User: user, Token: data.Token}
}
