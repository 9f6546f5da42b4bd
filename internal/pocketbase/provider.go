// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Scope tells the Provider how long a client may live.
type Scope int

const (
	// ScopeRequest returns a new client with empty auth state. Use it for
	// anything that acts on behalf of a visitor so auth never leaks across
	// requests.
	ScopeRequest Scope = iota
	// ScopeShared returns the process-wide client.
	ScopeShared
)

func (s Scope) String() string {
	if s == ScopeShared {
		return "shared"
	}
	return "request"
}

// Provider hands out clients for one PocketBase instance.
type Provider struct {
	sharedHook AuthChangeFunc
	shared     *Client
	httpClient *http.Client
	baseURL    string

	superuserEmail    string
	superuserPassword string

	sharedOnce sync.Once
	adminMu    sync.Mutex
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithProviderHTTPClient sets the HTTP client shared by all clients.
func WithProviderHTTPClient(hc *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = hc
	}
}

// WithSuperuser sets the credentials for the admin handle.
func WithSuperuser(email, password string) ProviderOption {
	return func(p *Provider) {
		p.superuserEmail = email
		p.superuserPassword = password
	}
}

// WithSharedAuthHook registers fn on the shared client's auth store when the
// shared client is constructed.
func WithSharedAuthHook(fn AuthChangeFunc) ProviderOption {
	return func(p *Provider) {
		p.sharedHook = fn
	}
}

// NewProvider creates a provider for baseURL.
func NewProvider(baseURL string, opts ...ProviderOption) *Provider {
	p := &Provider{baseURL: baseURL}
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return p
}

// Client returns a client for scope. ScopeRequest always yields a fresh
// client; ScopeShared yields the same client on every call, constructing it
// on first use with the auth hook attached exactly once.
func (p *Provider) Client(scope Scope) *Client {
	if scope == ScopeShared {
		p.sharedOnce.Do(func() {
			p.shared = NewClient(p.baseURL, WithHTTPClient(p.httpClient))
			if p.sharedHook != nil {
				p.shared.AuthStore().OnChange(p.sharedHook, false)
			}
		})
		return p.shared
	}
	return NewClient(p.baseURL, WithHTTPClient(p.httpClient))
}

// WithToken returns a request-scoped client carrying token.
func (p *Provider) WithToken(token string) *Client {
	c := p.Client(ScopeRequest)
	c.AuthStore().Save(token, nil)
	return c
}

// Admin returns the shared client signed in as superuser, signing in again
// when the stored token is missing or expired.
func (p *Provider) Admin(ctx context.Context) (*Client, error) {
	c := p.Client(ScopeShared)

	p.adminMu.Lock()
	defer p.adminMu.Unlock()

	if c.AuthStore().IsValid() {
		return c, nil
	}
	if p.superuserEmail == "" || p.superuserPassword == "" {
		return nil, fmt.Errorf("pocketbase superuser credentials are not configured")
	}
	if _, err := c.Collection(SuperusersCollection).AuthWithPassword(ctx, p.superuserEmail, p.superuserPassword); err != nil {
		return nil, fmt.Errorf("superuser auth: %w", err)
	}
	return c, nil
}

// ResetAdmin clears the shared superuser session so the next Admin call
// signs in again. Registered auth hooks see an empty token.
func (p *Provider) ResetAdmin() {
	c := p.Client(ScopeShared)

	p.adminMu.Lock()
	defer p.adminMu.Unlock()
	c.AuthStore().Clear()
}
