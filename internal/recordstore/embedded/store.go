// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package embedded implements the record store on a local SQLite database.
//
// It enforces the same collection rules as the remote store: outfits are
// listed publicly only when approved, creating one requires an auth token,
// deleting one is restricted to its owner and accounts are created only
// with administrative privileges.
package embedded

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/filestore"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/repository"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/email"
)

// Options configures a Store.
type Options struct { //nolint:govet // fieldalignment not critical
	Repo        *repository.Repository
	Files       filestore.Store
	Mailer      email.Sender
	TokenSecret []byte
	TokenTTL    time.Duration
	OTPLength   int
	OTPTTL      time.Duration
	BaseURL     string
}

// Store is the embedded record store.
type Store struct {
	repo      *repository.Repository
	files     filestore.Store
	mailer    email.Sender
	tokens    *Tokens
	baseURL   string
	otpLength int
	otpTTL    time.Duration
	now       func() time.Time
}

var _ recordstore.Store = (*Store)(nil)

// New creates the store. An empty token secret is replaced by a random one,
// which invalidates all sessions on restart.
func New(opts Options) (*Store, error) {
	if opts.Repo == nil || opts.Files == nil || opts.Mailer == nil {
		return nil, errors.New("embedded store needs a repository, a file store and a mailer")
	}

	secret := opts.TokenSecret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		slog.Warn("auth token secret auto-generated, sessions will not survive restarts")
	}

	tokens, err := NewTokens(secret, opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	if opts.OTPLength <= 0 {
		opts.OTPLength = 6
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}

	return &Store{
		repo:      opts.Repo,
		files:     opts.Files,
		mailer:    opts.Mailer,
		tokens:    tokens,
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		otpLength: opts.OTPLength,
		otpTTL:    opts.OTPTTL,
		now:       time.Now,
	}, nil
}

// SetClock replaces the time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
	s.tokens.now = now
}
