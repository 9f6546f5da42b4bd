// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package otp implements passwordless sign-in with emailed one-time codes.
package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/disney-bounding/internal/apperr"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"github.com/google/uuid"
)

const (
	msgEmailRequired = "email is required"
	msgSendFailed    = "Failed to send code"
	msgCodeRequired  = "otpId and code are required"
	msgInvalidCode   = "Invalid or expired code"
	msgVerifyFailed  = "Failed to verify code"
)

// Store is the part of the record store the sign-in flow uses.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, in recordstore.NewUser) (*models.User, error)
	RequestOTP(ctx context.Context, email string) (string, error)
	AuthWithOTP(ctx context.Context, otpID, code string) (*recordstore.AuthResult, error)
}

// Service requests and confirms one-time codes.
type Service struct {
	store Store
}

// NewService creates a sign-in service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Request sends a code to email and returns the challenge id. An account is
// created on first use; it never gets a usable password.
func (s *Service) Request(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperr.InvalidInput(msgEmailRequired)
	}

	if err := s.ensureAccount(ctx, email); err != nil {
		slog.ErrorContext(ctx, "account provisioning failed", "email", email, "error", err)
		return "", apperr.Upstream(msgSendFailed, err)
	}

	otpID, err := s.store.RequestOTP(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "requesting sign-in code failed", "email", email, "error", err)
		return "", apperr.Upstream(msgSendFailed, err)
	}
	return otpID, nil
}

// ensureAccount creates the account for email unless it exists. Losing the
// create race against a concurrent request counts as success.
func (s *Service) ensureAccount(ctx context.Context, email string) error {
	_, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, recordstore.ErrNotFound) {
		return fmt.Errorf("find account: %w", err)
	}

	_, err = s.store.CreateUser(ctx, recordstore.NewUser{
		Email:           email,
		Password:        uuid.NewString(),
		EmailVisibility: true,
	})
	switch {
	case err == nil:
		slog.InfoContext(ctx, "account created", "email", email)
		return nil
	case errors.Is(err, recordstore.ErrConflict):
		return nil
	default:
		return fmt.Errorf("create account: %w", err)
	}
}

// Confirm exchanges a challenge id and code for a session token. Wrong,
// expired and used codes are indistinguishable to the caller.
func (s *Service) Confirm(ctx context.Context, otpID, code string) (*recordstore.AuthResult, error) {
	otpID = strings.TrimSpace(otpID)
	code = strings.TrimSpace(code)
	if otpID == "" || code == "" {
		return nil, apperr.InvalidInput(msgCodeRequired)
	}

	result, err := s.store.AuthWithOTP(ctx, otpID, code)
	if err != nil {
		if errors.Is(err, recordstore.ErrAuthFailed) {
			return nil, apperr.AuthFailed(msgInvalidCode, err)
		}
		slog.ErrorContext(ctx, "confirming sign-in code failed", "error", err)
		return nil, apperr.Upstream(msgVerifyFailed, err)
	}
	return result, nil
}
