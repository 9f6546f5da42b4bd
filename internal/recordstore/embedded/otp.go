// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package embedded

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/random"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/repository"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/email"
	"github.com/google/uuid"
)

// RequestOTP mails a code to the account's address. Unknown addresses get a
// challenge id that can never be confirmed so callers cannot enumerate accounts.
func (s *Store) RequestOTP(ctx context.Context, address string) (string, error) {
	if n, err := s.repo.DeleteExpiredOTPs(ctx, s.now()); err != nil {
		slog.Warn("failed to delete expired otps", "error", err)
	} else if n > 0 {
		slog.Debug("deleted expired otps", "count", n)
	}

	user, err := s.repo.GetUserByEmail(ctx, address)
	if errors.Is(err, repository.ErrNotFound) {
		return uuid.NewString(), nil
	}
	if err != nil {
		return "", err
	}

	code, err := random.Code(s.otpLength)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	otp := &models.OTP{
		UserID:    user.ID,
		CodeHash:  email.HashCode(code),
		ExpiresAt: s.now().Add(s.otpTTL),
	}
	if err := s.repo.CreateOTP(ctx, otp); err != nil {
		return "", err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, code, s.otpTTL); err != nil {
		return "", err
	}

	return otp.ID, nil
}

// AuthWithOTP consumes the challenge and issues a token. A successful sign-in
// discards the account's other open challenges.
func (s *Store) AuthWithOTP(ctx context.Context, otpID, code string) (*recordstore.AuthResult, error) {
	otp, err := s.repo.GetOTP(ctx, otpID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, recordstore.ErrAuthFailed
	}
	if err != nil {
		return nil, err
	}

	if otp.Expired(s.now()) {
		_ = s.repo.ConsumeOTP(ctx, otp.ID, otp.CodeHash)
		return nil, fmt.Errorf("%w: code expired", recordstore.ErrAuthFailed)
	}

	hash := email.HashCode(code)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(otp.CodeHash)) != 1 {
		return nil, fmt.Errorf("%w: code mismatch", recordstore.ErrAuthFailed)
	}

	if err := s.repo.ConsumeOTP(ctx, otp.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: code already used", recordstore.ErrAuthFailed)
		}
		return nil, err
	}

	if err := s.repo.DeleteUserOTPs(ctx, otp.UserID); err != nil {
		slog.Warn("failed to delete open otps", "user_id", otp.UserID, "error", err)
	}

	if err := s.repo.MarkUserVerified(ctx, otp.UserID); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, otp.UserID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &recordstore.AuthResult{User: user, Token: token}, nil
}
