// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"github.com/google/uuid"
)

// CreateOTP stores a new challenge, assigning its ID.
func (r *Repository) CreateOTP(ctx context.Context, otp *models.OTP) error {
	otp.ID = uuid.NewString()
	otp.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otps (id, user_id, code_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		otp.ID, otp.UserID, otp.CodeHash, otp.ExpiresAt.UTC(), otp.CreatedAt)
	return err
}

// GetOTP retrieves a challenge by ID.
func (r *Repository) GetOTP(ctx context.Context, id string) (*models.OTP, error) {
	var otp models.OTP
	if err := r.db.GetContext(ctx, &otp, `SELECT * FROM otps WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &otp, nil
}

// ConsumeOTP deletes the challenge if it still holds codeHash. It returns
// ErrNotFound when another request consumed it first.
func (r *Repository) ConsumeOTP(ctx context.Context, id, codeHash string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE id = ? AND code_hash = ?`, id, codeHash)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUserOTPs removes all open challenges for a user.
func (r *Repository) DeleteUserOTPs(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredOTPs removes challenges that expired at or before now.
// Timestamps are compared as julian days, since their text form carries a
// variable number of fractional digits.
func (r *Repository) DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM otps WHERE julianday(expires_at) <= julianday(?)`, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
