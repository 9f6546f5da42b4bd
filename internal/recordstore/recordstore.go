// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recordstore defines the record store the application persists
// accounts, one-time code challenges, sessions and outfit submissions in.
//
// Two implementations exist: a client for a remote PocketBase instance and
// an embedded SQLite store with the same collection rules.
package recordstore

import (
	"context"
	"errors"
	"io"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record already exists")
	ErrUnauthorized = errors.New("invalid or expired auth token")
	ErrAuthFailed   = errors.New("authentication failed")
	ErrForbidden    = errors.New("operation not allowed")
	ErrInvalidFile  = errors.New("invalid file")
)

// NewUser holds the fields for account creation.
type NewUser struct {
	Email           string
	Password        string
	Name            string
	EmailVisibility bool
}

// AuthResult is returned by a successful authentication.
type AuthResult struct {
	User  *models.User
	Token string
}

// File is an uploaded file handed to the store.
type File struct {
	Reader      io.Reader
	Name        string
	ContentType string
	Size        int64
}

// NewOutfit holds the fields for a submission. Status is always pending.
type NewOutfit struct {
	Image         File
	CharacterSlug string
	OutfitName    string
	SubmitterName string
	OwnerID       string
}

// OutfitFilter narrows ListOutfits. Empty fields do not filter.
type OutfitFilter struct {
	CharacterSlug string
	OutfitName    string
	Status        models.OutfitStatus
}

// Store is the record store contract.
type Store interface {
	// FindUserByEmail looks up an account with administrative privileges.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser creates an account with administrative privileges.
	// Returns ErrConflict when the email is taken.
	CreateUser(ctx context.Context, in NewUser) (*models.User, error)
	// RequestOTP issues a one-time code for the email and returns the challenge id.
	RequestOTP(ctx context.Context, email string) (string, error)
	// AuthWithOTP exchanges a challenge id and code for a session token.
	// Returns ErrAuthFailed for wrong, expired or consumed challenges.
	AuthWithOTP(ctx context.Context, otpID, code string) (*AuthResult, error)
	// LoadAuth validates a session token and returns its account.
	// Returns ErrUnauthorized when the token is not accepted.
	LoadAuth(ctx context.Context, token string) (*models.User, error)
	// CreateOutfit stores a submission on behalf of the token's account.
	CreateOutfit(ctx context.Context, token string, in NewOutfit) (*models.CommunityOutfit, error)
	// ListOutfits returns all matching submissions, newest first.
	ListOutfits(ctx context.Context, filter OutfitFilter) ([]models.CommunityOutfit, error)
	// GetOutfit retrieves a submission with administrative privileges.
	GetOutfit(ctx context.Context, id string) (*models.CommunityOutfit, error)
	// UpdateOutfitStatus sets the moderation status with administrative privileges.
	UpdateOutfitStatus(ctx context.Context, id string, status models.OutfitStatus) (*models.CommunityOutfit, error)
	// DeleteOutfit removes a submission owned by the token's account.
	DeleteOutfit(ctx context.Context, token, id string) error
	// FileURL returns the absolute URL of the submission's image.
	FileURL(outfit *models.CommunityOutfit) string
	// OpenOutfitImage opens the image of a submission in any status with
	// administrative privileges.
	OpenOutfitImage(ctx context.Context, id string) (io.ReadCloser, error)
}
