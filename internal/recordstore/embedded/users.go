// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package embedded

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/oliverandrich/disney-bounding/internal/database"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, recordstore.ErrNotFound
	}
	return user, err
}

func (s *Store) CreateUser(ctx context.Context, in recordstore.NewUser) (*models.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:           in.Email,
		Name:            in.Name,
		EmailVisibility: in.EmailVisibility,
		PasswordHash:    string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, recordstore.ErrConflict
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) LoadAuth(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, recordstore.ErrUnauthorized
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recordstore.ErrUnauthorized, err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, recordstore.ErrUnauthorized
	}
	return user, err
}
