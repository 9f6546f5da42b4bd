// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"strings"
	"time"
)

// User is an account in the record store. Exactly one account exists per email.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Name            string    `db:"name" json:"name"`
	EmailVisibility bool      `db:"email_visibility" json:"emailVisibility"`
	Verified        bool      `db:"verified" json:"verified"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated"`
}

// DisplayName returns the name if set, otherwise the local part of the email.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
