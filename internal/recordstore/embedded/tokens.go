// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package embedded

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenType = "auth"

// Claims identify the account a session token belongs to.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokens creates a token manager. The secret must be at least 32 bytes.
func NewTokens(secret []byte, lifetime time.Duration) (*Tokens, error) {
	if len(secret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &Tokens{secret: secret, lifetime: lifetime, now: time.Now}, nil
}

// DecodeSecret parses a hex encoded secret.
func DecodeSecret(hexSecret string) ([]byte, error) {
	secret, err := hex.DecodeString(hexSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid token secret: %w", err)
	}
	return secret, nil
}

// Issue signs a token for the user.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
		Type: tokenType,
	})
	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the user id.
func (t *Tokens) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Type != tokenType || claims.Subject == "" {
		return "", errors.New("not an auth token")
	}
	return claims.Subject, nil
}
