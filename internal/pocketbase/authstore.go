// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthChangeFunc is called with the new token and record after every change.
// After Clear both are empty.
type AuthChangeFunc func(token string, record json.RawMessage)

// AuthStore holds the token and auth record of a client.
type AuthStore struct {
	mu        sync.RWMutex
	token     string
	record    json.RawMessage
	listeners map[int]AuthChangeFunc
	nextID    int
	now       func() time.Time
}

// NewAuthStore returns an empty store.
func NewAuthStore() *AuthStore {
	return &AuthStore{listeners: map[int]AuthChangeFunc{}, now: time.Now}
}

// Token returns the current token.
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Record returns the current auth record.
func (s *AuthStore) Record() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// IsValid reports whether the token is a well-formed JWT that has not yet
// expired. The signature is not checked; only the server can do that.
func (s *AuthStore) IsValid() bool {
	return TokenValid(s.Token(), s.now())
}

// TokenValid reports whether token carries an exp claim after now.
func TokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.Before(exp.Time)
}

// Save replaces token and record and notifies listeners.
func (s *AuthStore) Save(token string, record json.RawMessage) {
	s.mu.Lock()
	s.token = token
	s.record = record
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(token, record)
	}
}

// Clear removes token and record and notifies listeners.
func (s *AuthStore) Clear() {
	s.Save("", nil)
}

// OnChange registers fn and returns a function that removes it. With
// fireImmediately fn is called synchronously with the current state before
// OnChange returns.
func (s *AuthStore) OnChange(fn AuthChangeFunc, fireImmediately bool) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	token, record := s.token, s.record
	s.mu.Unlock()

	if fireImmediately {
		fn(token, record)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthStore) snapshot() []AuthChangeFunc {
	out := make([]AuthChangeFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
