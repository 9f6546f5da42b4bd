// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/database"
	"codeberg.org/oliverandrich/disney-bounding/internal/filestore"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore/embedded"
	"codeberg.org/oliverandrich/disney-bounding/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTestUser creates a test user in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:           email,
		EmailVisibility: true,
		PasswordHash:    "not-a-real-hash",
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewTestOutfit creates a submission with the given status.
func NewTestOutfit(t *testing.T, repo *repository.Repository, slug, outfitName string, status models.OutfitStatus, ownerID string) *models.CommunityOutfit {
	t.Helper()
	outfit := &models.CommunityOutfit{
		CharacterSlug: slug,
		OutfitName:    outfitName,
		Image:         "photo_abc123.jpg",
		Status:        status,
		OwnerID:       ownerID,
	}
	require.NoError(t, repo.CreateCommunityOutfit(context.Background(), outfit))
	return outfit
}

// PNGImage is the smallest byte sequence sniffed as image/png.
var PNGImage = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

// CodeMailer records sign-in codes instead of sending them.
type CodeMailer struct {
	codes map[string]string
	mu    sync.Mutex
}

func (m *CodeMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[to] = code
	return nil
}

// Code returns the last code sent to email.
func (m *CodeMailer) Code(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[email]
	require.True(t, ok, "no code sent to %s", email)
	return code
}

// TestStore is an embedded record store backed by in-memory SQLite and a
// temporary directory.
type TestStore struct {
	*embedded.Store
	Repo   *repository.Repository
	Mailer *CodeMailer
}

// NewTestStore creates an embedded record store for tests. File URLs use
// http://localhost:8080 as base.
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()
	_, repo := NewTestDB(t)
	files, err := filestore.NewDisk(t.TempDir())
	require.NoError(t, err)
	mailer := &CodeMailer{}

	store, err := embedded.New(embedded.Options{
		Repo:        repo,
		Files:       files,
		Mailer:      mailer,
		TokenSecret: bytes.Repeat([]byte("k"), 32),
		TokenTTL:    time.Hour,
		BaseURL:     "http://localhost:8080",
	})
	require.NoError(t, err)

	return &TestStore{Store: store, Repo: repo, Mailer: mailer}
}
