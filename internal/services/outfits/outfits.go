// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package outfits implements community outfit submissions and their
// moderation.
package outfits

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"strings"

	"codeberg.org/oliverandrich/disney-bounding/internal/apperr"
	"codeberg.org/oliverandrich/disney-bounding/internal/filestore"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/session"
)

const (
	msgUnauthorized      = "Authentication required"
	msgSlugRequired      = "character_slug is required"
	msgOutfitRequired    = "outfit_name is required"
	msgImageRequired     = "image is required"
	msgImageType         = "Image must be a JPEG, PNG, or WebP"
	msgImageSize         = "Image must be smaller than 5 MB"
	msgSubmitFailed      = "Failed to submit outfit"
	msgListFailed        = "Failed to load outfits"
	msgNotFound          = "Outfit not found"
	msgUpdateFailed      = "Failed to update outfit"
	msgDeleteFailed      = "Failed to delete outfit"
	msgStatusInvalid     = "status must be approved or rejected"
	msgListStatusInvalid = "status must be pending, approved or rejected"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Store is the part of the record store used for submissions.
type Store interface {
	CreateOutfit(ctx context.Context, token string, in recordstore.NewOutfit) (*models.CommunityOutfit, error)
	ListOutfits(ctx context.Context, filter recordstore.OutfitFilter) ([]models.CommunityOutfit, error)
	UpdateOutfitStatus(ctx context.Context, id string, status models.OutfitStatus) (*models.CommunityOutfit, error)
	DeleteOutfit(ctx context.Context, token, id string) error
	OpenOutfitImage(ctx context.Context, id string) (io.ReadCloser, error)
	FileURL(outfit *models.CommunityOutfit) string
}

// Notifier is told about submissions and moderation decisions.
type Notifier interface {
	OutfitSubmitted(ctx context.Context, outfit *models.CommunityOutfit)
	OutfitModerated(ctx context.Context, outfit *models.CommunityOutfit)
}

// Image is an uploaded image file.
type Image struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// SubmitInput holds the submission form.
type SubmitInput struct {
	Image         *Image
	CharacterSlug string
	OutfitName    string
	SubmitterName string
}

// Service handles outfit submissions.
type Service struct {
	store    Store
	notifier Notifier
}

// NewService creates an outfit service. notifier may be nil.
func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Submit validates the form and stores it as a pending submission owned by
// the session's account. It returns the new id.
func (s *Service) Submit(ctx context.Context, sess *session.Session, in SubmitInput) (string, error) {
	if sess == nil || sess.User == nil {
		return "", apperr.Unauthorized(msgUnauthorized)
	}

	slug := strings.TrimSpace(in.CharacterSlug)
	if slug == "" {
		return "", apperr.InvalidInput(msgSlugRequired)
	}
	outfitName := strings.TrimSpace(in.OutfitName)
	if outfitName == "" {
		return "", apperr.InvalidInput(msgOutfitRequired)
	}
	if in.Image == nil || in.Image.Reader == nil {
		return "", apperr.InvalidInput(msgImageRequired)
	}
	contentType := normalizeContentType(in.Image.ContentType)
	if !allowedImageTypes[contentType] {
		return "", apperr.InvalidInput(msgImageType)
	}
	if in.Image.Size > filestore.MaxImageSize {
		return "", apperr.InvalidInput(msgImageSize)
	}

	outfit, err := s.store.CreateOutfit(ctx, sess.Token, recordstore.NewOutfit{
		CharacterSlug: slug,
		OutfitName:    outfitName,
		SubmitterName: strings.TrimSpace(in.SubmitterName),
		OwnerID:       sess.User.ID,
		Image: recordstore.File{
			Reader:      in.Image.Reader,
			Name:        in.Image.Filename,
			ContentType: contentType,
			Size:        in.Image.Size,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "storing outfit submission failed",
			"user_id", sess.User.ID, "character_slug", slug, "error", err)
		return "", apperr.Upstream(msgSubmitFailed, err)
	}

	slog.InfoContext(ctx, "outfit submitted", "id", outfit.ID, "user_id", sess.User.ID)
	if s.notifier != nil {
		s.notifier.OutfitSubmitted(ctx, outfit)
	}
	return outfit.ID, nil
}

func normalizeContentType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

// ListApproved returns the approved submissions for one outfit of a
// character, newest first.
func (s *Service) ListApproved(ctx context.Context, characterSlug, outfitName string) ([]models.CommunityOutfitView, error) {
	characterSlug = strings.TrimSpace(characterSlug)
	if characterSlug == "" {
		return nil, apperr.InvalidInput(msgSlugRequired)
	}
	outfitName = strings.TrimSpace(outfitName)
	if outfitName == "" {
		return nil, apperr.InvalidInput(msgOutfitRequired)
	}

	outfits, err := s.store.ListOutfits(ctx, recordstore.OutfitFilter{
		CharacterSlug: characterSlug,
		OutfitName:    outfitName,
		Status:        models.StatusApproved,
	})
	if err != nil {
		return nil, apperr.Upstream(msgListFailed, err)
	}

	views := make([]models.CommunityOutfitView, 0, len(outfits))
	for i := range outfits {
		outfit := &outfits[i]
		if !outfit.IsPublic() {
			continue
		}
		views = append(views, models.NewCommunityOutfitView(outfit, s.store.FileURL(outfit)))
	}
	return views, nil
}

// ListForModeration returns all submissions in status, newest first. An
// empty status lists pending submissions.
func (s *Service) ListForModeration(ctx context.Context, status string) ([]models.CommunityOutfit, error) {
	if status == "" {
		status = string(models.StatusPending)
	}
	parsed, err := models.ParseOutfitStatus(status)
	if err != nil {
		return nil, apperr.InvalidInput(msgListStatusInvalid)
	}

	outfits, err := s.store.ListOutfits(ctx, recordstore.OutfitFilter{Status: parsed})
	if err != nil {
		return nil, apperr.Upstream(msgListFailed, err)
	}
	return outfits, nil
}

// SetStatus approves or rejects a submission and notifies its owner.
func (s *Service) SetStatus(ctx context.Context, id string, status models.OutfitStatus) (*models.CommunityOutfit, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, apperr.InvalidInput(msgStatusInvalid)
	}

	outfit, err := s.store.UpdateOutfitStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		slog.ErrorContext(ctx, "updating outfit status failed", "id", id, "status", status, "error", err)
		return nil, apperr.Upstream(msgUpdateFailed, err)
	}

	slog.InfoContext(ctx, "outfit moderated", "id", outfit.ID, "status", outfit.Status)
	if s.notifier != nil {
		s.notifier.OutfitModerated(ctx, outfit)
	}
	return outfit, nil
}

// Delete removes a submission owned by the session's account.
func (s *Service) Delete(ctx context.Context, sess *session.Session, id string) error {
	if sess == nil || sess.User == nil {
		return apperr.Unauthorized(msgUnauthorized)
	}

	err := s.store.DeleteOutfit(ctx, sess.Token, id)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "outfit deleted", "id", id, "user_id", sess.User.ID)
		return nil
	case errors.Is(err, recordstore.ErrNotFound):
		return apperr.NotFound(msgNotFound)
	case errors.Is(err, recordstore.ErrForbidden):
		return apperr.Forbidden(msgNotFound)
	case errors.Is(err, recordstore.ErrUnauthorized):
		return apperr.Unauthorized(msgUnauthorized)
	default:
		slog.ErrorContext(ctx, "deleting outfit failed", "id", id, "error", err)
		return apperr.Upstream(msgDeleteFailed, err)
	}
}

// OpenImage opens the image of any submission for moderators.
func (s *Service) OpenImage(ctx context.Context, id string) (io.ReadCloser, error) {
	rc, err := s.store.OpenOutfitImage(ctx, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Upstream(msgListFailed, err)
	}
	return rc, nil
}
