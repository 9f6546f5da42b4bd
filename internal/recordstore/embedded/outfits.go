// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package embedded

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"codeberg.org/oliverandrich/disney-bounding/internal/filestore"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/repository"
	"github.com/google/uuid"
)

// CreateOutfit stores the image and the submission on behalf of the token's
// account. The status is always pending.
func (s *Store) CreateOutfit(ctx context.Context, token string, in recordstore.NewOutfit) (*models.CommunityOutfit, error) {
	user, err := s.LoadAuth(ctx, token)
	if err != nil {
		return nil, err
	}
	if in.OwnerID != "" && in.OwnerID != user.ID {
		return nil, fmt.Errorf("%w: owner must be the authenticated account", recordstore.ErrForbidden)
	}
	if in.Image.Reader == nil {
		return nil, fmt.Errorf("%w: missing image", recordstore.ErrInvalidFile)
	}
	if in.Image.Size > filestore.MaxImageSize {
		return nil, fmt.Errorf("%w: image too large", recordstore.ErrInvalidFile)
	}

	br := bufio.NewReaderSize(io.LimitReader(in.Image.Reader, filestore.MaxImageSize+1), 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read image: %w", err)
	}
	contentType, ext, err := filestore.DetectImage(head)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recordstore.ErrInvalidFile, err)
	}

	filename, err := filestore.NewFileName(in.Image.Name, ext)
	if err != nil {
		return nil, err
	}

	outfit := &models.CommunityOutfit{
		ID:            uuid.NewString(),
		CharacterSlug: in.CharacterSlug,
		OutfitName:    in.OutfitName,
		Image:         filename,
		SubmitterName: in.SubmitterName,
		Status:        models.StatusPending,
		OwnerID:       user.ID,
	}

	key := filestore.Key(models.CommunityOutfitsCollection, outfit.ID, filename)
	counter := &countingReader{r: br}
	if err := s.files.Put(ctx, key, counter, in.Image.Size, contentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if counter.n > filestore.MaxImageSize {
		s.removeFile(ctx, key)
		return nil, fmt.Errorf("%w: image too large", recordstore.ErrInvalidFile)
	}

	if err := s.repo.CreateCommunityOutfit(ctx, outfit); err != nil {
		s.removeFile(ctx, key)
		return nil, err
	}

	return outfit, nil
}

func (s *Store) ListOutfits(ctx context.Context, filter recordstore.OutfitFilter) ([]models.CommunityOutfit, error) {
	return s.repo.ListCommunityOutfits(ctx, repository.OutfitQuery{
		CharacterSlug: filter.CharacterSlug,
		OutfitName:    filter.OutfitName,
		Status:        filter.Status,
	})
}

func (s *Store) GetOutfit(ctx context.Context, id string) (*models.CommunityOutfit, error) {
	outfit, err := s.repo.GetCommunityOutfit(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, recordstore.ErrNotFound
	}
	return outfit, err
}

func (s *Store) UpdateOutfitStatus(ctx context.Context, id string, status models.OutfitStatus) (*models.CommunityOutfit, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown outfit status %q", status)
	}
	if err := s.repo.UpdateCommunityOutfitStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, recordstore.ErrNotFound
		}
		return nil, err
	}
	return s.GetOutfit(ctx, id)
}

// DeleteOutfit removes a submission and its image. Only the owner may delete.
func (s *Store) DeleteOutfit(ctx context.Context, token, id string) error {
	user, err := s.LoadAuth(ctx, token)
	if err != nil {
		return err
	}

	outfit, err := s.GetOutfit(ctx, id)
	if err != nil {
		return err
	}
	if outfit.OwnerID == "" || outfit.OwnerID != user.ID {
		return recordstore.ErrForbidden
	}

	if err := s.repo.DeleteCommunityOutfit(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return recordstore.ErrNotFound
		}
		return err
	}
	s.removeFile(ctx, filestore.Key(models.CommunityOutfitsCollection, outfit.ID, outfit.Image))
	return nil
}

func (s *Store) FileURL(outfit *models.CommunityOutfit) string {
	return fmt.Sprintf("%s/api/files/%s/%s/%s", s.baseURL, models.CommunityOutfitsCollection, outfit.ID, outfit.Image)
}

// OpenFile returns a record file if the collection's view rule allows
// anonymous access, which for outfits means approved only.
func (s *Store) OpenFile(ctx context.Context, collection, id, filename string) (io.ReadCloser, error) {
	if collection != models.CommunityOutfitsCollection {
		return nil, recordstore.ErrNotFound
	}
	outfit, err := s.GetOutfit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !outfit.IsPublic() || outfit.Image != filename {
		return nil, recordstore.ErrNotFound
	}
	return s.openImage(ctx, outfit)
}

// OpenOutfitImage opens the image of a submission in any status.
func (s *Store) OpenOutfitImage(ctx context.Context, id string) (io.ReadCloser, error) {
	outfit, err := s.GetOutfit(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openImage(ctx, outfit)
}

func (s *Store) openImage(ctx context.Context, outfit *models.CommunityOutfit) (io.ReadCloser, error) {
	rc, err := s.files.Open(ctx, filestore.Key(models.CommunityOutfitsCollection, outfit.ID, outfit.Image))
	if errors.Is(err, filestore.ErrNotFound) {
		return nil, recordstore.ErrNotFound
	}
	return rc, err
}

func (s *Store) removeFile(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete stored file", "key", key, "error", err)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
