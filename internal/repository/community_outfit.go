// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"github.com/google/uuid"
)

const outfitColumns = `id, character_slug, outfit_name, image, submitter_name, status,
	COALESCE(owner_id, '') AS owner_id, created_at, updated_at`

// OutfitQuery narrows ListCommunityOutfits. Empty fields do not filter.
type OutfitQuery struct {
	CharacterSlug string
	OutfitName    string
	Status        models.OutfitStatus
	OwnerID       string
}

// CreateCommunityOutfit inserts the submission, assigning ID and timestamps.
func (r *Repository) CreateCommunityOutfit(ctx context.Context, outfit *models.CommunityOutfit) error {
	now := time.Now().UTC()
	if outfit.ID == "" {
		outfit.ID = uuid.NewString()
	}
	outfit.CreatedAt = now
	outfit.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO community_outfits
			(id, character_slug, outfit_name, image, submitter_name, status, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outfit.ID, outfit.CharacterSlug, outfit.OutfitName, outfit.Image, outfit.SubmitterName,
		outfit.Status, nullable(outfit.OwnerID), outfit.CreatedAt, outfit.UpdatedAt)
	return err
}

// GetCommunityOutfit retrieves a submission by ID.
func (r *Repository) GetCommunityOutfit(ctx context.Context, id string) (*models.CommunityOutfit, error) {
	var outfit models.CommunityOutfit
	err := r.db.GetContext(ctx, &outfit, `SELECT `+outfitColumns+` FROM community_outfits WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &outfit, nil
}

// ListCommunityOutfits returns matching submissions, newest first.
func (r *Repository) ListCommunityOutfits(ctx context.Context, q OutfitQuery) ([]models.CommunityOutfit, error) {
	var (
		where []string
		args  []any
	)
	if q.CharacterSlug != "" {
		where = append(where, "character_slug = ?")
		args = append(args, q.CharacterSlug)
	}
	if q.OutfitName != "" {
		where = append(where, "outfit_name = ?")
		args = append(args, q.OutfitName)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, q.OwnerID)
	}

	query := `SELECT ` + outfitColumns + ` FROM community_outfits`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	outfits := []models.CommunityOutfit{}
	if err := r.db.SelectContext(ctx, &outfits, query, args...); err != nil {
		return nil, err
	}
	return outfits, nil
}

// UpdateCommunityOutfitStatus sets the moderation status.
func (r *Repository) UpdateCommunityOutfitStatus(ctx context.Context, id string, status models.OutfitStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE community_outfits SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
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

// DeleteCommunityOutfit removes a submission.
func (r *Repository) DeleteCommunityOutfit(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM community_outfits WHERE id = ?`, id)
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
