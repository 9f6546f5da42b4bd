// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"encoding/json"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
)

// UsersCollection is the auth collection holding accounts.
const UsersCollection = "users"

// DateTime decodes PocketBase datetime strings.
type DateTime struct {
	time.Time
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05Z07:00", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid pocketbase datetime %q", s)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.UTC().Format(DateLayout))
}

type userRecord struct {
	Created         DateTime `json:"created"`
	Updated         DateTime `json:"updated"`
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	EmailVisibility bool     `json:"emailVisibility"`
	Verified        bool     `json:"verified"`
}

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:              r.ID,
		Email:           r.Email,
		Name:            r.Name,
		EmailVisibility: r.EmailVisibility,
		Verified:        r.Verified,
		CreatedAt:       r.Created.Time,
		UpdatedAt:       r.Updated.Time,
	}
}

type outfitRecord struct {
	Created       DateTime `json:"created"`
	Updated       DateTime `json:"updated"`
	ID            string   `json:"id"`
	CharacterSlug string   `json:"character_slug"`
	OutfitName    string   `json:"outfit_name"`
	Image         string   `json:"image"`
	SubmitterName string   `json:"submitter_name"`
	Status        string   `json:"status"`
	Owner         string   `json:"user"`
}

func (r *outfitRecord) toModel() *models.CommunityOutfit {
	return &models.CommunityOutfit{
		ID:            r.ID,
		CharacterSlug: r.CharacterSlug,
		OutfitName:    r.OutfitName,
		Image:         r.Image,
		SubmitterName: r.SubmitterName,
		Status:        models.OutfitStatus(r.Status),
		OwnerID:       r.Owner,
		CreatedAt:     r.Created.Time,
		UpdatedAt:     r.Updated.Time,
	}
}

func decodeUser(raw json.RawMessage) (*models.User, error) {
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return rec.toModel(), nil
}

func decodeOutfit(raw json.RawMessage) (*models.CommunityOutfit, error) {
	var rec outfitRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode outfit record: %w", err)
	}
	return rec.toModel(), nil
}
