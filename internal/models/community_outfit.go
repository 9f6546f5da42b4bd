// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"fmt"
	"time"
)

// CommunityOutfitsCollection is the record store collection holding submissions.
const CommunityOutfitsCollection = "community_outfits"

// OutfitStatus is the moderation state of a submission.
type OutfitStatus string

const (
	StatusPending  OutfitStatus = "pending"
	StatusApproved OutfitStatus = "approved"
	StatusRejected OutfitStatus = "rejected"
)

// Valid reports whether s is one of the known states.
func (s OutfitStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseOutfitStatus converts a raw value into a known status.
func ParseOutfitStatus(raw string) (OutfitStatus, error) {
	s := OutfitStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown outfit status %q", raw)
	}
	return s, nil
}

// CommunityOutfit is a user-submitted outfit photo awaiting or past moderation.
type CommunityOutfit struct { //nolint:govet // fieldalignment: readability over optimization
	ID            string       `db:"id" json:"id"`
	CharacterSlug string       `db:"character_slug" json:"character_slug"`
	OutfitName    string       `db:"outfit_name" json:"outfit_name"`
	Image         string       `db:"image" json:"image"`
	SubmitterName string       `db:"submitter_name" json:"submitter_name"`
	Status        OutfitStatus `db:"status" json:"status"`
	OwnerID       string       `db:"owner_id" json:"user"`
	CreatedAt     time.Time    `db:"created_at" json:"created"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated"`
}

// IsPublic reports whether the submission may be shown to anonymous visitors.
func (o *CommunityOutfit) IsPublic() bool {
	return o.Status == StatusApproved
}

// CommunityOutfitView is the public representation of an approved submission.
type CommunityOutfitView struct {
	SubmitterName *string `json:"submitterName"`
	ID            string  `json:"id"`
	CharacterSlug string  `json:"characterSlug"`
	OutfitName    string  `json:"outfitName"`
	ImageURL      string  `json:"imageUrl"`
}

// NewCommunityOutfitView builds the public view. An empty submitter name
// becomes nil.
func NewCommunityOutfitView(o *CommunityOutfit, imageURL string) CommunityOutfitView {
	view := CommunityOutfitView{
		ID:            o.ID,
		CharacterSlug: o.CharacterSlug,
		OutfitName:    o.OutfitName,
		ImageURL:      imageURL,
	}
	if o.SubmitterName != "" {
		name := o.SubmitterName
		view.SubmitterName = &name
	}
	return view
}
