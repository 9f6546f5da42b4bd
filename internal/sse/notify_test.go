// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNotifier_OutfitModerated(t *testing.T) {
	hub := NewHub()
	owner := hub.Register("owner", false)
	other := hub.Register("other", false)
	n := NewNotifier(hub)

	n.OutfitModerated(context.Background(), &models.CommunityOutfit{
		ID:            "abc",
		CharacterSlug: "ariel",
		OutfitName:    "Mermaid",
		Status:        models.StatusApproved,
		OwnerID:       "owner",
	})

	assert.Equal(t,
		"event: outfit_moderated\ndata: {\"id\":\"abc\",\"characterSlug\":\"ariel\",\"outfitName\":\"Mermaid\",\"status\":\"approved\"}\n\n",
		receive(t, owner))
	assertSilent(t, other)
}

func TestNotifier_OutfitModerated_NoOwner(t *testing.T) {
	hub := NewHub()
	ch := hub.Register("someone", true)

	NewNotifier(hub).OutfitModerated(context.Background(), &models.CommunityOutfit{ID: "abc"})

	assertSilent(t, ch)
}

func TestNotifier_OutfitSubmitted(t *testing.T) {
	hub := NewHub()
	moderator := hub.Register("mod", true)
	submitter := hub.Register("ariel", false)

	NewNotifier(hub).OutfitSubmitted(context.Background(), &models.CommunityOutfit{
		ID:      "abc",
		Status:  models.StatusPending,
		OwnerID: "ariel",
	})

	assert.Contains(t, receive(t, moderator), "event: outfit_submitted\n")
	assertSilent(t, submitter)
}
