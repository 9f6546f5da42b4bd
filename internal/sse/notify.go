// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"context"
	"log/slog"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
)

// OutfitEvent is the payload of outfit events.
type OutfitEvent struct {
	ID            string              `json:"id"`
	CharacterSlug string              `json:"characterSlug"`
	OutfitName    string              `json:"outfitName"`
	Status        models.OutfitStatus `json:"status"`
}

// Notifier publishes outfit events on a hub.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a notifier for hub.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// OutfitSubmitted tells connected moderators about a new submission.
func (n *Notifier) OutfitSubmitted(ctx context.Context, outfit *models.CommunityOutfit) {
	msg, ok := n.format(ctx, EventOutfitSubmitted, outfit)
	if ok {
		n.hub.SendToAdmins(msg)
	}
}

// OutfitModerated tells the owner that a submission was approved or
// rejected. Submissions without owner are skipped.
func (n *Notifier) OutfitModerated(ctx context.Context, outfit *models.CommunityOutfit) {
	if outfit.OwnerID == "" {
		return
	}
	msg, ok := n.format(ctx, EventOutfitModerated, outfit)
	if ok {
		n.hub.SendToUser(outfit.OwnerID, msg)
	}
}

func (n *Notifier) format(ctx context.Context, name string, outfit *models.CommunityOutfit) (string, bool) {
	msg, err := FormatJSONEvent(name, OutfitEvent{
		ID:            outfit.ID,
		CharacterSlug: outfit.CharacterSlug,
		OutfitName:    outfit.OutfitName,
		Status:        outfit.Status,
	})
	if err != nil {
		slog.ErrorContext(ctx, "formatting event failed", "event", name, "error", err)
		return "", false
	}
	return msg, true
}
