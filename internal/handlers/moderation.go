// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/outfits"
	"codeberg.org/oliverandrich/disney-bounding/internal/templates"
	"github.com/labstack/echo/v4"
)

// ModerationHandlers serves the review queue. All routes require a moderator.
type ModerationHandlers struct {
	outfits *outfits.Service
}

// NewModeration creates a new ModerationHandlers instance.
func NewModeration(svc *outfits.Service) *ModerationHandlers {
	return &ModerationHandlers{outfits: svc}
}

// List renders submissions with the status given by ?status=, pending by default.
func (h *ModerationHandlers) List(c echo.Context) error {
	status := c.QueryParam("status")
	list, err := h.outfits.ListForModeration(c.Request().Context(), status)
	if err != nil {
		return err
	}
	if status == "" {
		status = string(models.StatusPending)
	}
	return Render(c, http.StatusOK, templates.Moderation(models.OutfitStatus(status), list))
}

// Approve makes a submission public.
func (h *ModerationHandlers) Approve(c echo.Context) error {
	return h.setStatus(c, models.StatusApproved)
}

// Reject hides a submission.
func (h *ModerationHandlers) Reject(c echo.Context) error {
	return h.setStatus(c, models.StatusRejected)
}

func (h *ModerationHandlers) setStatus(c echo.Context, status models.OutfitStatus) error {
	outfit, err := h.outfits.SetStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}
	if appcontext.From(c).Htmx.IsHtmx {
		return Render(c, http.StatusOK, templates.ModerationRow(outfit))
	}
	return c.Redirect(http.StatusSeeOther, "/admin/outfits")
}

// Image streams a submission's photo regardless of its status.
func (h *ModerationHandlers) Image(c echo.Context) error {
	rc, err := h.outfits.OpenImage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return streamImage(c, rc, "", "private, no-store")
}
