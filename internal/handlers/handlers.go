// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"codeberg.org/oliverandrich/disney-bounding/internal/apperr"
	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"codeberg.org/oliverandrich/disney-bounding/internal/catalog"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/outfits"
	"codeberg.org/oliverandrich/disney-bounding/internal/templates"
	"github.com/labstack/echo/v4"
)

// Handlers serves the public pages and the community outfit API.
type Handlers struct {
	outfits *outfits.Service
}

// New creates a new Handlers instance.
func New(svc *outfits.Service) *Handlers {
	return &Handlers{outfits: svc}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the character grid.
func (h *Handlers) Home(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Home(catalog.All()))
}

// Character renders a character's colour guides and the approved community
// outfits. A failing store shows empty community grids.
func (h *Handlers) Character(c echo.Context) error {
	ch, ok := catalog.BySlug(c.Param("slug"))
	if !ok {
		return echo.ErrNotFound
	}

	ctx := c.Request().Context()
	community := make(map[string][]models.CommunityOutfitView, len(ch.Outfits))
	for _, outfit := range ch.Outfits {
		views, err := h.outfits.ListApproved(ctx, ch.Slug, outfit.Name)
		if err != nil {
			slog.WarnContext(ctx, "community outfits unavailable",
				"character_slug", ch.Slug, "outfit_name", outfit.Name, "error", err)
			continue
		}
		community[outfit.Name] = views
	}

	return Render(c, http.StatusOK, templates.Character(templates.CharacterData{
		Character: ch,
		Community: community,
	}))
}

// SubmitOutfitForm handles the upload form on a character page.
func (h *Handlers) SubmitOutfitForm(c echo.Context) error {
	ch, ok := catalog.BySlug(c.Param("slug"))
	if !ok {
		return echo.ErrNotFound
	}
	outfitName := c.FormValue("outfit_name")

	input, closeImage, err := submitInput(c, ch.Slug, outfitName)
	if err != nil {
		return err
	}
	defer closeImage()

	_, err = h.outfits.Submit(c.Request().Context(), appcontext.From(c).Session, input)
	if err != nil {
		form := templates.UploadForm(ch.Slug, outfitName, templates.FormState{Error: apperr.PublicMessage(err)})
		if appcontext.From(c).Htmx.WantsPartial() {
			return Render(c, http.StatusOK, form)
		}
		return err
	}

	if appcontext.From(c).Htmx.WantsPartial() {
		return Render(c, http.StatusOK, templates.UploadForm(ch.Slug, outfitName, templates.FormState{Success: true}))
	}
	return c.Redirect(http.StatusSeeOther, templates.CharacterURL(ch.Slug)+"#"+templates.Anchor(outfitName))
}

// CreateOutfit handles POST /api/community-outfits.
func (h *Handlers) CreateOutfit(c echo.Context) error {
	input, closeImage, err := submitInput(c, c.FormValue("character_slug"), c.FormValue("outfit_name"))
	if err != nil {
		return err
	}
	defer closeImage()

	id, err := h.outfits.Submit(c.Request().Context(), appcontext.From(c).Session, input)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// ListOutfits handles GET /api/community-outfits.
func (h *Handlers) ListOutfits(c echo.Context) error {
	views, err := h.outfits.ListApproved(c.Request().Context(),
		c.QueryParam("character_slug"), c.QueryParam("outfit_name"))
	if err != nil {
		return jsonError(c, err)
	}
	if views == nil {
		views = []models.CommunityOutfitView{}
	}
	return c.JSON(http.StatusOK, views)
}

// DeleteOutfit handles DELETE /api/community-outfits/:id.
func (h *Handlers) DeleteOutfit(c echo.Context) error {
	if err := h.outfits.Delete(c.Request().Context(), appcontext.From(c).Session, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// submitInput collects the multipart fields of a submission. The returned
// func closes the uploaded file.
func submitInput(c echo.Context, slug, outfitName string) (outfits.SubmitInput, func(), error) {
	input := outfits.SubmitInput{
		CharacterSlug: slug,
		OutfitName:    outfitName,
		SubmitterName: c.FormValue("submitter_name"),
	}

	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return input, func() {}, nil
	case err != nil:
		return input, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
	}

	file, err := fh.Open()
	if err != nil {
		return input, nil, err
	}
	input.Image = imageFrom(fh, file)
	return input, func() { _ = file.Close() }, nil
}

func imageFrom(fh *multipart.FileHeader, file multipart.File) *outfits.Image {
	return &outfits.Image{
		Reader:      file,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
	}
}
