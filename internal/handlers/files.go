// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"

	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"github.com/labstack/echo/v4"
)

// FileOpener opens record files under the store's public view rules.
type FileOpener interface {
	OpenFile(ctx context.Context, collection, id, filename string) (io.ReadCloser, error)
}

// FileHandlers serves record files of the embedded store.
type FileHandlers struct {
	files FileOpener
}

// NewFiles creates a new FileHandlers instance.
func NewFiles(files FileOpener) *FileHandlers {
	return &FileHandlers{files: files}
}

// Serve handles GET /api/files/:collection/:id/:filename.
func (h *FileHandlers) Serve(c echo.Context) error {
	filename := c.Param("filename")
	rc, err := h.files.OpenFile(c.Request().Context(), c.Param("collection"), c.Param("id"), filename)
	if errors.Is(err, recordstore.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return streamImage(c, rc, mime.TypeByExtension(path.Ext(filename)), "public, max-age=86400")
}
