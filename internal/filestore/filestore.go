// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package filestore keeps uploaded files for the embedded record store.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"

	"codeberg.org/oliverandrich/disney-bounding/internal/config"
	"codeberg.org/oliverandrich/disney-bounding/internal/random"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 * 1024 * 1024

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("file not found")

// ErrUnsupportedType is returned when sniffed content is not an accepted image.
var ErrUnsupportedType = errors.New("unsupported file type")

// Store persists opaque blobs by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by the files backend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Files.Backend {
	case config.FilesDisk:
		return NewDisk(cfg.Files.Dir)
	case config.FilesS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown files backend %q", cfg.Files.Backend)
	}
}

// Key returns the storage key for a record file.
func Key(collection, recordID, filename string) string {
	return path.Join(collection, recordID, filename)
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// DetectImage sniffs head and returns the content type and extension if it
// is a JPEG, PNG or WebP image.
func DetectImage(head []byte) (contentType, ext string, err error) {
	contentType = http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return contentType, ext, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9_]+`)

// NewFileName derives a stored name of the form {base}_{random}.{ext} from
// the uploaded name.
func NewFileName(original, ext string) (string, error) {
	base := strings.ToLower(strings.TrimSuffix(path.Base(original), path.Ext(original)))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")
	if len(base) > 100 {
		base = base[:100]
	}
	if base == "" {
		base = "file"
	}

	suffix, err := random.String(10, random.Alphanumeric)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s.%s", base, suffix, ext), nil
}
