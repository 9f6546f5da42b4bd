// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets provides embedded static assets with content-hashed filenames.
package assets

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed esbuild-meta.json
var metaData []byte

//go:embed static
var staticFS embed.FS

var cssPath, jsPath = parseMeta(metaData)

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return cssPath
}

// JSPath returns the path to the main JS file.
func JSPath() string {
	return jsPath
}

// FileServer returns an http.Handler that serves embedded static files.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}

// esbuildMeta represents the esbuild metafile format.
type esbuildMeta struct {
	Outputs map[string]struct{} `json:"outputs"`
}

// parseMeta extracts hashed asset URLs from an esbuild metafile and falls
// back to the unhashed sources.
func parseMeta(data []byte) (css, js string) {
	css, js = DefaultCSSPath, DefaultJSPath
	if len(data) == 0 {
		return css, js
	}

	var meta esbuildMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		slog.Error("failed to parse esbuild meta", "error", err)
		return css, js
	}

	// internal/assets/static/css/styles.1a2b3c4d.css -> /static/css/styles.1a2b3c4d.css
	for outputPath := range meta.Outputs {
		idx := strings.Index(outputPath, "/static/")
		if idx < 0 {
			continue
		}
		urlPath := outputPath[idx:]
		switch {
		case strings.HasSuffix(urlPath, ".css"):
			css = urlPath
		case strings.HasSuffix(urlPath, ".js"):
			js = urlPath
		}
	}
	return css, js
}
