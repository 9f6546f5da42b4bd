// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

package assets

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMeta(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantCSS string
		wantJS  string
	}{
		{"empty", "", DefaultCSSPath, DefaultJSPath},
		{"no outputs", `{"outputs":{}}`, DefaultCSSPath, DefaultJSPath},
		{"invalid json", `{`, DefaultCSSPath, DefaultJSPath},
		{
			name:    "hashed outputs",
			data:    `{"outputs":{"internal/assets/static/css/styles.1a2b3c4d.css":{},"internal/assets/static/js/app.5e6f7a8b.js":{}}}`,
			wantCSS: "/static/css/styles.1a2b3c4d.css",
			wantJS:  "/static/js/app.5e6f7a8b.js",
		},
		{
			name:    "outputs outside static are ignored",
			data:    `{"outputs":{"dist/other.css":{}}}`,
			wantCSS: DefaultCSSPath,
			wantJS:  DefaultJSPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			css, js := parseMeta([]byte(tt.data))
			assert.Equal(t, tt.wantCSS, css)
			assert.Equal(t, tt.wantJS, js)
		})
	}
}

func TestFileServer(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/css/styles.css", nil)

	FileServer().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".swatch")
}

func TestPaths(t *testing.T) {
	assert.Equal(t, DefaultCSSPath, CSSPath())
	assert.Equal(t, DefaultJSPath, JSPath())
}
