// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

// Unhashed asset paths.
const (
	DefaultCSSPath = "/static/css/styles.css"
	DefaultJSPath  = "/static/js/app.js"
)
