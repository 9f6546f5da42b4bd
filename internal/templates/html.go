// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// page accumulates markup and keeps the first write error.
type page struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newPage(ctx context.Context, w io.Writer) *page {
	return &page{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (p *page) raw(s ...string) {
	for _, part := range s {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, part)
	}
}

// text writes escaped text, safe in element bodies and quoted attributes.
func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

// t writes an escaped translation.
func (p *page) t(messageID string) {
	p.text(T(p.ctx, messageID))
}

func (p *page) render(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

func (p *page) csrfField() {
	p.raw(`<input type="hidden" name="csrf_token" value="`)
	p.text(CSRFToken(p.ctx))
	p.raw(`">`)
}
