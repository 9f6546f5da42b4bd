// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

// Layout wraps content in the page shell with navigation.
func Layout(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<!DOCTYPE html><html lang="`)
		p.text(Locale(ctx))
		p.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		if title != "" {
			p.text(title)
			p.raw(" · ")
		}
		p.t("app_name")
		p.raw(`</title><link rel="stylesheet" href="`)
		p.text(CSSPath(ctx))
		p.raw(`"><script src="`, htmxScript, `" defer></script><script src="`)
		p.text(JSPath(ctx))
		p.raw(`" defer></script></head><body hx-headers="`)
		p.text(`{"X-CSRF-Token":"` + CSRFToken(ctx) + `"}`)
		p.raw(`"`)
		if IsAuthenticated(ctx) {
			p.raw(` data-events="/events"`)
		}
		p.raw(`>`)
		nav(p)
		p.raw(`<main class="container">`)
		p.render(content)
		p.raw(`</main><div id="toasts" aria-live="polite"></div></body></html>`)
		return p.err
	})
}

func nav(p *page) {
	p.raw(`<header class="site-header"><a class="brand" href="/">`)
	p.t("app_name")
	p.raw(`</a><nav><a href="/">`)
	p.t("nav_home")
	p.raw(`</a>`)

	if IsAdmin(p.ctx) {
		p.raw(`<a href="/admin/outfits">`)
		p.t("nav_moderation")
		p.raw(`</a>`)
	}

	if user := GetUser(p.ctx); user != nil {
		p.raw(`<span class="user">`)
		p.text(user.DisplayName())
		p.raw(`</span><form method="post" action="/auth/logout" class="inline">`)
		p.csrfField()
		p.raw(`<button type="submit" class="link">`)
		p.t("nav_logout")
		p.raw(`</button></form>`)
	} else {
		p.raw(`<a href="/auth/login">`)
		p.t("nav_login")
		p.raw(`</a>`)
	}
	p.raw(`</nav></header>`)
}

// ErrorPage renders a full error page.
func ErrorPage(code int, title, message string) templ.Component {
	return Layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<section class="error"><h1>`)
		p.text(itoa(code))
		p.raw(` `)
		p.text(title)
		p.raw(`</h1><p>`)
		p.text(message)
		p.raw(`</p><p><a href="/">`)
		p.t("nav_home")
		p.raw(`</a></p></section>`)
		return p.err
	}))
}
