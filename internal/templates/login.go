// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// LoginState is the state of the two-step sign-in form.
type LoginState struct {
	Email string
	OTPID string
	Error string
}

// LoginPage renders the sign-in page around the current step.
func LoginPage(step templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, "login_title"), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			p := newPage(ctx, w)
			p.raw(`<section class="login"><h1>`)
			p.t("login_title")
			p.raw(`</h1><p>`)
			p.t("login_intro")
			p.raw(`</p>`)
			p.render(step)
			p.raw(`</section>`)
			return p.err
		})).Render(ctx, w)
	})
}

// LoginEmailForm asks for the email address.
func LoginEmailForm(state LoginState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<form id="login-form" method="post" action="/auth/login/code" hx-post="/auth/login/code" hx-target="this" hx-swap="outerHTML">`)
		p.csrfField()
		p.raw(`<label>`)
		p.t("login_email")
		p.raw(`<input type="email" name="email" autocomplete="email" required autofocus value="`)
		p.text(state.Email)
		p.raw(`"></label>`)
		formError(p, state.Error)
		p.raw(`<button type="submit">`)
		p.t("login_send_code")
		p.raw(`</button></form>`)
		return p.err
	})
}

// LoginCodeForm asks for the emailed code.
func LoginCodeForm(state LoginState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<form id="login-form" method="post" action="/auth/login/verify" hx-post="/auth/login/verify" hx-target="this" hx-swap="outerHTML"><p>`)
		p.text(TData(ctx, "login_code_sent", map[string]any{"Email": state.Email}))
		p.raw(`</p>`)
		p.csrfField()
		p.raw(`<input type="hidden" name="otpId" value="`)
		p.text(state.OTPID)
		p.raw(`"><input type="hidden" name="email" value="`)
		p.text(state.Email)
		p.raw(`"><label>`)
		p.t("login_code")
		p.raw(`<input type="text" name="code" inputmode="numeric" autocomplete="one-time-code" pattern="[0-9]*" required autofocus></label>`)
		formError(p, state.Error)
		p.raw(`<button type="submit">`)
		p.t("login_verify")
		back := "/auth/login/back?email=" + url.QueryEscape(state.Email)
		p.raw(`</button> <a href="`)
		p.text(back)
		p.raw(`" hx-get="`)
		p.text(back)
		p.raw(`" hx-target="#login-form" hx-swap="outerHTML">`)
		p.t("login_back")
		p.raw(`</a></form>`)
		return p.err
	})
}

func formError(p *page, msg string) {
	if msg == "" {
		return
	}
	p.raw(`<p class="form-error" role="alert">`)
	p.text(msg)
	p.raw(`</p>`)
}
