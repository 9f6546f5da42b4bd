// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"codeberg.org/oliverandrich/disney-bounding/internal/catalog"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"github.com/a-h/templ"
)

// Home renders the character grid.
func Home(characters []catalog.Character) templ.Component {
	return Layout("", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<section class="hero"><h1>`)
		p.t("home_title")
		p.raw(`</h1><p>`)
		p.t("home_intro")
		p.raw(`</p></section><ul class="character-grid">`)
		for i := range characters {
			characterCard(p, &characters[i])
		}
		p.raw(`</ul>`)
		return p.err
	}))
}

func characterCard(p *page, ch *catalog.Character) {
	p.raw(`<li class="character-card"><a href="`)
	p.text(CharacterURL(ch.Slug))
	p.raw(`"><h2>`)
	p.text(ch.Name)
	p.raw(`</h2><p class="movie">`)
	p.text(ch.Movie)
	p.raw(`</p><div class="swatches">`)
	for _, o := range ch.Outfits {
		swatch(p, o.CardColor, o.Name)
	}
	p.raw(`</div></a></li>`)
}

// CharacterData is what the character page shows.
type CharacterData struct {
	Character *catalog.Character
	// Community maps outfit names to their approved submissions.
	Community map[string][]models.CommunityOutfitView
}

// Character renders the colour guides and community outfits of a character.
func Character(data CharacterData) templ.Component {
	ch := data.Character
	return Layout(ch.Name, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<section class="character"><h1>`)
		p.text(ch.Name)
		p.raw(`</h1><p class="movie">`)
		p.text(ch.Movie)
		p.raw(`</p><h2>`)
		p.t("character_outfits")
		p.raw(`</h2>`)
		for i := range ch.Outfits {
			outfit := &ch.Outfits[i]
			outfitSection(p, ch.Slug, outfit, data.Community[outfit.Name])
		}
		p.raw(`</section>`)
		return p.err
	}))
}

func outfitSection(p *page, slug string, outfit *catalog.Outfit, community []models.CommunityOutfitView) {
	p.raw(`<article class="outfit" id="`)
	p.text(Anchor(outfit.Name))
	p.raw(`"><header class="outfit-card" style="background: `)
	p.text(outfit.CardColor)
	p.raw(`"><h3>`)
	p.text(outfit.Name)
	p.raw(`</h3></header><h4>`)
	p.t("character_colors")
	p.raw(`</h4><ul class="palette">`)
	for _, c := range outfit.Colors {
		p.raw(`<li>`)
		swatch(p, c.Hex, c.Name)
		p.raw(`<div><strong>`)
		p.text(c.Name)
		p.raw(`</strong> <code>`)
		p.text(c.Hex)
		p.raw(`</code><p>`)
		p.text(c.Usage)
		p.raw(`</p></div></li>`)
	}
	p.raw(`</ul><h4>`)
	p.t("character_community")
	p.raw(`</h4>`)
	p.render(CommunityGrid(community))

	if IsAuthenticated(p.ctx) {
		p.render(UploadForm(slug, outfit.Name, FormState{}))
	} else {
		p.raw(`<p class="hint"><a href="/auth/login">`)
		p.t("upload_login_hint")
		p.raw(`</a></p>`)
	}
	p.raw(`</article>`)
}

// CommunityGrid renders approved submissions.
func CommunityGrid(views []models.CommunityOutfitView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		if len(views) == 0 {
			p.raw(`<p class="empty">`)
			p.t("community_empty")
			p.raw(`</p>`)
			return p.err
		}
		p.raw(`<ul class="community-grid">`)
		for _, v := range views {
			p.raw(`<li><figure><img loading="lazy" src="`)
			p.text(v.ImageURL)
			p.raw(`" alt="`)
			p.text(v.OutfitName)
			p.raw(`">`)
			if v.SubmitterName != nil {
				p.raw(`<figcaption>`)
				p.text(TData(ctx, "community_by", map[string]any{"Name": *v.SubmitterName}))
				p.raw(`</figcaption>`)
			}
			p.raw(`</figure></li>`)
		}
		p.raw(`</ul>`)
		return p.err
	})
}

// FormState carries the outcome of a form submission back into the form.
type FormState struct {
	Error   string
	Success bool
}

// UploadForm renders the submission form for one outfit.
func UploadForm(slug, outfitName string, state FormState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		action := CharacterURL(slug) + "/outfits"
		p := newPage(ctx, w)
		p.raw(`<form class="upload" method="post" enctype="multipart/form-data" action="`)
		p.text(action)
		p.raw(`" hx-post="`)
		p.text(action)
		p.raw(`" hx-encoding="multipart/form-data" hx-target="this" hx-swap="outerHTML"><h4>`)
		p.t("upload_title")
		p.raw(`</h4>`)
		p.csrfField()
		p.raw(`<input type="hidden" name="outfit_name" value="`)
		p.text(outfitName)
		p.raw(`"><label>`)
		p.t("upload_image")
		p.raw(`<input type="file" name="image" accept="image/jpeg,image/png,image/webp" required></label><label>`)
		p.t("upload_submitter_name")
		p.raw(`<input type="text" name="submitter_name" maxlength="100"></label>`)
		if state.Error != "" {
			p.raw(`<p class="form-error" role="alert">`)
			p.text(state.Error)
			p.raw(`</p>`)
		}
		if state.Success {
			p.raw(`<p class="form-success" role="status">`)
			p.t("upload_success")
			p.raw(`</p>`)
		}
		p.raw(`<button type="submit">`)
		p.t("upload_submit")
		p.raw(`</button></form>`)
		return p.err
	})
}

func swatch(p *page, hex, label string) {
	p.raw(`<span class="swatch" style="background: `)
	p.text(hex)
	p.raw(`" title="`)
	p.text(label)
	p.raw(`"></span>`)
}

// CharacterURL returns the page path of a character.
func CharacterURL(slug string) string {
	return "/characters/" + url.PathEscape(slug)
}

// Anchor turns an outfit name into a fragment identifier.
func Anchor(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
