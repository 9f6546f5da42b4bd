// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"net/url"

	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"github.com/a-h/templ"
)

var moderationTabs = []models.OutfitStatus{
	models.StatusPending,
	models.StatusApproved,
	models.StatusRejected,
}

// Moderation renders the review queue for one status.
func Moderation(status models.OutfitStatus, outfits []models.CommunityOutfit) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, "moderation_title"), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			p := newPage(ctx, w)
			p.raw(`<section class="moderation"><h1>`)
			p.t("moderation_title")
			p.raw(`</h1><nav class="tabs">`)
			for _, tab := range moderationTabs {
				p.raw(`<a href="/admin/outfits?status=`, string(tab), `"`)
				if tab == status {
					p.raw(` aria-current="page"`)
				}
				p.raw(`>`)
				p.t("moderation_status_" + string(tab))
				p.raw(`</a>`)
			}
			p.raw(`</nav>`)
			if len(outfits) == 0 {
				p.raw(`<p class="empty">`)
				p.t("moderation_empty")
				p.raw(`</p>`)
			}
			for i := range outfits {
				p.render(ModerationRow(&outfits[i]))
			}
			p.raw(`</section>`)
			return p.err
		})).Render(ctx, w)
	})
}

// ModerationRow renders one submission with its review actions.
func ModerationRow(o *models.CommunityOutfit) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := "/admin/outfits/" + url.PathEscape(o.ID)
		p := newPage(ctx, w)
		p.raw(`<article class="review" id="outfit-`)
		p.text(o.ID)
		p.raw(`"><img loading="lazy" src="`)
		p.text(base + "/image")
		p.raw(`" alt="`)
		p.text(o.OutfitName)
		p.raw(`"><div><h3><a href="`)
		p.text(CharacterURL(o.CharacterSlug) + "#" + Anchor(o.OutfitName))
		p.raw(`">`)
		p.text(o.CharacterSlug)
		p.raw(` / `)
		p.text(o.OutfitName)
		p.raw(`</a></h3><p>`)
		if o.SubmitterName != "" {
			p.text(TData(ctx, "community_by", map[string]any{"Name": o.SubmitterName}))
			p.raw(` · `)
		}
		p.raw(`<time datetime="`)
		p.text(o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
		p.raw(`">`)
		p.text(o.CreatedAt.Format("2006-01-02 15:04"))
		p.raw(`</time> <span class="badge `)
		p.text(string(o.Status))
		p.raw(`">`)
		p.t("moderation_status_" + string(o.Status))
		p.raw(`</span></p>`)
		if o.Status != models.StatusApproved {
			moderationAction(p, base+"/approve", "moderation_approve")
		}
		if o.Status != models.StatusRejected {
			moderationAction(p, base+"/reject", "moderation_reject")
		}
		p.raw(`</div></article>`)
		return p.err
	})
}

func moderationAction(p *page, action, label string) {
	p.raw(`<form method="post" class="inline" action="`)
	p.text(action)
	p.raw(`" hx-post="`)
	p.text(action)
	p.raw(`" hx-target="closest article" hx-swap="outerHTML">`)
	p.csrfField()
	p.raw(`<button type="submit">`)
	p.t(label)
	p.raw(`</button></form>`)
}
