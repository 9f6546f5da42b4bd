// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package catalog holds the characters and their outfit color guides.
package catalog

import "slices"

// Color is one color of an outfit and where to wear it.
type Color struct {
	Name  string
	Hex   string
	Usage string
}

// Outfit is a recognizable look of a character.
type Outfit struct {
	Name      string
	CardColor string
	Colors    []Color
}

// Character is a character with one or more outfits.
type Character struct {
	Slug    string
	Name    string
	Movie   string
	Outfits []Outfit
}

// Outfit returns the outfit with the given name.
func (c *Character) Outfit(name string) (*Outfit, bool) {
	i := slices.IndexFunc(c.Outfits, func(o Outfit) bool { return o.Name == name })
	if i < 0 {
		return nil, false
	}
	return &c.Outfits[i], true
}

var characters = []Character{
	{
		Slug:  "ariel",
		Name:  "Ariel",
		Movie: "The Little Mermaid",
		Outfits: []Outfit{
			{
				Name:      "Mermaid",
				CardColor: "#B8E8D8",
				Colors: []Color{
					{Name: "Red", Hex: "#C41230", Usage: "Hair: a bold red top, headband, or accent"},
					{Name: "Lavender", Hex: "#9B59B6", Usage: "Seashell top: a purple or lavender top"},
					{Name: "Seafoam Green", Hex: "#3CB371", Usage: "Tail: a green skirt or pants"},
				},
			},
			{
				Name:      "Princess Dress",
				CardColor: "#F5C6D8",
				Colors: []Color{
					{Name: "Red", Hex: "#C41230", Usage: "Hair: a bold red top, headband, or accent"},
					{Name: "Pink", Hex: "#F0A1BF", Usage: "Dress: a sparkly or shimmery pink dress or skirt"},
					{Name: "Light Blue", Hex: "#87CEEB", Usage: "Bow and trim: a blue sash, belt, or accessory"},
				},
			},
		},
	},
	{
		Slug:  "rapunzel",
		Name:  "Rapunzel",
		Movie: "Tangled",
		Outfits: []Outfit{
			{
				Name:      "Tower Dress",
				CardColor: "#DDD0F5",
				Colors: []Color{
					{Name: "Gold", Hex: "#FFD700", Usage: "Hair: long golden accessories, a blonde wig, or yellow accents"},
					{Name: "Lavender", Hex: "#9B7ED8", Usage: "Dress: a purple or lavender dress, skirt, or top"},
					{Name: "Pink", Hex: "#E8A0BF", Usage: "Lacing: pink accents, a corset detail, or belt"},
				},
			},
		},
	},
}

// All returns every character in display order.
func All() []Character {
	return characters
}

// BySlug returns the character with slug.
func BySlug(slug string) (*Character, bool) {
	i := slices.IndexFunc(characters, func(c Character) bool { return c.Slug == slug })
	if i < 0 {
		return nil, false
	}
	return &characters[i], true
}
