// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is served when a product or category has no image of
// its own.
const PlaceholderImage = "/static/img/placeholder.svg"

// Product represents a catalog product. The ID is a slug derived from the
// name when not supplied explicitly, and is immutable after creation.
type Product struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	InStock bool            `json:"inStock"`

	// CategoryIDs is an ordered set: by convention the first entry is the
	// parent category and an optional second entry a child category.
	// PrimaryCategoryID is the most specific of the two.
	CategoryIDs       []string `json:"categoryIds"`
	PrimaryCategoryID string   `json:"primaryCategoryId"`

	Thumbnail string   `json:"thumbnail"`
	Images    []string `json:"images"`

	// Rich-text fields hold Markdown source; each is independently
	// optional and rendered through internal/markdown on display.
	ShortDescription string `json:"shortDescription"`
	ActiveIngredient string `json:"activeIngredient"`
	Uses             string `json:"uses"`
	Dosage           string `json:"dosage"`
	Target           string `json:"target"`
	Packaging        string `json:"packaging"`
	Content          string `json:"content"`

	Manufacturer string `json:"manufacturer"`
	Origin       string `json:"origin"`

	// SearchName is the lowercase, diacritic-free derivative of Name,
	// maintained on every write to support substring search.
	SearchName string `json:"search_name"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayImage resolves the image shown on product cards: the thumbnail
// if set, then the first gallery image, then the shared placeholder.
// This is the single image resolution point — templates must not apply
// their own fallback chains.
func (p *Product) DisplayImage() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	for _, img := range p.Images {
		if img != "" {
			return img
		}
	}
	return PlaceholderImage
}

// GalleryImages returns the ordered gallery for the detail page: the
// thumbnail followed by the additional images, with blanks dropped.
func (p *Product) GalleryImages() []string {
	var out []string
	if p.Thumbnail != "" {
		out = append(out, p.Thumbnail)
	}
	for _, img := range p.Images {
		if img != "" {
			out = append(out, img)
		}
	}
	return out
}

// InCategory reports whether the product is tagged with the given
// category id. Membership is exact: a product tagged only with a child
// category does not match its parent.
func (p *Product) InCategory(id string) bool {
	for _, c := range p.CategoryIDs {
		if c == id {
			return true
		}
	}
	return false
}
