// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category represents a product category. Categories nest exactly one
// level deep: a category either is a root (empty ParentID) or hangs
// directly under a root.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ParentID    string    `json:"parentId,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Children is a virtual field populated by catalog.BuildTree.
	Children []Category `json:"children,omitempty"`
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}

// DisplayImage resolves the image shown for the category: its own image
// if set, otherwise the shared placeholder. This is the single image
// resolution point — templates must not apply their own fallbacks.
func (c *Category) DisplayImage() string {
	if c.Image != "" {
		return c.Image
	}
	return PlaceholderImage
}
