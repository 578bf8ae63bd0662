// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the in-memory presentation model for the
// storefront: an observable snapshot of categories and products, the
// category tree derivation, the product filter, and the hydration
// controller that populates the snapshot once and refreshes it once per
// session in the background.
package catalog

import (
	"strings"

	"agrimart/internal/models"
)

// BuildTree turns a flat category list into a two-level tree: categories
// without a parent become roots (in input order), and every category
// whose ParentID names a root is attached to that root's Children (in
// input order). Categories referencing a missing or non-root parent are
// dropped silently. Deeper nesting in the input is ignored — children
// are returned without their own children.
func BuildTree(categories []models.Category) []models.Category {
	var roots []models.Category
	for _, c := range categories {
		if !c.IsRoot() {
			continue
		}
		root := c
		root.Children = nil
		for _, child := range categories {
			if child.ParentID != root.ID {
				continue
			}
			leaf := child
			leaf.Children = nil
			root.Children = append(root.Children, leaf)
		}
		roots = append(roots, root)
	}
	return roots
}

// FilterProducts selects products by category membership and/or
// case-insensitive keyword substring match. When categoryID is set, only
// products whose CategoryIDs contain it exactly are kept (no ancestor
// matching). When keyword is set (after trimming), only products whose
// SearchName or lowercased Name contains it are kept. Both conditions
// compose by conjunction. The input is never mutated and its order is
// preserved.
func FilterProducts(products []models.Product, keyword, categoryID string) []models.Product {
	kw := strings.ToLower(strings.TrimSpace(keyword))

	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if categoryID != "" && !p.InCategory(categoryID) {
			continue
		}
		if kw != "" &&
			!strings.Contains(p.SearchName, kw) &&
			!strings.Contains(strings.ToLower(p.Name), kw) {
			continue
		}
		result = append(result, p)
	}
	return result
}
