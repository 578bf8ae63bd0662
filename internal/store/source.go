// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"

	"agrimart/internal/models"
)

// CatalogSource adapts the category and product stores to the
// catalog.Source interface used by the hydration controller. Reads that
// fail degrade to the caller's last-good snapshot; the error is reported
// so the refresh can log and swallow it.
type CatalogSource struct {
	categories *CategoryStore
	products   *ProductStore
}

// NewCatalogSource wires a CatalogSource over the two stores.
func NewCatalogSource(categories *CategoryStore, products *ProductStore) *CatalogSource {
	return &CatalogSource{categories: categories, products: products}
}

// ListCategories returns all categories in creation order.
func (s *CatalogSource) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// ListProducts returns all products, newest first.
func (s *CatalogSource) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}
