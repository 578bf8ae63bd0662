// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"agrimart/internal/models"
	"agrimart/internal/slug"
)

// ProductStore manages products in the database. String-list fields
// (gallery images, category ids) are stored as JSONB.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, price, in_stock, category_ids, primary_category_id,
	thumbnail, images, short_description, active_ingredient, uses, dosage,
	target, packaging, content, manufacturer, origin, search_name,
	created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	var categoryIDs, images []byte
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Price, &p.InStock, &categoryIDs, &p.PrimaryCategoryID,
		&p.Thumbnail, &images, &p.ShortDescription, &p.ActiveIngredient, &p.Uses,
		&p.Dosage, &p.Target, &p.Packaging, &p.Content, &p.Manufacturer,
		&p.Origin, &p.SearchName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(categoryIDs, &p.CategoryIDs); err != nil {
		return nil, fmt.Errorf("decode category ids: %w", err)
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return &p, nil
}

// jsonList encodes a string list for a JSONB column, normalizing nil to
// an empty array.
func jsonList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

// List returns all products, newest first.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a product by id. Returns ErrNotFound if absent.
func (s *ProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// exists reports whether a product with the given id is present.
func (s *ProductStore) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE id = $1`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check product id: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new product. The id is the supplied code or, when
// empty, the slug of the name; it is immutable afterwards. SearchName is
// recomputed from the name on every write.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = slug.Generate(p.Name)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("create product: no id and no sluggable name")
	}

	taken, err := s.exists(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCodeTaken
	}

	categoryIDs, err := jsonList(p.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("encode category ids: %w", err)
	}
	images, err := jsonList(p.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (
			id, name, price, in_stock, category_ids, primary_category_id,
			thumbnail, images, short_description, active_ingredient, uses,
			dosage, target, packaging, content, manufacturer, origin, search_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+productColumns,
		p.ID, strings.TrimSpace(p.Name), p.Price, p.InStock, categoryIDs, p.PrimaryCategoryID,
		p.Thumbnail, images, strings.TrimSpace(p.ShortDescription),
		strings.TrimSpace(p.ActiveIngredient), strings.TrimSpace(p.Uses),
		strings.TrimSpace(p.Dosage), strings.TrimSpace(p.Target),
		strings.TrimSpace(p.Packaging), p.Content,
		strings.TrimSpace(p.Manufacturer), strings.TrimSpace(p.Origin),
		slug.SearchName(p.Name),
	)
	result, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update modifies an existing product. Returns ErrNotFound when the id
// is absent.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	categoryIDs, err := jsonList(p.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("encode category ids: %w", err)
	}
	images, err := jsonList(p.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE products SET
			name = $1, price = $2, in_stock = $3, category_ids = $4,
			primary_category_id = $5, thumbnail = $6, images = $7,
			short_description = $8, active_ingredient = $9, uses = $10,
			dosage = $11, target = $12, packaging = $13, content = $14,
			manufacturer = $15, origin = $16, search_name = $17,
			updated_at = NOW()
		WHERE id = $18
		RETURNING `+productColumns,
		strings.TrimSpace(p.Name), p.Price, p.InStock, categoryIDs,
		p.PrimaryCategoryID, p.Thumbnail, images,
		strings.TrimSpace(p.ShortDescription), strings.TrimSpace(p.ActiveIngredient),
		strings.TrimSpace(p.Uses), strings.TrimSpace(p.Dosage),
		strings.TrimSpace(p.Target), strings.TrimSpace(p.Packaging), p.Content,
		strings.TrimSpace(p.Manufacturer), strings.TrimSpace(p.Origin),
		slug.SearchName(p.Name), p.ID,
	)
	result, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return result, nil
}

// Delete removes a product by id.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of products.
func (s *ProductStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
