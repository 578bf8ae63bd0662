// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"agrimart/internal/models"
	"agrimart/internal/slug"
)

// CategoryStore manages product categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, image, parent_id, is_active, created_at, updated_at`

// scanCategory scans a row into a Category struct. parent_id is NULL for
// roots and maps to an empty ParentID.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	var parentID sql.NullString
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image,
		&parentID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ParentID = parentID.String
	return &c, nil
}

// nullableParent maps an empty ParentID to SQL NULL.
func nullableParent(parentID string) any {
	if parentID == "" {
		return nil
	}
	return parentID
}

// List returns all categories in creation order.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by id. Returns ErrNotFound if absent.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns ErrNotFound if absent.
func (s *CategoryStore) FindBySlug(ctx context.Context, slugValue string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slugValue)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// slugTaken reports whether another category (excluding excludeID) uses
// the slug. The check runs before create/update so a collision surfaces
// as a domain error rather than a constraint violation.
func (s *CategoryStore) slugTaken(ctx context.Context, slugValue, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = $1 AND id <> $2`,
		slugValue, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new category and returns it. The slug is generated
// from the name when not supplied; the id is assigned here and is stable
// for the category's lifetime.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.TrimSpace(c.Slug)
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}

	taken, err := s.slugTaken(ctx, c.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, slug, description, image, parent_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+categoryColumns,
		uuid.NewString(), c.Name, c.Slug, strings.TrimSpace(c.Description),
		c.Image, nullableParent(c.ParentID), c.IsActive,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. The slug stays unique across the
// other categories; the id never changes.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.TrimSpace(c.Slug)
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}

	taken, err := s.slugTaken(ctx, c.Slug, c.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, image = $4,
			parent_id = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+categoryColumns,
		c.Name, c.Slug, strings.TrimSpace(c.Description), c.Image,
		nullableParent(c.ParentID), c.IsActive, c.ID,
	)
	result, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// HasChildren reports whether any category references the given id as
// its parent.
func (s *CategoryStore) HasChildren(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count children: %w", err)
	}
	return count > 0, nil
}

// Delete removes a category. It fails with ErrHasChildren when other
// categories still reference it as their parent — the referential check
// runs before the delete, as a validation error, not a storage error.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	hasChildren, err := s.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return ErrHasChildren
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of categories.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}
