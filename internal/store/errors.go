// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "errors"

// Domain errors surfaced to handlers as rejected operations with a
// message, distinct from low-level storage failures. Not-found is
// distinguishable from an empty list.
var (
	// ErrNotFound indicates the requested category or product id does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlugTaken indicates another category already uses the slug.
	ErrSlugTaken = errors.New("slug already in use")

	// ErrCodeTaken indicates another product already uses the id.
	ErrCodeTaken = errors.New("product code already exists")

	// ErrHasChildren indicates a category cannot be deleted because
	// other categories reference it as their parent.
	ErrHasChildren = errors.New("category has child categories")
)
