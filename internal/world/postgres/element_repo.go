// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridverse/gridverse/internal/world"
)

// ElementRepository implements world.ElementRepository using PostgreSQL.
type ElementRepository struct {
	pool querier
}

// NewElementRepository creates a new ElementRepository.
func NewElementRepository(pool querier) *ElementRepository {
	return &ElementRepository{pool: pool}
}

// Create persists a new element.
// Callers must validate the element before calling this method.
func (r *ElementRepository) Create(ctx context.Context, element *world.Element) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO elements (id, width, height, static, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, element.ID.String(), element.Width, element.Height, element.Static,
		element.ImageURL, element.CreatedAt)
	if err != nil {
		return oops.With("operation", "create element").With("id", element.ID.String()).Wrap(err)
	}
	return nil
}

// UpdateImage replaces the element's image reference.
func (r *ElementRepository) UpdateImage(ctx context.Context, id ulid.ULID, imageURL string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE elements SET image_url = $2 WHERE id = $1
	`, id.String(), imageURL)
	if err != nil {
		return oops.With("operation", "update element image").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ELEMENT_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// List returns all elements, oldest first.
func (r *ElementRepository) List(ctx context.Context) ([]*world.Element, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, width, height, static, image_url, created_at
		FROM elements ORDER BY created_at
	`)
	if err != nil {
		return nil, oops.With("operation", "list elements").Wrap(err)
	}
	defer rows.Close()

	return scanElements(rows)
}

func scanElements(rows pgx.Rows) ([]*world.Element, error) {
	elements := make([]*world.Element, 0)
	for rows.Next() {
		var e world.Element
		var idStr string

		if err := rows.Scan(&idStr, &e.Width, &e.Height, &e.Static, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan element").Wrap(err)
		}

		id, err := parseULID(idStr, "element_id")
		if err != nil {
			return nil, err
		}
		e.ID = id

		elements = append(elements, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate elements").Wrap(err)
	}

	return elements, nil
}

// Compile-time interface check.
var _ world.ElementRepository = (*ElementRepository)(nil)
