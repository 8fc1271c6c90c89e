// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridverse/gridverse/internal/world"
)

// SpaceRepository implements world.SpaceRepository using PostgreSQL.
type SpaceRepository struct {
	pool querier
}

// NewSpaceRepository creates a new SpaceRepository.
func NewSpaceRepository(pool querier) *SpaceRepository {
	return &SpaceRepository{pool: pool}
}

// Create persists a new space. Transaction-aware.
// Callers must validate the space before calling this method.
func (r *SpaceRepository) Create(ctx context.Context, space *world.Space) error {
	engine := queryEngine(ctx, r.pool)
	_, err := engine.Exec(ctx, `
		INSERT INTO spaces (id, name, width, height, thumbnail, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, space.ID.String(), space.Name, space.Width, space.Height, space.Thumbnail,
		space.CreatorID.String(), space.CreatedAt)
	if err != nil {
		return oops.With("operation", "create space").With("id", space.ID.String()).Wrap(err)
	}
	return nil
}

// CreateElements bulk-inserts placements, used when cloning a map. Transaction-aware.
func (r *SpaceRepository) CreateElements(ctx context.Context, elements []world.SpaceElement) error {
	engine := queryEngine(ctx, r.pool)
	for _, e := range elements {
		_, err := engine.Exec(ctx, `
			INSERT INTO space_elements (id, space_id, element_id, x, y)
			VALUES ($1, $2, $3, $4, $5)
		`, e.ID.String(), e.SpaceID.String(), e.ElementID.String(), e.X, e.Y)
		if err != nil {
			return oops.With("operation", "create space placement").
				With("space_id", e.SpaceID.String()).
				With("element_id", e.ElementID.String()).
				Wrap(err)
		}
	}
	return nil
}

// Get retrieves a space by ID.
func (r *SpaceRepository) Get(ctx context.Context, id ulid.ULID) (*world.Space, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, width, height, thumbnail, creator_id, created_at
		FROM spaces WHERE id = $1
	`, id.String())
	space, err := scanSpaceRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SPACE_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get space").With("id", id.String()).Wrap(err)
	}
	return space, nil
}

// GetOwned retrieves a space by ID scoped to its creator. A space that exists
// but belongs to someone else reads as not found.
func (r *SpaceRepository) GetOwned(ctx context.Context, id, creatorID ulid.ULID) (*world.Space, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, width, height, thumbnail, creator_id, created_at
		FROM spaces WHERE id = $1 AND creator_id = $2
	`, id.String(), creatorID.String())
	space, err := scanSpaceRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SPACE_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get owned space").With("id", id.String()).Wrap(err)
	}
	return space, nil
}

// GetDetail retrieves a space with its placements and element detail.
func (r *SpaceRepository) GetDetail(ctx context.Context, id ulid.ULID) (*world.SpaceDetail, error) {
	space, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT se.id, se.x, se.y, e.id, e.width, e.height, e.static, e.image_url, e.created_at
		FROM space_elements se
		JOIN elements e ON e.id = se.element_id
		WHERE se.space_id = $1
	`, id.String())
	if err != nil {
		return nil, oops.With("operation", "get space detail").With("id", id.String()).Wrap(err)
	}
	defer rows.Close()

	placed := make([]world.PlacedElement, 0)
	for rows.Next() {
		var p world.PlacedElement
		var placementIDStr, elementIDStr string

		if err := rows.Scan(
			&placementIDStr, &p.X, &p.Y,
			&elementIDStr, &p.Element.Width, &p.Element.Height,
			&p.Element.Static, &p.Element.ImageURL, &p.Element.CreatedAt,
		); err != nil {
			return nil, oops.With("operation", "scan space placement").Wrap(err)
		}

		p.ID, err = parseULID(placementIDStr, "space_element_id")
		if err != nil {
			return nil, err
		}
		p.Element.ID, err = parseULID(elementIDStr, "element_id")
		if err != nil {
			return nil, err
		}

		placed = append(placed, p)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate space placements").Wrap(err)
	}

	return &world.SpaceDetail{Space: *space, Elements: placed}, nil
}

// ListByCreator returns all spaces owned by the given user, oldest first.
func (r *SpaceRepository) ListByCreator(ctx context.Context, creatorID ulid.ULID) ([]*world.Space, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, width, height, thumbnail, creator_id, created_at
		FROM spaces WHERE creator_id = $1 ORDER BY created_at
	`, creatorID.String())
	if err != nil {
		return nil, oops.With("operation", "list spaces").With("creator_id", creatorID.String()).Wrap(err)
	}
	defer rows.Close()

	spaces := make([]*world.Space, 0)
	for rows.Next() {
		space, err := scanSpaceRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan space").Wrap(err)
		}
		spaces = append(spaces, space)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate spaces").Wrap(err)
	}

	return spaces, nil
}

// Delete removes a space. Placements go with it via ON DELETE CASCADE.
func (r *SpaceRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM spaces WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete space").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SPACE_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// AddElement persists a single placement.
func (r *SpaceRepository) AddElement(ctx context.Context, element *world.SpaceElement) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO space_elements (id, space_id, element_id, x, y)
		VALUES ($1, $2, $3, $4, $5)
	`, element.ID.String(), element.SpaceID.String(), element.ElementID.String(),
		element.X, element.Y)
	if err != nil {
		return oops.With("operation", "add space element").
			With("space_id", element.SpaceID.String()).
			Wrap(err)
	}
	return nil
}

// GetElement resolves a placement to its owning space's creator.
func (r *SpaceRepository) GetElement(ctx context.Context, id ulid.ULID) (*world.OwnedPlacement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT se.id, se.space_id, se.element_id, se.x, se.y, s.creator_id
		FROM space_elements se
		JOIN spaces s ON s.id = se.space_id
		WHERE se.id = $1
	`, id.String())

	var p world.OwnedPlacement
	var idStr, spaceIDStr, elementIDStr, creatorIDStr string
	err := row.Scan(&idStr, &spaceIDStr, &elementIDStr, &p.X, &p.Y, &creatorIDStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SPACE_ELEMENT_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get space element").With("id", id.String()).Wrap(err)
	}

	if p.ID, err = parseULID(idStr, "space_element_id"); err != nil {
		return nil, err
	}
	if p.SpaceID, err = parseULID(spaceIDStr, "space_id"); err != nil {
		return nil, err
	}
	if p.ElementID, err = parseULID(elementIDStr, "element_id"); err != nil {
		return nil, err
	}
	if p.SpaceCreatorID, err = parseULID(creatorIDStr, "creator_id"); err != nil {
		return nil, err
	}

	return &p, nil
}

// DeleteElement removes a single placement.
func (r *SpaceRepository) DeleteElement(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM space_elements WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete space element").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SPACE_ELEMENT_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// scanSpaceRow scans a single space from a row.
func scanSpaceRow(row pgx.Row) (*world.Space, error) {
	var space world.Space
	var idStr, creatorIDStr string

	err := row.Scan(
		&idStr, &space.Name, &space.Width, &space.Height,
		&space.Thumbnail, &creatorIDStr, &space.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if space.ID, err = parseULID(idStr, "space_id"); err != nil {
		return nil, err
	}
	if space.CreatorID, err = parseULID(creatorIDStr, "creator_id"); err != nil {
		return nil, err
	}

	return &space, nil
}

// Compile-time interface check.
var _ world.SpaceRepository = (*SpaceRepository)(nil)
