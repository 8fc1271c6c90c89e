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

// MapRepository implements world.MapRepository using PostgreSQL.
type MapRepository struct {
	pool querier
}

// NewMapRepository creates a new MapRepository.
func NewMapRepository(pool querier) *MapRepository {
	return &MapRepository{pool: pool}
}

// Create persists the map row. Transaction-aware.
// Callers must validate the map before calling this method.
func (r *MapRepository) Create(ctx context.Context, m *world.GameMap) error {
	engine := queryEngine(ctx, r.pool)
	_, err := engine.Exec(ctx, `
		INSERT INTO maps (id, name, width, height, thumbnail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID.String(), m.Name, m.Width, m.Height, m.Thumbnail, m.CreatedAt)
	if err != nil {
		return oops.With("operation", "create map").With("id", m.ID.String()).Wrap(err)
	}
	return nil
}

// CreatePlacements persists the map's default placements. Transaction-aware.
func (r *MapRepository) CreatePlacements(ctx context.Context, mapID ulid.ULID, placements []world.MapPlacement) error {
	engine := queryEngine(ctx, r.pool)
	for _, p := range placements {
		_, err := engine.Exec(ctx, `
			INSERT INTO map_elements (id, map_id, element_id, x, y)
			VALUES ($1, $2, $3, $4, $5)
		`, ulid.Make().String(), mapID.String(), p.ElementID.String(), p.X, p.Y)
		if err != nil {
			return oops.With("operation", "create map placement").
				With("map_id", mapID.String()).
				With("element_id", p.ElementID.String()).
				Wrap(err)
		}
	}
	return nil
}

// Get retrieves a map with its placements.
func (r *MapRepository) Get(ctx context.Context, id ulid.ULID) (*world.GameMap, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, width, height, thumbnail, created_at
		FROM maps WHERE id = $1
	`, id.String())

	var m world.GameMap
	var idStr string
	err := row.Scan(&idStr, &m.Name, &m.Width, &m.Height, &m.Thumbnail, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MAP_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get map").With("id", id.String()).Wrap(err)
	}
	m.ID, err = parseULID(idStr, "map_id")
	if err != nil {
		return nil, err
	}

	m.Placements, err = r.getPlacements(ctx, id)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// List returns all maps without their placements, oldest first.
func (r *MapRepository) List(ctx context.Context) ([]*world.GameMap, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, width, height, thumbnail, created_at
		FROM maps ORDER BY created_at
	`)
	if err != nil {
		return nil, oops.With("operation", "list maps").Wrap(err)
	}
	defer rows.Close()

	maps := make([]*world.GameMap, 0)
	for rows.Next() {
		var m world.GameMap
		var idStr string

		if err := rows.Scan(&idStr, &m.Name, &m.Width, &m.Height, &m.Thumbnail, &m.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan map").Wrap(err)
		}

		m.ID, err = parseULID(idStr, "map_id")
		if err != nil {
			return nil, err
		}

		maps = append(maps, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate maps").Wrap(err)
	}

	return maps, nil
}

func (r *MapRepository) getPlacements(ctx context.Context, mapID ulid.ULID) ([]world.MapPlacement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT element_id, x, y
		FROM map_elements WHERE map_id = $1
	`, mapID.String())
	if err != nil {
		return nil, oops.With("operation", "get map placements").With("map_id", mapID.String()).Wrap(err)
	}
	defer rows.Close()

	placements := make([]world.MapPlacement, 0)
	for rows.Next() {
		var p world.MapPlacement
		var elementIDStr string

		if err := rows.Scan(&elementIDStr, &p.X, &p.Y); err != nil {
			return nil, oops.With("operation", "scan map placement").Wrap(err)
		}

		p.ElementID, err = parseULID(elementIDStr, "element_id")
		if err != nil {
			return nil, err
		}

		placements = append(placements, p)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate map placements").Wrap(err)
	}

	return placements, nil
}

// Compile-time interface check.
var _ world.MapRepository = (*MapRepository)(nil)
