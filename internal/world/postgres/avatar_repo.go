// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/gridverse/gridverse/internal/world"
)

// AvatarRepository implements world.AvatarRepository using PostgreSQL.
type AvatarRepository struct {
	pool querier
}

// NewAvatarRepository creates a new AvatarRepository.
func NewAvatarRepository(pool querier) *AvatarRepository {
	return &AvatarRepository{pool: pool}
}

// Create persists a new avatar.
// Callers must validate the avatar before calling this method.
func (r *AvatarRepository) Create(ctx context.Context, avatar *world.Avatar) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO avatars (id, name, image_url, created_at)
		VALUES ($1, $2, $3, $4)
	`, avatar.ID.String(), avatar.Name, avatar.ImageURL, avatar.CreatedAt)
	if err != nil {
		return oops.With("operation", "create avatar").With("id", avatar.ID.String()).Wrap(err)
	}
	return nil
}

// List returns all avatars, oldest first.
func (r *AvatarRepository) List(ctx context.Context) ([]*world.Avatar, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, image_url, created_at
		FROM avatars ORDER BY created_at
	`)
	if err != nil {
		return nil, oops.With("operation", "list avatars").Wrap(err)
	}
	defer rows.Close()

	return scanAvatars(rows)
}

func scanAvatars(rows pgx.Rows) ([]*world.Avatar, error) {
	avatars := make([]*world.Avatar, 0)
	for rows.Next() {
		var a world.Avatar
		var idStr string

		if err := rows.Scan(&idStr, &a.Name, &a.ImageURL, &a.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan avatar").Wrap(err)
		}

		id, err := parseULID(idStr, "avatar_id")
		if err != nil {
			return nil, err
		}
		a.ID = id

		avatars = append(avatars, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate avatars").Wrap(err)
	}

	return avatars, nil
}

// Compile-time interface check.
var _ world.AvatarRepository = (*AvatarRepository)(nil)
