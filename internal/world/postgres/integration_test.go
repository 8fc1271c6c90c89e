// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridverse/gridverse/internal/world"
	"github.com/gridverse/gridverse/internal/world/postgres"
)

// createTestUser inserts a user row so spaces can reference a creator.
func createTestUser(ctx context.Context, t *testing.T) ulid.ULID {
	t.Helper()

	id := ulid.Make()
	_, err := testPool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id.String(), "user-"+id.String(), "$argon2id$hash", "User", time.Now())
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	})

	return id
}

func createTestElement(ctx context.Context, t *testing.T) ulid.ULID {
	t.Helper()

	repo := postgres.NewElementRepository(testPool)
	element, err := world.NewElement(1, 1, false, "https://cdn.example.com/chair.png")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, element))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM elements WHERE id = $1`, element.ID.String())
	})

	return element.ID
}

func TestSpaceRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewSpaceRepository(testPool)
	creatorID := createTestUser(ctx, t)

	space, err := world.NewSpace("Test Space", world.Dimensions{Width: 100, Height: 200}, creatorID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, space))

	t.Run("get round-trips the row", func(t *testing.T) {
		got, err := repo.Get(ctx, space.ID)
		require.NoError(t, err)
		assert.Equal(t, space.Name, got.Name)
		assert.Equal(t, space.Width, got.Width)
		assert.Equal(t, creatorID, got.CreatorID)
	})

	t.Run("get owned enforces the creator", func(t *testing.T) {
		_, err := repo.GetOwned(ctx, space.ID, ulid.Make())
		assert.ErrorIs(t, err, world.ErrNotFound)

		got, err := repo.GetOwned(ctx, space.ID, creatorID)
		require.NoError(t, err)
		assert.Equal(t, space.ID, got.ID)
	})

	t.Run("list by creator", func(t *testing.T) {
		spaces, err := repo.ListByCreator(ctx, creatorID)
		require.NoError(t, err)
		require.Len(t, spaces, 1)
	})

	t.Run("delete cascades placements", func(t *testing.T) {
		elementID := createTestElement(ctx, t)
		placement := &world.SpaceElement{
			ID:        ulid.Make(),
			SpaceID:   space.ID,
			ElementID: elementID,
			X:         1,
			Y:         2,
		}
		require.NoError(t, repo.AddElement(ctx, placement))

		require.NoError(t, repo.Delete(ctx, space.ID))

		var count int
		err := testPool.QueryRow(ctx,
			`SELECT count(*) FROM space_elements WHERE space_id = $1`, space.ID.String()).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestMapClone_Atomicity(t *testing.T) {
	ctx := context.Background()
	creatorID := createTestUser(ctx, t)
	elementID := createTestElement(ctx, t)

	spaces := postgres.NewSpaceRepository(testPool)
	maps := postgres.NewMapRepository(testPool)
	tx := postgres.NewTransactor(testPool)
	svc := world.NewSpaceService(world.SpaceConfig{Spaces: spaces, Maps: maps, Transactor: tx})

	m, err := world.NewGameMap("Plaza", world.Dimensions{Width: 50, Height: 50},
		"https://cdn.example.com/plaza.png",
		[]world.MapPlacement{{ElementID: elementID, X: 3, Y: 4}})
	require.NoError(t, err)

	catalog := world.NewCatalogService(world.CatalogConfig{Maps: maps, Transactor: tx})
	mapID, err := catalog.CreateMap(ctx, m.Name, "50x50", m.Thumbnail, m.Placements)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM maps WHERE id = $1`, mapID.String())
	})

	t.Run("clone copies the map's placements", func(t *testing.T) {
		spaceID, err := svc.CreateFromMap(ctx, creatorID, "Cloned", mapID)
		require.NoError(t, err)
		t.Cleanup(func() {
			_, _ = testPool.Exec(ctx, `DELETE FROM spaces WHERE id = $1`, spaceID.String())
		})

		detail, err := spaces.GetDetail(ctx, spaceID)
		require.NoError(t, err)
		assert.Equal(t, 50, detail.Space.Width)
		require.Len(t, detail.Elements, 1)
		assert.Equal(t, elementID, detail.Elements[0].Element.ID)
		assert.Equal(t, 3, detail.Elements[0].X)
	})

	t.Run("failed placement insert rolls back the space row", func(t *testing.T) {
		before := countSpaces(ctx, t, creatorID)

		err := tx.InTransaction(ctx, func(txCtx context.Context) error {
			space, err := world.NewSpace("Doomed", world.Dimensions{Width: 10, Height: 10}, creatorID)
			if err != nil {
				return err
			}
			if err := spaces.Create(txCtx, space); err != nil {
				return err
			}
			// Unknown element id violates the foreign key.
			return spaces.CreateElements(txCtx, []world.SpaceElement{{
				ID:        ulid.Make(),
				SpaceID:   space.ID,
				ElementID: ulid.Make(),
				X:         1,
				Y:         1,
			}})
		})
		require.Error(t, err)

		assert.Equal(t, before, countSpaces(ctx, t, creatorID),
			"space row must not survive a rolled-back clone")
	})

	t.Run("unknown map", func(t *testing.T) {
		_, err := svc.CreateFromMap(ctx, creatorID, "Nope", ulid.Make())
		require.Error(t, err)
		assert.True(t, errors.Is(err, world.ErrNotFound))
	})
}

func countSpaces(ctx context.Context, t *testing.T, creatorID ulid.ULID) int {
	t.Helper()
	var count int
	err := testPool.QueryRow(ctx,
		`SELECT count(*) FROM spaces WHERE creator_id = $1`, creatorID.String()).Scan(&count)
	require.NoError(t, err)
	return count
}
