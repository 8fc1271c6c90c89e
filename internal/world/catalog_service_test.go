// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world_test

import (
	"context"
	"errors"
	"maps"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridverse/gridverse/internal/world"
	"github.com/gridverse/gridverse/pkg/errutil"
)

type fakeElementRepo struct {
	elements map[ulid.ULID]*world.Element
	listErr  error
}

func newFakeElementRepo() *fakeElementRepo {
	return &fakeElementRepo{elements: make(map[ulid.ULID]*world.Element)}
}

func (r *fakeElementRepo) Create(_ context.Context, element *world.Element) error {
	copied := *element
	r.elements[element.ID] = &copied
	return nil
}

func (r *fakeElementRepo) UpdateImage(_ context.Context, id ulid.ULID, imageURL string) error {
	e, ok := r.elements[id]
	if !ok {
		return world.ErrNotFound
	}
	e.ImageURL = imageURL
	return nil
}

func (r *fakeElementRepo) List(_ context.Context) ([]*world.Element, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []*world.Element{}
	for _, e := range r.elements {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

type fakeAvatarRepo struct {
	avatars map[ulid.ULID]*world.Avatar
}

func newFakeAvatarRepo() *fakeAvatarRepo {
	return &fakeAvatarRepo{avatars: make(map[ulid.ULID]*world.Avatar)}
}

func (r *fakeAvatarRepo) Create(_ context.Context, avatar *world.Avatar) error {
	copied := *avatar
	r.avatars[avatar.ID] = &copied
	return nil
}

func (r *fakeAvatarRepo) List(_ context.Context) ([]*world.Avatar, error) {
	out := []*world.Avatar{}
	for _, a := range r.avatars {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

// mapTransactor restores the map repo when fn fails, imitating a rollback.
type mapTransactor struct {
	maps *fakeMapRepo
}

func (t *mapTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := maps.Clone(t.maps.maps)
	if err := fn(ctx); err != nil {
		t.maps.maps = snap
		return err
	}
	return nil
}

func newCatalogService(t *testing.T) (*world.CatalogService, *fakeElementRepo, *fakeAvatarRepo, *fakeMapRepo) {
	t.Helper()
	elements := newFakeElementRepo()
	avatars := newFakeAvatarRepo()
	mapsRepo := newFakeMapRepo()
	svc := world.NewCatalogService(world.CatalogConfig{
		Elements:   elements,
		Avatars:    avatars,
		Maps:       mapsRepo,
		Transactor: &mapTransactor{maps: mapsRepo},
	})
	return svc, elements, avatars, mapsRepo
}

func TestCatalogService_CreateElement(t *testing.T) {
	ctx := context.Background()
	svc, elements, _, _ := newCatalogService(t)

	id, err := svc.CreateElement(ctx, 2, 3, true, "https://cdn.example.com/chair.png")
	require.NoError(t, err)

	stored, ok := elements.elements[id]
	require.True(t, ok)
	assert.Equal(t, 2, stored.Width)
	assert.Equal(t, 3, stored.Height)
	assert.True(t, stored.Static)

	t.Run("invalid dimensions rejected", func(t *testing.T) {
		_, err := svc.CreateElement(ctx, 0, 3, false, "https://cdn.example.com/x.png")
		require.Error(t, err)
		var vErr *world.ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Len(t, elements.elements, 1)
	})
}

func TestCatalogService_UpdateElementImage(t *testing.T) {
	ctx := context.Background()
	svc, elements, _, _ := newCatalogService(t)

	id, err := svc.CreateElement(ctx, 1, 1, false, "https://cdn.example.com/old.png")
	require.NoError(t, err)

	t.Run("replaces image only", func(t *testing.T) {
		require.NoError(t, svc.UpdateElementImage(ctx, id, "https://cdn.example.com/new.png"))
		assert.Equal(t, "https://cdn.example.com/new.png", elements.elements[id].ImageURL)
		assert.Equal(t, 1, elements.elements[id].Width)
	})

	t.Run("unknown element is not found", func(t *testing.T) {
		err := svc.UpdateElementImage(ctx, ulid.Make(), "https://cdn.example.com/new.png")
		require.Error(t, err)
		assert.ErrorIs(t, err, world.ErrNotFound)
		errutil.AssertErrorCode(t, err, "ELEMENT_UPDATE_FAILED")
	})

	t.Run("empty image url rejected", func(t *testing.T) {
		err := svc.UpdateElementImage(ctx, id, "")
		var vErr *world.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "imageUrl", vErr.Field)
	})
}

func TestCatalogService_CreateAvatar(t *testing.T) {
	ctx := context.Background()
	svc, _, avatars, _ := newCatalogService(t)

	id, err := svc.CreateAvatar(ctx, "Timmy", "https://cdn.example.com/timmy.png")
	require.NoError(t, err)
	assert.Equal(t, "Timmy", avatars.avatars[id].Name)

	_, err = svc.CreateAvatar(ctx, "", "https://cdn.example.com/x.png")
	require.Error(t, err)
	assert.Len(t, avatars.avatars, 1)
}

func TestCatalogService_CreateMap(t *testing.T) {
	ctx := context.Background()
	elementID := ulid.Make()
	placements := []world.MapPlacement{
		{ElementID: elementID, X: 1, Y: 2},
		{ElementID: elementID, X: 3, Y: 4},
	}

	t.Run("persists map with placements", func(t *testing.T) {
		svc, _, _, mapsRepo := newCatalogService(t)

		id, err := svc.CreateMap(ctx, "Plaza", "100x200", "thumb.png", placements)
		require.NoError(t, err)

		stored, err := mapsRepo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 100, stored.Width)
		assert.Equal(t, 200, stored.Height)
		assert.Len(t, stored.Placements, 2)
	})

	t.Run("malformed dimensions rejected", func(t *testing.T) {
		svc, _, _, mapsRepo := newCatalogService(t)

		_, err := svc.CreateMap(ctx, "Plaza", "wide", "thumb.png", placements)
		require.Error(t, err)
		assert.Empty(t, mapsRepo.maps)
	})

	t.Run("placement insert failure leaves no map behind", func(t *testing.T) {
		svc, _, _, mapsRepo := newCatalogService(t)
		mapsRepo.failCreatePlacements = errors.New("connection reset")

		_, err := svc.CreateMap(ctx, "Plaza", "100x200", "thumb.png", placements)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MAP_CREATE_FAILED")
		assert.Empty(t, mapsRepo.maps, "map row must not survive a failed placement insert")
	})
}

func TestCatalogService_Lists(t *testing.T) {
	ctx := context.Background()
	svc, elements, _, _ := newCatalogService(t)

	t.Run("empty catalogs list as empty slices", func(t *testing.T) {
		got, err := svc.ListElements(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		avatars, err := svc.ListAvatars(ctx)
		require.NoError(t, err)
		assert.NotNil(t, avatars)
		assert.Empty(t, avatars)
	})

	t.Run("list surfaces repository failures", func(t *testing.T) {
		elements.listErr = errors.New("timeout")
		_, err := svc.ListElements(ctx)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ELEMENT_LIST_FAILED")
	})

	t.Run("populated catalog", func(t *testing.T) {
		elements.listErr = nil
		_, err := svc.CreateElement(ctx, 1, 1, false, "https://cdn.example.com/a.png")
		require.NoError(t, err)
		_, err = svc.CreateAvatar(ctx, "Timmy", "https://cdn.example.com/t.png")
		require.NoError(t, err)

		got, err := svc.ListElements(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		avatars, err := svc.ListAvatars(ctx)
		require.NoError(t, err)
		assert.Len(t, avatars, 1)
	})
}
