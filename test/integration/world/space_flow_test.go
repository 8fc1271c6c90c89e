// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

//go:build integration

package world_test

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/gridverse/gridverse/internal/world"
)

// memoryStore is an in-memory implementation of the world repositories.
// It simulates database persistence without requiring PostgreSQL.
type memoryStore struct {
	mu         sync.RWMutex
	elements   map[ulid.ULID]*world.Element
	avatars    map[ulid.ULID]*world.Avatar
	maps       map[ulid.ULID]*world.GameMap
	spaces     map[ulid.ULID]*world.Space
	placements map[ulid.ULID]*world.SpaceElement
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		elements:   make(map[ulid.ULID]*world.Element),
		avatars:    make(map[ulid.ULID]*world.Avatar),
		maps:       make(map[ulid.ULID]*world.GameMap),
		spaces:     make(map[ulid.ULID]*world.Space),
		placements: make(map[ulid.ULID]*world.SpaceElement),
	}
}

func (s *memoryStore) Create(ctx context.Context, element *world.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *element
	s.elements[element.ID] = &copied
	return nil
}

func (s *memoryStore) UpdateImage(_ context.Context, id ulid.ULID, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	element, ok := s.elements[id]
	if !ok {
		return world.ErrNotFound
	}
	element.ImageURL = imageURL
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]*world.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*world.Element{}
	for _, e := range s.elements {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

// elementRepo, avatarRepo, mapRepo, and spaceRepo expose the store through
// the individual repository interfaces, mirroring how the postgres
// implementations are separate types over one pool.
type elementRepo struct{ *memoryStore }

type avatarRepo struct{ store *memoryStore }

func (r avatarRepo) Create(_ context.Context, avatar *world.Avatar) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *avatar
	r.store.avatars[avatar.ID] = &copied
	return nil
}

func (r avatarRepo) List(_ context.Context) ([]*world.Avatar, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := []*world.Avatar{}
	for _, a := range r.store.avatars {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

type mapRepo struct{ store *memoryStore }

func (r mapRepo) Create(_ context.Context, m *world.GameMap) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *m
	copied.Placements = nil
	r.store.maps[m.ID] = &copied
	return nil
}

func (r mapRepo) CreatePlacements(_ context.Context, mapID ulid.ULID, placements []world.MapPlacement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.maps[mapID]
	if !ok {
		return world.ErrNotFound
	}
	m.Placements = append(m.Placements, placements...)
	return nil
}

func (r mapRepo) Get(_ context.Context, id ulid.ULID) (*world.GameMap, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, ok := r.store.maps[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r mapRepo) List(_ context.Context) ([]*world.GameMap, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := []*world.GameMap{}
	for _, m := range r.store.maps {
		copied := *m
		copied.Placements = nil
		out = append(out, &copied)
	}
	return out, nil
}

type spaceRepo struct{ store *memoryStore }

func (r spaceRepo) Create(_ context.Context, space *world.Space) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *space
	r.store.spaces[space.ID] = &copied
	return nil
}

func (r spaceRepo) CreateElements(_ context.Context, elements []world.SpaceElement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range elements {
		copied := e
		r.store.placements[e.ID] = &copied
	}
	return nil
}

func (r spaceRepo) Get(_ context.Context, id ulid.ULID) (*world.Space, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	space, ok := r.store.spaces[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	copied := *space
	return &copied, nil
}

func (r spaceRepo) GetOwned(_ context.Context, id, creatorID ulid.ULID) (*world.Space, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	space, ok := r.store.spaces[id]
	if !ok || space.CreatorID != creatorID {
		return nil, world.ErrNotFound
	}
	copied := *space
	return &copied, nil
}

func (r spaceRepo) GetDetail(_ context.Context, id ulid.ULID) (*world.SpaceDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	space, ok := r.store.spaces[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	detail := &world.SpaceDetail{Space: *space, Elements: []world.PlacedElement{}}
	for _, p := range r.store.placements {
		if p.SpaceID != id {
			continue
		}
		element, ok := r.store.elements[p.ElementID]
		if !ok {
			continue
		}
		detail.Elements = append(detail.Elements, world.PlacedElement{
			ID:      p.ID,
			Element: *element,
			X:       p.X,
			Y:       p.Y,
		})
	}
	return detail, nil
}

func (r spaceRepo) ListByCreator(_ context.Context, creatorID ulid.ULID) ([]*world.Space, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := []*world.Space{}
	for _, space := range r.store.spaces {
		if space.CreatorID == creatorID {
			copied := *space
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r spaceRepo) Delete(_ context.Context, id ulid.ULID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.spaces[id]; !ok {
		return world.ErrNotFound
	}
	delete(r.store.spaces, id)
	for placementID, p := range r.store.placements {
		if p.SpaceID == id {
			delete(r.store.placements, placementID)
		}
	}
	return nil
}

func (r spaceRepo) AddElement(_ context.Context, element *world.SpaceElement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *element
	r.store.placements[element.ID] = &copied
	return nil
}

func (r spaceRepo) GetElement(_ context.Context, id ulid.ULID) (*world.OwnedPlacement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.placements[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	space, ok := r.store.spaces[p.SpaceID]
	if !ok {
		return nil, world.ErrNotFound
	}
	return &world.OwnedPlacement{SpaceElement: *p, SpaceCreatorID: space.CreatorID}, nil
}

func (r spaceRepo) DeleteElement(_ context.Context, id ulid.ULID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.placements, id)
	return nil
}

// noopTransactor runs fn directly. The in-memory store has no transactions;
// rollback behavior is covered by the postgres integration tests.
type noopTransactor struct{}

func (noopTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ = Describe("Space lifecycle", func() {
	var (
		ctx     context.Context
		store   *memoryStore
		catalog *world.CatalogService
		spaces  *world.SpaceService
		alice   ulid.ULID
		bob     ulid.ULID
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newMemoryStore()
		catalog = world.NewCatalogService(world.CatalogConfig{
			Elements:   elementRepo{store},
			Avatars:    avatarRepo{store},
			Maps:       mapRepo{store},
			Transactor: noopTransactor{},
		})
		spaces = world.NewSpaceService(world.SpaceConfig{
			Spaces:     spaceRepo{store},
			Maps:       mapRepo{store},
			Transactor: noopTransactor{},
		})
		alice = ulid.Make()
		bob = ulid.Make()
	})

	Describe("cloning a map into a space", func() {
		var mapID ulid.ULID

		BeforeEach(func() {
			chairID, err := catalog.CreateElement(ctx, 1, 1, false, "https://img/chair.png")
			Expect(err).NotTo(HaveOccurred())
			wallID, err := catalog.CreateElement(ctx, 4, 1, true, "https://img/wall.png")
			Expect(err).NotTo(HaveOccurred())

			mapID, err = catalog.CreateMap(ctx, "Plaza", "100x200", "https://img/plaza.png", []world.MapPlacement{
				{ElementID: chairID, X: 5, Y: 5},
				{ElementID: wallID, X: 0, Y: 0},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("copies dimensions and default placements", func() {
			spaceID, err := spaces.CreateFromMap(ctx, alice, "My Plaza", mapID)
			Expect(err).NotTo(HaveOccurred())

			detail, err := spaces.Get(ctx, spaceID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Space.Width).To(Equal(100))
			Expect(detail.Space.Height).To(Equal(200))
			Expect(detail.Elements).To(HaveLen(2))
		})

		It("gives each clone independent placements", func() {
			firstID, err := spaces.CreateFromMap(ctx, alice, "First", mapID)
			Expect(err).NotTo(HaveOccurred())
			secondID, err := spaces.CreateFromMap(ctx, bob, "Second", mapID)
			Expect(err).NotTo(HaveOccurred())

			first, err := spaces.Get(ctx, firstID)
			Expect(err).NotTo(HaveOccurred())
			Expect(spaces.RemoveElement(ctx, alice, first.Elements[0].ID)).To(Succeed())

			second, err := spaces.Get(ctx, secondID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Elements).To(HaveLen(2))
		})
	})

	Describe("placing elements", func() {
		var spaceID, elementID ulid.ULID

		BeforeEach(func() {
			var err error
			spaceID, err = spaces.Create(ctx, alice, "My Room", "10x20")
			Expect(err).NotTo(HaveOccurred())
			elementID, err = catalog.CreateElement(ctx, 1, 1, false, "https://img/chair.png")
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepts placements up to and including the boundary", func() {
			Expect(spaces.AddElement(ctx, alice, spaceID, elementID, 10, 20)).To(Succeed())
		})

		It("rejects placements past the boundary", func() {
			err := spaces.AddElement(ctx, alice, spaceID, elementID, 11, 5)
			Expect(err).To(MatchError(world.ErrOutOfBounds))
		})

		It("hides other users' spaces from placement", func() {
			err := spaces.AddElement(ctx, bob, spaceID, elementID, 5, 5)
			Expect(err).To(MatchError(world.ErrNotFound))
		})

		It("only lets the space owner remove placements", func() {
			Expect(spaces.AddElement(ctx, alice, spaceID, elementID, 5, 5)).To(Succeed())
			detail, err := spaces.Get(ctx, spaceID)
			Expect(err).NotTo(HaveOccurred())
			placementID := detail.Elements[0].ID

			Expect(spaces.RemoveElement(ctx, bob, placementID)).To(MatchError(world.ErrPermissionDenied))
			Expect(spaces.RemoveElement(ctx, alice, placementID)).To(Succeed())
		})
	})

	Describe("deleting spaces", func() {
		It("removes the space and its placements for the owner", func() {
			spaceID, err := spaces.Create(ctx, alice, "My Room", "10x20")
			Expect(err).NotTo(HaveOccurred())
			elementID, err := catalog.CreateElement(ctx, 1, 1, false, "https://img/chair.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(spaces.AddElement(ctx, alice, spaceID, elementID, 5, 5)).To(Succeed())

			Expect(spaces.Delete(ctx, alice, spaceID)).To(Succeed())

			_, err = spaces.Get(ctx, spaceID)
			Expect(err).To(MatchError(world.ErrNotFound))
			Expect(store.placements).To(BeEmpty())
		})

		It("refuses deletion by anyone else", func() {
			spaceID, err := spaces.Create(ctx, alice, "My Room", "10x20")
			Expect(err).NotTo(HaveOccurred())

			Expect(spaces.Delete(ctx, bob, spaceID)).To(MatchError(world.ErrPermissionDenied))

			_, err = spaces.Get(ctx, spaceID)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
