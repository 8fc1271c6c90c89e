// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package seed

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridverse/gridverse/internal/world"
)

// Catalog is the slice of the catalog service the seeder needs.
type Catalog interface {
	CreateElement(ctx context.Context, width, height int, static bool, imageURL string) (ulid.ULID, error)
	CreateAvatar(ctx context.Context, name, imageURL string) (ulid.ULID, error)
	CreateMap(ctx context.Context, name, dimensions, thumbnail string, placements []world.MapPlacement) (ulid.ULID, error)
	ListElements(ctx context.Context) ([]*world.Element, error)
	ListAvatars(ctx context.Context) ([]*world.Avatar, error)
	ListMaps(ctx context.Context) ([]*world.GameMap, error)
}

// Result counts what Apply created and skipped.
type Result struct {
	AvatarsCreated  int
	AvatarsSkipped  int
	ElementsCreated int
	ElementsSkipped int
	MapsCreated     int
	MapsSkipped     int
}

// Seeder applies seed files to the catalog. Seeding is idempotent: avatars
// are matched by name, elements by image URL, and maps by name; entries that
// already exist are skipped.
type Seeder struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(catalog Catalog, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{catalog: catalog, logger: logger}
}

// Apply creates the file's avatars, elements, and maps.
func (s *Seeder) Apply(ctx context.Context, file *File) (*Result, error) {
	result := &Result{}

	elementIDs, err := s.applyElements(ctx, file.Elements, result)
	if err != nil {
		return nil, err
	}
	if err := s.applyAvatars(ctx, file.Avatars, result); err != nil {
		return nil, err
	}
	if err := s.applyMaps(ctx, file.Maps, elementIDs, result); err != nil {
		return nil, err
	}

	return result, nil
}

// applyElements creates missing elements and returns seed key to element ID
// mappings for both created and pre-existing elements.
func (s *Seeder) applyElements(ctx context.Context, seeds []ElementSeed, result *Result) (map[string]ulid.ULID, error) {
	existing, err := s.catalog.ListElements(ctx)
	if err != nil {
		return nil, oops.Code("SEED_APPLY_FAILED").Wrap(err)
	}
	byImage := make(map[string]ulid.ULID, len(existing))
	for _, e := range existing {
		byImage[e.ImageURL] = e.ID
	}

	ids := make(map[string]ulid.ULID, len(seeds))
	for _, seed := range seeds {
		if id, ok := byImage[seed.Image]; ok {
			ids[seed.Key] = id
			result.ElementsSkipped++
			s.logger.Debug("element already seeded", "key", seed.Key)
			continue
		}
		id, err := s.catalog.CreateElement(ctx, seed.Width, seed.Height, seed.Static, seed.Image)
		if err != nil {
			return nil, oops.Code("SEED_APPLY_FAILED").With("element", seed.Key).Wrap(err)
		}
		ids[seed.Key] = id
		result.ElementsCreated++
		s.logger.Info("seeded element", "key", seed.Key, "id", id.String())
	}
	return ids, nil
}

func (s *Seeder) applyAvatars(ctx context.Context, seeds []AvatarSeed, result *Result) error {
	existing, err := s.catalog.ListAvatars(ctx)
	if err != nil {
		return oops.Code("SEED_APPLY_FAILED").Wrap(err)
	}
	byName := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		byName[a.Name] = struct{}{}
	}

	for _, seed := range seeds {
		if _, ok := byName[seed.Name]; ok {
			result.AvatarsSkipped++
			s.logger.Debug("avatar already seeded", "name", seed.Name)
			continue
		}
		id, err := s.catalog.CreateAvatar(ctx, seed.Name, seed.Image)
		if err != nil {
			return oops.Code("SEED_APPLY_FAILED").With("avatar", seed.Name).Wrap(err)
		}
		result.AvatarsCreated++
		s.logger.Info("seeded avatar", "name", seed.Name, "id", id.String())
	}
	return nil
}

func (s *Seeder) applyMaps(ctx context.Context, seeds []MapSeed, elementIDs map[string]ulid.ULID, result *Result) error {
	existing, err := s.catalog.ListMaps(ctx)
	if err != nil {
		return oops.Code("SEED_APPLY_FAILED").Wrap(err)
	}
	byName := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		byName[m.Name] = struct{}{}
	}

	for _, seed := range seeds {
		if _, ok := byName[seed.Name]; ok {
			result.MapsSkipped++
			s.logger.Debug("map already seeded", "name", seed.Name)
			continue
		}

		placements := make([]world.MapPlacement, len(seed.Placements))
		for i, p := range seed.Placements {
			elementID, ok := elementIDs[p.Element]
			if !ok {
				return oops.Code("SEED_UNKNOWN_ELEMENT").
					With("map", seed.Name).
					With("element", p.Element).
					Errorf("map %q references element key %q not present in the seed file", seed.Name, p.Element)
			}
			placements[i] = world.MapPlacement{ElementID: elementID, X: p.X, Y: p.Y}
		}

		id, err := s.catalog.CreateMap(ctx, seed.Name, seed.Dimensions, seed.Thumbnail, placements)
		if err != nil {
			return oops.Code("SEED_APPLY_FAILED").With("map", seed.Name).Wrap(err)
		}
		result.MapsCreated++
		s.logger.Info("seeded map", "name", seed.Name, "id", id.String())
	}
	return nil
}
