// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SpaceService provides user-owned space operations: creation (standalone or
// cloned from a map template), placement management, and public reads.
type SpaceService struct {
	spaces SpaceRepository
	maps   MapRepository
	tx     Transactor
}

// SpaceConfig holds dependencies for SpaceService.
type SpaceConfig struct {
	Spaces     SpaceRepository
	Maps       MapRepository
	Transactor Transactor
}

// NewSpaceService creates a new SpaceService.
func NewSpaceService(cfg SpaceConfig) *SpaceService {
	return &SpaceService{
		spaces: cfg.Spaces,
		maps:   cfg.Maps,
		tx:     cfg.Transactor,
	}
}

// Create makes an empty space with explicit dimensions, owned by the caller.
func (s *SpaceService) Create(ctx context.Context, creatorID ulid.ULID, name, dimensions string) (ulid.ULID, error) {
	dims, err := ParseDimensions(dimensions)
	if err != nil {
		return ulid.ULID{}, err
	}
	space, err := NewSpace(name, dims, creatorID)
	if err != nil {
		return ulid.ULID{}, err
	}
	if err := s.spaces.Create(ctx, space); err != nil {
		return ulid.ULID{}, oops.Code("SPACE_CREATE_FAILED").Wrap(err)
	}
	return space.ID, nil
}

// CreateFromMap clones a map template into a new space owned by the caller:
// the space takes the map's dimensions and a copy of its default placements.
// The clone is atomic; if any placement insert fails, the space row does not
// survive either.
func (s *SpaceService) CreateFromMap(ctx context.Context, creatorID ulid.ULID, name string, mapID ulid.ULID) (ulid.ULID, error) {
	m, err := s.maps.Get(ctx, mapID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ulid.ULID{}, oops.Code("MAP_NOT_FOUND").With("map_id", mapID.String()).Wrap(err)
		}
		return ulid.ULID{}, oops.Code("SPACE_CREATE_FAILED").With("map_id", mapID.String()).Wrap(err)
	}

	space, err := NewSpace(name, m.Dimensions(), creatorID)
	if err != nil {
		return ulid.ULID{}, err
	}

	elements := make([]SpaceElement, len(m.Placements))
	for i, p := range m.Placements {
		elements[i] = SpaceElement{
			ID:        ulid.Make(),
			SpaceID:   space.ID,
			ElementID: p.ElementID,
			X:         p.X,
			Y:         p.Y,
		}
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.spaces.Create(ctx, space); err != nil {
			return err
		}
		return s.spaces.CreateElements(ctx, elements)
	})
	if err != nil {
		return ulid.ULID{}, oops.Code("SPACE_CLONE_FAILED").
			With("map_id", mapID.String()).
			Wrap(err)
	}

	return space.ID, nil
}

// Delete removes a space. Only the creator may delete it; placements are
// removed by the persistence layer's cascade.
func (s *SpaceService) Delete(ctx context.Context, callerID, spaceID ulid.ULID) error {
	space, err := s.spaces.Get(ctx, spaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SPACE_NOT_FOUND").With("space_id", spaceID.String()).Wrap(err)
		}
		return oops.Code("SPACE_DELETE_FAILED").With("space_id", spaceID.String()).Wrap(err)
	}
	if space.CreatorID != callerID {
		return oops.Code("SPACE_FORBIDDEN").
			With("space_id", spaceID.String()).
			Wrap(ErrPermissionDenied)
	}
	if err := s.spaces.Delete(ctx, spaceID); err != nil {
		return oops.Code("SPACE_DELETE_FAILED").With("space_id", spaceID.String()).Wrap(err)
	}
	return nil
}

// ListOwn returns the caller's spaces.
func (s *SpaceService) ListOwn(ctx context.Context, callerID ulid.ULID) ([]*Space, error) {
	spaces, err := s.spaces.ListByCreator(ctx, callerID)
	if err != nil {
		return nil, oops.Code("SPACE_LIST_FAILED").Wrap(err)
	}
	return spaces, nil
}

// Get returns a space's dimensions and full placement list.
// Publicly readable; no ownership gate.
func (s *SpaceService) Get(ctx context.Context, spaceID ulid.ULID) (*SpaceDetail, error) {
	detail, err := s.spaces.GetDetail(ctx, spaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SPACE_NOT_FOUND").With("space_id", spaceID.String()).Wrap(err)
		}
		return nil, oops.Code("SPACE_GET_FAILED").With("space_id", spaceID.String()).Wrap(err)
	}
	return detail, nil
}

// AddElement places an element in the caller's space. The owner-scoped
// lookup doubles as the existence check, and the bounds check uses that
// space's actual dimensions. Boundary coordinates are inclusive.
func (s *SpaceService) AddElement(ctx context.Context, callerID, spaceID, elementID ulid.ULID, x, y int) error {
	space, err := s.spaces.GetOwned(ctx, spaceID, callerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SPACE_NOT_FOUND").With("space_id", spaceID.String()).Wrap(err)
		}
		return oops.Code("SPACE_ADD_ELEMENT_FAILED").With("space_id", spaceID.String()).Wrap(err)
	}

	if !space.Contains(x, y) {
		return oops.Code("SPACE_OUT_OF_BOUNDS").
			With("x", x).
			With("y", y).
			With("width", space.Width).
			With("height", space.Height).
			Wrap(ErrOutOfBounds)
	}

	element := &SpaceElement{
		ID:        ulid.Make(),
		SpaceID:   spaceID,
		ElementID: elementID,
		X:         x,
		Y:         y,
	}
	if err := s.spaces.AddElement(ctx, element); err != nil {
		return oops.Code("SPACE_ADD_ELEMENT_FAILED").With("space_id", spaceID.String()).Wrap(err)
	}
	return nil
}

// RemoveElement deletes a single placement. The placement is resolved to its
// owning space to verify the caller is the creator; an unresolvable
// placement is treated as a permission failure, not a distinct not-found.
func (s *SpaceService) RemoveElement(ctx context.Context, callerID, spaceElementID ulid.ULID) error {
	placement, err := s.spaces.GetElement(ctx, spaceElementID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SPACE_FORBIDDEN").
				With("space_element_id", spaceElementID.String()).
				Wrap(ErrPermissionDenied)
		}
		return oops.Code("SPACE_REMOVE_ELEMENT_FAILED").
			With("space_element_id", spaceElementID.String()).
			Wrap(err)
	}
	if placement.SpaceCreatorID != callerID {
		return oops.Code("SPACE_FORBIDDEN").
			With("space_element_id", spaceElementID.String()).
			Wrap(ErrPermissionDenied)
	}
	if err := s.spaces.DeleteElement(ctx, spaceElementID); err != nil {
		return oops.Code("SPACE_REMOVE_ELEMENT_FAILED").
			With("space_element_id", spaceElementID.String()).
			Wrap(err)
	}
	return nil
}
