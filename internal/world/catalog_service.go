// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// CatalogService provides admin-gated management of elements, avatars, and
// map templates, plus the public catalog reads.
type CatalogService struct {
	elements ElementRepository
	avatars  AvatarRepository
	maps     MapRepository
	tx       Transactor
}

// CatalogConfig holds dependencies for CatalogService.
type CatalogConfig struct {
	Elements   ElementRepository
	Avatars    AvatarRepository
	Maps       MapRepository
	Transactor Transactor
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(cfg CatalogConfig) *CatalogService {
	return &CatalogService{
		elements: cfg.Elements,
		avatars:  cfg.Avatars,
		maps:     cfg.Maps,
		tx:       cfg.Transactor,
	}
}

// CreateElement validates and persists a new element.
func (s *CatalogService) CreateElement(ctx context.Context, width, height int, static bool, imageURL string) (ulid.ULID, error) {
	element, err := NewElement(width, height, static, imageURL)
	if err != nil {
		return ulid.ULID{}, err
	}
	if err := s.elements.Create(ctx, element); err != nil {
		return ulid.ULID{}, oops.Code("ELEMENT_CREATE_FAILED").Wrap(err)
	}
	return element.ID, nil
}

// UpdateElementImage replaces an element's image reference. Dimensions and
// the static flag are immutable through the API.
// Fails with ErrNotFound (wrapped) if the element does not exist.
func (s *CatalogService) UpdateElementImage(ctx context.Context, id ulid.ULID, imageURL string) error {
	if imageURL == "" {
		return &ValidationError{Field: "imageUrl", Message: "cannot be empty"}
	}
	if err := s.elements.UpdateImage(ctx, id, imageURL); err != nil {
		return oops.Code("ELEMENT_UPDATE_FAILED").With("id", id.String()).Wrap(err)
	}
	return nil
}

// CreateAvatar validates and persists a new avatar.
func (s *CatalogService) CreateAvatar(ctx context.Context, name, imageURL string) (ulid.ULID, error) {
	avatar, err := NewAvatar(name, imageURL)
	if err != nil {
		return ulid.ULID{}, err
	}
	if err := s.avatars.Create(ctx, avatar); err != nil {
		return ulid.ULID{}, oops.Code("AVATAR_CREATE_FAILED").Wrap(err)
	}
	return avatar.ID, nil
}

// CreateMap validates and atomically persists a new map template with its
// default placements: either the map and all placements exist afterwards,
// or none do.
func (s *CatalogService) CreateMap(ctx context.Context, name, dimensions, thumbnail string, placements []MapPlacement) (ulid.ULID, error) {
	dims, err := ParseDimensions(dimensions)
	if err != nil {
		return ulid.ULID{}, err
	}
	m, err := NewGameMap(name, dims, thumbnail, placements)
	if err != nil {
		return ulid.ULID{}, err
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.maps.Create(ctx, m); err != nil {
			return err
		}
		return s.maps.CreatePlacements(ctx, m.ID, m.Placements)
	})
	if err != nil {
		return ulid.ULID{}, oops.Code("MAP_CREATE_FAILED").With("name", name).Wrap(err)
	}

	return m.ID, nil
}

// ListMaps returns all map templates without their placements.
func (s *CatalogService) ListMaps(ctx context.Context) ([]*GameMap, error) {
	maps, err := s.maps.List(ctx)
	if err != nil {
		return nil, oops.Code("MAP_LIST_FAILED").Wrap(err)
	}
	return maps, nil
}

// ListElements returns the full element catalog.
func (s *CatalogService) ListElements(ctx context.Context) ([]*Element, error) {
	elements, err := s.elements.List(ctx)
	if err != nil {
		return nil, oops.Code("ELEMENT_LIST_FAILED").Wrap(err)
	}
	return elements, nil
}

// ListAvatars returns the full avatar catalog.
func (s *CatalogService) ListAvatars(ctx context.Context) ([]*Avatar, error) {
	avatars, err := s.avatars.List(ctx)
	if err != nil {
		return nil, oops.Code("AVATAR_LIST_FAILED").Wrap(err)
	}
	return avatars, nil
}
