// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Transactor runs a function within a single database transaction.
// Repository methods called inside fn participate in that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ElementRepository manages element persistence.
type ElementRepository interface {
	// Create persists a new element.
	Create(ctx context.Context, element *Element) error

	// UpdateImage replaces the element's image reference only.
	// Returns ErrNotFound (wrapped) if the element does not exist.
	UpdateImage(ctx context.Context, id ulid.ULID, imageURL string) error

	// List returns all elements.
	List(ctx context.Context) ([]*Element, error)
}

// AvatarRepository manages avatar persistence.
type AvatarRepository interface {
	// Create persists a new avatar.
	Create(ctx context.Context, avatar *Avatar) error

	// List returns all avatars.
	List(ctx context.Context) ([]*Avatar, error)
}

// MapRepository manages map template persistence.
type MapRepository interface {
	// Create persists the map row. Placements are inserted by
	// CreatePlacements within the same transaction.
	Create(ctx context.Context, m *GameMap) error

	// CreatePlacements persists the map's default placements.
	CreatePlacements(ctx context.Context, mapID ulid.ULID, placements []MapPlacement) error

	// Get retrieves a map with its placements.
	// Returns ErrNotFound (wrapped) if absent.
	Get(ctx context.Context, id ulid.ULID) (*GameMap, error)

	// List returns all maps without their placements.
	List(ctx context.Context) ([]*GameMap, error)
}

// SpaceRepository manages space and placement persistence.
type SpaceRepository interface {
	// Create persists a new space.
	Create(ctx context.Context, space *Space) error

	// CreateElements bulk-inserts placements, used when cloning a map.
	CreateElements(ctx context.Context, elements []SpaceElement) error

	// Get retrieves a space by ID. Returns ErrNotFound (wrapped) if absent.
	Get(ctx context.Context, id ulid.ULID) (*Space, error)

	// GetOwned retrieves a space by ID scoped to its creator: a space that
	// exists but belongs to someone else reads as ErrNotFound. The returned
	// space carries the dimensions used for bounds checks.
	GetOwned(ctx context.Context, id, creatorID ulid.ULID) (*Space, error)

	// GetDetail retrieves a space with its placements and element detail.
	GetDetail(ctx context.Context, id ulid.ULID) (*SpaceDetail, error)

	// ListByCreator returns all spaces owned by the given user.
	ListByCreator(ctx context.Context, creatorID ulid.ULID) ([]*Space, error)

	// Delete removes a space; placements go with it via cascade.
	Delete(ctx context.Context, id ulid.ULID) error

	// AddElement persists a single placement.
	AddElement(ctx context.Context, element *SpaceElement) error

	// GetElement resolves a placement to its owning space's creator.
	// Returns ErrNotFound (wrapped) if the placement does not exist.
	GetElement(ctx context.Context, id ulid.ULID) (*OwnedPlacement, error)

	// DeleteElement removes a single placement.
	DeleteElement(ctx context.Context, id ulid.ULID) error
}
