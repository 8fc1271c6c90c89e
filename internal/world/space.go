// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Space is a user-owned instantiated area, optionally seeded from a GameMap.
// Dimensions are fixed at creation; placements are bounds-checked against
// them when added.
type Space struct {
	ID        ulid.ULID
	Name      string
	Width     int
	Height    int
	Thumbnail *string
	CreatorID ulid.ULID
	CreatedAt time.Time
}

// NewSpace creates a Space with a generated ID.
// The space is validated before being returned.
func NewSpace(name string, dims Dimensions, creatorID ulid.ULID) (*Space, error) {
	s := &Space{
		ID:        ulid.Make(),
		Name:      name,
		Width:     dims.Width,
		Height:    dims.Height,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the space has required fields.
func (s *Space) Validate() error {
	if s.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if err := s.Dimensions().Validate(); err != nil {
		return err
	}
	if s.CreatorID.IsZero() {
		return &ValidationError{Field: "creatorId", Message: "cannot be zero"}
	}
	return nil
}

// Dimensions returns the space's width/height pair.
func (s *Space) Dimensions() Dimensions {
	return Dimensions{Width: s.Width, Height: s.Height}
}

// Contains reports whether (x, y) lies within the space.
// Both edges are inclusive: x == Width and y == Height are legal placements.
func (s *Space) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x <= s.Width && y <= s.Height
}

// SpaceElement is one placed Element instance within a Space.
type SpaceElement struct {
	ID        ulid.ULID
	SpaceID   ulid.ULID
	ElementID ulid.ULID
	X         int
	Y         int
}

// PlacedElement is a space placement with its element detail inlined,
// as returned by the public space read.
type PlacedElement struct {
	ID      ulid.ULID
	Element Element
	X       int
	Y       int
}

// SpaceDetail is the public view of a space: its dimensions and full
// placement list.
type SpaceDetail struct {
	Space    Space
	Elements []PlacedElement
}

// OwnedPlacement is a placement resolved to its owning space's creator,
// used for ownership checks on placement removal.
type OwnedPlacement struct {
	SpaceElement
	SpaceCreatorID ulid.ULID
}
