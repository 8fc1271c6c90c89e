// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// GameMap is a named template: dimensions plus a fixed, ordered set of
// default element placements. Maps are created once, atomically with their
// placements, and immutable thereafter.
type GameMap struct {
	ID         ulid.ULID
	Name       string
	Width      int
	Height     int
	Thumbnail  string
	Placements []MapPlacement
	CreatedAt  time.Time
}

// MapPlacement is one default element position within a map template.
type MapPlacement struct {
	ElementID ulid.ULID
	X         int
	Y         int
}

// NewGameMap creates a GameMap with a generated ID.
// The map is validated before being returned.
func NewGameMap(name string, dims Dimensions, thumbnail string, placements []MapPlacement) (*GameMap, error) {
	m := &GameMap{
		ID:         ulid.Make(),
		Name:       name,
		Width:      dims.Width,
		Height:     dims.Height,
		Thumbnail:  thumbnail,
		Placements: placements,
		CreatedAt:  time.Now(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the map and its placements have required fields.
func (m *GameMap) Validate() error {
	if m.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := ValidateName(m.Name); err != nil {
		return err
	}
	if err := m.Dimensions().Validate(); err != nil {
		return err
	}
	for _, p := range m.Placements {
		if p.ElementID.IsZero() {
			return &ValidationError{Field: "defaultElements", Message: "elementId cannot be zero"}
		}
		if p.X < 0 || p.Y < 0 {
			return &ValidationError{Field: "defaultElements", Message: "coordinates cannot be negative"}
		}
	}
	return nil
}

// Dimensions returns the map's width/height pair.
func (m *GameMap) Dimensions() Dimensions {
	return Dimensions{Width: m.Width, Height: m.Height}
}
