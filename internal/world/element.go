// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

// Package world holds the domain model of the Gridverse platform: reusable
// elements, map templates, avatars, and user-built spaces.
package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Element is a placeable visual asset with fixed dimensions.
// Static elements cannot be walked over by clients.
type Element struct {
	ID        ulid.ULID
	Width     int
	Height    int
	Static    bool
	ImageURL  string
	CreatedAt time.Time
}

// NewElement creates an Element with a generated ID.
// The element is validated before being returned.
func NewElement(width, height int, static bool, imageURL string) (*Element, error) {
	e := &Element{
		ID:        ulid.Make(),
		Width:     width,
		Height:    height,
		Static:    static,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks that the element has required fields.
func (e *Element) Validate() error {
	if e.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := (Dimensions{Width: e.Width, Height: e.Height}).Validate(); err != nil {
		return err
	}
	if e.ImageURL == "" {
		return &ValidationError{Field: "imageUrl", Message: "cannot be empty"}
	}
	return nil
}
