// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Avatar is a selectable character appearance.
// Avatars are created by admins and immutable through the API.
type Avatar struct {
	ID        ulid.ULID
	Name      string
	ImageURL  string
	CreatedAt time.Time
}

// NewAvatar creates an Avatar with a generated ID.
// The avatar is validated before being returned.
func NewAvatar(name, imageURL string) (*Avatar, error) {
	a := &Avatar{
		ID:        ulid.Make(),
		Name:      name,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks that the avatar has required fields.
func (a *Avatar) Validate() error {
	if a.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := ValidateName(a.Name); err != nil {
		return err
	}
	if a.ImageURL == "" {
		return &ValidationError{Field: "imageUrl", Message: "cannot be empty"}
	}
	return nil
}
