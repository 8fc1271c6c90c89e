// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

// Package seed loads catalog seed files and applies them to the database.
package seed

import (
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// AvatarSeed describes one avatar to create.
type AvatarSeed struct {
	Name  string `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Image string `yaml:"image" json:"image" jsonschema:"required,minLength=1"`
}

// ElementSeed describes one element to create. The key is local to the seed
// file and is how map placements refer to the element.
type ElementSeed struct {
	Key    string `yaml:"key" json:"key" jsonschema:"required,minLength=1"`
	Width  int    `yaml:"width" json:"width" jsonschema:"required,minimum=1"`
	Height int    `yaml:"height" json:"height" jsonschema:"required,minimum=1"`
	Static bool   `yaml:"static,omitempty" json:"static,omitempty"`
	Image  string `yaml:"image" json:"image" jsonschema:"required,minLength=1"`
}

// PlacementSeed places an element, referenced by key, on a map.
type PlacementSeed struct {
	Element string `yaml:"element" json:"element" jsonschema:"required,minLength=1"`
	X       int    `yaml:"x" json:"x" jsonschema:"minimum=0"`
	Y       int    `yaml:"y" json:"y" jsonschema:"minimum=0"`
}

// MapSeed describes one map template to create.
type MapSeed struct {
	Name       string          `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Dimensions string          `yaml:"dimensions" json:"dimensions" jsonschema:"required,pattern=^[0-9]+x[0-9]+$"`
	Thumbnail  string          `yaml:"thumbnail" json:"thumbnail" jsonschema:"required,minLength=1"`
	Placements []PlacementSeed `yaml:"placements,omitempty" json:"placements,omitempty"`
}

// File is the root of a seed file.
type File struct {
	Avatars  []AvatarSeed  `yaml:"avatars,omitempty" json:"avatars,omitempty"`
	Elements []ElementSeed `yaml:"elements,omitempty" json:"elements,omitempty"`
	Maps     []MapSeed     `yaml:"maps,omitempty" json:"maps,omitempty"`
}

// Load reads and parses a seed file, validating it against the schema first.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, oops.Code("SEED_PARSE_FAILED").With("path", path).Wrap(err)
	}

	return &file, nil
}
