// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package world

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength = 100
	MaxDimension  = 10000
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks that a name is valid.
// Names must be non-empty, valid UTF-8, no control characters, and within length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// hasControlChars returns true if the string contains control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// Dimensions is a width/height pair, serialized on the wire as "WxH".
type Dimensions struct {
	Width  int
	Height int
}

// dimensionsRegex matches the "WxH" wire format, e.g. "100x200".
var dimensionsRegex = regexp.MustCompile(`^(\d{1,5})x(\d{1,5})$`)

// ParseDimensions parses the "WxH" wire format into a Dimensions pair.
func ParseDimensions(s string) (Dimensions, error) {
	m := dimensionsRegex.FindStringSubmatch(s)
	if m == nil {
		return Dimensions{}, &ValidationError{Field: "dimensions", Message: fmt.Sprintf("%q is not in WxH format", s)}
	}
	width, err := strconv.Atoi(m[1])
	if err != nil {
		return Dimensions{}, &ValidationError{Field: "dimensions", Message: "width is not a number"}
	}
	height, err := strconv.Atoi(m[2])
	if err != nil {
		return Dimensions{}, &ValidationError{Field: "dimensions", Message: "height is not a number"}
	}
	d := Dimensions{Width: width, Height: height}
	if err := d.Validate(); err != nil {
		return Dimensions{}, err
	}
	return d, nil
}

// Validate checks that both dimensions are positive and within limits.
func (d Dimensions) Validate() error {
	if d.Width <= 0 || d.Width > MaxDimension {
		return &ValidationError{Field: "width", Message: fmt.Sprintf("must be between 1 and %d", MaxDimension)}
	}
	if d.Height <= 0 || d.Height > MaxDimension {
		return &ValidationError{Field: "height", Message: fmt.Sprintf("must be between 1 and %d", MaxDimension)}
	}
	return nil
}

// String renders the "WxH" wire format.
func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}
