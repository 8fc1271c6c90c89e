// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSeed = `
avatars:
  - name: Timmy
    image: https://cdn.example.com/avatars/timmy.png
elements:
  - key: chair
    width: 1
    height: 1
    image: https://cdn.example.com/elements/chair.png
  - key: wall
    width: 4
    height: 1
    static: true
    image: https://cdn.example.com/elements/wall.png
maps:
  - name: Plaza
    dimensions: 100x200
    thumbnail: https://cdn.example.com/maps/plaza.png
    placements:
      - element: chair
        x: 10
        y: 12
      - element: wall
        x: 0
        y: 0
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		file, err := Load(writeSeedFile(t, validSeed))
		require.NoError(t, err)
		assert.Len(t, file.Avatars, 1)
		assert.Len(t, file.Elements, 2)
		require.Len(t, file.Maps, 1)
		assert.Equal(t, "100x200", file.Maps[0].Dimensions)
		assert.Len(t, file.Maps[0].Placements, 2)
		assert.True(t, file.Elements[1].Static)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeSeedFile(t, "avatars: [whoops"))
		require.Error(t, err)
	})
}

func TestValidateSchema(t *testing.T) {
	t.Run("valid seed passes", func(t *testing.T) {
		require.NoError(t, ValidateSchema([]byte(validSeed)))
	})

	t.Run("empty data fails", func(t *testing.T) {
		require.Error(t, ValidateSchema(nil))
	})

	t.Run("element without image fails", func(t *testing.T) {
		bad := `
elements:
  - key: chair
    width: 1
    height: 1
`
		require.Error(t, ValidateSchema([]byte(bad)))
	})

	t.Run("malformed dimensions fail", func(t *testing.T) {
		bad := `
maps:
  - name: Plaza
    dimensions: wide
    thumbnail: https://cdn.example.com/maps/plaza.png
`
		require.Error(t, ValidateSchema([]byte(bad)))
	})

	t.Run("zero width element fails", func(t *testing.T) {
		bad := `
elements:
  - key: chair
    width: 0
    height: 1
    image: https://cdn.example.com/elements/chair.png
`
		require.Error(t, ValidateSchema([]byte(bad)))
	})
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), SchemaID)
	assert.Contains(t, string(data), "Gridverse Seed File")
}
