// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchlab/garb/component"
)

const testCatalog = `
materials:
  - id: cotton-1
    category: body
    base_color: "#F5F0E8"
    roughness: 0.85
    textures:
      albedo: textures/cotton/albedo.png
      normal: textures/cotton/normal.png
  - id: brass-button
    category: buttons
    roughness: 0.25
    metalness: 0.9
    textures:
      albedo: textures/brass/albedo.png
`

func catalogFS(data string) fstest.MapFS {
	return fstest.MapFS{"materials.yaml": &fstest.MapFile{Data: []byte(data)}}
}

func TestLoad(t *testing.T) {
	ct, err := Load(catalogFS(testCatalog), "materials.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, ct.Len())
	assert.Equal(t, []string{"cotton-1", "brass-button"}, ct.IDs())

	d, err := ct.Descriptor("cotton-1")
	require.NoError(t, err)
	assert.Equal(t, component.Body, d.Category)
	assert.Equal(t, "textures/cotton/normal.png", d.Textures.Normal)
	assert.InDelta(t, 0.85, d.Roughness, 1e-6)

	d, err = ct.Descriptor("brass-button")
	require.NoError(t, err)
	assert.Equal(t, component.Buttons, d.Category)
	assert.InDelta(t, 0.9, d.Metalness, 1e-6)
}

func TestDescriptorNotFound(t *testing.T) {
	ct, err := Load(catalogFS(testCatalog), "materials.yaml")
	require.NoError(t, err)
	_, err = ct.Descriptor("velvet-9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadRejectsBadEntries(t *testing.T) {
	bad := []string{
		"materials:\n  - id: \"\"\n    roughness: 0.5\n",
		"materials:\n  - id: a\n    category: nope\n",
		"materials:\n  - id: a\n    roughness: 2.0\n",
		"materials:\n  - id: a\n  - id: a\n",
	}
	for _, data := range bad {
		_, err := Load(catalogFS(data), "materials.yaml")
		assert.Error(t, err, data)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(catalogFS(testCatalog), "absent.yaml")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
