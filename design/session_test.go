// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package design

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchlab/garb/catalog"
	"github.com/stitchlab/garb/component"
	"github.com/stitchlab/garb/compose"
	"github.com/stitchlab/garb/material"
)

const testCatalog = `
materials:
  - id: cotton-1
    category: body
    roughness: 0.85
    textures:
      albedo: textures/albedo.png
  - id: linen-2
    category: body
    roughness: 0.6
`

func testAssets(t *testing.T) fstest.MapFS {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return fstest.MapFS{
		"materials.yaml":      &fstest.MapFile{Data: []byte(testCatalog)},
		"textures/albedo.png": &fstest.MapFile{Data: buf.Bytes()},
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	fsys := testAssets(t)
	ct, err := catalog.Load(fsys, "materials.yaml")
	require.NoError(t, err)
	loader := material.FileLoader{FS: fsys}
	return NewSession(Config{
		Catalog:    ct,
		Materials:  material.NewCache(loader, material.CacheOptions{}),
		Compositor: compose.NewCompositor(loader, nil, nil),
	})
}

func TestSetMaterialUnknownID(t *testing.T) {
	s := newTestSession(t)
	err := s.SetMaterial(component.Body, "velvet-9")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, ok := s.MaterialID(component.Body)
	assert.False(t, ok, "failed selection must not mutate state")
	assert.False(t, s.CanUndo(), "failed selection must not commit")
}

func TestMaterialResolution(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))
	require.NoError(t, s.SetColor(component.Body, "#FF0000"))

	m1, err := s.Material(context.Background(), component.Body)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, m1.BaseColor)
	assert.True(t, m1.HasTexture(material.SlotAlbedo))

	m2, err := s.Material(context.Background(), component.Body)
	require.NoError(t, err)
	assert.Same(t, m1, m2)
}

func TestSetColorValidatesAndTracksRecents(t *testing.T) {
	s := newTestSession(t)
	assert.Error(t, s.SetColor(component.Body, "chartreuse"))

	require.NoError(t, s.SetColor(component.Body, "#ff0000"))
	require.NoError(t, s.SetColor(component.Collar, "#00FF00"))
	require.NoError(t, s.SetColor(component.Hem, "#ff0000"))

	assert.Equal(t, []string{"#FF0000", "#00FF00"}, s.RecentColors(), "deduped, newest first")

	for i := 0; i < 12; i++ {
		require.NoError(t, s.SetColor(component.Body, fmt.Sprintf("#%06X", i*0x111111%0xFFFFFF)))
	}
	assert.Len(t, s.RecentColors(), 8)
}

func TestUndoRedoRestoresSelections(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))
	require.NoError(t, s.SetColor(component.Body, "#FF0000"))
	s.Select(component.Body)

	require.True(t, s.Undo()) // selection
	_, hasSel := s.Selected()
	assert.False(t, hasSel)

	require.True(t, s.Undo()) // color
	_, hasColor := s.Color(component.Body)
	assert.False(t, hasColor)
	id, ok := s.MaterialID(component.Body)
	assert.True(t, ok)
	assert.Equal(t, "cotton-1", id)

	require.True(t, s.Redo())
	c, ok := s.Color(component.Body)
	assert.True(t, ok)
	assert.Equal(t, "#FF0000", c)
}

func TestUndoBoundary(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.Undo(), "empty history has nothing to undo")
	assert.False(t, s.Redo())

	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))
	assert.True(t, s.Undo())
	assert.False(t, s.Undo(), "cannot undo past the seed state")
}

func TestPrintLifecycle(t *testing.T) {
	s := newTestSession(t)
	i := s.AddPrint(compose.Layer{
		Source:    compose.Source{Text: "GARB", Style: compose.TextStyle{Size: 16}},
		Position:  compose.Point{X: 0.5, Y: 0.5},
		Component: component.Body,
	})
	assert.Equal(t, 0, i)

	stack := s.Prints(component.Body)
	require.Len(t, stack, 1)
	assert.Equal(t, float32(1), stack[0].Opacity, "zero opacity normalizes to opaque")
	assert.Equal(t, float32(1), stack[0].Scale)

	l := stack[0]
	l.Rotation = 30
	require.NoError(t, s.UpdatePrint(component.Body, 0, l))
	assert.Equal(t, float32(30), s.Prints(component.Body)[0].Rotation)

	assert.Error(t, s.UpdatePrint(component.Body, 5, l))
	assert.Error(t, s.RemovePrint(component.Body, -1))

	require.NoError(t, s.RemovePrint(component.Body, 0))
	assert.Empty(t, s.Prints(component.Body))
}

func TestCompositeRestoresBaseIdentityAfterRemoval(t *testing.T) {
	s := newTestSession(t)
	base := image.NewRGBA(image.Rect(0, 0, 32, 32))
	ctx := context.Background()

	s.AddPrint(compose.Layer{
		Source:    compose.Source{Text: "X", Style: compose.TextStyle{Size: 12}},
		Position:  compose.Point{X: 0.5, Y: 0.5},
		Component: component.Body,
	})
	withPrint, err := s.Composite(ctx, component.Body, base)
	require.NoError(t, err)
	assert.NotSame(t, base, withPrint)

	require.NoError(t, s.RemovePrint(component.Body, 0))
	restored, err := s.Composite(ctx, component.Body, base)
	require.NoError(t, err)
	assert.Same(t, base, restored, "no layers restores the base texture reference")
}

func TestLoadModelResetsSessionState(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))
	s.AddPrint(compose.Layer{Source: compose.Source{Text: "X"}, Component: component.Body})

	m := s.LoadModel([]string{"sleeve_left", "28_knit_fleece_terry_front_109192_0", "unknown_mesh_xyz"})
	assert.Equal(t, component.SleeveLeft, m["sleeve_left"])
	assert.Equal(t, component.Body, m["28_knit_fleece_terry_front_109192_0"])
	assert.NotContains(t, m, "unknown_mesh_xyz")

	assert.Empty(t, s.Prints(component.Body), "prints are session-only per model")
	id, ok := s.MaterialID(component.Body)
	assert.True(t, ok, "material selections carry over")
	assert.Equal(t, "cotton-1", id)
	assert.False(t, s.CanUndo(), "history restarts with the new model")
}

func TestModeSwitchCommits(t *testing.T) {
	s := newTestSession(t)
	s.SetMode(ModePreview)
	assert.Equal(t, ModePreview, s.Mode())
	require.True(t, s.Undo())
	assert.Equal(t, ModeDesign, s.Mode())
}

func TestDuplicateCommitSuppressed(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))
	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))
	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))

	assert.True(t, s.Undo())
	assert.False(t, s.Undo(), "duplicate selections collapse into one snapshot")
}

func TestPrefsRoundTrip(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetMaterial(component.Body, "cotton-1"))
	require.NoError(t, s.SetColor(component.Body, "#FF0000"))
	s.SetMode(ModePreview)

	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, SavePrefs(path, s.Prefs()))

	p, err := LoadPrefs(path)
	require.NoError(t, err)

	fresh := newTestSession(t)
	fresh.ApplyPrefs(p)
	assert.Equal(t, ModePreview, fresh.Mode())
	id, _ := fresh.MaterialID(component.Body)
	assert.Equal(t, "cotton-1", id)
	c, _ := fresh.Color(component.Body)
	assert.Equal(t, "#FF0000", c)
	assert.Equal(t, []string{"#FF0000"}, fresh.RecentColors())
}

func TestLoadPrefsMissingFile(t *testing.T) {
	p, err := LoadPrefs(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Zero(t, p)
}
