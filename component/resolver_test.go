// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package component

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExact(t *testing.T) {
	rs := NewResolver()
	m := rs.Resolve([]string{"Sleeve_Left", "left sleeve", "SLEEVE-L", "collar", "hem"})
	assert.Equal(t, SleeveLeft, m["Sleeve_Left"])
	assert.Equal(t, SleeveLeft, m["left sleeve"])
	assert.Equal(t, SleeveLeft, m["SLEEVE-L"])
	assert.Equal(t, Collar, m["collar"])
	assert.Equal(t, Hem, m["hem"])
}

func TestResolveNumericSuffix(t *testing.T) {
	rs := NewResolver()
	m := rs.Resolve([]string{"cuff_right_003", "placket_1", "pocket_12"})
	assert.Equal(t, CuffRight, m["cuff_right_003"])
	assert.Equal(t, Placket, m["placket_1"])
	assert.Equal(t, Pocket, m["pocket_12"])
}

func TestResolvePatternOverlay(t *testing.T) {
	rs := NewResolver()
	m := rs.Resolve([]string{
		"pattern_42_floral",
		"pattern_142_stripe",
		"pattern_142_m_stripe",
		"pattern_233_dup",
		"pattern_310",
		"pattern_950",
		"pattern_noid",
	})
	assert.Equal(t, Body, m["pattern_42_floral"])
	assert.Equal(t, SleeveLeft, m["pattern_142_stripe"])
	assert.Equal(t, SleeveRight, m["pattern_142_m_stripe"])
	assert.Equal(t, CuffRight, m["pattern_233_dup"])
	assert.Equal(t, Collar, m["pattern_310"])
	assert.NotContains(t, m, "pattern_950")
	assert.NotContains(t, m, "pattern_noid")
}

func TestResolveStitchExcluded(t *testing.T) {
	rs := NewResolver()
	m := rs.Resolve([]string{"stitch_collar_detail", "stitch_01"})
	assert.Empty(t, m)
}

func TestResolveSubstring(t *testing.T) {
	rs := NewResolver()
	m := rs.Resolve([]string{"28_knit_fleece_terry_front_109192_0", "unknown_mesh_xyz"})
	assert.Equal(t, Body, m["28_knit_fleece_terry_front_109192_0"])
	assert.NotContains(t, m, "unknown_mesh_xyz")
}

func TestResolveSubstringPriority(t *testing.T) {
	// Variant-specific aliases rank above generic ones, so a name containing
	// both matches the variant.
	rs := NewResolver()
	m := rs.Resolve([]string{"mesh_cuff_left_outer"})
	assert.Equal(t, CuffLeft, m["mesh_cuff_left_outer"])
}

func TestResolveLeadingNumber(t *testing.T) {
	rs := NewResolver()
	m := rs.Resolve([]string{"21_unnamed_export", "15_export", "99_export"})
	assert.Equal(t, SleeveRight, m["21_unnamed_export"])
	assert.Equal(t, Collar, m["15_export"])
	assert.NotContains(t, m, "99_export")
}

func TestResolveDeterministic(t *testing.T) {
	rs := NewResolver()
	ids := []string{
		"sleeve_left", "28_knit_fleece_terry_front_109192_0", "pattern_142_m",
		"stitch_hem", "buttons_02", "torso main", "bogus",
	}
	first := rs.Resolve(ids)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, rs.Resolve(ids))
	}
}

func TestLoadAliases(t *testing.T) {
	fsys := fstest.MapFS{
		"aliases.yaml": &fstest.MapFile{Data: []byte(`
aliases:
  - alias: manga-izquierda
    category: sleeve-left
  - alias: cuello
    category: collar
`)},
	}
	entries, err := LoadAliases(fsys, "aliases.yaml")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	rs := NewResolver()
	rs.AddAliases(entries)
	m := rs.Resolve([]string{"manga-izquierda", "cuello_04"})
	assert.Equal(t, SleeveLeft, m["manga-izquierda"])
	assert.Equal(t, Collar, m["cuello_04"])
}

func TestLoadAliasesBadCategory(t *testing.T) {
	fsys := fstest.MapFS{
		"aliases.yaml": &fstest.MapFile{Data: []byte(`
aliases:
  - alias: x
    category: nope
`)},
	}
	_, err := LoadAliases(fsys, "aliases.yaml")
	assert.Error(t, err)
}

func TestCategoryStringRoundTrip(t *testing.T) {
	for _, c := range Categories() {
		got, err := CategoryFromString(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := CategoryFromString("not-a-category")
	assert.Error(t, err)
}
