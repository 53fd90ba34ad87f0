// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package material resolves declarative material descriptors into GPU-ready
// materials, caching them by a canonical key derived from the descriptor
// fields so that identical requests share one entry, and evicting unused
// entries under memory pressure.
package material

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stitchlab/garb/base/colorx"
	"github.com/stitchlab/garb/component"
)

// Slot identifies one of the texture map slots of a material.
type Slot int32

const (
	SlotAlbedo Slot = iota
	SlotNormal
	SlotRoughness
	SlotMetallic
	SlotAO

	// SlotsN is the number of texture slots.
	SlotsN
)

var slotNames = [SlotsN]string{"albedo", "normal", "roughness", "metallic", "ao"}

func (s Slot) String() string {
	if s < 0 || s >= SlotsN {
		return fmt.Sprintf("Slot(%d)", int32(s))
	}
	return slotNames[s]
}

// TextureRefs holds the texture map references (URLs or file paths) of a
// descriptor. Empty slots mean the material has no such map.
type TextureRefs struct {
	Albedo    string `yaml:"albedo,omitempty" toml:"albedo,omitempty"`
	Normal    string `yaml:"normal,omitempty" toml:"normal,omitempty"`
	Roughness string `yaml:"roughness,omitempty" toml:"roughness,omitempty"`
	Metallic  string `yaml:"metallic,omitempty" toml:"metallic,omitempty"`
	AO        string `yaml:"ao,omitempty" toml:"ao,omitempty"`
}

// Ref returns the reference for the given slot.
func (tr TextureRefs) Ref(s Slot) string {
	switch s {
	case SlotAlbedo:
		return tr.Albedo
	case SlotNormal:
		return tr.Normal
	case SlotRoughness:
		return tr.Roughness
	case SlotMetallic:
		return tr.Metallic
	case SlotAO:
		return tr.AO
	}
	return ""
}

// Descriptor is a declarative, immutable description of a surface: up to
// five texture map references plus base color and scalar parameters.
// Equal descriptors (including identical color overrides merged in by the
// cache) always derive the same canonical [Descriptor.Key].
type Descriptor struct {

	// Name is the catalog name of the material, e.g. "cotton-1".
	Name string `yaml:"name"`

	// Category is the garment component this material is intended for.
	Category component.Category `yaml:"-"`

	// Textures are the texture map references.
	Textures TextureRefs `yaml:"textures"`

	// BaseColor is an optional hex color override applied to the material.
	BaseColor string `yaml:"base_color,omitempty"`

	// Roughness is the scalar surface roughness in [0, 1].
	Roughness float32 `yaml:"roughness"`

	// Metalness is the scalar metalness in [0, 1].
	Metalness float32 `yaml:"metalness"`
}

// Validate checks the structural validity of the descriptor: a name must be
// present, the scalars must be in [0, 1], and the base color, when set,
// must parse as a hex color.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("material: descriptor has no name")
	}
	if d.Roughness < 0 || d.Roughness > 1 {
		return fmt.Errorf("material: descriptor %q: roughness %g out of [0, 1]", d.Name, d.Roughness)
	}
	if d.Metalness < 0 || d.Metalness > 1 {
		return fmt.Errorf("material: descriptor %q: metalness %g out of [0, 1]", d.Name, d.Metalness)
	}
	if d.BaseColor != "" {
		if _, err := colorx.FromHex(d.BaseColor); err != nil {
			return fmt.Errorf("material: descriptor %q: %w", d.Name, err)
		}
	}
	return nil
}

// withOverride returns a copy of the descriptor with the given color
// override merged into the base color field, so that the override
// participates in key derivation and deduplication.
func (d Descriptor) withOverride(colorOverride string) Descriptor {
	if colorOverride != "" {
		d.BaseColor = colorOverride
	}
	return d
}

// Key derives the canonical cache key from the descriptor fields in fixed
// order. The base color is normalized through parsing so that equivalent
// spellings ("#f00", "#FF0000") derive the same key.
func (d Descriptor) Key() string {
	col := "none"
	if d.BaseColor != "" {
		if c, err := colorx.FromHex(d.BaseColor); err == nil {
			col = colorx.AsHex(c)
		}
	}
	parts := []string{
		d.Name,
		d.Category.String(),
		d.Textures.Albedo,
		d.Textures.Normal,
		d.Textures.Roughness,
		d.Textures.Metallic,
		d.Textures.AO,
		col,
		strconv.FormatFloat(float64(d.Roughness), 'f', 4, 32),
		strconv.FormatFloat(float64(d.Metalness), 'f', 4, 32),
	}
	return strings.Join(parts, "|")
}
