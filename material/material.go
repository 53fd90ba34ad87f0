// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"image"
	"image/color"

	"github.com/stitchlab/garb/base/imagex"
	"github.com/stitchlab/garb/component"
)

// Material is the GPU-ready result of resolving a [Descriptor]: scalar
// parameters plus the loaded texture maps, in the [image.RGBA] form that
// texture uploads expect. Materials are owned by the [Cache]; consumers
// must not mutate them and must release them via [Cache.Release] when done.
type Material struct {

	// Name is the descriptor name this material was resolved from.
	Name string

	// Category is the garment component this material is intended for.
	Category component.Category

	// BaseColor is the resolved base color.
	BaseColor color.RGBA

	// Roughness is the scalar surface roughness in [0, 1].
	Roughness float32

	// Metalness is the scalar metalness in [0, 1].
	Metalness float32

	// key is the canonical cache key this material lives under.
	key string

	// maps are the loaded texture maps; nil slots were absent or failed
	// to load and are simply not applied.
	maps [SlotsN]*image.RGBA
}

// Texture returns the loaded texture map for the given slot, or nil if the
// material has none.
func (m *Material) Texture(s Slot) *image.RGBA {
	if s < 0 || s >= SlotsN {
		return nil
	}
	return m.maps[s]
}

// HasTexture reports whether the material has a loaded map in the slot.
func (m *Material) HasTexture(s Slot) bool {
	return m.Texture(s) != nil
}

// Key returns the canonical cache key this material lives under.
func (m *Material) Key() string {
	return m.key
}

// sizeBytes returns the total pixel buffer size of all loaded maps.
func (m *Material) sizeBytes() int64 {
	var n int64
	for _, im := range m.maps {
		if im != nil {
			n += imagex.SizeBytes(im)
		}
	}
	return n
}

// dispose releases the texture maps. Called exactly once per cache entry,
// guarded by the owning entry's disposed flag.
func (m *Material) dispose() {
	for i := range m.maps {
		m.maps[i] = nil
	}
}
