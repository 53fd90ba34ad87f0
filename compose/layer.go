// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compose flattens a garment component's print layers onto its base
// texture, producing one composite texture per component. Layers are drawn
// in z order with standard image compositing blend modes; composites are
// cached per component and recomputed only when the stack changes.
package compose

import (
	"fmt"

	"github.com/stitchlab/garb/component"
)

// BlendMode selects the compositing operator used to draw a layer.
type BlendMode int32

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendSoftLight
	BlendHardLight
	BlendColorDodge
	BlendColorBurn
	BlendDarken
	BlendLighten
	BlendDifference
	BlendExclusion

	// BlendModesN is the number of blend modes.
	BlendModesN
)

var blendModeNames = [BlendModesN]string{
	"normal", "multiply", "screen", "overlay", "soft-light", "hard-light",
	"color-dodge", "color-burn", "darken", "lighten", "difference", "exclusion",
}

func (bm BlendMode) String() string {
	if bm < 0 || bm >= BlendModesN {
		return fmt.Sprintf("BlendMode(%d)", int32(bm))
	}
	return blendModeNames[bm]
}

// Align is the horizontal alignment of multiline text layers.
type Align int32

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle describes how a text layer is rendered.
type TextStyle struct {

	// Family is the requested font family. An unresolvable family falls
	// back to the built-in default face rather than failing the composite.
	Family string

	// Size is the font size in pixels. Zero means the default (32).
	Size float32

	// Weight is the CSS-style numeric weight; 600 and up selects the
	// bold face.
	Weight int

	// Color is the text color as a hex string. Empty means black.
	Color string

	// Align is the horizontal alignment of multiline text.
	Align Align
}

// Source is what a print layer draws: exactly one of a pre-made print id,
// an image reference resolved by the texture loader, or literal text.
type Source struct {

	// PrintID is the id of a pre-made print from the print library.
	PrintID string

	// ImageRef is a user-image reference (URL or path).
	ImageRef string

	// Text is literal text, rendered with Style.
	Text string

	// Style is the text style; only meaningful when Text is set.
	Style TextStyle
}

// Point is a position in normalized [0, 1] x [0, 1] component-local
// coordinates.
type Point struct {
	X, Y float32
}

// Layer is one print application on a component. Layers of one component
// form an ordered stack: ascending Z, with ties broken by insertion order.
type Layer struct {

	// Source is the print content.
	Source Source

	// Position is the layer center in normalized component coordinates.
	Position Point

	// Scale multiplies the source's native size. Zero means 1.
	Scale float32

	// Rotation is the clockwise rotation in degrees.
	Rotation float32

	// Opacity is the layer opacity in [0, 1]; zero is fully transparent.
	Opacity float32

	// Blend is the compositing operator.
	Blend BlendMode

	// Z is the explicit z-order index. Indices need not be contiguous.
	Z int

	// Component is the owning garment component.
	Component component.Category
}
