// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"
)

// The blend library reads RGBA pixel channels as straight (non-premultiplied)
// values with an independent alpha. The compositor therefore works in
// straight-alpha buffers throughout: [toStraight] converts a standard image
// in, [fromStraight] premultiplies the final composite back out.

// blendFunc composites fg over bg and returns the result. bg and fg are
// straight-alpha buffers with equal bounds by construction (the layer is
// pre-placed on a canvas-sized transparent image).
type blendFunc func(bg, fg image.Image) *image.RGBA

// blendFuncs routes each mode to its operator: the image library's native
// implementation where it has one, and a manual per-pixel operator where it
// does not, so every mode satisfies the same contract.
var blendFuncs = [BlendModesN]blendFunc{
	BlendNormal:     blend.Normal,
	BlendMultiply:   blend.Multiply,
	BlendScreen:     blend.Screen,
	BlendOverlay:    blend.Overlay,
	BlendSoftLight:  blend.SoftLight,
	BlendHardLight:  hardLight,
	BlendColorDodge: blend.ColorDodge,
	BlendColorBurn:  blend.ColorBurn,
	BlendDarken:     blend.Darken,
	BlendLighten:    blend.Lighten,
	BlendDifference: blend.Difference,
	BlendExclusion:  blend.Exclusion,
}

// applyBlend composites fg over bg with the given mode. Unknown modes
// composite as normal.
func applyBlend(mode BlendMode, bg, fg image.Image) *image.RGBA {
	if mode < 0 || mode >= BlendModesN {
		mode = BlendNormal
	}
	return blendFuncs[mode](bg, fg)
}

// toStraight returns an RGBA-shaped buffer whose pixel bytes hold straight
// channel values for the given bounds, with src drawn at its own origin.
// A nil src yields a transparent buffer.
func toStraight(src image.Image, bounds image.Rectangle) *image.RGBA {
	n := image.NewNRGBA(bounds)
	if src != nil {
		draw.Draw(n, bounds, src, src.Bounds().Min, draw.Src)
	}
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}

// fromStraight premultiplies a straight-alpha buffer back into a standard
// RGBA image.
func fromStraight(img *image.RGBA) *image.RGBA {
	n := &image.NRGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
	out := image.NewRGBA(img.Rect)
	draw.Draw(out, img.Rect, n, img.Rect.Min, draw.Src)
	return out
}

// hardLight is the manual per-pixel hard-light operator (multiply for
// source channel values up to 0.5, screen above), alpha-composited per the
// standard separable blend formula.
func hardLight(bg, fg image.Image) *image.RGBA {
	b := bg.(*image.RGBA)
	f := fg.(*image.RGBA)
	bounds := b.Bounds()
	out := image.NewRGBA(bounds)
	for i := 0; i+3 < len(b.Pix); i += 4 {
		cb := color.NRGBA{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
		cs := color.NRGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
		co := hardLightPixel(cb, cs)
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = co.R, co.G, co.B, co.A
	}
	return out
}

func hardLightPixel(cb, cs color.NRGBA) color.NRGBA {
	ab := float64(cb.A) / 255
	as := float64(cs.A) / 255
	ao := as + ab*(1-as)
	if ao == 0 {
		return color.NRGBA{}
	}
	mix := func(b, s uint8) uint8 {
		fb := float64(b) / 255
		fs := float64(s) / 255
		var bl float64
		if fs <= 0.5 {
			bl = 2 * fb * fs
		} else {
			bl = 1 - 2*(1-fb)*(1-fs)
		}
		co := as*(1-ab)*fs + as*ab*bl + (1-as)*ab*fb
		v := co / ao * 255
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		return uint8(v + 0.5)
	}
	return color.NRGBA{
		R: mix(cb.R, cs.R),
		G: mix(cb.G, cs.G),
		B: mix(cb.B, cs.B),
		A: uint8(ao*255 + 0.5),
	}
}

// applyOpacity scales the alpha channel of a straight-alpha buffer in place.
func applyOpacity(img *image.RGBA, opacity float32) {
	if opacity >= 1 {
		return
	}
	if opacity < 0 {
		opacity = 0
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(float32(img.Pix[i])*opacity + 0.5)
	}
}
