// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import (
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sort"
	"sync"

	"github.com/chewxy/math32"
	"github.com/disintegration/imaging"

	"github.com/stitchlab/garb/component"
	"github.com/stitchlab/garb/material"
)

// DefaultCanvasSize is the composite canvas size used when there is no
// base texture to take dimensions from.
const DefaultCanvasSize = 1024

// PrintLookup resolves a pre-made print id to its image.
type PrintLookup func(ctx context.Context, id string) (image.Image, error)

// compositeEntry is one cached composite, keyed by a hash of the inputs
// that produced it.
type compositeEntry struct {
	hash uint64
	img  image.Image
}

// Compositor flattens a component's print layer stack onto its base
// texture. Composites are cached per component: an unchanged stack returns
// the cached image, and a change to one component's stack invalidates only
// that component.
//
// A Compositor is an explicitly constructed service; create one with
// [NewCompositor] and pass it to consumers. All methods are safe for
// concurrent use.
type Compositor struct {
	loader material.Loader
	prints PrintLookup
	fonts  *Fonts

	mu    sync.Mutex
	cache map[component.Category]compositeEntry

	// CanvasSize is the canvas size used when the base texture is nil.
	CanvasSize image.Point
}

// NewCompositor returns a new [Compositor]. loader resolves user image
// references, prints resolves pre-made print ids (may be nil if the
// application has no print library), and fonts renders text layers.
func NewCompositor(loader material.Loader, prints PrintLookup, fonts *Fonts) *Compositor {
	if fonts == nil {
		fonts = NewFonts(nil)
	}
	return &Compositor{
		loader:     loader,
		prints:     prints,
		fonts:      fonts,
		cache:      make(map[component.Category]compositeEntry),
		CanvasSize: image.Point{DefaultCanvasSize, DefaultCanvasSize},
	}
}

// Composite flattens the ordered layer stack onto the base texture (or a
// transparent canvas if base is nil) and returns the result.
//
// An empty stack returns base itself, preserving object identity, so
// callers can detect "no print" by reference equality. Layers whose source
// cannot be resolved are skipped with a logged error rather than failing
// the composite; an unusable canvas falls back to returning base
// unchanged.
func (cp *Compositor) Composite(ctx context.Context, base image.Image, layers []Layer, comp component.Category) (image.Image, error) {
	if len(layers) == 0 {
		cp.Invalidate(comp)
		return base, nil
	}

	hash := stackHash(base, layers)
	cp.mu.Lock()
	if e, ok := cp.cache[comp]; ok && e.hash == hash {
		cp.mu.Unlock()
		return e.img, nil
	}
	cp.mu.Unlock()

	canvas, err := cp.seedCanvas(base)
	if err != nil {
		slog.Error("compose: unusable canvas, returning base texture", "component", comp.String(), "err", err)
		return base, nil
	}

	ordered := make([]Layer, len(layers))
	copy(ordered, layers)
	// Z defines a strict total order; stable sort keeps insertion order
	// for equal indices.
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Z < ordered[j].Z })

	for _, l := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		li, err := cp.renderLayer(ctx, canvas.Bounds(), l)
		if err != nil {
			slog.Error("compose: layer source unresolvable, layer skipped",
				"component", comp.String(), "err", err)
			continue
		}
		canvas = applyBlend(l.Blend, canvas, li)
	}

	out := fromStraight(canvas)
	cp.mu.Lock()
	cp.cache[comp] = compositeEntry{hash: hash, img: out}
	cp.mu.Unlock()
	return out, nil
}

// Invalidate drops the cached composite for the component.
func (cp *Compositor) Invalidate(comp component.Category) {
	cp.mu.Lock()
	delete(cp.cache, comp)
	cp.mu.Unlock()
}

// Reset drops all cached composites.
func (cp *Compositor) Reset() {
	cp.mu.Lock()
	cp.cache = make(map[component.Category]compositeEntry)
	cp.mu.Unlock()
}

// seedCanvas returns the straight-alpha canvas to composite onto: a copy
// of base, or a transparent default-size canvas when base is nil.
func (cp *Compositor) seedCanvas(base image.Image) (*image.RGBA, error) {
	if base == nil {
		if cp.CanvasSize.X <= 0 || cp.CanvasSize.Y <= 0 {
			return nil, fmt.Errorf("compose: canvas size %v is empty", cp.CanvasSize)
		}
		return toStraight(nil, image.Rect(0, 0, cp.CanvasSize.X, cp.CanvasSize.Y)), nil
	}
	b := base.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("compose: base texture bounds %v are empty", b)
	}
	return toStraight(base, image.Rect(0, 0, b.Dx(), b.Dy())), nil
}

// renderLayer resolves the layer source and returns it transformed
// (scaled, rotated, positioned, opacity applied) on a transparent
// canvas-sized image ready for blending.
func (cp *Compositor) renderLayer(ctx context.Context, bounds image.Rectangle, l Layer) (*image.RGBA, error) {
	src, err := cp.sourceImage(ctx, l)
	if err != nil {
		return nil, err
	}

	scale := l.Scale
	if scale <= 0 {
		scale = 1
	}
	sw := int(math32.Round(float32(src.Bounds().Dx()) * scale))
	if sw < 1 {
		sw = 1
	}
	img := imaging.Resize(src, sw, 0, imaging.Lanczos)
	if l.Rotation != 0 {
		// imaging rotates counter-clockwise; layer rotation is clockwise.
		img = imaging.Rotate(img, float64(-l.Rotation), color.Transparent)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	cx := int(math32.Round(l.Position.X * float32(bounds.Dx())))
	cy := int(math32.Round(l.Position.Y * float32(bounds.Dy())))
	at := image.Rect(cx-w/2, cy-h/2, cx-w/2+w, cy-h/2+h)

	placedN := image.NewNRGBA(bounds)
	draw.Draw(placedN, at, img, img.Bounds().Min, draw.Over)
	placed := &image.RGBA{Pix: placedN.Pix, Stride: placedN.Stride, Rect: placedN.Rect}

	applyOpacity(placed, l.Opacity)
	return placed, nil
}

// sourceImage resolves the layer's source to an image.
func (cp *Compositor) sourceImage(ctx context.Context, l Layer) (image.Image, error) {
	switch {
	case l.Source.Text != "":
		return cp.fonts.Render(l.Source.Text, l.Source.Style), nil
	case l.Source.PrintID != "":
		if cp.prints == nil {
			return nil, fmt.Errorf("compose: no print library configured for print %q", l.Source.PrintID)
		}
		return cp.prints(ctx, l.Source.PrintID)
	case l.Source.ImageRef != "":
		if cp.loader == nil {
			return nil, fmt.Errorf("compose: no image loader configured for ref %q", l.Source.ImageRef)
		}
		return cp.loader.Load(ctx, l.Source.ImageRef)
	}
	return nil, fmt.Errorf("compose: layer has an empty source")
}

// stackHash hashes the base texture identity and every mutable layer field,
// in order, into the composite cache key.
func stackHash(base image.Image, layers []Layer) uint64 {
	h := fnv.New64a()
	if base == nil {
		fmt.Fprint(h, "nil")
	} else {
		fmt.Fprintf(h, "%p", base)
	}
	for _, l := range layers {
		fmt.Fprintf(h, "|%q|%q|%q|%q|%g|%d|%q|%d",
			l.Source.PrintID, l.Source.ImageRef, l.Source.Text,
			l.Source.Style.Family, l.Source.Style.Size, l.Source.Style.Weight,
			l.Source.Style.Color, l.Source.Style.Align)
		fmt.Fprintf(h, "|%g|%g|%g|%g|%g|%d|%d|%d",
			l.Position.X, l.Position.Y, l.Scale, l.Rotation, l.Opacity,
			l.Blend, l.Z, l.Component)
	}
	return h.Sum64()
}
