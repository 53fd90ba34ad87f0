// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imagex provides image conversion and decoding helpers shared by
// the material and compositing pipelines. Images are normalized to
// [image.RGBA] as the internal representation, which is what GPU texture
// uploads expect.
package imagex

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"io/fs"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// CloneAsRGBA returns an RGBA copy of the supplied image.
func CloneAsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	bounds := src.Bounds()
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, src, bounds.Min, draw.Src)
	return img
}

// AsRGBA returns the image as an RGBA: if it already is one, then
// it returns that image directly. Otherwise it returns a clone.
func AsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	return CloneAsRGBA(src)
}

// Decode decodes an image from the reader, with the format inferred
// from the encoded data. PNG, JPEG, GIF, BMP, and WebP are supported.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imagex.Decode: %w", err)
	}
	return img, nil
}

// OpenFS opens and decodes an image from the given filename in the
// given filesystem.
func OpenFS(fsys fs.FS, file string) (image.Image, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, fmt.Errorf("imagex.OpenFS: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// SizeBytes returns the in-memory size of the image pixel buffer, for
// memory accounting. Non-RGBA images are estimated at 4 bytes per pixel.
func SizeBytes(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}
