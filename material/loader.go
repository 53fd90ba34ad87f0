// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"context"
	"fmt"
	"image"
	"io/fs"

	"github.com/stitchlab/garb/base/imagex"
)

// Loader resolves a texture reference (URL or path) to a decoded image.
// Loads are blocking I/O and take a context; the cache runs them
// concurrently and treats individual failures as "map absent".
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// FileLoader is a [Loader] that reads textures from a filesystem,
// which can be an embedded asset FS or an os.DirFS over an asset directory.
type FileLoader struct {
	FS fs.FS
}

func (fl FileLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imagex.OpenFS(fl.FS, ref)
	if err != nil {
		return nil, fmt.Errorf("material.FileLoader: %w", err)
	}
	return img, nil
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(ctx context.Context, ref string) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, ref string) (image.Image, error) {
	return f(ctx, ref)
}
