// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import (
	"image"
	"image/color"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/stitchlab/garb/base/colorx"
)

// DefaultTextSize is the font size used when a text style has none.
const DefaultTextSize = 32

// boldWeight is the numeric weight from which the bold face is selected.
const boldWeight = 600

// Fonts resolves font families to faces for text layer rendering.
// Families are matched against font files in an optional filesystem; a
// family that cannot be resolved falls back to the built-in default face,
// so face resolution never fails.
type Fonts struct {
	// FS is the filesystem scanned for .ttf/.otf files; may be nil.
	FS fs.FS

	mu    sync.Mutex
	fonts map[string]*opentype.Font // family|weight -> parsed font
	faces map[string]font.Face      // family|weight|size -> face
}

// NewFonts returns a [Fonts] resolving families from the given filesystem,
// which may be nil to use only the built-in faces.
func NewFonts(fsys fs.FS) *Fonts {
	return &Fonts{
		FS:    fsys,
		fonts: make(map[string]*opentype.Font),
		faces: make(map[string]font.Face),
	}
}

// Face returns a face for the family, weight, and size, falling back to
// the built-in Latin Modern face when the family cannot be resolved.
func (fo *Fonts) Face(family string, weight int, size float32) font.Face {
	if size <= 0 {
		size = DefaultTextSize
	}
	fo.mu.Lock()
	defer fo.mu.Unlock()

	bold := weight >= boldWeight
	fontKey := family + "|" + styleName(bold)
	faceKey := fontKey + "|" + strconv.FormatFloat(float64(size), 'f', 2, 32)
	if fc, ok := fo.faces[faceKey]; ok {
		return fc
	}

	fnt, ok := fo.fonts[fontKey]
	if !ok {
		fnt = fo.resolveFont(family, bold)
		fo.fonts[fontKey] = fnt
	}
	fc, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// Can only happen for a corrupt parsed font; the fallback parses.
		slog.Error("compose: face creation failed, using fallback", "family", family, "err", err)
		fc, _ = opentype.NewFace(fallbackFont(bold), &opentype.FaceOptions{
			Size: float64(size), DPI: 72, Hinting: font.HintingFull,
		})
	}
	fo.faces[faceKey] = fc
	return fc
}

// resolveFont finds and parses the font file for the family, or returns
// the built-in fallback. Matching is fuzzy: case, spaces, hyphens, and
// underscores are ignored, and a file containing "bold" is preferred for
// bold weights, "regular" otherwise.
func (fo *Fonts) resolveFont(family string, bold bool) *opentype.Font {
	if fo.FS == nil || family == "" {
		return fallbackFont(bold)
	}
	want := normalizeFamily(family)
	var candidates []string
	fs.WalkDir(fo.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".ttf" && ext != ".otf" {
			return nil
		}
		if strings.Contains(normalizeFamily(path), want) {
			candidates = append(candidates, path)
		}
		return nil
	})
	styled := styleName(bold)
	best := ""
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), styled) {
			best = c
			break
		}
	}
	if best == "" && len(candidates) > 0 {
		best = candidates[0]
	}
	if best == "" {
		slog.Error("compose: font family not found, using fallback", "family", family)
		return fallbackFont(bold)
	}
	b, err := fs.ReadFile(fo.FS, best)
	if err != nil {
		slog.Error("compose: font file read failed, using fallback", "file", best, "err", err)
		return fallbackFont(bold)
	}
	fnt, err := opentype.Parse(b)
	if err != nil {
		slog.Error("compose: font parse failed, using fallback", "file", best, "err", err)
		return fallbackFont(bold)
	}
	return fnt
}

var (
	fallbackOnce    sync.Once
	fallbackRegular *opentype.Font
	fallbackBold    *opentype.Font
)

// fallbackFont returns the built-in Latin Modern face data, parsed once.
func fallbackFont(bold bool) *opentype.Font {
	fallbackOnce.Do(func() {
		var err error
		fallbackRegular, err = opentype.Parse(lmroman10regular.TTF)
		if err != nil {
			panic("compose: built-in regular font failed to parse: " + err.Error())
		}
		fallbackBold, err = opentype.Parse(lmroman10bold.TTF)
		if err != nil {
			panic("compose: built-in bold font failed to parse: " + err.Error())
		}
	})
	if bold {
		return fallbackBold
	}
	return fallbackRegular
}

// Render rasterizes the text onto a tight transparent image, which is then
// treated as an ordinary image layer.
func (fo *Fonts) Render(text string, st TextStyle) *image.RGBA {
	fc := fo.Face(st.Family, st.Weight, st.Size)
	col := color.RGBA{A: 255}
	if st.Color != "" {
		if c, err := colorx.FromHex(st.Color); err == nil {
			col = c
		} else {
			slog.Error("compose: bad text color, using black", "color", st.Color, "err", err)
		}
	}

	lines := strings.Split(text, "\n")
	met := fc.Metrics()
	lineH := (met.Ascent + met.Descent).Ceil()
	widths := make([]int, len(lines))
	maxW := 1
	for i, ln := range lines {
		widths[i] = font.MeasureString(fc, ln).Ceil()
		if widths[i] > maxW {
			maxW = widths[i]
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, maxW, lineH*len(lines)))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: fc,
	}
	for i, ln := range lines {
		x := 0
		switch st.Align {
		case AlignCenter:
			x = (maxW - widths[i]) / 2
		case AlignRight:
			x = maxW - widths[i]
		}
		d.Dot = fixed.P(x, i*lineH+met.Ascent.Ceil())
		d.DrawString(ln)
	}
	return img
}

func normalizeFamily(s string) string {
	s = strings.ToLower(s)
	for _, cut := range []string{" ", "-", "_"} {
		s = strings.ReplaceAll(s, cut, "")
	}
	return s
}

func styleName(bold bool) string {
	if bold {
		return "bold"
	}
	return "regular"
}
