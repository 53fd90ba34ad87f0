// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package colorx provides small color parsing and formatting helpers
// used throughout the configurator pipeline.
package colorx

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// FromHex parses the given hex color string (#RGB, #RRGGBB, or #RRGGBBAA,
// with or without the leading #) and returns the resulting color.
// It returns an error if the string is not a valid hex color.
func FromHex(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(strings.TrimPrefix(hex, "#"))
	var r, g, b, a int
	a = 255
	switch len(hex) {
	case 3:
		fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b)
		r |= r << 4
		g |= g << 4
		b |= b << 4
	case 6:
		fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	case 8:
		fmt.Sscanf(hex, "%02x%02x%02x%02x", &r, &g, &b, &a)
	default:
		return color.RGBA{}, errors.New("colorx.FromHex: could not process: " + hex)
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}, nil
}

// MustFromHex parses the given hex color string and returns the resulting
// color. It panics on any error; see [FromHex] for a version that returns
// an error.
func MustFromHex(hex string) color.RGBA {
	c, err := FromHex(hex)
	if err != nil {
		panic("colorx.MustFromHex: " + err.Error())
	}
	return c
}

// AsHex returns the color as a standard 2-hex-digits-per-component
// string, including the alpha component only when it is not opaque.
func AsHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
