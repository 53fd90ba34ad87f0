// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package component maps the raw mesh identifiers found in imported garment
// models to the closed set of semantic garment components that the rest of
// the configurator operates on. The mapping is heuristic and best-effort:
// identifiers that cannot be confidently matched are left out of the result
// rather than guessed.
package component

import "fmt"

// Category is one of the fixed semantic garment regions a mesh can belong to.
type Category int32

const (
	// Body is the main torso panel (front and back).
	Body Category = iota

	// SleeveLeft is the left sleeve.
	SleeveLeft

	// SleeveRight is the right sleeve.
	SleeveRight

	// Collar is the collar or neckband.
	Collar

	// CuffLeft is the left cuff.
	CuffLeft

	// CuffRight is the right cuff.
	CuffRight

	// Buttons are the button meshes.
	Buttons

	// Placket is the button band / placket strip.
	Placket

	// Pocket is the chest or side pocket.
	Pocket

	// Hem is the bottom hem band.
	Hem

	// CategoriesN is the number of categories.
	CategoriesN
)

var categoryNames = [CategoriesN]string{
	"body",
	"sleeve-left",
	"sleeve-right",
	"collar",
	"cuff-left",
	"cuff-right",
	"buttons",
	"placket",
	"pocket",
	"hem",
}

func (c Category) String() string {
	if c < 0 || c >= CategoriesN {
		return fmt.Sprintf("Category(%d)", int32(c))
	}
	return categoryNames[c]
}

// CategoryFromString returns the [Category] with the given string name,
// as produced by [Category.String].
func CategoryFromString(s string) (Category, error) {
	for i, nm := range categoryNames {
		if nm == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("component.CategoryFromString: unknown category %q", s)
}

// Categories returns all component categories in their canonical order.
func Categories() []Category {
	cs := make([]Category, CategoriesN)
	for i := range cs {
		cs[i] = Category(i)
	}
	return cs
}

// Map is the resolved mapping from raw mesh identifiers to component
// categories for one imported model. Identifiers with no confident match
// are absent: callers must treat absence as "no component", not an error.
type Map map[string]Category
