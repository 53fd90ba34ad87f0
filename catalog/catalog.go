// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package catalog provides the static material catalog: a lookup from
// material ids to their declarative descriptors, loaded from a YAML data
// file that ships with the application assets.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/stitchlab/garb/component"
	"github.com/stitchlab/garb/material"
)

// ErrNotFound is returned when a requested material id is not in the
// catalog.
var ErrNotFound = errors.New("catalog: material not found")

// catalogFile is the YAML schema of a catalog data file.
type catalogFile struct {
	Materials []struct {
		ID        string               `yaml:"id"`
		Category  string               `yaml:"category,omitempty"`
		Textures  material.TextureRefs `yaml:"textures,omitempty"`
		BaseColor string               `yaml:"base_color,omitempty"`
		Roughness float32              `yaml:"roughness"`
		Metalness float32              `yaml:"metalness"`
	} `yaml:"materials"`
}

// Catalog is an immutable id -> descriptor lookup.
type Catalog struct {
	ids  []string
	byID map[string]material.Descriptor
}

// Load reads a catalog data file from the given filesystem. Every entry is
// validated; a catalog with a malformed descriptor fails to load rather
// than failing later at resolution time.
func Load(fsys fs.FS, file string) (*Catalog, error) {
	b, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	ct := &Catalog{byID: make(map[string]material.Descriptor, len(cf.Materials))}
	for _, m := range cf.Materials {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog.Load: material with empty id in %s", file)
		}
		if _, dup := ct.byID[m.ID]; dup {
			return nil, fmt.Errorf("catalog.Load: duplicate material id %q", m.ID)
		}
		cat := component.Body
		if m.Category != "" {
			cat, err = component.CategoryFromString(m.Category)
			if err != nil {
				return nil, fmt.Errorf("catalog.Load: material %q: %w", m.ID, err)
			}
		}
		desc := material.Descriptor{
			Name:      m.ID,
			Category:  cat,
			Textures:  m.Textures,
			BaseColor: m.BaseColor,
			Roughness: m.Roughness,
			Metalness: m.Metalness,
		}
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		ct.ids = append(ct.ids, m.ID)
		ct.byID[m.ID] = desc
	}
	return ct, nil
}

// Descriptor returns the descriptor for the material id, or [ErrNotFound].
func (ct *Catalog) Descriptor(id string) (material.Descriptor, error) {
	d, ok := ct.byID[id]
	if !ok {
		return material.Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return d, nil
}

// IDs returns the material ids in file order.
func (ct *Catalog) IDs() []string {
	return append([]string(nil), ct.ids...)
}

// Len returns the number of materials in the catalog.
func (ct *Catalog) Len() int {
	return len(ct.ids)
}
