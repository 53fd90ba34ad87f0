// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package design

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/stitchlab/garb/component"
)

// Prefs is the partial design state persisted between sessions: mode,
// material and color selections, and recent colors. Print layers, the
// component map, and the undo history are session-only and are not
// persisted.
type Prefs struct {
	Mode         string            `toml:"mode"`
	Materials    map[string]string `toml:"materials,omitempty"`
	Colors       map[string]string `toml:"colors,omitempty"`
	RecentColors []string          `toml:"recent_colors,omitempty"`
}

// Prefs exports the session's persistable state.
func (s *Session) Prefs() Prefs {
	p := Prefs{
		Mode:         s.mode.String(),
		Materials:    map[string]string{},
		Colors:       map[string]string{},
		RecentColors: append([]string(nil), s.recentColors...),
	}
	for comp, id := range s.materials {
		p.Materials[comp.String()] = id
	}
	for comp, c := range s.colors {
		p.Colors[comp.String()] = c
	}
	return p
}

// ApplyPrefs restores persisted selections into the session and commits
// once. Entries referencing unknown categories, unknown material ids, or
// malformed colors are skipped: preferences are best-effort state, not a
// document format.
func (s *Session) ApplyPrefs(p Prefs) {
	if m, err := ModeFromString(p.Mode); err == nil {
		s.mode = m
	}
	for name, id := range p.Materials {
		comp, err := component.CategoryFromString(name)
		if err != nil {
			continue
		}
		if _, err := s.cfg.Catalog.Descriptor(id); err != nil {
			continue
		}
		s.materials[comp] = id
	}
	for name, c := range p.Colors {
		comp, err := component.CategoryFromString(name)
		if err != nil {
			continue
		}
		s.colors[comp] = c
	}
	if len(p.RecentColors) > maxRecentColors {
		p.RecentColors = p.RecentColors[:maxRecentColors]
	}
	s.recentColors = append([]string(nil), p.RecentColors...)
	s.commit()
}

// SavePrefs writes the preferences to the given path as TOML, creating the
// parent directory if needed.
func SavePrefs(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("design.SavePrefs: %w", err)
	}
	b, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("design.SavePrefs: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("design.SavePrefs: %w", err)
	}
	return nil
}

// LoadPrefs reads preferences from the given path. A missing file returns
// zero preferences and no error.
func LoadPrefs(path string) (Prefs, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Prefs{}, nil
		}
		return Prefs{}, fmt.Errorf("design.LoadPrefs: %w", err)
	}
	var p Prefs
	if err := toml.Unmarshal(b, &p); err != nil {
		return Prefs{}, fmt.Errorf("design.LoadPrefs: %w", err)
	}
	return p, nil
}
