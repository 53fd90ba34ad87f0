// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package design

import (
	"context"
	"fmt"
	"image"

	"github.com/stitchlab/garb/base/colorx"
	"github.com/stitchlab/garb/catalog"
	"github.com/stitchlab/garb/component"
	"github.com/stitchlab/garb/compose"
	"github.com/stitchlab/garb/history"
	"github.com/stitchlab/garb/material"
)

// maxRecentColors bounds the recent color list carried in preferences.
const maxRecentColors = 8

// Config assembles the services a [Session] depends on. All services are
// explicitly constructed and shared by reference; the session owns none of
// them except its history.
type Config struct {

	// Resolver maps mesh identifiers on model load. Nil means a default
	// resolver with the built-in alias table.
	Resolver *component.Resolver

	// Catalog is the material id -> descriptor source.
	Catalog *catalog.Catalog

	// Materials is the material cache.
	Materials *material.Cache

	// Compositor flattens print layers.
	Compositor *compose.Compositor

	// HistoryCapacity overrides the snapshot capacity; zero means the
	// default (10).
	HistoryCapacity int
}

// Session is one editing session of the configurator. It is
// single-goroutine by contract: all mutations happen on the UI thread.
// Every committed mutation records a snapshot; structural no-ops are
// suppressed by the history.
type Session struct {
	cfg  Config
	hist *history.History[Snapshot]

	mode         Mode
	components   component.Map
	materials    map[component.Category]string
	colors       map[component.Category]string
	patterns     map[component.Category]string
	prints       map[component.Category][]compose.Layer
	selected     component.Category
	hasSelection bool
	recentColors []string
}

// NewSession returns a new [Session] with empty state, seeded as the first
// history snapshot.
func NewSession(cfg Config) *Session {
	if cfg.Resolver == nil {
		cfg.Resolver = component.NewResolver()
	}
	s := &Session{
		cfg:        cfg,
		hist:       history.New[Snapshot](cfg.HistoryCapacity),
		components: component.Map{},
		materials:  map[component.Category]string{},
		colors:     map[component.Category]string{},
		patterns:   map[component.Category]string{},
		prints:     map[component.Category][]compose.Layer{},
	}
	s.commit()
	return s
}

// LoadModel resolves the mesh identifiers of a newly imported model and
// resets the per-model session state: print layers and history are
// session-only and rebuilt on model load, while material and color
// selections carry over.
func (s *Session) LoadModel(meshIDs []string) component.Map {
	s.components = s.cfg.Resolver.Resolve(meshIDs)
	s.prints = map[component.Category][]compose.Layer{}
	s.hasSelection = false
	if s.cfg.Compositor != nil {
		s.cfg.Compositor.Reset()
	}
	s.hist.Reset()
	s.commit()
	return s.components
}

// Mode returns the current editing mode.
func (s *Session) Mode() Mode { return s.mode }

// SetMode switches the editing mode and commits.
func (s *Session) SetMode(m Mode) {
	s.mode = m
	s.commit()
}

// Components returns the resolved component map of the current model.
// The returned map is shared; callers must treat it as read-only.
func (s *Session) Components() component.Map { return s.components }

// Selected returns the selected component, and false if none is selected.
func (s *Session) Selected() (component.Category, bool) {
	return s.selected, s.hasSelection
}

// Select makes the component the current selection and commits.
func (s *Session) Select(comp component.Category) {
	s.selected = comp
	s.hasSelection = true
	s.commit()
}

// ClearSelection drops the selection and commits.
func (s *Session) ClearSelection() {
	s.hasSelection = false
	s.selected = 0
	s.commit()
}

// SetMaterial selects the material id for the component and commits.
// An id absent from the catalog returns an error wrapping
// [catalog.ErrNotFound] and mutates nothing.
func (s *Session) SetMaterial(comp component.Category, id string) error {
	if _, err := s.cfg.Catalog.Descriptor(id); err != nil {
		return err
	}
	s.materials[comp] = id
	s.commit()
	return nil
}

// MaterialID returns the selected material id for the component.
func (s *Session) MaterialID(comp component.Category) (string, bool) {
	id, ok := s.materials[comp]
	return id, ok
}

// Material resolves the component's selected material (with its color
// override merged in) through the material cache.
func (s *Session) Material(ctx context.Context, comp component.Category) (*material.Material, error) {
	id, ok := s.materials[comp]
	if !ok {
		return nil, fmt.Errorf("design: component %v has no material selected", comp)
	}
	desc, err := s.cfg.Catalog.Descriptor(id)
	if err != nil {
		return nil, err
	}
	return s.cfg.Materials.Get(ctx, desc, s.colors[comp])
}

// SetColor selects a hex color override for the component, records it in
// the recent colors, and commits. A malformed color returns an error and
// mutates nothing.
func (s *Session) SetColor(comp component.Category, hex string) error {
	c, err := colorx.FromHex(hex)
	if err != nil {
		return err
	}
	norm := colorx.AsHex(c)
	s.colors[comp] = norm
	s.pushRecentColor(norm)
	s.commit()
	return nil
}

// Color returns the color override for the component.
func (s *Session) Color(comp component.Category) (string, bool) {
	c, ok := s.colors[comp]
	return c, ok
}

// RecentColors returns the most recently used colors, newest first.
func (s *Session) RecentColors() []string {
	return append([]string(nil), s.recentColors...)
}

// SetPattern applies the pattern id to the component and commits; an empty
// id removes the pattern.
func (s *Session) SetPattern(comp component.Category, id string) {
	if id == "" {
		delete(s.patterns, comp)
	} else {
		s.patterns[comp] = id
	}
	s.commit()
}

// Pattern returns the applied pattern id for the component.
func (s *Session) Pattern(comp component.Category) (string, bool) {
	id, ok := s.patterns[comp]
	return id, ok
}

// AddPrint appends a print layer to its component's stack and commits,
// returning the layer's index within the stack. A zero opacity is
// normalized to fully opaque and a zero scale to 1, so a zero-value
// placement is visible.
func (s *Session) AddPrint(l compose.Layer) int {
	if l.Opacity == 0 {
		l.Opacity = 1
	}
	if l.Scale == 0 {
		l.Scale = 1
	}
	s.prints[l.Component] = append(s.prints[l.Component], l)
	s.commit()
	return len(s.prints[l.Component]) - 1
}

// UpdatePrint replaces the layer at index i of the component's stack and
// commits.
func (s *Session) UpdatePrint(comp component.Category, i int, l compose.Layer) error {
	stack := s.prints[comp]
	if i < 0 || i >= len(stack) {
		return fmt.Errorf("design: print index %d out of range for %v", i, comp)
	}
	l.Component = comp
	stack[i] = l
	s.commit()
	return nil
}

// RemovePrint deletes the layer at index i of the component's stack and
// commits. Removing the last layer drops the stack entirely, so
// compositing returns the component's base texture by identity again.
func (s *Session) RemovePrint(comp component.Category, i int) error {
	stack := s.prints[comp]
	if i < 0 || i >= len(stack) {
		return fmt.Errorf("design: print index %d out of range for %v", i, comp)
	}
	stack = append(stack[:i], stack[i+1:]...)
	if len(stack) == 0 {
		delete(s.prints, comp)
	} else {
		s.prints[comp] = stack
	}
	s.commit()
	return nil
}

// Prints returns the component's print stack in insertion order.
// The returned slice is shared; callers must treat it as read-only.
func (s *Session) Prints(comp component.Category) []compose.Layer {
	return s.prints[comp]
}

// Composite flattens the component's print stack onto the base texture via
// the compositor. With no layers the base is returned by identity.
func (s *Session) Composite(ctx context.Context, comp component.Category, base image.Image) (image.Image, error) {
	return s.cfg.Compositor.Composite(ctx, base, s.prints[comp], comp)
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// Undo steps the session back one committed mutation. At the oldest
// snapshot it is a no-op and reports false.
func (s *Session) Undo() bool {
	snap, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Redo steps the session forward one committed mutation. At the newest
// snapshot it is a no-op and reports false.
func (s *Session) Redo() bool {
	snap, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Snapshot returns the current state as a [Snapshot]. The history keeps
// its own deep copies; this value shares the session's maps and is only
// valid until the next mutation.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Mode:         s.mode,
		Components:   s.components,
		Materials:    s.materials,
		Colors:       s.colors,
		Patterns:     s.patterns,
		Prints:       s.prints,
		Selected:     s.selected,
		HasSelection: s.hasSelection,
	}
}

// commit records the current state; the history suppresses structural
// no-ops.
func (s *Session) commit() {
	s.hist.Record(s.Snapshot())
}

// restore replaces the session state with the snapshot (already a deep
// copy owned by the caller) and drops stale composites.
func (s *Session) restore(snap Snapshot) {
	s.mode = snap.Mode
	s.components = orMap(snap.Components)
	s.materials = orMap(snap.Materials)
	s.colors = orMap(snap.Colors)
	s.patterns = orMap(snap.Patterns)
	s.prints = orMap(snap.Prints)
	s.selected = snap.Selected
	s.hasSelection = snap.HasSelection
	if s.cfg.Compositor != nil {
		s.cfg.Compositor.Reset()
	}
}

// pushRecentColor prepends the color, deduplicating and bounding the list.
func (s *Session) pushRecentColor(hex string) {
	out := make([]string, 0, maxRecentColors)
	out = append(out, hex)
	for _, c := range s.recentColors {
		if c != hex && len(out) < maxRecentColors {
			out = append(out, c)
		}
	}
	s.recentColors = out
}

// orMap returns the map, or an initialized empty one when nil, so restored
// state is always mutable.
func orMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
