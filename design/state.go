// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package design ties the configurator core together: an editing session
// owning the resolved component map, per-component material, color,
// pattern, and print selections, the mode, and a bounded undo/redo history
// that snapshots every committed mutation.
package design

import (
	"fmt"

	"github.com/stitchlab/garb/component"
	"github.com/stitchlab/garb/compose"
)

// Mode is the editing mode of a session.
type Mode int32

const (
	// ModeDesign is the normal editing mode.
	ModeDesign Mode = iota

	// ModePreview shows the garment without editing affordances.
	ModePreview

	// ModesN is the number of modes.
	ModesN
)

var modeNames = [ModesN]string{"design", "preview"}

func (m Mode) String() string {
	if m < 0 || m >= ModesN {
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
	return modeNames[m]
}

// ModeFromString returns the [Mode] with the given string name.
func ModeFromString(s string) (Mode, error) {
	for i, nm := range modeNames {
		if nm == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("design.ModeFromString: unknown mode %q", s)
}

// Snapshot is a full, comparable copy of all user-editable session state at
// one point in time. The history deep-copies snapshots, so they stay
// immutable once recorded.
type Snapshot struct {

	// Mode is the editing mode.
	Mode Mode

	// Components is the resolved mesh identifier -> component map.
	Components component.Map

	// Materials are the selected material ids per component.
	Materials map[component.Category]string

	// Colors are the selected color overrides per component, as hex.
	Colors map[component.Category]string

	// Patterns are the applied pattern ids per component.
	Patterns map[component.Category]string

	// Prints are the print layer stacks per component, in insertion order.
	Prints map[component.Category][]compose.Layer

	// Selected is the currently selected component; only meaningful when
	// HasSelection is set.
	Selected component.Category

	// HasSelection is whether a component is selected.
	HasSelection bool
}
