// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history provides a bounded linear undo/redo history over
// immutable deep-copied snapshots of an arbitrary state type.
//
// Recording after an undo discards the redo branch, the standard
// "new edit after undo" semantics. Structurally equal consecutive records
// are suppressed so rapid duplicate commits do not pollute the history.
package history

import (
	"log/slog"
	"reflect"

	"github.com/jinzhu/copier"
)

// DefaultCapacity is the number of snapshots kept before the oldest is
// discarded.
const DefaultCapacity = 10

// History is a bounded ordered sequence of snapshots with a current index.
// It is single-goroutine by contract: commits, undo, and redo all happen on
// the owning editing thread.
type History[T any] struct {
	snaps    []T
	index    int
	capacity int
}

// New returns a new [History] keeping at most capacity snapshots;
// capacity <= 0 means [DefaultCapacity].
func New[T any](capacity int) *History[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History[T]{capacity: capacity}
}

// Record commits the current state as the next snapshot and reports whether
// it was recorded. The state is deep-copied, so later mutation of the
// caller's maps and slices cannot corrupt history. An empty history is
// seeded with the state; a state structurally equal to the current snapshot
// is suppressed; otherwise any redo entries are discarded, the snapshot is
// appended, and the oldest entry is dropped once capacity is exceeded.
func (h *History[T]) Record(state T) bool {
	cp := deepCopy(state)
	if len(h.snaps) == 0 {
		h.snaps = append(h.snaps, cp)
		h.index = 0
		return true
	}
	if reflect.DeepEqual(cp, h.snaps[h.index]) {
		return false
	}
	h.snaps = append(h.snaps[:h.index+1], cp)
	h.index++
	if len(h.snaps) > h.capacity {
		over := len(h.snaps) - h.capacity
		h.snaps = append([]T(nil), h.snaps[over:]...)
		h.index -= over
	}
	return true
}

// Undo steps back one snapshot and returns a copy of it. At the oldest
// snapshot it is a no-op and reports false.
func (h *History[T]) Undo() (T, bool) {
	if h.index <= 0 {
		var zero T
		return zero, false
	}
	h.index--
	return deepCopy(h.snaps[h.index]), true
}

// Redo steps forward one snapshot and returns a copy of it. At the newest
// snapshot it is a no-op and reports false.
func (h *History[T]) Redo() (T, bool) {
	if h.index >= len(h.snaps)-1 {
		var zero T
		return zero, false
	}
	h.index++
	return deepCopy(h.snaps[h.index]), true
}

// CanUndo reports whether a step back is available.
func (h *History[T]) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether a step forward is available.
func (h *History[T]) CanRedo() bool {
	return h.index < len(h.snaps)-1
}

// Current returns a copy of the snapshot at the current index, and false
// if the history is empty.
func (h *History[T]) Current() (T, bool) {
	if len(h.snaps) == 0 {
		var zero T
		return zero, false
	}
	return deepCopy(h.snaps[h.index]), true
}

// Len returns the number of stored snapshots.
func (h *History[T]) Len() int {
	return len(h.snaps)
}

// Index returns the current snapshot index.
func (h *History[T]) Index() int {
	return h.index
}

// Reset drops all snapshots.
func (h *History[T]) Reset() {
	h.snaps = nil
	h.index = 0
}

// deepCopy returns a deep copy of the state. Copy failures (possible only
// for exotic types) fall back to the original value, which for value-type
// snapshots still isolates the top level.
func deepCopy[T any](state T) T {
	var cp T
	if err := copier.CopyWithOption(&cp, &state, copier.Option{DeepCopy: true}); err != nil {
		slog.Error("history: deep copy failed, storing original", "err", err)
		return state
	}
	return cp
}
