// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package component

import (
	"strconv"
	"strings"
)

// Prefix markers for the special-case identifier families emitted by the
// garment authoring tools.
const (
	// patternMarker starts identifiers of pattern overlay meshes, which
	// carry a numeric pattern group id instead of a part name.
	patternMarker = "pattern"

	// stitchMarker starts identifiers of stitch detail meshes. These are
	// cosmetic overlays without reliable part semantics and are always
	// left unmapped.
	stitchMarker = "stitch"
)

// mirrorMarkers flag a pattern overlay as belonging to the mirrored
// (right-side) copy of a duplicated part family.
var mirrorMarkers = map[string]bool{"m": true, "mir": true, "mirror": true, "dup": true}

// sectionNumbers maps the bare leading integers used by the empirical mesh
// numbering of known export tools to shirt sections.
var sectionNumbers = map[int]Category{
	10: Body,
	11: Body,
	15: Collar,
	20: SleeveLeft,
	21: SleeveRight,
	22: CuffLeft,
	23: CuffRight,
	28: Body,
	30: Pocket,
	31: Placket,
	35: Buttons,
	40: Hem,
}

// Resolver maps raw mesh identifiers to component categories.
// The zero value is not usable; use [NewResolver].
type Resolver struct {
	aliases []aliasEntry
	exact   map[string]Category
}

// NewResolver returns a new [Resolver] with the built-in alias table.
func NewResolver() *Resolver {
	rs := &Resolver{}
	rs.AddAliases(defaultAliases)
	return rs
}

// AddAliases appends the given entries to the alias table, after the
// existing ones. Earlier entries win for substring matching, so extension
// packs rank below the built-in table unless the resolver is built from
// scratch.
func (rs *Resolver) AddAliases(entries []aliasEntry) {
	if rs.exact == nil {
		rs.exact = make(map[string]Category)
	}
	for _, e := range entries {
		if _, has := rs.exact[e.Alias]; !has {
			rs.exact[e.Alias] = e.Category
		}
		rs.aliases = append(rs.aliases, e)
	}
}

// Resolve maps each mesh identifier to a component category, returning a
// partial [Map]: identifiers with no confident match are simply absent.
// Resolve never fails, and for a given alias table it is deterministic.
func (rs *Resolver) Resolve(ids []string) Map {
	m := make(Map, len(ids))
	for _, id := range ids {
		if cat, ok := rs.resolveOne(id); ok {
			m[id] = cat
		}
	}
	return m
}

// resolveOne applies the matching rules in order; the first rule that
// matches wins.
func (rs *Resolver) resolveOne(id string) (Category, bool) {
	nid := normalize(id)
	if nid == "" {
		return 0, false
	}

	if cat, ok := rs.exact[nid]; ok {
		return cat, true
	}

	// Export tools number mesh variants with trailing _<digits> suffixes.
	if stripped := stripNumericSuffix(nid); stripped != nid {
		if cat, ok := rs.exact[stripped]; ok {
			return cat, true
		}
	}

	if strings.HasPrefix(nid, stitchMarker) {
		return 0, false
	}
	if strings.HasPrefix(nid, patternMarker) {
		return resolvePatternOverlay(nid)
	}

	// Substring fallback, in alias table order: the identifier containing
	// an alias, or being contained by one, is accepted.
	for _, e := range rs.aliases {
		if strings.Contains(nid, e.Alias) || strings.Contains(e.Alias, nid) {
			return e.Category, true
		}
	}

	if n, ok := leadingNumber(nid); ok {
		if cat, ok := sectionNumbers[n]; ok {
			return cat, true
		}
	}

	return 0, false
}

// normalize lowercases, trims, collapses whitespace runs to single
// underscores, and converts hyphens to underscores.
func normalize(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.ReplaceAll(id, "-", " ")
	return strings.Join(strings.Fields(id), "_")
}

// stripNumericSuffix removes one trailing _<digits> group, if present.
func stripNumericSuffix(id string) string {
	i := strings.LastIndex(id, "_")
	if i <= 0 || i == len(id)-1 {
		return id
	}
	for _, r := range id[i+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:i]
}

// leadingNumber returns the bare integer starting the identifier, up to the
// first underscore (or the whole identifier if it is all digits).
func leadingNumber(id string) (int, bool) {
	end := strings.IndexByte(id, '_')
	if end < 0 {
		end = len(id)
	}
	n, err := strconv.Atoi(id[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// resolvePatternOverlay resolves a pattern overlay identifier of the form
// pattern_<group>[_<mirror>]... by mapping the numeric group id range to a
// shirt section, with the mirror marker selecting the right-side variant of
// duplicated part families.
func resolvePatternOverlay(id string) (Category, bool) {
	fields := strings.Split(id, "_")
	group := -1
	mirrored := false
	for _, f := range fields[1:] {
		if group < 0 {
			if n, err := strconv.Atoi(f); err == nil {
				group = n
				continue
			}
		}
		if mirrorMarkers[f] {
			mirrored = true
		}
	}
	if group < 0 {
		return 0, false
	}
	switch {
	case group < 100:
		return Body, true
	case group < 200:
		if mirrored {
			return SleeveRight, true
		}
		return SleeveLeft, true
	case group < 300:
		if mirrored {
			return CuffRight, true
		}
		return CuffLeft, true
	case group < 400:
		return Collar, true
	case group < 500:
		return Placket, true
	}
	return 0, false
}
