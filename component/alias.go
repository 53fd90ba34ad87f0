// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package component

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// aliasEntry is one alias table row. The table is an ordered slice rather
// than a map so that substring fallback matching walks entries in a fixed,
// explicit priority order.
type aliasEntry struct {
	Alias    string
	Category Category
}

// defaultAliases is the built-in alias table, in priority order: variant
// specific names (left/right) come before generic ones so that substring
// matching cannot shadow them.
var defaultAliases = []aliasEntry{
	{"sleeve_left", SleeveLeft},
	{"left_sleeve", SleeveLeft},
	{"sleeve_l", SleeveLeft},
	{"l_sleeve", SleeveLeft},
	{"arm_left", SleeveLeft},
	{"sleeve_right", SleeveRight},
	{"right_sleeve", SleeveRight},
	{"sleeve_r", SleeveRight},
	{"r_sleeve", SleeveRight},
	{"arm_right", SleeveRight},
	{"cuff_left", CuffLeft},
	{"left_cuff", CuffLeft},
	{"cuff_l", CuffLeft},
	{"cuff_right", CuffRight},
	{"right_cuff", CuffRight},
	{"cuff_r", CuffRight},
	{"collar", Collar},
	{"neckband", Collar},
	{"neck", Collar},
	{"buttons", Buttons},
	{"button", Buttons},
	{"placket", Placket},
	{"button_band", Placket},
	{"pocket", Pocket},
	{"hem", Hem},
	{"bottom_band", Hem},
	{"body", Body},
	{"torso", Body},
	{"front", Body},
	{"back", Body},
	{"chest", Body},
}

// aliasFile is the YAML schema for alias extension files: an ordered
// sequence so that file order defines match priority.
type aliasFile struct {
	Aliases []struct {
		Alias    string `yaml:"alias"`
		Category string `yaml:"category"`
	} `yaml:"aliases"`
}

// LoadAliases reads an alias extension file in YAML form from the given
// filesystem and returns the parsed entries in file order. Model-specific
// naming packs can ship as data this way; pass the result to
// [Resolver.AddAliases].
func LoadAliases(fsys fs.FS, file string) ([]aliasEntry, error) {
	b, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("component.LoadAliases: %w", err)
	}
	var af aliasFile
	if err := yaml.Unmarshal(b, &af); err != nil {
		return nil, fmt.Errorf("component.LoadAliases: %w", err)
	}
	entries := make([]aliasEntry, 0, len(af.Aliases))
	for _, a := range af.Aliases {
		cat, err := CategoryFromString(a.Category)
		if err != nil {
			return nil, fmt.Errorf("component.LoadAliases: alias %q: %w", a.Alias, err)
		}
		entries = append(entries, aliasEntry{normalize(a.Alias), cat})
	}
	return entries, nil
}
