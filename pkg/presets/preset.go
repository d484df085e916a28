// Package presets holds the named ImpositionConfig bundles the HTTP surface
// lists and serves: a fixed set of built-in presets embedded at build time,
// plus any number of user-saved presets persisted as JSON files on disk.
package presets

import "github.com/sheetwright/imposer/pkg/imposition"

// Preset is one named, persistable imposition configuration.
type Preset struct {
	ID      string                      `json:"id"`
	Name    string                      `json:"name"`
	Builtin bool                        `json:"builtin"`
	Config  imposition.ImpositionConfig `json:"config"`
}
