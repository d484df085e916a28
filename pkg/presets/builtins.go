package presets

import (
	"embed"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/imposition"
)

//go:embed resources/*.json
var builtinResources embed.FS

type builtinRecord struct {
	Name   string                      `json:"name"`
	Config imposition.ImpositionConfig `json:"config"`
}

// builtins is populated once at package init from the embedded resource
// files, mirroring how pdfcpu bootstraps its own default configuration from
// an embedded config.yml rather than a struct literal.
var builtins = mustLoadBuiltins()

func mustLoadBuiltins() map[string]Preset {
	out, err := loadBuiltins()
	if err != nil {
		panic(err)
	}
	return out
}

func loadBuiltins() (map[string]Preset, error) {
	entries, err := builtinResources.ReadDir("resources")
	if err != nil {
		return nil, errors.Wrap(err, "presets: reading embedded builtin resources")
	}
	out := make(map[string]Preset, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := builtinResources.ReadFile("resources/" + e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "presets: reading %s", e.Name())
		}
		var rec builtinRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, errors.Wrapf(err, "presets: decoding %s", e.Name())
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		out[id] = Preset{ID: id, Name: rec.Name, Builtin: true, Config: rec.Config}
	}
	return out, nil
}

// BuiltinIDs returns the five required built-in preset IDs in a stable,
// sorted order.
func BuiltinIDs() []string {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
