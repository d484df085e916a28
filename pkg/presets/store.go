package presets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrPresetNotFound is returned by Get when neither a built-in nor a saved
// preset matches the requested ID.
var ErrPresetNotFound = errors.New("preset not found")

// ErrInvalidPresetName is returned by Save when the preset's name sanitizes
// down to nothing usable as a filename.
var ErrInvalidPresetName = errors.New("invalid preset name")

// Store persists user-saved presets as one JSON file per preset under Dir,
// alongside the fixed built-in table. It has no in-memory cache: List and
// Get always re-read the directory, since presets are edited out-of-process
// (by hand, or by another server instance) as often as through this API.
type Store struct {
	Dir string
}

// NewStore ensures dir exists and returns a Store rooted at it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "presets: creating store directory %s", dir)
	}
	return &Store{Dir: dir}, nil
}

// List returns every built-in preset followed by every saved preset, sorted
// by ID within each group.
func (s *Store) List() ([]Preset, error) {
	out := make([]Preset, 0, len(builtins))
	for _, id := range BuiltinIDs() {
		out = append(out, builtins[id])
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "presets: listing %s", s.Dir)
	}
	var saved []Preset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := s.readFile(e.Name())
		if err != nil {
			continue // a hand-edited or half-written file shouldn't break the listing
		}
		saved = append(saved, p)
	}
	sort.Slice(saved, func(i, j int) bool { return saved[i].ID < saved[j].ID })
	return append(out, saved...), nil
}

// Get returns the preset for id, checking built-ins before the saved store.
func (s *Store) Get(id string) (Preset, error) {
	if p, ok := builtins[id]; ok {
		return p, nil
	}
	p, err := s.readFile(id + ".json")
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return Preset{}, errors.Wrapf(ErrPresetNotFound, "id %q", id)
		}
		return Preset{}, err
	}
	return p, nil
}

// Save writes p to disk under a filename sanitized from p.Name, matching
// the original implementation's character whitelist (alphanumerics,
// hyphen, underscore, space). It overwrites any existing file of the same
// sanitized name.
func (s *Store) Save(p Preset) (Preset, error) {
	safe := sanitizeName(p.Name)
	if safe == "" {
		return Preset{}, ErrInvalidPresetName
	}
	p.ID = safe
	p.Builtin = false

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return Preset{}, errors.Wrap(err, "presets: encoding preset")
	}
	path := filepath.Join(s.Dir, safe+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Preset{}, errors.Wrapf(err, "presets: writing %s", path)
	}
	return p, nil
}

func (s *Store) readFile(name string) (Preset, error) {
	path := filepath.Join(s.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, errors.Wrapf(err, "presets: reading %s", path)
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, errors.Wrapf(err, "presets: decoding %s", path)
	}
	if p.ID == "" {
		p.ID = strings.TrimSuffix(name, ".json")
	}
	p.Builtin = false
	return p, nil
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
