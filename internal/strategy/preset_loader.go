package strategy

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// presetFile is the on-disk layout:
//
//	presets:
//	  - name: fluorescein-strict
//	    base: fluorescein
//	    options:
//	      saturation_min: 130
type presetFile struct {
	Presets []presetEntry `yaml:"presets"`
}

type presetEntry struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Base        string    `yaml:"base"`
	Options     yaml.Node `yaml:"options"`
}

// LoadFile registers the presets declared in a YAML file and returns how many were added
func (r *Registry) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open preset file: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}

// Load registers presets from YAML. Each entry starts from its base preset
// (default when omitted) and overrides only the options it lists. Nothing is
// registered when any entry is invalid.
func (r *Registry) Load(rd io.Reader) (int, error) {
	var file presetFile
	if err := yaml.NewDecoder(rd).Decode(&file); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to parse preset file: %w", err)
	}

	resolved := make([]Preset, 0, len(file.Presets))
	for i, entry := range file.Presets {
		name := normalizeName(entry.Name)
		if name == "" {
			return 0, fmt.Errorf("preset %d: name is required", i)
		}

		base, err := r.Get(entry.Base)
		if err != nil {
			return 0, fmt.Errorf("preset %q: %w", name, err)
		}

		opts := base.Options.Clone()
		if !entry.Options.IsZero() {
			if err := entry.Options.Decode(&opts); err != nil {
				return 0, fmt.Errorf("preset %q: invalid options: %w", name, err)
			}
		}
		if err := opts.Validate(); err != nil {
			return 0, fmt.Errorf("preset %q: %w", name, err)
		}

		resolved = append(resolved, Preset{Name: name, Description: entry.Description, Options: opts})
	}

	for _, p := range resolved {
		if err := r.Register(p); err != nil {
			return 0, err
		}
	}
	return len(resolved), nil
}
