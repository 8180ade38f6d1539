package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go-tearfilm-inspector/internal/analyzer"

	"github.com/arbovm/levenshtein"
)

// ErrUnknownPreset marks a preset name the registry does not know
var ErrUnknownPreset = errors.New("unknown preset")

// Built-in preset names
const (
	PresetDefault         = "default"
	PresetFluorescein     = "fluorescein"
	PresetBrightness      = "brightness"
	PresetCornealStaining = "corneal-staining"
	PresetInterference    = "interference"
	PresetYellowRatio     = "yellow-ratio"
)

// maxSuggestionDistance bounds how far a typo may be from a known name to be suggested
const maxSuggestionDistance = 4

// Preset is a named analysis configuration
type Preset struct {
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description" yaml:"description"`
	Options     analyzer.AnalysisOptions `json:"options" yaml:"options"`
}

// UnknownPresetError carries the closest known preset name, if any
type UnknownPresetError struct {
	Name       string
	Suggestion string
}

func (e *UnknownPresetError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown preset %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown preset %q", e.Name)
}

func (e *UnknownPresetError) Is(target error) bool {
	return target == ErrUnknownPreset
}

// Registry holds the presets available to the service
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewRegistry creates a registry pre-populated with the built-in presets
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Preset)}
	for _, p := range builtinPresets() {
		r.presets[p.Name] = p
	}
	return r
}

// Get resolves a preset by name; the empty name selects the default preset
func (r *Registry) Get(name string) (Preset, error) {
	key := normalizeName(name)
	if key == "" {
		key = PresetDefault
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.presets[key]; ok {
		p.Options = p.Options.Clone()
		return p, nil
	}
	return Preset{}, &UnknownPresetError{Name: name, Suggestion: r.closest(key)}
}

// Register adds or replaces a preset after validating its options
func (r *Registry) Register(p Preset) error {
	p.Name = normalizeName(p.Name)
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if err := p.Options.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}

	p.Options = p.Options.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[p.Name] = p
	return nil
}

// Names returns the registered preset names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every preset sorted by name
func (r *Registry) List() []Preset {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Preset, 0, len(names))
	for _, name := range names {
		if p, ok := r.presets[name]; ok {
			p.Options = p.Options.Clone()
			out = append(out, p)
		}
	}
	return out
}

// closest returns the known name with the smallest edit distance. Callers hold the read lock.
func (r *Registry) closest(name string) string {
	best, bestDist := "", maxSuggestionDistance+1
	for known := range r.presets {
		d := levenshtein.Distance(name, known)
		if d < bestDist || (d == bestDist && known < best) {
			best, bestDist = known, d
		}
	}
	return best
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// builtinPresets expresses each historical analysis variant as configuration
func builtinPresets() []Preset {
	fluorescein := analyzer.DefaultOptions().WithStrategy(analyzer.StrategyHueBand)
	fluorescein.HueMin, fluorescein.HueMax = 40, 100
	fluorescein.SaturationMin, fluorescein.ValueMin = 100, 150

	brightness := analyzer.DefaultOptions().WithOverlay(analyzer.RGB{255, 100, 100}, 0.7)
	brightness.Percentile = 80

	staining := analyzer.DefaultOptions().WithStrategy(analyzer.StrategyAdaptive)
	staining.BlurSigma = 2
	staining.AdaptiveOffset = 2
	staining.Contrast = 80
	staining.MinComponentSize = 100

	// Red, yellow, green and blue lipid interference colours, converted from
	// the 0-180 hue scale used by the slit-lamp software to the 0-255 encoding
	interference := analyzer.DefaultOptions().
		WithStrategy(analyzer.StrategyHueBand).
		WithOverlay(analyzer.RGB{255, 255, 0}, 0.6)
	interference.HueBands = []analyzer.HueRange{
		{Min: 254, Max: 15},
		{Min: 27, Max: 58},
		{Min: 56, Max: 114},
		{Min: 141, Max: 199},
	}
	interference.SaturationMin, interference.ValueMin = 49, 49
	interference.Contrast = 40
	interference.Ladder = analyzer.LadderInterference

	yellow := analyzer.DefaultOptions().WithStrategy(analyzer.StrategyChannelRatio)
	yellow.Ratio = analyzer.RatioYellow
	yellow.RatioMultiplier = 1.2

	return []Preset{
		{Name: PresetDefault, Description: "Percentile brightness at the 75th percentile", Options: analyzer.DefaultOptions()},
		{Name: PresetFluorescein, Description: "Green/yellow fluorescein hue band with saturation and value floors", Options: fluorescein},
		{Name: PresetBrightness, Description: "Simple brightness analysis at the 80th percentile", Options: brightness},
		{Name: PresetCornealStaining, Description: "Contrast-enhanced adaptive threshold with a lesion size floor", Options: staining},
		{Name: PresetInterference, Description: "Lipid layer interference colour coverage", Options: interference},
		{Name: PresetYellowRatio, Description: "Yellow channel dominance (R+G)/(2B+1) > 1.2", Options: yellow},
	}
}
