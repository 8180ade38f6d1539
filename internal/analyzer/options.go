package analyzer

import (
	"fmt"
	"slices"
)

// Strategy selects how the classifier marks positive pixels
type Strategy string

const (
	StrategyPercentile   Strategy = "percentile-brightness"
	StrategyFixedOffset  Strategy = "fixed-offset"
	StrategyHueBand      Strategy = "hue-band"
	StrategyChannelRatio Strategy = "channel-ratio"
	StrategyAdaptive     Strategy = "adaptive"
	StrategyCombined     Strategy = "combined"
)

// Strategies lists every strategy the classifier implements
func Strategies() []Strategy {
	return []Strategy{
		StrategyPercentile,
		StrategyFixedOffset,
		StrategyHueBand,
		StrategyChannelRatio,
		StrategyAdaptive,
		StrategyCombined,
	}
}

// RatioKind selects the channel ratio used by the channel-ratio strategy
type RatioKind string

const (
	// RatioYellow is (R+G)/(2B+1)
	RatioYellow RatioKind = "yellow"
	// RatioGreen is G/(R+B+eps)
	RatioGreen RatioKind = "green"
)

// CombineMode joins the predicates of the combined strategy
type CombineMode string

const (
	CombineAnd CombineMode = "and"
	CombineOr  CombineMode = "or"
)

// HueRange is an open hue interval in the 0-255 encoding. Min > Max wraps around zero.
type HueRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r HueRange) contains(h float64) bool {
	if r.Min > r.Max {
		return h > r.Min || h < r.Max
	}
	return h > r.Min && h < r.Max
}

// RGB is an 8-bit colour triple, encoded as a three element array
type RGB [3]uint8

// ROIExclusion removes anatomically non-diagnostic pixels from the measurement region
type ROIExclusion struct {
	ExcludePupil  bool `json:"exclude_pupil" yaml:"exclude_pupil"`
	ExcludeSclera bool `json:"exclude_sclera" yaml:"exclude_sclera"`

	// Pupil: dark pixels inside a centred disk of radius PupilRadiusFraction*min(w,h)
	PupilRadiusFraction float64 `json:"pupil_radius_fraction" yaml:"pupil_radius_fraction"`
	PupilMaxIntensity   float64 `json:"pupil_max_intensity" yaml:"pupil_max_intensity"`

	// Sclera: bright, nearly colourless pixels (0-255 encoding)
	ScleraMaxSaturation float64 `json:"sclera_max_saturation" yaml:"sclera_max_saturation"`
	ScleraMinValue      float64 `json:"sclera_min_value" yaml:"sclera_min_value"`
}

// Enabled reports whether any exclusion is requested
func (r ROIExclusion) Enabled() bool {
	return r.ExcludePupil || r.ExcludeSclera
}

// AnalysisOptions configures one pipeline run. Zero-valued fields are not
// reinterpreted as defaults: callers start from DefaultOptions or a preset and
// override what they need.
type AnalysisOptions struct {
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// percentile-brightness
	Percentile float64 `json:"percentile" yaml:"percentile"`

	// fixed-offset: mean + OffsetK*stddev
	OffsetK float64 `json:"offset_k" yaml:"offset_k"`

	// hue-band, 0-255 encoding; HueMin > HueMax wraps around zero
	HueMin        float64 `json:"hue_min" yaml:"hue_min"`
	HueMax        float64 `json:"hue_max" yaml:"hue_max"`
	SaturationMin float64 `json:"saturation_min" yaml:"saturation_min"`
	ValueMin      float64 `json:"value_min" yaml:"value_min"`

	// HueBands, when set, replaces HueMin/HueMax; a pixel matches any band
	HueBands []HueRange `json:"hue_bands,omitempty" yaml:"hue_bands,omitempty"`

	// channel-ratio
	Ratio           RatioKind `json:"ratio" yaml:"ratio"`
	RatioMultiplier float64   `json:"ratio_multiplier" yaml:"ratio_multiplier"`

	// adaptive: intensity > gaussian(intensity, BlurSigma) + AdaptiveOffset
	BlurSigma      float64 `json:"blur_sigma" yaml:"blur_sigma"`
	AdaptiveOffset float64 `json:"adaptive_offset" yaml:"adaptive_offset"`

	// combined
	CombinedStrategies []Strategy  `json:"combined_strategies" yaml:"combined_strategies"`
	CombineMode        CombineMode `json:"combine_mode" yaml:"combine_mode"`

	// Contrast is an imaging.AdjustContrast percentage applied before projection; 0 disables it
	Contrast float64 `json:"contrast" yaml:"contrast"`

	HighlightColor   RGB          `json:"highlight_color" yaml:"highlight_color"`
	Alpha            float64      `json:"alpha" yaml:"alpha"`
	MinComponentSize int          `json:"min_component_size" yaml:"min_component_size"`
	ROIExclusion     ROIExclusion `json:"roi_exclusion" yaml:"roi_exclusion"`

	// Ladder names the grade table: "staining" or "interference"
	Ladder string `json:"ladder" yaml:"ladder"`

	DisableFallback    bool    `json:"disable_fallback" yaml:"disable_fallback"`
	FallbackPercentile float64 `json:"fallback_percentile" yaml:"fallback_percentile"`
}

// DefaultOptions returns percentile-brightness at the 75th percentile with a red overlay
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Strategy:        StrategyPercentile,
		Percentile:      75,
		OffsetK:         0.75,
		HueMin:          40,
		HueMax:          100,
		SaturationMin:   100,
		ValueMin:        150,
		Ratio:           RatioYellow,
		RatioMultiplier: 1.2,
		BlurSigma:       2.0,
		AdaptiveOffset:  2.0,
		CombineMode:     CombineAnd,
		HighlightColor:  RGB{255, 0, 0},
		Alpha:           0.7,
		ROIExclusion: ROIExclusion{
			PupilRadiusFraction: 0.2,
			PupilMaxIntensity:   50,
			ScleraMaxSaturation: 40,
			ScleraMinValue:      170,
		},
		Ladder:             LadderStaining,
		FallbackPercentile: 80,
	}
}

// FallbackOptions derives the grayscale brightness configuration used when the
// primary run rejects the image's channel layout
func (opts AnalysisOptions) FallbackOptions() AnalysisOptions {
	fb := opts
	fb.Strategy = StrategyPercentile
	fb.Percentile = opts.FallbackPercentile
	fb.CombinedStrategies = nil
	fb.Contrast = 0
	return fb
}

// Clone returns a copy that shares no slice storage with opts
func (opts AnalysisOptions) Clone() AnalysisOptions {
	opts.HueBands = slices.Clone(opts.HueBands)
	opts.CombinedStrategies = slices.Clone(opts.CombinedStrategies)
	return opts
}

// WithStrategy returns a copy using the given strategy
func (opts AnalysisOptions) WithStrategy(s Strategy) AnalysisOptions {
	opts.Strategy = s
	return opts
}

// WithROIExclusion returns a copy with pupil/sclera exclusion toggled
func (opts AnalysisOptions) WithROIExclusion(pupil, sclera bool) AnalysisOptions {
	opts.ROIExclusion.ExcludePupil = pupil
	opts.ROIExclusion.ExcludeSclera = sclera
	return opts
}

// WithOverlay returns a copy with a new highlight colour and alpha
func (opts AnalysisOptions) WithOverlay(c RGB, alpha float64) AnalysisOptions {
	opts.HighlightColor = c
	opts.Alpha = alpha
	return opts
}

// Validate rejects options the pipeline cannot honour
func (opts AnalysisOptions) Validate() error {
	if !knownStrategy(opts.Strategy) {
		return &UnsupportedStrategyError{Strategy: opts.Strategy}
	}
	if opts.Strategy == StrategyCombined {
		if len(opts.CombinedStrategies) == 0 {
			return fmt.Errorf("combined strategy needs at least one member strategy")
		}
		for _, s := range opts.CombinedStrategies {
			if s == StrategyCombined || !knownStrategy(s) {
				return &UnsupportedStrategyError{Strategy: s}
			}
		}
		if opts.CombineMode != CombineAnd && opts.CombineMode != CombineOr {
			return fmt.Errorf("unknown combine mode %q", opts.CombineMode)
		}
	}
	if opts.Percentile < 0 || opts.Percentile > 100 {
		return fmt.Errorf("percentile must be within [0,100], got %g", opts.Percentile)
	}
	if opts.FallbackPercentile < 0 || opts.FallbackPercentile > 100 {
		return fmt.Errorf("fallback percentile must be within [0,100], got %g", opts.FallbackPercentile)
	}
	if opts.Alpha < 0 || opts.Alpha > 1 {
		return fmt.Errorf("alpha must be within [0,1], got %g", opts.Alpha)
	}
	if opts.MinComponentSize < 0 {
		return fmt.Errorf("min component size must be >= 0, got %d", opts.MinComponentSize)
	}
	if opts.Strategy == StrategyChannelRatio && opts.Ratio != RatioYellow && opts.Ratio != RatioGreen {
		return fmt.Errorf("unknown channel ratio %q", opts.Ratio)
	}
	if _, ok := LadderByName(opts.Ladder); !ok {
		return fmt.Errorf("unknown grade ladder %q", opts.Ladder)
	}
	return nil
}

func knownStrategy(s Strategy) bool {
	for _, known := range Strategies() {
		if s == known {
			return true
		}
	}
	return false
}
