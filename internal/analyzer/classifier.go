package analyzer

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// predicate marks positive pixels of a projection
type predicate func(p *Projection, opts AnalysisOptions) (*Mask, error)

// Classify applies the configured strategy and returns a mask with the projection's dimensions.
// An all-false mask is a valid result.
func Classify(p *Projection, opts AnalysisOptions) (*Mask, error) {
	if p == nil || p.Width <= 0 || p.Height <= 0 {
		return nil, &InvalidImageError{Reason: "empty projection"}
	}
	if opts.Strategy == StrategyCombined {
		return classifyCombined(p, opts)
	}
	pred, err := predicateFor(opts.Strategy)
	if err != nil {
		return nil, err
	}
	return pred(p, opts)
}

func predicateFor(s Strategy) (predicate, error) {
	switch s {
	case StrategyPercentile:
		return percentileMask, nil
	case StrategyFixedOffset:
		return fixedOffsetMask, nil
	case StrategyHueBand:
		return hueBandMask, nil
	case StrategyChannelRatio:
		return channelRatioMask, nil
	case StrategyAdaptive:
		return adaptiveMask, nil
	default:
		return nil, &UnsupportedStrategyError{Strategy: s}
	}
}

func classifyCombined(p *Projection, opts AnalysisOptions) (*Mask, error) {
	if len(opts.CombinedStrategies) == 0 {
		return nil, fmt.Errorf("combined strategy needs at least one member strategy")
	}

	var out *Mask
	for _, s := range opts.CombinedStrategies {
		if s == StrategyCombined {
			return nil, &UnsupportedStrategyError{Strategy: s}
		}
		pred, err := predicateFor(s)
		if err != nil {
			return nil, err
		}
		m, err := pred(p, opts)
		if err != nil {
			return nil, err
		}
		switch {
		case out == nil:
			out = m
		case opts.CombineMode == CombineOr:
			out = out.Or(m)
		default:
			out = out.And(m)
		}
	}
	return out, nil
}

// percentileMask marks pixels strictly brighter than the image's own Nth percentile
func percentileMask(p *Projection, opts AnalysisOptions) (*Mask, error) {
	sorted := make([]float64, len(p.Intensity))
	copy(sorted, p.Intensity)
	sort.Float64s(sorted)

	q := clampFloat(opts.Percentile, 0, 100) / 100
	threshold := stat.Quantile(q, stat.Empirical, sorted, nil)

	m := NewMask(p.Width, p.Height)
	for i, v := range p.Intensity {
		m.Bits[i] = v > threshold
	}
	return m, nil
}

// fixedOffsetMask marks pixels above mean + k*stddev of intensity
func fixedOffsetMask(p *Projection, opts AnalysisOptions) (*Mask, error) {
	mean, std := stat.MeanStdDev(p.Intensity, nil)
	if math.IsNaN(std) {
		std = 0
	}
	threshold := mean + opts.OffsetK*std

	m := NewMask(p.Width, p.Height)
	for i, v := range p.Intensity {
		m.Bits[i] = v > threshold
	}
	return m, nil
}

// hueBandMask is the fluorescein predicate: saturation floor AND value floor AND hue band
func hueBandMask(p *Projection, opts AnalysisOptions) (*Mask, error) {
	if !p.HasColor() {
		return nil, &InvalidImageError{Reason: "hue-band needs a colour projection", ChannelLayout: true}
	}

	bands := opts.HueBands
	if len(bands) == 0 {
		bands = []HueRange{{Min: opts.HueMin, Max: opts.HueMax}}
	}

	m := NewMask(p.Width, p.Height)
	for i := range m.Bits {
		if float64(p.Saturation[i]) <= opts.SaturationMin || float64(p.Value[i]) <= opts.ValueMin {
			continue
		}
		h := float64(p.Hue[i])
		for _, band := range bands {
			if band.contains(h) {
				m.Bits[i] = true
				break
			}
		}
	}
	return m, nil
}

// channelRatioMask marks pixels whose selected channel ratio exceeds the multiplier
func channelRatioMask(p *Projection, opts AnalysisOptions) (*Mask, error) {
	if !p.HasColor() {
		return nil, &InvalidImageError{Reason: "channel-ratio needs a colour projection", ChannelLayout: true}
	}

	var ratios []float64
	switch opts.Ratio {
	case RatioYellow:
		ratios = p.YellowRatio
	case RatioGreen:
		ratios = p.GreenRatio
	default:
		return nil, fmt.Errorf("unknown channel ratio %q", opts.Ratio)
	}

	m := NewMask(p.Width, p.Height)
	for i, r := range ratios {
		m.Bits[i] = r > opts.RatioMultiplier
	}
	return m, nil
}

// adaptiveMask compares each pixel with a gaussian-smoothed neighbourhood plus an offset,
// which tolerates uneven slit-lamp illumination
func adaptiveMask(p *Projection, opts AnalysisOptions) (*Mask, error) {
	gray := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	for i, v := range p.Intensity {
		gray.Pix[i] = uint8(math.Round(clampFloat(v, 0, 255)))
	}
	blurred := imaging.Blur(gray, opts.BlurSigma)

	m := NewMask(p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := y*p.Width + x
			local := float64(blurred.Pix[y*blurred.Stride+x*4])
			m.Bits[i] = p.Intensity[i] > local+opts.AdaptiveOffset
		}
	}
	return m, nil
}
