package analyzer

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func mustProject(t *testing.T, img image.Image) *Projection {
	t.Helper()
	p, err := Project(img)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	return p
}

func TestClassify_PercentileNoise(t *testing.T) {
	p := mustProject(t, createNoiseImage(100, 100))

	mask, err := Classify(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	pct := 100 * float64(mask.Count()) / float64(len(mask.Bits))
	if math.Abs(pct-25) > 2 {
		t.Errorf("Expected roughly 25%% above the 75th percentile, got %f", pct)
	}
}

func TestClassify_PercentileAllBlack(t *testing.T) {
	p := mustProject(t, createTestImage(50, 50, black))

	mask, err := Classify(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mask.Count() != 0 {
		t.Errorf("No pixel of a flat image exceeds its own percentile, got %d", mask.Count())
	}
}

func TestClassify_RefinementDoesNotInflate(t *testing.T) {
	// 10x10 tiles of varying brightness: the positive set is a union of tiles
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(((x/10)*7 + (y/10)*3) % 16 * 16)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	p := mustProject(t, img)

	raw, err := Classify(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	before, err := Quantify(raw, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	after, err := Quantify(Refine(raw, 0), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if before.PositivePercentage == 0 {
		t.Fatal("Expected some tiles above the 75th percentile")
	}
	if after.PositivePercentage > before.PositivePercentage+0.5 {
		t.Errorf("Refined %f%% exceeds unrefined %f%% by more than the margin",
			after.PositivePercentage, before.PositivePercentage)
	}
}

func TestClassify_FixedOffset(t *testing.T) {
	img := createTestImage(40, 40, black)
	fillRect(img, 0, 0, 8, 8, white)
	p := mustProject(t, img)

	mask, err := Classify(p, DefaultOptions().WithStrategy(StrategyFixedOffset))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mask.Count() != 64 {
		t.Errorf("Expected the 8x8 white block only, got %d pixels", mask.Count())
	}
	if !mask.At(3, 3) || mask.At(20, 20) {
		t.Error("Unexpected mask contents")
	}
}

func TestClassify_HueBand(t *testing.T) {
	tests := []struct {
		name   string
		colour color.RGBA
		want   bool
	}{
		{"fluorescein green", color.RGBA{0, 255, 0, 255}, true},
		{"yellow green", color.RGBA{150, 230, 40, 255}, true},
		{"pure red", color.RGBA{255, 0, 0, 255}, false},
		{"blue", color.RGBA{0, 0, 255, 255}, false},
		{"dim green", color.RGBA{0, 100, 0, 255}, false},
		{"pale green", color.RGBA{200, 255, 200, 255}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustProject(t, createTestImage(4, 4, tt.colour))
			mask, err := Classify(p, DefaultOptions().WithStrategy(StrategyHueBand))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := mask.At(1, 1); got != tt.want {
				t.Errorf("Expected %v, got %v (hue %d sat %d val %d)",
					tt.want, got, p.Hue[5], p.Saturation[5], p.Value[5])
			}
		})
	}
}

func TestClassify_HueBandWraps(t *testing.T) {
	img := createTestImage(100, 100, black)
	fillRect(img, 45, 45, 55, 55, red)
	fillRect(img, 0, 0, 5, 5, color.RGBA{0, 255, 0, 255})
	p := mustProject(t, img)

	mask, err := Classify(p, redOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mask.Count() != 100 {
		t.Errorf("Expected only the red square, got %d pixels", mask.Count())
	}
}

func TestClassify_ChannelRatio(t *testing.T) {
	img := createTestImage(10, 10, color.RGBA{0, 0, 200, 255})
	fillRect(img, 0, 0, 5, 10, color.RGBA{200, 200, 0, 255})
	p := mustProject(t, img)

	yellow, err := Classify(p, DefaultOptions().WithStrategy(StrategyChannelRatio))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if yellow.Count() != 50 {
		t.Errorf("Expected the yellow half, got %d pixels", yellow.Count())
	}

	opts := DefaultOptions().WithStrategy(StrategyChannelRatio)
	opts.Ratio = RatioGreen
	green, err := Classify(p, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if green.Count() != 0 {
		t.Errorf("Expected no green-dominant pixels, got %d", green.Count())
	}
}

func TestClassify_Adaptive(t *testing.T) {
	img := createTestImage(30, 30, black)
	fillRect(img, 14, 14, 17, 17, white)
	p := mustProject(t, img)

	mask, err := Classify(p, DefaultOptions().WithStrategy(StrategyAdaptive))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !mask.At(15, 15) {
		t.Error("Expected the bright spot to exceed its blurred neighbourhood")
	}
	if mask.At(2, 2) || mask.At(27, 27) {
		t.Error("Flat background must stay negative")
	}
}

func TestClassify_Combined(t *testing.T) {
	img := createTestImage(40, 40, black)
	fillRect(img, 0, 0, 10, 10, red)
	fillRect(img, 20, 20, 30, 30, white)
	p := mustProject(t, img)

	opts := redOptions().WithStrategy(StrategyCombined)
	opts.CombinedStrategies = []Strategy{StrategyPercentile, StrategyHueBand}

	opts.CombineMode = CombineAnd
	and, err := Classify(p, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if and.Count() != 100 {
		t.Errorf("AND: expected only the red square, got %d pixels", and.Count())
	}

	opts.CombineMode = CombineOr
	or, err := Classify(p, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if or.Count() != 200 {
		t.Errorf("OR: expected both squares, got %d pixels", or.Count())
	}
}

func TestClassify_Unsupported(t *testing.T) {
	p := mustProject(t, createTestImage(4, 4, white))

	_, err := Classify(p, DefaultOptions().WithStrategy("otsu"))
	if !errors.Is(err, ErrUnsupportedStrategy) {
		t.Errorf("Expected ErrUnsupportedStrategy, got %v", err)
	}

	opts := DefaultOptions().WithStrategy(StrategyCombined)
	opts.CombinedStrategies = []Strategy{StrategyPercentile, StrategyCombined}
	_, err = Classify(p, opts)
	var unsupported *UnsupportedStrategyError
	if !errors.As(err, &unsupported) || unsupported.Strategy != StrategyCombined {
		t.Errorf("Expected nested combined to be rejected, got %v", err)
	}
}

func TestClassify_ColourStrategiesNeedColour(t *testing.T) {
	p, err := ProjectGray(createTestImage(4, 4, white))
	if err != nil {
		t.Fatalf("ProjectGray failed: %v", err)
	}

	for _, s := range []Strategy{StrategyHueBand, StrategyChannelRatio} {
		_, err := Classify(p, DefaultOptions().WithStrategy(s))
		if !isChannelLayoutError(err) {
			t.Errorf("%s: expected a channel layout error, got %v", s, err)
		}
	}
}

func TestClassify_HueBands(t *testing.T) {
	img := createTestImage(40, 10, black)
	fillRect(img, 0, 0, 10, 10, red)                           // hue 0
	fillRect(img, 10, 0, 20, 10, color.RGBA{0, 255, 0, 255})   // hue 85
	fillRect(img, 20, 0, 30, 10, color.RGBA{0, 0, 255, 255})   // hue 170
	fillRect(img, 30, 0, 40, 10, color.RGBA{255, 0, 255, 255}) // hue 213
	p := mustProject(t, img)

	opts := DefaultOptions().WithStrategy(StrategyHueBand)
	opts.HueBands = []HueRange{{Min: 250, Max: 15}, {Min: 141, Max: 199}}

	mask, err := Classify(p, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mask.Count() != 200 {
		t.Errorf("Expected red and blue only, got %d pixels", mask.Count())
	}
	if !mask.At(5, 5) || mask.At(15, 5) || !mask.At(25, 5) || mask.At(35, 5) {
		t.Error("Unexpected band membership")
	}
}
