package analyzer

import (
	"errors"
	"image/color"
	"testing"
)

func TestRender_Blend(t *testing.T) {
	img := createTestImage(4, 4, color.RGBA{100, 100, 100, 255})
	mask := NewMask(4, 4)
	mask.Set(1, 1, true)

	out, err := Render(img, mask, RGB{255, 0, 0}, 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got := out.NRGBAAt(1, 1)
	want := color.NRGBA{178, 50, 50, 255}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRender_PassThrough(t *testing.T) {
	img := createNoiseImage(30, 20)
	mask := randomMask(newTestRand(), 30, 20, 0.4)

	out, err := Render(img, mask, RGB{0, 255, 0}, 0.7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Bounds().Dx() != 30 || out.Bounds().Dy() != 20 {
		t.Fatalf("Unexpected output size %v", out.Bounds())
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			if mask.At(x, y) {
				continue
			}
			src := img.RGBAAt(x, y)
			dst := out.NRGBAAt(x, y)
			if src.R != dst.R || src.G != dst.G || src.B != dst.B || src.A != dst.A {
				t.Fatalf("pixel (%d,%d) changed from %v to %v", x, y, src, dst)
			}
		}
	}
}

func TestRender_AlphaClamped(t *testing.T) {
	img := createTestImage(2, 2, color.RGBA{10, 20, 30, 255})
	mask := FullMask(2, 2)

	out, err := Render(img, mask, RGB{200, 150, 100}, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{200, 150, 100, 255}) {
		t.Errorf("alpha > 1 should clamp to the highlight colour, got %v", got)
	}

	out, err = Render(img, mask, RGB{200, 150, 100}, -1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("alpha < 0 should clamp to the source colour, got %v", got)
	}
}

func TestRender_SourceUntouched(t *testing.T) {
	img := createTestImage(3, 3, color.RGBA{60, 60, 60, 255})
	before := append([]uint8(nil), img.Pix...)

	if _, err := Render(img, FullMask(3, 3), RGB{255, 255, 255}, 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatal("Render modified the source image")
		}
	}
}

func TestRender_DimensionMismatch(t *testing.T) {
	img := createTestImage(3, 3, white)
	_, err := Render(img, NewMask(4, 3), RGB{}, 0.5)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
}
