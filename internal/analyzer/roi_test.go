package analyzer

import (
	"image/color"
	"testing"
)

func TestBuildROI_Disabled(t *testing.T) {
	p := mustProject(t, createTestImage(10, 10, white))
	if roi := BuildROI(p, DefaultOptions().ROIExclusion); roi != nil {
		t.Errorf("Expected nil ROI when no exclusion is enabled, got %d pixels", roi.Count())
	}
}

func TestBuildROI_Pupil(t *testing.T) {
	img := createTestImage(40, 40, color.RGBA{120, 90, 60, 255})
	fillRect(img, 17, 17, 23, 23, black) // centre
	fillRect(img, 0, 0, 3, 3, black)     // corner, outside the pupil disk
	p := mustProject(t, img)

	ex := DefaultOptions().WithROIExclusion(true, false).ROIExclusion
	roi := BuildROI(p, ex)

	if roi.Count() != 1600-36 {
		t.Errorf("Expected the 6x6 centre to be excluded, ROI has %d pixels", roi.Count())
	}
	if roi.At(20, 20) {
		t.Error("Dark centre pixel should be excluded")
	}
	if !roi.At(1, 1) {
		t.Error("Dark corner pixel is outside the pupil disk and should stay")
	}
}

func TestBuildROI_Sclera(t *testing.T) {
	img := createTestImage(10, 10, color.RGBA{40, 200, 60, 255})
	fillRect(img, 0, 0, 10, 3, color.RGBA{235, 230, 232, 255})
	p := mustProject(t, img)

	ex := DefaultOptions().WithROIExclusion(false, true).ROIExclusion
	roi := BuildROI(p, ex)

	if roi.Count() != 70 {
		t.Errorf("Expected the white band to be excluded, ROI has %d pixels", roi.Count())
	}
}

func TestBuildROI_SingleChannel(t *testing.T) {
	p, err := ProjectGray(createTestImage(10, 10, white))
	if err != nil {
		t.Fatalf("ProjectGray failed: %v", err)
	}

	ex := DefaultOptions().WithROIExclusion(false, true).ROIExclusion
	if roi := BuildROI(p, ex); roi.Count() != 0 {
		t.Errorf("Bright gray pixels should count as sclera, %d remain", roi.Count())
	}
}
