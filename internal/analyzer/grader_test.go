package analyzer

import (
	"encoding/json"
	"testing"
)

func TestStainingLadder_Boundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want Grade
	}{
		{0, GradeNone},
		{0.49, GradeNone},
		{0.5, GradeTrace},
		{2.99, GradeTrace},
		{3.0, GradeMild},
		{7.99, GradeMild},
		{8.0, GradeModerate},
		{14.99, GradeModerate},
		{15.0, GradeSevere},
		{100, GradeSevere},
	}

	for _, tt := range tests {
		got := StainingLadder.Grade(Metrics{PositivePercentage: tt.pct})
		if got.Grade != tt.want {
			t.Errorf("%g%%: expected %s, got %s", tt.pct, tt.want, got.Grade)
		}
		if got.Interpretation == "" || got.Label == "" {
			t.Errorf("%g%%: expected label and interpretation", tt.pct)
		}
	}
}

func TestInterferenceLadder_Boundaries(t *testing.T) {
	tests := []struct {
		pct   float64
		want  Grade
		label string
	}{
		{100, GradeNone, "Excellent"},
		{60, GradeNone, "Excellent"},
		{59.9, GradeTrace, "Good"},
		{40, GradeTrace, "Good"},
		{20, GradeMild, "Fair"},
		{5, GradeModerate, "Poor"},
		{4.9, GradeSevere, "Very Poor"},
		{0, GradeSevere, "Very Poor"},
	}

	for _, tt := range tests {
		got := InterferenceLadder.Grade(Metrics{PositivePercentage: tt.pct})
		if got.Grade != tt.want || got.Label != tt.label {
			t.Errorf("%g%%: expected %s/%s, got %s/%s", tt.pct, tt.want, tt.label, got.Grade, got.Label)
		}
	}
}

func TestGrade_Monotonic(t *testing.T) {
	prevStaining := GradeNone
	prevInterference := GradeSevere
	for i := 0; i <= 1000; i++ {
		m := Metrics{PositivePercentage: float64(i) / 10}

		s := StainingLadder.Grade(m).Grade
		if s < prevStaining {
			t.Fatalf("staining grade decreased at %g%%", m.PositivePercentage)
		}
		prevStaining = s

		in := InterferenceLadder.Grade(m).Grade
		if in > prevInterference {
			t.Fatalf("interference severity increased at %g%%", m.PositivePercentage)
		}
		prevInterference = in
	}
}

func TestGrade_Pattern(t *testing.T) {
	tests := []struct {
		name string
		m    Metrics
		want LesionPattern
	}{
		{"nothing", Metrics{}, PatternNone},
		{"punctate", Metrics{ComponentCount: 12, AverageComponentSize: 9}, PatternPunctate},
		{"patchy", Metrics{ComponentCount: 3, AverageComponentSize: 50}, PatternPatchy},
		{"confluent", Metrics{ComponentCount: 1, AverageComponentSize: 1200}, PatternConfluent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StainingLadder.Grade(tt.m).Pattern; got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestGrade_Pure(t *testing.T) {
	m := Metrics{PositivePercentage: 8, ComponentCount: 4, AverageComponentSize: 60}
	if StainingLadder.Grade(m) != StainingLadder.Grade(m) {
		t.Error("Grading the same metrics twice must give the same result")
	}
}

func TestLadderByName(t *testing.T) {
	for _, name := range []string{"", LadderStaining, LadderInterference} {
		if _, ok := LadderByName(name); !ok {
			t.Errorf("Expected ladder %q to resolve", name)
		}
	}
	if _, ok := LadderByName("oxford"); ok {
		t.Error("Expected unknown ladder to fail")
	}
}

func TestGrade_JSON(t *testing.T) {
	data, err := json.Marshal(GradeResult{Grade: GradeModerate, Pattern: PatternPatchy})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"grade":"Moderate","label":"","interpretation":"","pattern":"patchy"}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
	if Grade(9).String() != "Grade(9)" {
		t.Errorf("Unexpected out-of-range name %q", Grade(9).String())
	}
}
