// Package clinical scores tear film examination findings into a dry eye
// type, severity and management plan following TFOS DEWS III criteria.
package clinical

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-tearfilm-inspector/internal/analyzer"
)

// ErrInvalidParameters marks clinical input outside its measurable range
var ErrInvalidParameters = errors.New("invalid clinical parameters")

// Dry eye types
const (
	TypeAqueousDeficient = "Aqueous Deficient Dry Eye (ADDE)"
	TypeEvaporative      = "Evaporative Dry Eye (EDE)"
	TypeMixed            = "Mixed Dry Eye"
	TypeSubclinical      = "Subclinical or No Dry Eye"
)

// TFOS classifications
const (
	TFOSPureAqueous = "Pure Aqueous Deficiency"
	TFOSPureEvap    = "Pure Evaporative"
	TFOSMixed       = "Mixed Mechanism"
	TFOSSubclinical = "Subclinical/Pre-clinical"
)

const (
	SeverityNone     = "None"
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
)

// StainingGrade is a 0-5 clinical staining score. In JSON it accepts either
// the number or its chart label, e.g. "II - Moderate".
type StainingGrade int

var stainingLabels = []string{
	"0 - None",
	"I - Mild",
	"II - Moderate",
	"III - Marked",
	"IV - Severe",
	"V - Extreme",
}

// ParseStainingGrade resolves a chart label or its roman numeral prefix
func ParseStainingGrade(s string) (StainingGrade, error) {
	s = strings.TrimSpace(s)
	for i, label := range stainingLabels {
		numeral, _, _ := strings.Cut(label, " - ")
		if strings.EqualFold(s, label) || strings.EqualFold(s, numeral) {
			return StainingGrade(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown staining grade %q", ErrInvalidParameters, s)
}

func (g StainingGrade) String() string {
	if g < 0 || int(g) >= len(stainingLabels) {
		return fmt.Sprintf("StainingGrade(%d)", int(g))
	}
	return stainingLabels[g]
}

func (g *StainingGrade) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*g = StainingGrade(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: staining grade must be a number or label", ErrInvalidParameters)
	}
	parsed, err := ParseStainingGrade(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// StainingFromGrade converts an image staining grade into the chart scale
func StainingFromGrade(g analyzer.Grade) StainingGrade {
	switch g {
	case analyzer.GradeTrace:
		return 1
	case analyzer.GradeMild:
		return 2
	case analyzer.GradeModerate:
		return 3
	case analyzer.GradeSevere:
		return 4
	default:
		return 0
	}
}

// Parameters are the examination findings for one eye
type Parameters struct {
	TBUT                 float64       `json:"tbut"`     // seconds, 0-30
	TMH                  float64       `json:"tmh"`      // mm, 0-1
	Schirmer             float64       `json:"schirmer"` // mm/5min, 0-35
	MeibomianGrade       int           `json:"meibomian_grade"`
	Meiboscore           int           `json:"meiboscore"`
	OSDI                 float64       `json:"osdi"`
	DEQ5                 float64       `json:"deq5"`
	CornealStaining      StainingGrade `json:"corneal_staining"`
	ConjunctivalStaining StainingGrade `json:"conjunctival_staining"`
}

// DefaultParameters mirrors a healthy baseline examination
func DefaultParameters() Parameters {
	return Parameters{TBUT: 10, TMH: 0.3, Schirmer: 15, Meiboscore: 1, OSDI: 25, DEQ5: 8}
}

// Validate checks every finding against its instrument range
func (p Parameters) Validate() error {
	checks := []struct {
		name     string
		val, max float64
	}{
		{"tbut", p.TBUT, 30},
		{"tmh", p.TMH, 1},
		{"schirmer", p.Schirmer, 35},
		{"meibomian_grade", float64(p.MeibomianGrade), 4},
		{"meiboscore", float64(p.Meiboscore), 3},
		{"osdi", p.OSDI, 100},
		{"deq5", p.DEQ5, 22},
		{"corneal_staining", float64(p.CornealStaining), 5},
		{"conjunctival_staining", float64(p.ConjunctivalStaining), 5},
	}
	for _, c := range checks {
		if c.val < 0 || c.val > c.max {
			return fmt.Errorf("%w: %s must be within [0,%g], got %g", ErrInvalidParameters, c.name, c.max, c.val)
		}
	}
	return nil
}

// MeniscusAssessment interprets tear meniscus height
type MeniscusAssessment struct {
	Status         string `json:"status"`
	Interpretation string `json:"interpretation"`
	RiskLevel      string `json:"risk_level"`
	Recommendation string `json:"recommendation"`
}

// ComponentScores are the capped sub-scores that make up the total
type ComponentScores struct {
	AqueousDeficiency int `json:"aqueous_deficiency"`
	Evaporative       int `json:"evaporative"`
	Inflammatory      int `json:"inflammatory"`
	Symptomatic       int `json:"symptomatic"`
}

// Total sums the components
func (c ComponentScores) Total() int {
	return c.AqueousDeficiency + c.Evaporative + c.Inflammatory + c.Symptomatic
}

// ParameterStatus flags a single finding against its normal limit
type ParameterStatus struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Status    string  `json:"status"`
}

// Assessment is the full clinical picture
type Assessment struct {
	DryEyeType         string             `json:"dry_eye_type"`
	Severity           string             `json:"severity"`
	TotalScore         int                `json:"total_score"`
	ComponentScores    ComponentScores    `json:"component_scores"`
	TFOSClassification string             `json:"tfos_classification"`
	Meniscus           MeniscusAssessment `json:"meniscus"`
	Summary            []ParameterStatus  `json:"summary"`
	Recommendations    []string           `json:"recommendations"`
}

// Assess scores the parameters. It is pure: the same input yields the same output.
func Assess(p Parameters) (Assessment, error) {
	if err := p.Validate(); err != nil {
		return Assessment{}, err
	}

	scores := ComponentScores{
		AqueousDeficiency: aqueousScore(p.TMH, p.Schirmer),
		Evaporative:       evaporativeScore(p.TBUT, p.MeibomianGrade, p.Meiboscore),
		Inflammatory:      int(p.CornealStaining + p.ConjunctivalStaining),
		Symptomatic:       symptomScore(p.OSDI, p.DEQ5),
	}

	a := Assessment{
		DryEyeType:         dryEyeType(scores),
		Severity:           severity(scores.Total()),
		TotalScore:         scores.Total(),
		ComponentScores:    scores,
		TFOSClassification: tfosClass(scores),
		Meniscus:           AnalyzeMeniscus(p.TMH),
		Summary:            summarize(p),
	}
	a.Recommendations = Recommendations(a)
	return a, nil
}

// AnalyzeMeniscus grades tear meniscus height in mm
func AnalyzeMeniscus(tmh float64) MeniscusAssessment {
	switch {
	case tmh < 0.2:
		return MeniscusAssessment{
			Status:         "Low",
			Interpretation: "Reduced tear volume suggestive of aqueous deficiency",
			RiskLevel:      "High",
			Recommendation: "Consider aqueous enhancement therapy",
		}
	case tmh < 0.3:
		return MeniscusAssessment{
			Status:         "Borderline",
			Interpretation: "Marginal tear volume, monitor for progression",
			RiskLevel:      "Moderate",
			Recommendation: "Regular lubrication and monitoring",
		}
	default:
		return MeniscusAssessment{
			Status:         "Normal",
			Interpretation: "Adequate tear volume",
			RiskLevel:      "Low",
			Recommendation: "Maintain current ocular surface health",
		}
	}
}

func aqueousScore(tmh, schirmer float64) int {
	score := 0
	switch {
	case tmh < 0.2:
		score += 3
	case tmh < 0.3:
		score++
	}
	switch {
	case schirmer < 5:
		score += 3
	case schirmer < 10:
		score += 2
	case schirmer < 15:
		score++
	}
	return min(score, 6)
}

func evaporativeScore(tbut float64, meibomianGrade, meiboscore int) int {
	score := meibomianGrade + meiboscore
	switch {
	case tbut < 5:
		score += 3
	case tbut < 10:
		score += 2
	case tbut < 15:
		score++
	}
	return min(score, 6)
}

func symptomScore(osdi, deq5 float64) int {
	score := 0
	switch {
	case osdi > 50:
		score += 3
	case osdi > 33:
		score += 2
	case osdi > 22:
		score++
	}
	switch {
	case deq5 > 12:
		score += 3
	case deq5 > 8:
		score += 2
	case deq5 > 6:
		score++
	}
	return min(score, 4)
}

func dryEyeType(s ComponentScores) string {
	switch {
	case s.AqueousDeficiency >= 6 && s.Evaporative < 4:
		return TypeAqueousDeficient
	case s.Evaporative >= 6 && s.AqueousDeficiency < 4:
		return TypeEvaporative
	case s.AqueousDeficiency >= 4 && s.Evaporative >= 4:
		return TypeMixed
	default:
		return TypeSubclinical
	}
}

func severity(total int) string {
	switch {
	case total >= 12:
		return SeveritySevere
	case total >= 8:
		return SeverityModerate
	case total >= 4:
		return SeverityMild
	default:
		return SeverityNone
	}
}

func tfosClass(s ComponentScores) string {
	switch {
	case s.AqueousDeficiency >= 4 && s.Evaporative < 3:
		return TFOSPureAqueous
	case s.Evaporative >= 4 && s.AqueousDeficiency < 3:
		return TFOSPureEvap
	case s.AqueousDeficiency >= 3 && s.Evaporative >= 3:
		return TFOSMixed
	default:
		return TFOSSubclinical
	}
}

func summarize(p Parameters) []ParameterStatus {
	status := func(ok bool, bad string) string {
		if ok {
			return "Normal"
		}
		return bad
	}
	return []ParameterStatus{
		{Parameter: "TBUT", Value: p.TBUT, Unit: "s", Status: status(p.TBUT >= 10, "Low")},
		{Parameter: "TMH", Value: p.TMH, Unit: "mm", Status: status(p.TMH >= 0.3, "Low")},
		{Parameter: "Schirmer", Value: p.Schirmer, Unit: "mm/5min", Status: status(p.Schirmer >= 10, "Low")},
		{Parameter: "OSDI", Value: p.OSDI, Unit: "/100", Status: status(p.OSDI <= 22, "High")},
	}
}
