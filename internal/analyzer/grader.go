package analyzer

import "fmt"

// Grade is a severity bucket ordered from None to Severe
type Grade int

const (
	GradeNone Grade = iota
	GradeTrace
	GradeMild
	GradeModerate
	GradeSevere
)

var gradeNames = [...]string{"None", "Trace", "Mild", "Moderate", "Severe"}

func (g Grade) String() string {
	if g < GradeNone || g > GradeSevere {
		return fmt.Sprintf("Grade(%d)", int(g))
	}
	return gradeNames[g]
}

// MarshalText encodes the grade by name
func (g Grade) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// LesionPattern describes how positive pixels are distributed
type LesionPattern string

const (
	PatternNone      LesionPattern = "none"
	PatternPunctate  LesionPattern = "punctate"
	PatternPatchy    LesionPattern = "patchy"
	PatternConfluent LesionPattern = "confluent"
)

// Lesion pattern cut-offs on average component area, in pixels
const (
	patchyMinArea    = 50.0
	confluentMinArea = 500.0
)

// Rung is one threshold of a ladder; a percentage >= Min selects it
type Rung struct {
	Min            float64
	Grade          Grade
	Label          string
	Interpretation string
}

// GradeLadder is a strictly ordered threshold table, highest Min first.
// Boundaries are lower-bound inclusive: a percentage equal to a rung's Min
// belongs to that rung.
type GradeLadder struct {
	Name  string
	Rungs []Rung
}

// GradeResult is a pure function of Metrics and the ladder
type GradeResult struct {
	Grade          Grade         `json:"grade"`
	Label          string        `json:"label"`
	Interpretation string        `json:"interpretation"`
	Pattern        LesionPattern `json:"pattern"`
}

const (
	LadderStaining     = "staining"
	LadderInterference = "interference"
)

// StainingLadder follows the Oxford scale approximation for fluorescein staining
var StainingLadder = GradeLadder{
	Name: LadderStaining,
	Rungs: []Rung{
		{Min: 15, Grade: GradeSevere, Label: "Severe (Grade IV-V)",
			Interpretation: "Extensive corneal epithelial damage - coalescing areas"},
		{Min: 8, Grade: GradeModerate, Label: "Moderate (Grade III)",
			Interpretation: "Moderate epithelial disruption - multiple discrete areas"},
		{Min: 3, Grade: GradeMild, Label: "Mild (Grade II)",
			Interpretation: "Mild epithelial changes - few discrete spots"},
		{Min: 0.5, Grade: GradeTrace, Label: "Trace (Grade I)",
			Interpretation: "Minimal epithelial staining - sparse spots"},
		{Min: 0, Grade: GradeNone, Label: "None (Grade 0)",
			Interpretation: "No significant epithelial staining detected"},
	},
}

// InterferenceLadder grades lipid layer pattern coverage. More coverage is healthier,
// so severity decreases as the percentage rises.
var InterferenceLadder = GradeLadder{
	Name: LadderInterference,
	Rungs: []Rung{
		{Min: 60, Grade: GradeNone, Label: "Excellent",
			Interpretation: "Normal lipid layer thickness and spread - healthy tear film"},
		{Min: 40, Grade: GradeTrace, Label: "Good",
			Interpretation: "Mild lipid layer abnormalities - minimal evaporation"},
		{Min: 20, Grade: GradeMild, Label: "Fair",
			Interpretation: "Moderate lipid layer disruption - increased evaporation likely"},
		{Min: 5, Grade: GradeModerate, Label: "Poor",
			Interpretation: "Significant lipid layer deficiency - high evaporation risk"},
		{Min: 0, Grade: GradeSevere, Label: "Very Poor",
			Interpretation: "Severe lipid layer abnormalities - marked evaporative dry eye"},
	},
}

// LadderByName resolves a ladder; the empty name selects the staining ladder
func LadderByName(name string) (GradeLadder, bool) {
	switch name {
	case "", LadderStaining:
		return StainingLadder, true
	case LadderInterference:
		return InterferenceLadder, true
	default:
		return GradeLadder{}, false
	}
}

// Grade maps metrics onto the first rung whose Min the percentage reaches
func (l GradeLadder) Grade(m Metrics) GradeResult {
	if len(l.Rungs) == 0 {
		return GradeResult{Grade: GradeNone, Pattern: lesionPattern(m)}
	}

	rung := l.Rungs[len(l.Rungs)-1]
	for _, r := range l.Rungs {
		if m.PositivePercentage >= r.Min {
			rung = r
			break
		}
	}
	return GradeResult{
		Grade:          rung.Grade,
		Label:          rung.Label,
		Interpretation: rung.Interpretation,
		Pattern:        lesionPattern(m),
	}
}

func lesionPattern(m Metrics) LesionPattern {
	switch {
	case m.ComponentCount == 0:
		return PatternNone
	case m.AverageComponentSize >= confluentMinArea:
		return PatternConfluent
	case m.AverageComponentSize >= patchyMinArea:
		return PatternPatchy
	default:
		return PatternPunctate
	}
}
