package grading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MarkKind distinguishes a numeric score from the non-numeric markers
// that appear on result sheets.
type MarkKind int

const (
	Numeric MarkKind = iota
	Absent
	UnfairMeans
)

// Mark is a tagged mark value: either a numeric score out of max marks,
// or one of the Absent / UnfairMeans markers.
type Mark struct {
	Kind  MarkKind
	Score float64
}

// ParseMark converts a raw marks string ("67", "A", "UFM") into a Mark.
// Numeric values must lie in [0,100].
func ParseMark(raw string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "A":
		return Mark{Kind: Absent}, nil
	case "UFM":
		return Mark{Kind: UnfairMeans}, nil
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Mark{}, fmt.Errorf("invalid marks value %q", raw)
	}
	if score < 0 || score > 100 {
		return Mark{}, fmt.Errorf("marks %v out of range 0-100", score)
	}
	return Mark{Kind: Numeric, Score: score}, nil
}

// String renders the mark the way it is stored: the numeric score, or
// the marker letters.
func (m Mark) String() string {
	switch m.Kind {
	case Absent:
		return "A"
	case UnfairMeans:
		return "UFM"
	}
	return strconv.FormatFloat(m.Score, 'f', -1, 64)
}

// PassThreshold is the minimum numeric score counted as a subject pass.
const PassThreshold = 40

// GradeFor maps a mark to its letter grade. Absent and UnfairMeans
// marks carry no letter grade.
func GradeFor(m Mark) string {
	if m.Kind != Numeric {
		return ""
	}
	switch {
	case m.Score >= 90:
		return "A+"
	case m.Score >= 80:
		return "A"
	case m.Score >= 70:
		return "B+"
	case m.Score >= 60:
		return "B"
	case m.Score >= 50:
		return "C+"
	case m.Score >= 40:
		return "C"
	default:
		return "F"
	}
}

// PassFail reports whether the mark clears the pass threshold. Absent
// and UnfairMeans marks never pass.
func PassFail(m Mark) bool {
	return m.Kind == Numeric && m.Score >= PassThreshold
}

// Result labels for the overall classification of one sitting.
const (
	ResultDistinction   = "PASS WITH DISTINCTION"
	ResultFirstDivision = "PASS WITH FIRST DIVISION"
	ResultPass          = "PASS"
	ResultReappear      = "REAPPEAR"
	ResultFail          = "FAIL"
)

// Rules is the institution grading policy. Thresholds and subject-code
// carve-outs vary between campuses and years, so they are always passed
// in, never hard-coded at call sites.
type Rules struct {
	// FailThreshold is the number of failing subjects a student may
	// carry into a reappear sitting.
	FailThreshold int `json:"fail_threshold"`
	// SpecialFailThreshold replaces FailThreshold when at least one of
	// the failing subjects is a special code.
	SpecialFailThreshold int `json:"special_fail_threshold"`
	// SpecialCodes are subject codes granted the relaxed reappear
	// allowance.
	SpecialCodes []string `json:"special_codes"`
	// ExcludedCodes are subject codes left out of total-mark and
	// percentage computation and of the failing count.
	ExcludedCodes []string `json:"excluded_codes"`
	// Percentage bands for the pass classifications.
	DistinctionPct   float64 `json:"distinction_pct"`
	FirstDivisionPct float64 `json:"first_division_pct"`
	PassPct          float64 `json:"pass_pct"`
}

// DefaultRules returns the policy in force when no campus override is
// configured.
func DefaultRules() Rules {
	return Rules{
		FailThreshold:        2,
		SpecialFailThreshold: 3,
		DistinctionPct:       75,
		FirstDivisionPct:     60,
		PassPct:              50,
	}
}

func (r Rules) isSpecial(code string) bool {
	for _, c := range r.SpecialCodes {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

func (r Rules) isExcluded(code string) bool {
	for _, c := range r.ExcludedCodes {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// SubjectOutcome is one subject's contribution to the overall result.
type SubjectOutcome struct {
	SubjectCode string
	Mark        Mark
	MaxMarks    float64
	Passed      bool
}

// Classification is the computed overall result for one sitting.
type Classification struct {
	Result        string   `json:"result"`
	MarksObtained float64  `json:"marks_obtained"`
	MaxMarks      float64  `json:"max_marks"`
	Percentage    float64  `json:"percentage"`
	FailedCodes   []string `json:"failed_codes,omitempty"`
}

// ClassifyOverall computes the final result for a set of subject
// outcomes under the given rules. Excluded codes contribute neither to
// totals nor to the failing count. Non-numeric marks count as failures
// but stay out of the obtained/max sums.
func ClassifyOverall(outcomes []SubjectOutcome, rules Rules) Classification {
	var c Classification
	specialFailed := false
	for _, o := range outcomes {
		if rules.isExcluded(o.SubjectCode) {
			continue
		}
		if o.Mark.Kind == Numeric {
			c.MarksObtained += o.Mark.Score
			c.MaxMarks += o.MaxMarks
		}
		if !o.Passed {
			c.FailedCodes = append(c.FailedCodes, o.SubjectCode)
			if rules.isSpecial(o.SubjectCode) {
				specialFailed = true
			}
		}
	}
	sort.Strings(c.FailedCodes)

	if c.MaxMarks > 0 {
		c.Percentage = (c.MarksObtained / c.MaxMarks) * 100
	}

	if len(c.FailedCodes) == 0 {
		switch {
		case c.Percentage >= rules.DistinctionPct:
			c.Result = ResultDistinction
		case c.Percentage >= rules.FirstDivisionPct:
			c.Result = ResultFirstDivision
		case c.Percentage >= rules.PassPct:
			c.Result = ResultPass
		default:
			c.Result = ResultFail
		}
		return c
	}

	allowed := rules.FailThreshold
	if specialFailed {
		allowed = rules.SpecialFailThreshold
	}
	if len(c.FailedCodes) <= allowed {
		c.Result = ResultReappear
	} else {
		c.Result = ResultFail
	}
	return c
}
