package grading

import (
	"testing"
)

func TestParseMark(t *testing.T) {
	tests := []struct {
		raw      string
		wantKind MarkKind
		wantErr  bool
	}{
		{"67", Numeric, false},
		{"0", Numeric, false},
		{"100", Numeric, false},
		{"44.5", Numeric, false},
		{"A", Absent, false},
		{" a ", Absent, false},
		{"UFM", UnfairMeans, false},
		{"ufm", UnfairMeans, false},
		{"101", Numeric, true},
		{"-1", Numeric, true},
		{"abc", Numeric, true},
		{"", Numeric, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			m, err := ParseMark(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMark(%q): expected error, got %v", tt.raw, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMark(%q): unexpected error %v", tt.raw, err)
			}
			if m.Kind != tt.wantKind {
				t.Errorf("ParseMark(%q): expected kind %v, got %v", tt.raw, tt.wantKind, m.Kind)
			}
		})
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		marks    float64
		expected string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.999, "A"},
		{80, "A"},
		{79.999, "B+"},
		{70, "B+"},
		{69.999, "B"},
		{60, "B"},
		{59.999, "C+"},
		{50, "C+"},
		{49.999, "C"},
		{44, "C"},
		{40, "C"},
		{39.999, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			grade := GradeFor(Mark{Kind: Numeric, Score: tt.marks})
			if grade != tt.expected {
				t.Errorf("Mark %v: expected grade %s, got %s", tt.marks, tt.expected, grade)
			}
		})
	}

	t.Run("Absent has no letter grade", func(t *testing.T) {
		if g := GradeFor(Mark{Kind: Absent}); g != "" {
			t.Errorf("Expected empty grade for absent, got %q", g)
		}
	})
	t.Run("UnfairMeans has no letter grade", func(t *testing.T) {
		if g := GradeFor(Mark{Kind: UnfairMeans}); g != "" {
			t.Errorf("Expected empty grade for UFM, got %q", g)
		}
	})
}

func TestPassFail(t *testing.T) {
	tests := []struct {
		mark     Mark
		expected bool
	}{
		{Mark{Kind: Numeric, Score: 100}, true},
		{Mark{Kind: Numeric, Score: 44}, true},
		{Mark{Kind: Numeric, Score: 40}, true},
		{Mark{Kind: Numeric, Score: 39.999}, false},
		{Mark{Kind: Numeric, Score: 0}, false},
		{Mark{Kind: Absent}, false},
		{Mark{Kind: UnfairMeans}, false},
	}

	for _, tt := range tests {
		if got := PassFail(tt.mark); got != tt.expected {
			t.Errorf("PassFail(%v): expected %v, got %v", tt.mark, tt.expected, got)
		}
	}
}

func numericOutcome(code string, score float64) SubjectOutcome {
	m := Mark{Kind: Numeric, Score: score}
	return SubjectOutcome{SubjectCode: code, Mark: m, MaxMarks: 100, Passed: PassFail(m)}
}

func TestClassifyOverall(t *testing.T) {
	rules := DefaultRules()
	rules.SpecialCodes = []string{"COMM101"}
	rules.ExcludedCodes = []string{"SOFT101"}

	t.Run("Distinction at 75 percent", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 80),
			numericOutcome("PH102", 70),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultDistinction {
			t.Errorf("Expected %s, got %s", ResultDistinction, c.Result)
		}
		if c.Percentage != 75 {
			t.Errorf("Expected percentage 75, got %v", c.Percentage)
		}
	})

	t.Run("First division at 60 percent", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 65),
			numericOutcome("PH102", 60),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultFirstDivision {
			t.Errorf("Expected %s, got %s", ResultFirstDivision, c.Result)
		}
	})

	t.Run("Plain pass at 50 percent", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 55),
			numericOutcome("PH102", 50),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultPass {
			t.Errorf("Expected %s, got %s", ResultPass, c.Result)
		}
	})

	t.Run("No failures but below pass percentage", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 45),
			numericOutcome("PH102", 44),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultFail {
			t.Errorf("Expected %s, got %s", ResultFail, c.Result)
		}
	})

	t.Run("Two failures is reappear", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 70),
			numericOutcome("PH102", 30),
			numericOutcome("PH103", 35),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultReappear {
			t.Errorf("Expected %s, got %s", ResultReappear, c.Result)
		}
		if len(c.FailedCodes) != 2 || c.FailedCodes[0] != "PH102" || c.FailedCodes[1] != "PH103" {
			t.Errorf("Expected failed codes [PH102 PH103], got %v", c.FailedCodes)
		}
	})

	t.Run("Three failures is fail", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 30),
			numericOutcome("PH102", 30),
			numericOutcome("PH103", 35),
			numericOutcome("PH104", 80),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultFail {
			t.Errorf("Expected %s, got %s", ResultFail, c.Result)
		}
	})

	t.Run("Special code raises threshold to three", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 30),
			numericOutcome("PH102", 30),
			numericOutcome("COMM101", 35),
			numericOutcome("PH104", 80),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultReappear {
			t.Errorf("Expected %s with special code among failures, got %s", ResultReappear, c.Result)
		}
		if len(c.FailedCodes) != 3 {
			t.Errorf("Expected 3 failed codes, got %v", c.FailedCodes)
		}
	})

	t.Run("Special code present but four failures is fail", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 30),
			numericOutcome("PH102", 30),
			numericOutcome("PH103", 30),
			numericOutcome("COMM101", 35),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultFail {
			t.Errorf("Expected %s, got %s", ResultFail, c.Result)
		}
	})

	t.Run("Two failures with special code is reappear naming both", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 80),
			numericOutcome("PH102", 30),
			numericOutcome("COMM101", 20),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultReappear {
			t.Errorf("Expected %s, got %s", ResultReappear, c.Result)
		}
		if len(c.FailedCodes) != 2 || c.FailedCodes[0] != "COMM101" || c.FailedCodes[1] != "PH102" {
			t.Errorf("Expected failed codes [COMM101 PH102], got %v", c.FailedCodes)
		}
	})

	t.Run("Excluded code leaves totals and failing count", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 80),
			numericOutcome("PH102", 70),
			numericOutcome("SOFT101", 10),
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultDistinction {
			t.Errorf("Expected %s ignoring excluded code, got %s", ResultDistinction, c.Result)
		}
		if c.MaxMarks != 200 {
			t.Errorf("Expected max marks 200, got %v", c.MaxMarks)
		}
	})

	t.Run("Absent counts as failure but not in totals", func(t *testing.T) {
		outcomes := []SubjectOutcome{
			numericOutcome("PH101", 80),
			{SubjectCode: "PH102", Mark: Mark{Kind: Absent}, MaxMarks: 100, Passed: false},
		}
		c := ClassifyOverall(outcomes, rules)
		if c.Result != ResultReappear {
			t.Errorf("Expected %s, got %s", ResultReappear, c.Result)
		}
		if c.MaxMarks != 100 || c.MarksObtained != 80 {
			t.Errorf("Expected totals 80/100, got %v/%v", c.MarksObtained, c.MaxMarks)
		}
	})

	t.Run("Eleven subjects all passing with one at 44", func(t *testing.T) {
		outcomes := make([]SubjectOutcome, 0, 11)
		for i := 0; i < 10; i++ {
			outcomes = append(outcomes, numericOutcome("PH1"+string(rune('0'+i)), 60))
		}
		outcomes = append(outcomes, numericOutcome("PH199", 44))
		c := ClassifyOverall(outcomes, rules)
		if len(c.FailedCodes) != 0 {
			t.Errorf("44 is above the pass threshold, expected no failures, got %v", c.FailedCodes)
		}
		if c.Result != ResultPass {
			t.Errorf("Expected %s, got %s", ResultPass, c.Result)
		}
	})
}

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	if r.FailThreshold != 2 || r.SpecialFailThreshold != 3 {
		t.Errorf("Expected thresholds 2/3, got %d/%d", r.FailThreshold, r.SpecialFailThreshold)
	}
	if r.DistinctionPct != 75 || r.FirstDivisionPct != 60 || r.PassPct != 50 {
		t.Errorf("Expected percentage bands 75/60/50, got %v/%v/%v",
			r.DistinctionPct, r.FirstDivisionPct, r.PassPct)
	}
}
