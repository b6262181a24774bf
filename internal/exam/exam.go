// Package exam derives the stable identifiers attached to one sitting
// of an exam: the exam id persisted with every mark, and the academic
// year label used to slice results for display.
package exam

import (
	"fmt"
	"strconv"
	"strings"
)

// Exam types accepted by the pipeline.
const (
	TypeRegular  = "Regular"
	TypeReappear = "Reappear"
)

var typeCodes = map[string]string{
	TypeRegular:  "R",
	TypeReappear: "RP",
}

var validMonths = map[string]bool{
	"June":     true,
	"December": true,
}

// NormalizeMonth canonicalizes month casing ("june" -> "June").
// Returns an error for months outside the June/December exam calendar.
func NormalizeMonth(month string) (string, error) {
	m := strings.TrimSpace(month)
	if m != "" {
		m = strings.ToUpper(m[:1]) + strings.ToLower(m[1:])
	}
	if !validMonths[m] {
		return "", fmt.Errorf("invalid exam month %q: must be June or December", month)
	}
	return m, nil
}

// NormalizeType canonicalizes exam type casing and rejects unknown types.
func NormalizeType(examType string) (string, error) {
	t := strings.TrimSpace(examType)
	for name := range typeCodes {
		if strings.EqualFold(t, name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("invalid exam type %q: must be Regular or Reappear", examType)
}

// DeriveID builds the exam id {TYPECODE}_{MON}_{YY}_Y{n} from the exam
// type, month, calendar year and the study year the subject belongs to.
// The id is a pure function of its inputs: identical sittings always
// collide to the same id.
func DeriveID(examType, month string, year, studyYear int) (string, error) {
	t, err := NormalizeType(examType)
	if err != nil {
		return "", err
	}
	m, err := NormalizeMonth(month)
	if err != nil {
		return "", err
	}
	if year < 1000 {
		return "", fmt.Errorf("invalid exam year %d", year)
	}
	shortMonth := strings.ToUpper(m[:3])
	shortYear := strconv.Itoa(year)[2:]
	return fmt.Sprintf("%s_%s_%s_Y%d", typeCodes[t], shortMonth, shortYear, studyYear), nil
}

// ParseMonthYear splits the "<Month>, <Year>" label carried on upload
// rows ("June, 2024") into its normalized month and integer year.
func ParseMonthYear(monthYear string) (string, int, error) {
	parts := strings.SplitN(monthYear, ",", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid month_year %q: expected \"<Month>, <Year>\"", monthYear)
	}
	month, err := NormalizeMonth(parts[0])
	if err != nil {
		return "", 0, err
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid exam year in %q", monthYear)
	}
	return month, year, nil
}

// AcademicYearLabel maps an exam sitting to its "YYYY-YYYY" academic
// year. A June exam closes the academic year that began the previous
// calendar year; a December exam sits inside the academic year that
// began the same calendar year. This is the single place the mapping
// lives; change it here and nowhere else.
func AcademicYearLabel(month string, year int) string {
	if month == "June" {
		return fmt.Sprintf("%d-%d", year-1, year)
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}
