package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals an empty lookup result. It is data, not a
// failure: handlers translate it to a 404 with a clean message.
var ErrNotFound = errors.New("record not found")

// ValidationError reports the first offending field of a malformed
// upload, detected before any persistence attempt.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DuplicateTriple identifies one colliding (roll, subject, exam) key.
type DuplicateTriple struct {
	RollNumber  string `json:"roll_number"`
	SubjectCode string `json:"subject_code"`
	ExamID      string `json:"exam_id"`
}

func (d DuplicateTriple) String() string {
	return fmt.Sprintf("Roll No: %s, Subject: %s, Exam: %s", d.RollNumber, d.SubjectCode, d.ExamID)
}

// DuplicateError rejects a whole upload batch. It carries every
// colliding triple found in the batch so the caller can fix the sheet
// in one pass and resubmit.
type DuplicateError struct {
	Duplicates []DuplicateTriple
}

func (e *DuplicateError) Error() string {
	parts := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		parts[i] = d.String()
	}
	return "duplicate entries found: " + strings.Join(parts, "; ")
}

// ReferenceError reports a correction that targets a subject or mark
// that does not exist. The marks-update endpoint only updates, never
// creates.
type ReferenceError struct {
	Kind string // "subject" or "mark"
	Key  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// translateDBError maps known constraint failures to human-readable
// messages and leaves everything else untouched.
func translateDBError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "foreign key constraint") {
		return fmt.Errorf("invalid reference: check if all required records exist")
	}
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "Duplicate entry") {
		return fmt.Errorf("duplicate entry found")
	}
	return err
}
