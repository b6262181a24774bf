package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONB custom type for JSON fields
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Student is keyed by roll number. Created on first ingestion of any
// result row for that roll number, upserted afterwards, never deleted.
type Student struct {
	RollNumber    string    `gorm:"type:varchar(50);primaryKey" json:"roll_number"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Campus        string    `gorm:"type:varchar(100);not null" json:"campus"`
	Program       string    `gorm:"type:varchar(100);not null" json:"program"`
	AdmissionYear int       `gorm:"not null" json:"admission_year"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Subject is keyed by course code. Upserted on every ingestion that
// mentions it; the latest name/year wins.
type Subject struct {
	SubjectCode string    `gorm:"type:varchar(50);primaryKey" json:"subject_code"`
	SubjectName string    `gorm:"type:varchar(255);not null" json:"subject_name"`
	Year        int       `gorm:"not null" json:"year"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Exam is keyed by the derived exam id and is insert-if-absent: once
// created a sitting is never updated.
type Exam struct {
	ExamID    string    `gorm:"type:varchar(50);primaryKey" json:"exam_id"`
	ExamType  string    `gorm:"type:varchar(20);not null" json:"exam_type"`
	ExamMonth string    `gorm:"type:varchar(20);not null" json:"exam_month"`
	ExamYear  int       `gorm:"not null" json:"exam_year"`
	Year      int       `gorm:"not null" json:"year"`
	CreatedAt time.Time `json:"created_at"`
}

// Mark is the central fact row, unique per (roll_number, subject_code,
// exam_id). MarksObtained holds the numeric score as text, or the
// "A"/"UFM" markers; Grade and PassFail are always derived server-side.
type Mark struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	RollNumber    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_marks_roll_subject_exam" json:"roll_number"`
	SubjectCode   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_marks_roll_subject_exam" json:"subject_code"`
	ExamID        string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_marks_roll_subject_exam" json:"exam_id"`
	MarksObtained string    `gorm:"type:varchar(10);not null" json:"marks_obtained"`
	MaxMarks      float64   `gorm:"not null;default:100" json:"max_marks"`
	Grade         string    `gorm:"type:varchar(2)" json:"grade"`
	PassFail      bool      `gorm:"not null" json:"pass_fail"`
	SubjectYear   int       `gorm:"not null" json:"subject_year"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Student *Student `gorm:"foreignKey:RollNumber;references:RollNumber" json:"student,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectCode;references:SubjectCode" json:"subject,omitempty"`
	Exam    *Exam    `gorm:"foreignKey:ExamID;references:ExamID" json:"exam,omitempty"`
}

// GradingPolicy stores a campus/program grading-rule override as JSON.
// The active row (if any) takes precedence over config defaults.
type GradingPolicy struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Rules     JSONB     `gorm:"type:json" json:"rules"`
	IsActive  bool      `gorm:"default:false;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GradingPolicy) TableName() string { return "grading_policies" }
