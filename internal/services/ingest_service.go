package services

import (
	"strconv"
	"strings"

	"github.com/sagarpathak0/pharma-res/internal/exam"
	"github.com/sagarpathak0/pharma-res/internal/grading"
	"github.com/sagarpathak0/pharma-res/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlexNumber accepts a JSON number or a numeric string. Upload sheets
// carry roll numbers as numbers and admission years as strings, and
// both variants appear in the wild.
type FlexNumber string

func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	*f = FlexNumber(strings.Trim(s, `"`))
	return nil
}

func (f FlexNumber) String() string { return string(f) }

func (f FlexNumber) Int() (int, error) { return strconv.Atoi(string(f)) }

// StudentResultRow is one student's upload row as produced by the
// spreadsheet parser: identity fields plus per-study-year result blocks.
type StudentResultRow struct {
	Name          string        `json:"name"`
	Roll          FlexNumber    `json:"roll"`
	Campus        string        `json:"campus"`
	Program       string        `json:"program"`
	AdmissionYear FlexNumber    `json:"admission_year"`
	Result        []ResultBlock `json:"result"`
}

// ResultBlock groups the marks a student earned in one study year.
type ResultBlock struct {
	Year  int         `json:"year"`
	Marks []MarkEntry `json:"marks"`
}

// MarkEntry is a single subject's raw mark as uploaded.
type MarkEntry struct {
	CourseCode    string `json:"course_code"`
	CourseName    string `json:"course_name"`
	MarksObtained string `json:"marks_obtained"`
	MonthYear     string `json:"month_year"`
}

// IngestService runs the bulk result upload: whole-batch validation,
// then one transaction covering every row. Bulk uploads are strict; a
// duplicate (roll, subject, exam) triple rejects the entire batch.
type IngestService struct {
	db *gorm.DB
}

func NewIngestService(db *gorm.DB) *IngestService {
	return &IngestService{db: db}
}

// validateRow checks presence and typing of every field the pipeline
// will touch, before any persistence happens.
func validateRow(row StudentResultRow) *ValidationError {
	if row.Name == "" {
		return &ValidationError{Message: "Invalid or missing student name"}
	}
	if row.Roll.String() == "" {
		return &ValidationError{Message: "Invalid or missing roll number"}
	}
	if row.Campus == "" {
		return &ValidationError{Message: "Invalid or missing campus"}
	}
	if row.Program == "" {
		return &ValidationError{Message: "Invalid or missing program"}
	}
	if _, err := row.AdmissionYear.Int(); err != nil {
		return &ValidationError{Message: "Invalid or missing admission year"}
	}
	if len(row.Result) == 0 {
		return &ValidationError{Message: "Invalid or missing results"}
	}
	for _, block := range row.Result {
		if block.Year <= 0 {
			return &ValidationError{Message: "Invalid or missing year"}
		}
		if len(block.Marks) == 0 {
			return &ValidationError{Message: "Invalid or missing marks data"}
		}
		for _, m := range block.Marks {
			if m.CourseCode == "" || m.CourseName == "" || m.MarksObtained == "" || m.MonthYear == "" {
				return &ValidationError{Message: "Invalid or missing mark details"}
			}
			if _, err := grading.ParseMark(m.MarksObtained); err != nil {
				return &ValidationError{Message: err.Error()}
			}
			if _, _, err := exam.ParseMonthYear(m.MonthYear); err != nil {
				return &ValidationError{Message: err.Error()}
			}
		}
	}
	return nil
}

// Ingest persists a batch of upload rows atomically. On success every
// student, subject, exam and mark in the batch is durable; on any
// validation failure, duplicate, or store error nothing is persisted.
// Duplicates are accumulated across the whole batch and reported
// together so a broken sheet can be corrected in one pass.
func (s *IngestService) Ingest(rows []StudentResultRow) error {
	if len(rows) == 0 {
		return &ValidationError{Message: "Invalid data format. Expected non-empty array"}
	}
	for _, row := range rows {
		if verr := validateRow(row); verr != nil {
			return verr
		}
	}

	var dups []DuplicateTriple

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			admissionYear, _ := row.AdmissionYear.Int()
			student := models.Student{
				RollNumber:    row.Roll.String(),
				Name:          row.Name,
				Campus:        row.Campus,
				Program:       row.Program,
				AdmissionYear: admissionYear,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "roll_number"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "campus", "program", "admission_year", "updated_at"}),
			}).Create(&student).Error; err != nil {
				return translateDBError(err)
			}

			for _, block := range row.Result {
				for _, entry := range block.Marks {
					month, year, err := exam.ParseMonthYear(entry.MonthYear)
					if err != nil {
						return &ValidationError{Message: err.Error()}
					}
					examID, err := exam.DeriveID(exam.TypeRegular, month, year, block.Year)
					if err != nil {
						return &ValidationError{Message: err.Error()}
					}

					var count int64
					if err := tx.Model(&models.Mark{}).
						Where("roll_number = ? AND subject_code = ? AND exam_id = ?",
							student.RollNumber, entry.CourseCode, examID).
						Count(&count).Error; err != nil {
						return translateDBError(err)
					}
					if count > 0 {
						dups = append(dups, DuplicateTriple{
							RollNumber:  student.RollNumber,
							SubjectCode: entry.CourseCode,
							ExamID:      examID,
						})
						continue
					}

					subject := models.Subject{
						SubjectCode: entry.CourseCode,
						SubjectName: entry.CourseName,
						Year:        block.Year,
					}
					if err := tx.Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "subject_code"}},
						DoUpdates: clause.AssignmentColumns([]string{"subject_name", "year", "updated_at"}),
					}).Create(&subject).Error; err != nil {
						return translateDBError(err)
					}

					sitting := models.Exam{
						ExamID:    examID,
						ExamType:  exam.TypeRegular,
						ExamMonth: month,
						ExamYear:  year,
						Year:      block.Year,
					}
					if err := tx.Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "exam_id"}},
						DoNothing: true,
					}).Create(&sitting).Error; err != nil {
						return translateDBError(err)
					}

					mark, err := grading.ParseMark(entry.MarksObtained)
					if err != nil {
						return &ValidationError{Message: err.Error()}
					}
					record := models.Mark{
						RollNumber:    student.RollNumber,
						SubjectCode:   entry.CourseCode,
						ExamID:        examID,
						MarksObtained: mark.String(),
						MaxMarks:      100,
						Grade:         grading.GradeFor(mark),
						PassFail:      grading.PassFail(mark),
						SubjectYear:   block.Year,
					}
					if err := tx.Create(&record).Error; err != nil {
						return translateDBError(err)
					}
				}
			}
		}

		if len(dups) > 0 {
			return &DuplicateError{Duplicates: dups}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return nil
}
