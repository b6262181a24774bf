package services

import (
	"errors"
	"sort"

	"github.com/sagarpathak0/pharma-res/internal/exam"
	"github.com/sagarpathak0/pharma-res/internal/grading"
	"github.com/sagarpathak0/pharma-res/internal/models"
	"gorm.io/gorm"
)

// ResultService answers result searches and runs the targeted
// correction flows: campus edits and mark corrections. Corrections are
// intentional overwrites, unlike bulk upload which rejects duplicates.
type ResultService struct {
	db    *gorm.DB
	rules grading.Rules
}

func NewResultService(db *gorm.DB, rules grading.Rules) *ResultService {
	return &ResultService{db: db, rules: rules}
}

// markRow is the flattened join of a mark with its subject and exam.
type markRow struct {
	RollNumber    string  `json:"roll_number"`
	SubjectCode   string  `json:"subject_code"`
	SubjectName   string  `json:"subject_name"`
	ExamID        string  `json:"exam_id"`
	ExamType      string  `json:"exam_type"`
	ExamMonth     string  `json:"exam_month"`
	ExamYear      int     `json:"exam_year"`
	MarksObtained string  `json:"marks_obtained"`
	MaxMarks      float64 `json:"max_marks"`
	Grade         string  `json:"grade"`
	PassFail      bool    `json:"pass_fail"`
	SubjectYear   int     `json:"subject_year"`
}

// YearResult groups one study year's marks with its totals and the
// computed overall classification.
type YearResult struct {
	Year     int       `json:"year"`
	Subjects []markRow `json:"subjects"`
	Totals   struct {
		MarksObtained float64 `json:"marks_obtained"`
		MaxMarks      float64 `json:"max_marks"`
	} `json:"totals"`
	Percentage  float64  `json:"percentage"`
	Result      string   `json:"result"`
	FailedCodes []string `json:"failed_codes,omitempty"`
}

// StudentResultView is the search response payload.
type StudentResultView struct {
	Student      models.Student `json:"student"`
	AcademicYear string         `json:"academic_year"`
	ExamType     string         `json:"exam_type"`
	Years        []YearResult   `json:"years"`
}

// Search returns the grouped results for one roll number, academic
// year and exam type. ErrNotFound means no matching rows exist, which
// is a valid empty outcome rather than a failure.
func (s *ResultService) Search(rollNumber, academicYear, examType string) (*StudentResultView, error) {
	normType, err := exam.NormalizeType(examType)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	var student models.Student
	if err := s.db.First(&student, "roll_number = ?", rollNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, translateDBError(err)
	}

	rows, err := s.queryMarks(rollNumber, normType)
	if err != nil {
		return nil, err
	}

	// Filter to the requested academic year by each row's derived label.
	byYear := map[int][]markRow{}
	for _, row := range rows {
		if exam.AcademicYearLabel(row.ExamMonth, row.ExamYear) != academicYear {
			continue
		}
		byYear[row.SubjectYear] = append(byYear[row.SubjectYear], row)
	}
	if len(byYear) == 0 {
		return nil, ErrNotFound
	}

	view := &StudentResultView{
		Student:      student,
		AcademicYear: academicYear,
		ExamType:     normType,
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, y := range years {
		group := byYear[y]
		sort.Slice(group, func(i, j int) bool { return group[i].SubjectCode < group[j].SubjectCode })

		outcomes := make([]grading.SubjectOutcome, 0, len(group))
		for _, row := range group {
			mark, perr := grading.ParseMark(row.MarksObtained)
			if perr != nil {
				continue
			}
			outcomes = append(outcomes, grading.SubjectOutcome{
				SubjectCode: row.SubjectCode,
				Mark:        mark,
				MaxMarks:    row.MaxMarks,
				Passed:      row.PassFail,
			})
		}
		cls := grading.ClassifyOverall(outcomes, s.rules)

		yr := YearResult{
			Year:        y,
			Subjects:    group,
			Percentage:  cls.Percentage,
			Result:      cls.Result,
			FailedCodes: cls.FailedCodes,
		}
		yr.Totals.MarksObtained = cls.MarksObtained
		yr.Totals.MaxMarks = cls.MaxMarks
		view.Years = append(view.Years, yr)
	}

	return view, nil
}

// queryMarks returns the flattened mark/subject/exam rows for a roll
// number. An empty examType matches every sitting.
func (s *ResultService) queryMarks(rollNumber, examType string) ([]markRow, error) {
	var rows []markRow
	query := s.db.Table("marks").
		Select(`marks.roll_number, marks.subject_code, subjects.subject_name,
			marks.exam_id, exams.exam_type, exams.exam_month, exams.exam_year,
			marks.marks_obtained, marks.max_marks, marks.grade, marks.pass_fail, marks.subject_year`).
		Joins("JOIN subjects ON subjects.subject_code = marks.subject_code").
		Joins("JOIN exams ON exams.exam_id = marks.exam_id").
		Where("marks.roll_number = ?", rollNumber)
	if examType != "" {
		query = query.Where("exams.exam_type = ?", examType)
	}
	err := query.Order("marks.subject_year, marks.subject_code").Scan(&rows).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return rows, nil
}

// AcademicYearOption is one sitting available to the search form.
type AcademicYearOption struct {
	AcademicYear string `json:"academic_year"`
	ExamType     string `json:"exam_type"`
}

// AcademicYears lists the distinct academic-year labels with results
// for a roll number, across both exam types.
func (s *ResultService) AcademicYears(rollNumber string) ([]AcademicYearOption, error) {
	var student models.Student
	if err := s.db.First(&student, "roll_number = ?", rollNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, translateDBError(err)
	}

	var sittings []struct {
		ExamType  string
		ExamMonth string
		ExamYear  int
	}
	err := s.db.Table("marks").
		Select("DISTINCT exams.exam_type, exams.exam_month, exams.exam_year").
		Joins("JOIN exams ON exams.exam_id = marks.exam_id").
		Where("marks.roll_number = ?", rollNumber).
		Scan(&sittings).Error
	if err != nil {
		return nil, translateDBError(err)
	}

	seen := map[AcademicYearOption]bool{}
	options := []AcademicYearOption{}
	for _, st := range sittings {
		opt := AcademicYearOption{
			AcademicYear: exam.AcademicYearLabel(st.ExamMonth, st.ExamYear),
			ExamType:     st.ExamType,
		}
		if !seen[opt] {
			seen[opt] = true
			options = append(options, opt)
		}
	}
	sort.Slice(options, func(i, j int) bool {
		if options[i].AcademicYear != options[j].AcademicYear {
			return options[i].AcademicYear < options[j].AcademicYear
		}
		return options[i].ExamType < options[j].ExamType
	})
	return options, nil
}

// UpdateCampus sets a student's campus. Idempotent; ErrNotFound when
// the roll number has no student row.
func (s *ResultService) UpdateCampus(rollNumber, campus string) (*models.Student, error) {
	var student models.Student
	if err := s.db.First(&student, "roll_number = ?", rollNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, translateDBError(err)
	}
	student.Campus = campus
	if err := s.db.Save(&student).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &student, nil
}

// SubjectEdit is one subject's corrected mark.
type SubjectEdit struct {
	CourseCode    string `json:"course_code"`
	MarksObtained string `json:"marks_obtained"`
}

// UpdateMarks overwrites existing marks for one sitting. It never
// creates rows: a missing subject or mark aborts the call with a
// ReferenceError and every edit in the call is rolled back.
func (s *ResultService) UpdateMarks(rollNumber string, edits []SubjectEdit, examMonth string, examYear int, examType string) error {
	if len(edits) == 0 {
		return &ValidationError{Message: "Invalid or missing subjects"}
	}
	month, err := exam.NormalizeMonth(examMonth)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	normType, err := exam.NormalizeType(examType)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, edit := range edits {
			mark, perr := grading.ParseMark(edit.MarksObtained)
			if perr != nil {
				return &ValidationError{Message: perr.Error()}
			}

			var subject models.Subject
			if err := tx.First(&subject, "subject_code = ?", edit.CourseCode).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ReferenceError{Kind: "subject", Key: edit.CourseCode}
				}
				return translateDBError(err)
			}

			examID, derr := exam.DeriveID(normType, month, examYear, subject.Year)
			if derr != nil {
				return &ValidationError{Message: derr.Error()}
			}

			var record models.Mark
			if err := tx.First(&record,
				"roll_number = ? AND subject_code = ? AND exam_id = ?",
				rollNumber, edit.CourseCode, examID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ReferenceError{Kind: "mark", Key: edit.CourseCode + "/" + examID}
				}
				return translateDBError(err)
			}

			record.MarksObtained = mark.String()
			record.Grade = grading.GradeFor(mark)
			record.PassFail = grading.PassFail(mark)
			if err := tx.Save(&record).Error; err != nil {
				return translateDBError(err)
			}
		}
		return nil
	})
}

// ListStudents returns all students ordered by name.
func (s *ResultService) ListStudents() ([]models.Student, error) {
	var students []models.Student
	if err := s.db.Order("name").Find(&students).Error; err != nil {
		return nil, translateDBError(err)
	}
	return students, nil
}

// GetStudent returns one student by roll number.
func (s *ResultService) GetStudent(rollNumber string) (*models.Student, error) {
	var student models.Student
	if err := s.db.First(&student, "roll_number = ?", rollNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, translateDBError(err)
	}
	return &student, nil
}

// StudentAggregateView is a student together with every persisted mark,
// the running totals and the overall result label.
type StudentAggregateView struct {
	Student models.Student `json:"student"`
	Results []markRow      `json:"results"`
	Totals  struct {
		MarksObtained float64 `json:"marks_obtained"`
		MaxMarks      float64 `json:"max_marks"`
	} `json:"totals"`
	Percentage  float64  `json:"percentage"`
	Result      string   `json:"result,omitempty"`
	FailedCodes []string `json:"failed_codes,omitempty"`
}

// Aggregate returns the full result picture for one student: every
// mark across all sittings, with totals and the computed overall
// classification. ErrNotFound when the roll number has no student row.
func (s *ResultService) Aggregate(rollNumber string) (*StudentAggregateView, error) {
	student, err := s.GetStudent(rollNumber)
	if err != nil {
		return nil, err
	}

	rows, err := s.queryMarks(rollNumber, "")
	if err != nil {
		return nil, err
	}

	view := &StudentAggregateView{
		Student: *student,
		Results: rows,
	}
	if len(rows) == 0 {
		return view, nil
	}

	outcomes := make([]grading.SubjectOutcome, 0, len(rows))
	for _, row := range rows {
		mark, perr := grading.ParseMark(row.MarksObtained)
		if perr != nil {
			continue
		}
		outcomes = append(outcomes, grading.SubjectOutcome{
			SubjectCode: row.SubjectCode,
			Mark:        mark,
			MaxMarks:    row.MaxMarks,
			Passed:      row.PassFail,
		})
	}
	cls := grading.ClassifyOverall(outcomes, s.rules)
	view.Totals.MarksObtained = cls.MarksObtained
	view.Totals.MaxMarks = cls.MaxMarks
	view.Percentage = cls.Percentage
	view.Result = cls.Result
	view.FailedCodes = cls.FailedCodes
	return view, nil
}
