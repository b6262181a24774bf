package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sagarpathak0/pharma-res/internal/services"
)

type StudentHandler struct {
	results *services.ResultService
}

func NewStudentHandler(results *services.ResultService) *StudentHandler {
	return &StudentHandler{results: results}
}

// List returns all students ordered by name.
// @Summary List students
// @Tags students
// @Success 200 {object} map[string]interface{}
// @Router /api/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.results.ListStudents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Students fetched successfully",
		"data":    students,
	})
}

// Search looks up one student by roll number and returns the student
// together with all their marks, totals and the overall result.
// @Summary Search student by roll number
// @Tags students
// @Param roll_no query string true "Roll number"
// @Success 200 {object} map[string]interface{}
// @Router /api/students/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	rollNo := c.Query("roll_no")
	if rollNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Roll number is required"})
		return
	}

	aggregate, err := h.results.Aggregate(rollNo)
	if err != nil {
		respondServiceError(c, err, "Student not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Student results fetched successfully",
		"data":    aggregate,
	})
}

// AcademicYears lists the academic-year labels with results for a roll
// number, which drives the search form's year dropdown.
// @Summary List academic years for a student
// @Tags students
// @Param rollNo path string true "Roll number"
// @Success 200 {object} map[string]interface{}
// @Router /api/academic-years/{rollNo} [get]
func (h *StudentHandler) AcademicYears(c *gin.Context) {
	rollNo := c.Param("rollNo")

	options, err := h.results.AcademicYears(rollNo)
	if err != nil {
		respondServiceError(c, err, "Student not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Academic years fetched successfully",
		"data":    options,
	})
}

// UpdateCampus sets a student's campus.
// @Summary Update a student's campus
// @Tags students
// @Param rollNo path string true "Roll number"
// @Param campus path string true "New campus"
// @Success 200 {object} map[string]interface{}
// @Router /api/students/{rollNo}/{campus} [put]
func (h *StudentHandler) UpdateCampus(c *gin.Context) {
	rollNo := c.Param("rollNo")
	campus := c.Param("campus")

	student, err := h.results.UpdateCampus(rollNo, campus)
	if err != nil {
		respondServiceError(c, err, "Student not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Campus updated successfully",
		"data":    student,
	})
}
