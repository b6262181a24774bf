package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sagarpathak0/pharma-res/internal/exam"
	"github.com/sagarpathak0/pharma-res/internal/services"
)

type ResultHandler struct {
	ingest  *services.IngestService
	results *services.ResultService
}

func NewResultHandler(ingest *services.IngestService, results *services.ResultService) *ResultHandler {
	return &ResultHandler{ingest: ingest, results: results}
}

// Upload handles a bulk result upload.
// @Summary Upload parsed result rows
// @Tags results
// @Param request body []services.StudentResultRow true "Upload batch"
// @Success 200 {object} map[string]interface{}
// @Router /api/results [post]
func (h *ResultHandler) Upload(c *gin.Context) {
	var rows []services.StudentResultRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid data format. Expected non-empty array",
		})
		return
	}

	if err := h.ingest.Ingest(rows); err != nil {
		var verr *services.ValidationError
		var derr *services.DuplicateError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Message})
		case errors.As(err, &derr):
			c.JSON(http.StatusBadRequest, gin.H{
				"success":    false,
				"message":    "Duplicate entries found",
				"duplicates": derr.Duplicates,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Data processed and inserted successfully",
	})
}

type searchRequest struct {
	RollNumber   string `json:"rollNumber" binding:"required"`
	AcademicYear string `json:"academicYear" binding:"required"`
	ExamType     string `json:"examType" binding:"required"`
}

// Search returns the grouped results for one sitting.
// @Summary Search student results
// @Tags results
// @Param request body searchRequest true "Search parameters"
// @Success 200 {object} map[string]interface{}
// @Router /api/results/search [post]
func (h *ResultHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	view, err := h.results.Search(req.RollNumber, req.AcademicYear, req.ExamType)
	if err != nil {
		respondServiceError(c, err, "No results found for the given criteria")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Results fetched successfully",
		"data":    view,
	})
}

type updateMarksRequest struct {
	RollNumber string                 `json:"rollNumber" binding:"required"`
	Subjects   []services.SubjectEdit `json:"subjects" binding:"required"`
	ExamMonth  string                 `json:"examMonth" binding:"required"`
	ExamYear   services.FlexNumber    `json:"examYear" binding:"required"`
}

// UpdateRegular corrects marks for a Regular sitting.
// @Summary Update marks for a Regular exam
// @Tags results
// @Param request body updateMarksRequest true "Mark corrections"
// @Success 200 {object} map[string]interface{}
// @Router /api/results/regular [put]
func (h *ResultHandler) UpdateRegular(c *gin.Context) {
	h.updateMarks(c, exam.TypeRegular)
}

// UpdateReappear corrects marks for a Reappear sitting.
// @Summary Update marks for a Reappear exam
// @Tags results
// @Param request body updateMarksRequest true "Mark corrections"
// @Success 200 {object} map[string]interface{}
// @Router /api/results/reappear [put]
func (h *ResultHandler) UpdateReappear(c *gin.Context) {
	h.updateMarks(c, exam.TypeReappear)
}

func (h *ResultHandler) updateMarks(c *gin.Context, examType string) {
	var req updateMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	examYear, err := req.ExamYear.Int()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or missing exam year"})
		return
	}

	if err := h.results.UpdateMarks(req.RollNumber, req.Subjects, req.ExamMonth, examYear, examType); err != nil {
		respondServiceError(c, err, "No matching records found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Marks updated successfully",
	})
}

func respondServiceError(c *gin.Context, err error, notFoundMsg string) {
	var verr *services.ValidationError
	var rerr *services.ReferenceError
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": notFoundMsg, "data": nil})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Message})
	case errors.As(err, &rerr):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": rerr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
	}
}
