package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/internal/service"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
	"github.com/noah-isme/digital-diary-api/pkg/response"
)

type gradeService interface {
	Grid(ctx context.Context, teacherID string, scope dto.JournalScope) (*dto.GradeGrid, error)
	Edit(ctx context.Context, teacherID string, scope dto.JournalScope, id string, value int) (*dto.MutationResult, error)
	Create(ctx context.Context, teacherID string, scope dto.JournalScope, studentID, rawDate string, value int) (*dto.MutationResult, error)
	ApplyBatch(ctx context.Context, teacherID string, scope dto.JournalScope, req dto.GradeBatchRequest) (*dto.MutationResult, error)
}

type gradeExporter interface {
	Grades(ctx context.Context, teacherID string, scope dto.JournalScope, format service.ExportFormat) (*service.ExportFile, error)
}

// GradeHandler exposes the grade grid and its mutations.
type GradeHandler struct {
	service  gradeService
	exporter gradeExporter
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service gradeService, exporter gradeExporter) *GradeHandler {
	return &GradeHandler{service: service, exporter: exporter}
}

// Grid godoc
// @Summary Grade grid of a class in a subject
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /journal/{subject}/{className}/grades [get]
func (h *GradeHandler) Grid(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	grid, err := h.service.Grid(c.Request.Context(), teacher, journalScope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Export godoc
// @Summary Download the grade grid
// @Tags Grades
// @Produce octet-stream
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /journal/{subject}/{className}/grades/export [get]
func (h *GradeHandler) Export(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Grades(c.Request.Context(), teacher, journalScope(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Edit godoc
// @Summary Change the value of a grade
// @Tags Grades
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param id path string true "Grade ID"
// @Param value formData int true "New value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /journal/{subject}/{className}/grades/edit/{id} [put]
func (h *GradeHandler) Edit(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	value, err := gradeValue(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Edit(c.Request.Context(), teacher, journalScope(c), c.Param("id"), value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Add a grade for a student on a date
// @Description A malformed date changes nothing.
// @Tags Grades
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param studentId path string true "Student ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param value formData int true "Grade value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /journal/{subject}/{className}/grades/create/{studentId}/{date} [post]
func (h *GradeHandler) Create(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	rawDate := c.Param("date")
	var value int
	// A malformed date is a silent no-op, whatever the value says.
	if _, dateErr := models.ParseDate(rawDate); dateErr == nil {
		parsed, err := gradeValue(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		value = parsed
	}
	result, err := h.service.Create(c.Request.Context(), teacher, journalScope(c), c.Param("studentId"), rawDate, value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AddDate godoc
// @Summary Grade the class for a date
// @Description Each numeric student_{id} field becomes a grade; empty and non-numeric fields are skipped.
// @Tags Grades
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param date formData string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /journal/{subject}/{className}/grades/add-date [post]
func (h *GradeHandler) AddDate(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	fields, err := studentFields(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := dto.GradeBatchRequest{Date: c.PostForm("date"), Values: fields}

	result, err := h.service.ApplyBatch(c.Request.Context(), teacher, journalScope(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func gradeValue(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.PostForm("value"))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "value must be an integer")
	}
	return value, nil
}
