package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/service"
	"github.com/noah-isme/digital-diary-api/pkg/response"
)

type attendanceService interface {
	Grid(ctx context.Context, teacherID string, scope dto.JournalScope) (*dto.AttendanceGrid, error)
	Toggle(ctx context.Context, teacherID string, scope dto.JournalScope, id string) (*dto.MutationResult, error)
	CreateForDate(ctx context.Context, teacherID string, scope dto.JournalScope, studentID, rawDate string) (*dto.MutationResult, error)
	ApplyBatch(ctx context.Context, teacherID string, scope dto.JournalScope, req dto.AttendanceBatchRequest) (*dto.MutationResult, error)
}

type attendanceExporter interface {
	Attendance(ctx context.Context, teacherID string, scope dto.JournalScope, format service.ExportFormat) (*service.ExportFile, error)
}

// AttendanceHandler exposes the attendance grid and its mutations.
type AttendanceHandler struct {
	service  attendanceService
	exporter attendanceExporter
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService, exporter attendanceExporter) *AttendanceHandler {
	return &AttendanceHandler{service: service, exporter: exporter}
}

// Grid godoc
// @Summary Attendance grid of a class
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /journal/{subject}/{className}/attendance [get]
func (h *AttendanceHandler) Grid(c *gin.Context) {
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
// @Summary Download the attendance grid
// @Tags Attendance
// @Produce octet-stream
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /journal/{subject}/{className}/attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Attendance(c.Request.Context(), teacher, journalScope(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Toggle godoc
// @Summary Flip presence of an attendance mark
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /journal/{subject}/{className}/attendance/edit/{id} [post]
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	result, err := h.service.Toggle(c.Request.Context(), teacher, journalScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Mark a student present on a date
// @Description Creates the mark only if none exists for that day. A malformed date changes nothing.
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param studentId path string true "Student ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /journal/{subject}/{className}/attendance/create/{studentId}/{date} [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	result, err := h.service.CreateForDate(c.Request.Context(), teacher, journalScope(c), c.Param("studentId"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AddDate godoc
// @Summary Record attendance of the whole class for a date
// @Description Checked student_{id} boxes are present; every other class member is absent.
// @Tags Attendance
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Param className path string true "Class name"
// @Param date formData string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /journal/{subject}/{className}/attendance/add-date [post]
func (h *AttendanceHandler) AddDate(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	fields, err := studentFields(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := dto.AttendanceBatchRequest{Date: c.PostForm("date"), Present: make(map[string]bool, len(fields))}
	for id, raw := range fields {
		if checkboxChecked(raw) {
			req.Present[id] = true
		}
	}

	result, err := h.service.ApplyBatch(c.Request.Context(), teacher, journalScope(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
