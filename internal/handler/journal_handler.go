package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/digital-diary-api/pkg/response"
)

type journalIndexService interface {
	Subjects(ctx context.Context, teacherID string) ([]string, error)
	Classes(ctx context.Context, teacherID, subject string) ([]string, error)
}

// JournalHandler serves the subject and class navigation of the journal.
type JournalHandler struct {
	service journalIndexService
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(service journalIndexService) *JournalHandler {
	return &JournalHandler{service: service}
}

// Subjects godoc
// @Summary List the teacher's subjects
// @Tags Journal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /journal [get]
func (h *JournalHandler) Subjects(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	subjects, err := h.service.Subjects(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Classes godoc
// @Summary List classes the teacher graded in a subject
// @Tags Journal
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /journal/{subject} [get]
func (h *JournalHandler) Classes(c *gin.Context) {
	teacher, ok := teacherID(c)
	if !ok {
		return
	}
	classes, err := h.service.Classes(c.Request.Context(), teacher, strings.TrimSpace(c.Param("subject")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}
