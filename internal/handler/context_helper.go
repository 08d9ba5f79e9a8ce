package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/middleware"
	"github.com/noah-isme/digital-diary-api/internal/models"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
	"github.com/noah-isme/digital-diary-api/pkg/response"
)

// studentFieldPrefix prefixes per-student inputs of the add-date forms.
const studentFieldPrefix = "student_"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// teacherID returns the authenticated user's ID or writes a 401 and reports false.
func teacherID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func journalScope(c *gin.Context) dto.JournalScope {
	return dto.JournalScope{
		Subject:   strings.TrimSpace(c.Param("subject")),
		ClassName: strings.TrimSpace(c.Param("className")),
	}
}

// studentFields collects form values named student_<id>, keyed by student ID.
// The last value wins when a field repeats.
func studentFields(c *gin.Context) (map[string]string, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload")
	}
	fields := make(map[string]string)
	for name, values := range c.Request.PostForm {
		id, ok := strings.CutPrefix(name, studentFieldPrefix)
		if !ok || id == "" || len(values) == 0 {
			continue
		}
		fields[id] = values[len(values)-1]
	}
	return fields, nil
}

func checkboxChecked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}
