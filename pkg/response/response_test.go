package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["error"]["code"])
	assert.Empty(t, c.Errors)
}

func TestErrorRecordsInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, c.Errors, 1)
}

func TestAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Attachment(c, "Физика-7А.csv", "text/csv; charset=utf-8", []byte("a,b\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, `filename="______-7_.csv"`)
	assert.Contains(t, disposition, "filename*=UTF-8''")
	assert.Equal(t, "a,b\n", w.Body.String())
}
