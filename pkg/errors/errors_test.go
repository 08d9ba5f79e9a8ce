package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("toggle: %w", Clone(ErrNotFound, "attendance record not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "attendance record not found", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr.Unwrap(), "boom")
}

func TestIsComparesCodes(t *testing.T) {
	err := Clone(ErrValidation, "invalid date format, expected YYYY-MM-DD")
	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(fmt.Errorf("plain"), ErrValidation))
	assert.Nil(t, Clone(nil, "x"))
}
