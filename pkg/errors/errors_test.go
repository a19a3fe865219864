package errors

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorNormalisesUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestCloneKeepsClassification(t *testing.T) {
	clone := Clone(ErrNotFound, "course not found")
	assert.Equal(t, "course not found", clone.Message)
	assert.Equal(t, http.StatusNotFound, clone.Status)
	assert.True(t, stdErrors.Is(clone, ErrNotFound))
	assert.False(t, stdErrors.Is(clone, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapMessage(t *testing.T) {
	err := Internal(sql.ErrTxDone, "failed to delete course")
	assert.Equal(t, "failed to delete course: sql: transaction has already been committed or rolled back", err.Error())
}

func TestFromErrorClassifiesTimeouts(t *testing.T) {
	appErr := FromError(fmt.Errorf("list fees: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrTimeout.Code, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.ErrorIs(t, appErr, context.DeadlineExceeded)
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrConflict, "Course Code already exists."))
	appErr := FromError(wrapped)
	assert.Equal(t, "Course Code already exists.", appErr.Message)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}
