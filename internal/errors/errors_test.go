package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorMessage(t *testing.T) {
	apiErr := New(http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request format")
	assert.Equal(t, "Invalid request format", apiErr.Error())

	empty := New(http.StatusInternalServerError, "INTERNAL", "")
	assert.Equal(t, "", empty.Error())
}

func TestHelperConstructors(t *testing.T) {
	t.Run("PlayerNotFoundError", func(t *testing.T) {
		apiErr := PlayerNotFoundError("dana")
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "PLAYER_NOT_FOUND", apiErr.ErrorCode)
		assert.Contains(t, apiErr.Message, "dana")
		assert.Equal(t, "dana", apiErr.Details)
	})

	t.Run("InvalidDimensionError", func(t *testing.T) {
		apiErr := InvalidDimensionError("stakes")
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "INVALID_PARAMETER", apiErr.ErrorCode)
		assert.Contains(t, apiErr.Message, "stakes")
	})

	t.Run("ErrValidation", func(t *testing.T) {
		apiErr := ErrValidation("from", "must be an ISO date")
		assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
		detail, ok := apiErr.Details.(ValidationError)
		require.True(t, ok)
		assert.Equal(t, "from", detail.Field)
	})

	t.Run("NewValidationError", func(t *testing.T) {
		apiErr := NewValidationError("Log message is required")
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Nil(t, apiErr.Details)
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, PlayerNotFoundError("erik"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PLAYER_NOT_FOUND", resp.Error.ErrorCode)
}
