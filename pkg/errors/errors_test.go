package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{SlotTaken("h", "2026-09-15", "10:00"), http.StatusConflict},
		{InvalidSlot("bad time"), http.StatusUnprocessableEntity},
		{NotFound("hospital", nil), http.StatusNotFound},
		{Timeout("delete account", nil), http.StatusGatewayTimeout},
		{BadRequest("bad input", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{IntegrityViolation("rolled back", nil), http.StatusInternalServerError},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), string(tt.err.Code))
	}
}

func TestFromStorage(t *testing.T) {
	t.Run("deadline expiry becomes a timeout", func(t *testing.T) {
		err := FromStorage("reserve appointment", context.DeadlineExceeded)
		assert.Equal(t, CodeTimeout, err.Code)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("wrapped deadline expiry is still a timeout", func(t *testing.T) {
		wrapped := fmt.Errorf("query failed: %w", context.DeadlineExceeded)
		err := FromStorage("reserve appointment", wrapped)
		assert.Equal(t, CodeTimeout, err.Code)
	})

	t.Run("other failures are internal", func(t *testing.T) {
		err := FromStorage("reserve appointment", errors.New("connection refused"))
		assert.Equal(t, CodeInternal, err.Code)
	})
}

func TestIs(t *testing.T) {
	err := SlotTaken("h", "2026-09-15", "10:00")
	assert.True(t, Is(err, CodeSlotTaken))
	assert.False(t, Is(err, CodeNotFound))

	wrapped := fmt.Errorf("booking failed: %w", err)
	assert.True(t, Is(wrapped, CodeSlotTaken))

	assert.False(t, Is(errors.New("plain"), CodeSlotTaken))
	assert.False(t, Is(nil, CodeSlotTaken))
}

func TestErrorMessage(t *testing.T) {
	err := SlotTaken("abc", "2026-09-15", "10:00")
	assert.Contains(t, err.Error(), "abc")
	assert.Contains(t, err.Error(), "2026-09-15")
	assert.Contains(t, err.Error(), "10:00")
}
