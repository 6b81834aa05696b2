package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTimeOfDay(t *testing.T) {
	valid := []string{"00:00", "09:30", "9:30", "23:59", "12:05"}
	for _, v := range valid {
		assert.True(t, ValidTimeOfDay(v), v)
	}

	invalid := []string{"24:00", "12:60", "12", "12:5", "noon", "", "12:345", "-1:00"}
	for _, v := range invalid {
		assert.False(t, ValidTimeOfDay(v), v)
	}
}

func TestAppointmentStatusIsActive(t *testing.T) {
	assert.True(t, AppointmentStatusPending.IsActive())
	assert.True(t, AppointmentStatusConfirmed.IsActive())
	assert.True(t, AppointmentStatusRescheduled.IsActive())
	assert.False(t, AppointmentStatusCancelled.IsActive())
	assert.False(t, AppointmentStatusCompleted.IsActive())
}

func TestFullDateTime(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	ts, err := FullDateTime(date, "14:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 14, 30, 0, 0, time.UTC), ts)

	ts, err = FullDateTime(date, "9:05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 9, 5, 0, 0, time.UTC), ts)

	_, err = FullDateTime(date, "24:30")
	assert.Error(t, err)
}
