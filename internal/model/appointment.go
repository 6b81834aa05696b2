package model

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// IsActive reports whether the status counts toward the booking-conflict
// invariant. Cancelled and completed appointments release their slot.
func (s AppointmentStatus) IsActive() bool {
	return s != AppointmentStatusCancelled && s != AppointmentStatusCompleted
}

var timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay reports whether t is a well-formed "HH:MM" time.
func ValidTimeOfDay(t string) bool {
	return timeOfDayRe.MatchString(t)
}

// Reminders is a timestamptz[] column.
type Reminders []time.Time

func (r *Reminders) Scan(src interface{}) error {
	return pq.Array((*[]time.Time)(r)).Scan(src)
}

func (r Reminders) Value() (driver.Value, error) {
	return pq.Array([]time.Time(r)).Value()
}

type Appointment struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	UserID             uuid.UUID         `db:"user_id" json:"user_id"`
	HospitalID         uuid.UUID         `db:"hospital_id" json:"hospital_id"`
	DoctorID           uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date               time.Time         `db:"date" json:"date"`
	Time               string            `db:"time_of_day" json:"time"`
	Department         string            `db:"department" json:"department"`
	Reason             string            `db:"reason" json:"reason"`
	Status             AppointmentStatus `db:"status" json:"status"`
	Notes              string            `db:"notes" json:"notes,omitempty"`
	CancellationReason *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	Reminders          Reminders         `db:"reminders" json:"reminders,omitempty"`
	CheckedIn          bool              `db:"checked_in" json:"checked_in"`
	FollowUpDate       *time.Time        `db:"follow_up_date" json:"follow_up_date,omitempty"`
	FollowUpNotes      *string           `db:"follow_up_notes" json:"follow_up_notes,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// FullDateTime combines a calendar date with an "HH:MM" time of day into a
// single timestamp. Pure function, no entity lookups.
func FullDateTime(date time.Time, timeOfDay string) (time.Time, error) {
	if !ValidTimeOfDay(timeOfDay) {
		return time.Time{}, fmt.Errorf("malformed time of day: %q", timeOfDay)
	}
	var hours, minutes int
	fmt.Sscanf(timeOfDay, "%d:%d", &hours, &minutes)
	return time.Date(date.Year(), date.Month(), date.Day(), hours, minutes, 0, 0, date.Location()), nil
}

// TimeSlot is a bookable (date, time) unit for a hospital. Derived on
// demand, never persisted.
type TimeSlot struct {
	Date time.Time `json:"date"`
	Time string    `json:"time"`
}

type CreateAppointmentRequest struct {
	HospitalID string `json:"hospital_id" binding:"required,uuid"`
	DoctorID   string `json:"doctor_id" binding:"required,uuid"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string `json:"time" binding:"required,timeofday"`
	Department string `json:"department" binding:"required"`
	Reason     string `json:"reason" binding:"required,min=10,max=500"`
}

type UpdateAppointmentRequest struct {
	Date               *string            `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time               *string            `json:"time" binding:"omitempty,timeofday"`
	Department         *string            `json:"department"`
	Status             *AppointmentStatus `json:"status"`
	Notes              *string            `json:"notes" binding:"omitempty,max=1000"`
	CancellationReason *string            `json:"cancellation_reason" binding:"omitempty,max=500"`
	CheckedIn          *bool              `json:"checked_in"`
	FollowUpDate       *string            `json:"follow_up_date" binding:"omitempty,datetime=2006-01-02"`
	FollowUpNotes      *string            `json:"follow_up_notes"`
}

type AppointmentFilters struct {
	UserID     uuid.UUID
	HospitalID uuid.UUID
	Status     AppointmentStatus
	FromDate   time.Time
	ToDate     time.Time
}
