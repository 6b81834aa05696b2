package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelInApp NotificationChannel = "in_app"
)

type Notification struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Subject   string              `json:"subject"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
}

// ReminderEvent is published to the broker when an appointment reminder
// falls due.
type ReminderEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	UserID        uuid.UUID `json:"user_id"`
	HospitalID    uuid.UUID `json:"hospital_id"`
	RemindAt      time.Time `json:"remind_at"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
}
