package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/model"
)

var (
	// ErrNotFound is returned when a row does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlot is returned when a reservation hits the active-slot
	// uniqueness constraint on (hospital_id, date, time_of_day).
	ErrDuplicateSlot = errors.New("slot already booked")
)

// All repository interfaces in one file
type (
	// AppointmentRepository handles appointment persistence. Reserve and
	// UpdateSchedule are the only write paths for the (hospital, date,
	// time) tuple; both surface ErrDuplicateSlot on conflict.
	AppointmentRepository interface {
		// Reserve inserts a new appointment. The conflict check and the
		// insert are one atomic step: the storage layer's partial unique
		// index rejects a second active booking for the same tuple.
		Reserve(ctx context.Context, appointment *model.Appointment) error
		// UpdateSchedule moves an existing appointment to a new tuple,
		// re-checking the invariant against the new tuple only.
		UpdateSchedule(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListActiveTimesForDay returns the booked "HH:MM" times for a
		// hospital/date whose status is outside {cancelled, completed},
		// ascending.
		ListActiveTimesForDay(ctx context.Context, hospitalID uuid.UUID, date time.Time) ([]string, error)
		ListUpcomingForUser(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]*model.Appointment, error)
		ListDueReminders(ctx context.Context, before time.Time, limit int) ([]*model.Appointment, error)
	}

	HospitalRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		// Nearby returns hospitals within radiusMeters of the point,
		// filtered to those offering every required service, ordered by
		// distance ascending.
		Nearby(ctx context.Context, longitude, latitude, radiusMeters float64, requiredServices []string) ([]*model.NearbyHospital, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
		// DeleteCascade removes the user's health records, appointments
		// and the user row in a single transaction. All-or-nothing.
		DeleteCascade(ctx context.Context, id uuid.UUID) error
	}

	HealthRecordRepository interface {
		Create(ctx context.Context, record *model.HealthRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.HealthRecord, error)
		Update(ctx context.Context, record *model.HealthRecord) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.HealthRecord, error)
	}
)
