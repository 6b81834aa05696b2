package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
)

const appointmentColumns = `
	id, user_id, hospital_id, doctor_id, date, time_of_day,
	department, reason, status, notes, cancellation_reason,
	reminders, checked_in, follow_up_date, follow_up_notes,
	created_at, updated_at
`

// isUniqueViolation reports whether err is the active-slot uniqueness
// constraint firing. The partial unique index on (hospital_id, date,
// time_of_day) WHERE status NOT IN ('cancelled','completed') makes the
// check-then-write a single atomic step at the storage layer.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *appointmentRepository) Reserve(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, hospital_id, doctor_id, date, time_of_day,
			department, reason, status, notes, cancellation_reason,
			reminders, checked_in, follow_up_date, follow_up_notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.UserID,
		appointment.HospitalID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Time,
		appointment.Department,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.CancellationReason,
		appointment.Reminders,
		appointment.CheckedIn,
		appointment.FollowUpDate,
		appointment.FollowUpNotes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to reserve appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) UpdateSchedule(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET date = $1, time_of_day = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET department = $1, reason = $2, status = $3, notes = $4,
			cancellation_reason = $5, reminders = $6, checked_in = $7,
			follow_up_date = $8, follow_up_notes = $9, updated_at = $10
		WHERE id = $11
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Department,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.CancellationReason,
		appointment.Reminders,
		appointment.CheckedIn,
		appointment.FollowUpDate,
		appointment.FollowUpNotes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.UserID != uuid.Nil {
		query += fmt.Sprintf(" AND user_id = $%d", argCount)
		args = append(args, filters.UserID)
		argCount++
	}
	if filters.HospitalID != uuid.Nil {
		query += fmt.Sprintf(" AND hospital_id = $%d", argCount)
		args = append(args, filters.HospitalID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.FromDate.IsZero() {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, filters.FromDate)
		argCount++
	}
	if !filters.ToDate.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, filters.ToDate)
		argCount++
	}

	query += " ORDER BY date ASC, time_of_day ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListActiveTimesForDay(ctx context.Context, hospitalID uuid.UUID, date time.Time) ([]string, error) {
	// Reads through the same active-status filter the reservation
	// invariant enforces.
	query := `
		SELECT time_of_day
		FROM appointments
		WHERE hospital_id = $1
		AND date = $2
		AND status NOT IN ('cancelled', 'completed')
		ORDER BY time_of_day ASC
	`
	var times []string
	err := r.db.SelectContext(ctx, &times, query, hospitalID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked times: %w", err)
	}
	return times, nil
}

func (r *appointmentRepository) ListUpcomingForUser(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE user_id = $1
		AND date >= $2
		AND status NOT IN ('cancelled', 'completed')
		ORDER BY date ASC, time_of_day ASC
		LIMIT $3
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, userID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListDueReminders(ctx context.Context, before time.Time, limit int) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status NOT IN ('cancelled', 'completed')
		AND EXISTS (
			SELECT 1 FROM unnest(reminders) AS r WHERE r <= $1
		)
		ORDER BY date ASC, time_of_day ASC
		LIMIT $2
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return appointments, nil
}
