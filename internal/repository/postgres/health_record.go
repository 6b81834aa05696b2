package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
)

const healthRecordColumns = `
	id, user_id, record_type, date, facility_name, doctor_id,
	description, diagnosis, symptoms, confidentiality, status,
	version, created_at, updated_at
`

func (r *healthRecordRepository) Create(ctx context.Context, record *model.HealthRecord) error {
	query := `
		INSERT INTO health_records (
			id, user_id, record_type, date, facility_name, doctor_id,
			description, diagnosis, symptoms, confidentiality, status,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	record.Version = 1
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.RecordType,
		record.Date,
		record.FacilityName,
		record.DoctorID,
		record.Description,
		record.Diagnosis,
		record.Symptoms,
		record.Confidentiality,
		record.Status,
		record.Version,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health record: %w", err)
	}
	return nil
}

func (r *healthRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.HealthRecord, error) {
	query := `SELECT ` + healthRecordColumns + ` FROM health_records WHERE id = $1`

	var record model.HealthRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get health record: %w", err)
	}
	return &record, nil
}

// Update bumps the version on every write, mirroring amendment history
// semantics.
func (r *healthRecordRepository) Update(ctx context.Context, record *model.HealthRecord) error {
	query := `
		UPDATE health_records
		SET description = $1, diagnosis = $2, symptoms = $3, status = $4,
			version = version + 1, updated_at = $5
		WHERE id = $6
		RETURNING version
	`
	record.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(ctx, query,
		record.Description,
		record.Diagnosis,
		record.Symptoms,
		record.Status,
		record.UpdatedAt,
		record.ID,
	).Scan(&record.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update health record: %w", err)
	}
	return nil
}

func (r *healthRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM health_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete health record: %w", err)
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

func (r *healthRecordRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.HealthRecord, error) {
	query := `SELECT ` + healthRecordColumns + `
		FROM health_records
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2
	`
	var records []*model.HealthRecord
	err := r.db.SelectContext(ctx, &records, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}
	return records, nil
}
