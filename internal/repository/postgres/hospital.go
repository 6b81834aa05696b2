package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
)

const hospitalColumns = `
	id, name, street, city, state, zip_code,
	longitude, latitude, phone, email, services
`

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1`

	var hospital model.Hospital
	err := r.db.GetContext(ctx, &hospital, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

// Nearby delegates spherical distance to the earthdistance extension.
// earth_box prunes via the GiST index; earth_distance re-checks the exact
// radius since the box overshoots at its corners.
func (r *hospitalRepository) Nearby(ctx context.Context, longitude, latitude, radiusMeters float64, requiredServices []string) ([]*model.NearbyHospital, error) {
	query := `
		SELECT ` + hospitalColumns + `,
			earth_distance(ll_to_earth($1, $2), ll_to_earth(latitude, longitude)) AS distance_meters
		FROM hospitals
		WHERE earth_box(ll_to_earth($1, $2), $3) @> ll_to_earth(latitude, longitude)
		AND earth_distance(ll_to_earth($1, $2), ll_to_earth(latitude, longitude)) <= $3
		AND (cardinality($4::text[]) = 0 OR services @> $4)
		ORDER BY distance_meters ASC, id ASC
	`
	if requiredServices == nil {
		requiredServices = []string{}
	}

	var hospitals []*model.NearbyHospital
	err := r.db.SelectContext(ctx, &hospitals, query, latitude, longitude, radiusMeters, pq.Array(requiredServices))
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby hospitals: %w", err)
	}
	return hospitals, nil
}
