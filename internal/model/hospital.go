package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Hospital struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Street    string         `db:"street" json:"street"`
	City      string         `db:"city" json:"city"`
	State     string         `db:"state" json:"state"`
	ZipCode   string         `db:"zip_code" json:"zip_code"`
	Longitude float64        `db:"longitude" json:"longitude"`
	Latitude  float64        `db:"latitude" json:"latitude"`
	Phone     string         `db:"phone" json:"phone"`
	Email     string         `db:"email" json:"email"`
	Services  pq.StringArray `db:"services" json:"services"`
}

// NearbyHospital is a hospital annotated with its great-circle distance
// from the query point, as computed by the storage layer.
type NearbyHospital struct {
	Hospital
	DistanceMeters float64 `db:"distance_meters" json:"distance_meters"`
}
