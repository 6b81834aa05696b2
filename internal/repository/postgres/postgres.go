package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/carelink/carelink-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type hospitalRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	BaseRepository
}

type healthRecordRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

func NewHealthRecordRepository(db *sqlx.DB) repository.HealthRecordRepository {
	return &healthRecordRepository{db: db}
}
