package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RecordType string

const (
	RecordTypeLabResult     RecordType = "lab_result"
	RecordTypePrescription  RecordType = "prescription"
	RecordTypeDiagnosis     RecordType = "diagnosis"
	RecordTypeVaccination   RecordType = "vaccination"
	RecordTypeSurgery       RecordType = "surgery"
	RecordTypeAllergy       RecordType = "allergy"
	RecordTypeMedicalImage  RecordType = "medical_image"
	RecordTypeTreatmentPlan RecordType = "treatment_plan"
)

type Confidentiality string

const (
	ConfidentialityNormal          Confidentiality = "normal"
	ConfidentialitySensitive       Confidentiality = "sensitive"
	ConfidentialityHighlySensitive Confidentiality = "highly-sensitive"
)

type RecordStatus string

const (
	RecordStatusDraft   RecordStatus = "draft"
	RecordStatusFinal   RecordStatus = "final"
	RecordStatusAmended RecordStatus = "amended"
)

type HealthRecord struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	RecordType      RecordType      `db:"record_type" json:"record_type"`
	Date            time.Time       `db:"date" json:"date"`
	FacilityName    string          `db:"facility_name" json:"facility_name"`
	DoctorID        uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	Description     string          `db:"description" json:"description"`
	Diagnosis       pq.StringArray  `db:"diagnosis" json:"diagnosis,omitempty"`
	Symptoms        pq.StringArray  `db:"symptoms" json:"symptoms,omitempty"`
	Confidentiality Confidentiality `db:"confidentiality" json:"confidentiality"`
	Status          RecordStatus    `db:"status" json:"status"`
	Version         int             `db:"version" json:"version"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// PatientAge returns the patient's age in whole years at the time the
// record was taken. Pure function, no entity lookups.
func PatientAge(dateOfBirth, recordDate time.Time) int {
	age := recordDate.Year() - dateOfBirth.Year()
	if recordDate.Month() < dateOfBirth.Month() ||
		(recordDate.Month() == dateOfBirth.Month() && recordDate.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

type CreateHealthRecordRequest struct {
	RecordType   RecordType `json:"record_type" binding:"required"`
	Date         string     `json:"date" binding:"required,datetime=2006-01-02"`
	FacilityName string     `json:"facility_name" binding:"required"`
	DoctorID     string     `json:"doctor_id" binding:"required,uuid"`
	Description  string     `json:"description" binding:"required"`
	Diagnosis    []string   `json:"diagnosis"`
	Symptoms     []string   `json:"symptoms"`
}

type UpdateHealthRecordRequest struct {
	Description *string       `json:"description"`
	Diagnosis   []string      `json:"diagnosis"`
	Symptoms    []string      `json:"symptoms"`
	Status      *RecordStatus `json:"status"`
}
