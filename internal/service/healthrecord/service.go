package healthrecord

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	apperrors "github.com/carelink/carelink-api/pkg/errors"
)

const defaultListLimit = 50

type Service struct {
	repo repository.HealthRecordRepository
}

func NewService(repo repository.HealthRecordRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateHealthRecordRequest) (*model.HealthRecord, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid doctor ID", err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid record date", err)
	}

	record := &model.HealthRecord{
		ID:              uuid.New(),
		UserID:          userID,
		RecordType:      req.RecordType,
		Date:            date,
		FacilityName:    req.FacilityName,
		DoctorID:        doctorID,
		Description:     req.Description,
		Diagnosis:       req.Diagnosis,
		Symptoms:        req.Symptoms,
		Confidentiality: model.ConfidentialityNormal,
		Status:          model.RecordStatusFinal,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, apperrors.FromStorage("create health record", err)
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.HealthRecord, error) {
	return s.getOwned(ctx, userID, id)
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateHealthRecordRequest) (*model.HealthRecord, error) {
	record, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Diagnosis != nil {
		record.Diagnosis = req.Diagnosis
	}
	if req.Symptoms != nil {
		record.Symptoms = req.Symptoms
	}
	if req.Status != nil {
		record.Status = *req.Status
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, apperrors.FromStorage("update health record", err)
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.FromStorage("delete health record", err)
	}
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.HealthRecord, error) {
	records, err := s.repo.ListForUser(ctx, userID, defaultListLimit)
	if err != nil {
		return nil, apperrors.FromStorage("list health records", err)
	}
	return records, nil
}

func (s *Service) getOwned(ctx context.Context, userID, id uuid.UUID) (*model.HealthRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("health record", err)
		}
		return nil, apperrors.FromStorage("get health record", err)
	}
	if record.UserID != userID {
		return nil, apperrors.NotFound("health record", nil)
	}
	return record, nil
}
