package healthrecord

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	apperrors "github.com/carelink/carelink-api/pkg/errors"
)

type fakeRecordRepo struct {
	byID map[uuid.UUID]*model.HealthRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{byID: make(map[uuid.UUID]*model.HealthRecord)}
}

func (r *fakeRecordRepo) Create(_ context.Context, rec *model.HealthRecord) error {
	stored := *rec
	r.byID[rec.ID] = &stored
	return nil
}

func (r *fakeRecordRepo) Get(_ context.Context, id uuid.UUID) (*model.HealthRecord, error) {
	rec, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeRecordRepo) Update(_ context.Context, rec *model.HealthRecord) error {
	if _, ok := r.byID[rec.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *rec
	stored.Version++
	r.byID[rec.ID] = &stored
	return nil
}

func (r *fakeRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeRecordRepo) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]*model.HealthRecord, error) {
	var out []*model.HealthRecord
	for _, rec := range r.byID {
		if rec.UserID == userID && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func createRequest() *model.CreateHealthRecordRequest {
	return &model.CreateHealthRecordRequest{
		RecordType:   model.RecordTypeLabResult,
		Date:         "2026-08-20",
		FacilityName: "General Hospital",
		DoctorID:     uuid.New().String(),
		Description:  "complete blood count",
		Diagnosis:    []string{"anemia"},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRecordRepo())
	userID := uuid.New()

	rec, err := svc.Create(ctx, userID, createRequest())
	require.NoError(t, err)
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, model.ConfidentialityNormal, rec.Confidentiality)
	assert.Equal(t, model.RecordStatusFinal, rec.Status)

	t.Run("invalid doctor id", func(t *testing.T) {
		req := createRequest()
		req.DoctorID = "not-a-uuid"
		_, err := svc.Create(ctx, userID, req)
		assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
	})

	t.Run("invalid date", func(t *testing.T) {
		req := createRequest()
		req.Date = "20-08-2026"
		_, err := svc.Create(ctx, userID, req)
		assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
	})
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRecordRepo()
	svc := NewService(repo)
	owner := uuid.New()
	stranger := uuid.New()

	rec, err := svc.Create(ctx, owner, createRequest())
	require.NoError(t, err)

	_, err = svc.Get(ctx, owner, rec.ID)
	assert.NoError(t, err)

	// records belonging to someone else are indistinguishable from missing
	_, err = svc.Get(ctx, stranger, rec.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	err = svc.Delete(ctx, stranger, rec.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Len(t, repo.byID, 1)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRecordRepo()
	svc := NewService(repo)
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner, createRequest())
	require.NoError(t, err)

	desc := "repeat panel after treatment"
	status := model.RecordStatusAmended
	updated, err := svc.Update(ctx, owner, rec.ID, &model.UpdateHealthRecordRequest{
		Description: &desc,
		Status:      &status,
	})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, model.RecordStatusAmended, updated.Status)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRecordRepo()
	svc := NewService(repo)
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner, createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, rec.ID))
	_, err = svc.Get(ctx, owner, rec.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
