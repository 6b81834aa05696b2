package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	apperrors "github.com/carelink/carelink-api/pkg/errors"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User

	// cascade targets, deleted together with the user
	appointments *fakeAppointmentRepo
	records      *fakeRecordRepo

	cascadeErr   error
	cascadeCalls int
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hashed
	return nil
}

func (r *fakeUserRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	r.cascadeCalls++
	if r.cascadeErr != nil {
		// transaction rolled back, nothing is touched
		return r.cascadeErr
	}
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	for aid, apt := range r.appointments.byID {
		if apt.UserID == id {
			delete(r.appointments.byID, aid)
		}
	}
	for rid, rec := range r.records.byID {
		if rec.UserID == id {
			delete(r.records.byID, rid)
		}
	}
	delete(r.users, id)
	return nil
}

type fakeAppointmentRepo struct {
	byID map[uuid.UUID]*model.Appointment
}

func (r *fakeAppointmentRepo) Reserve(_ context.Context, apt *model.Appointment) error {
	r.byID[apt.ID] = apt
	return nil
}
func (r *fakeAppointmentRepo) UpdateSchedule(_ context.Context, _ *model.Appointment) error {
	return nil
}
func (r *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) ListActiveTimesForDay(_ context.Context, _ uuid.UUID, _ time.Time) ([]string, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) ListUpcomingForUser(_ context.Context, userID uuid.UUID, _ time.Time, limit int) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.byID {
		if apt.UserID == userID && len(out) < limit {
			out = append(out, apt)
		}
	}
	return out, nil
}
func (r *fakeAppointmentRepo) ListDueReminders(_ context.Context, _ time.Time, _ int) ([]*model.Appointment, error) {
	return nil, nil
}

type fakeRecordRepo struct {
	byID map[uuid.UUID]*model.HealthRecord
}

func (r *fakeRecordRepo) Create(_ context.Context, rec *model.HealthRecord) error {
	r.byID[rec.ID] = rec
	return nil
}
func (r *fakeRecordRepo) Get(_ context.Context, _ uuid.UUID) (*model.HealthRecord, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeRecordRepo) Update(_ context.Context, _ *model.HealthRecord) error { return nil }
func (r *fakeRecordRepo) Delete(_ context.Context, _ uuid.UUID) error           { return nil }
func (r *fakeRecordRepo) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]*model.HealthRecord, error) {
	var out []*model.HealthRecord
	for _, rec := range r.byID {
		if rec.UserID == userID && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fixture struct {
	svc          *Service
	users        *fakeUserRepo
	appointments *fakeAppointmentRepo
	records      *fakeRecordRepo
	userID       uuid.UUID
}

func newFixture() *fixture {
	appointments := &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
	records := &fakeRecordRepo{byID: make(map[uuid.UUID]*model.HealthRecord)}
	users := &fakeUserRepo{
		users:        make(map[uuid.UUID]*model.User),
		appointments: appointments,
		records:      records,
	}

	userID := uuid.New()
	users.users[userID] = &model.User{
		ID:       userID,
		Name:     "Pat Doe",
		Email:    "pat@example.com",
		Password: "hashed:correct-horse",
	}
	for i := 0; i < 3; i++ {
		apt := &model.Appointment{ID: uuid.New(), UserID: userID}
		appointments.byID[apt.ID] = apt
	}
	for i := 0; i < 2; i++ {
		rec := &model.HealthRecord{ID: uuid.New(), UserID: userID}
		records.byID[rec.ID] = rec
	}

	return &fixture{
		svc:          NewService(users, appointments, records, plainHasher{}, zerolog.Nop()),
		users:        users,
		appointments: appointments,
		records:      records,
		userID:       userID,
	}
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	profile, err := f.svc.GetProfile(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, "Pat Doe", profile.User.Name)
	assert.Len(t, profile.UpcomingAppointments, 3)
	assert.Len(t, profile.RecentHealthRecords, 2)

	_, err = f.svc.GetProfile(ctx, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }

	t.Run("updates fields", func(t *testing.T) {
		f := newFixture()
		user, err := f.svc.UpdateProfile(ctx, f.userID, &model.UpdateProfileRequest{
			Name:  strPtr("Pat Q. Doe"),
			Phone: strPtr("+1-555-0100"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Pat Q. Doe", user.Name)
		assert.Equal(t, "+1-555-0100", user.Phone)
	})

	t.Run("rejects an email already in use", func(t *testing.T) {
		f := newFixture()
		other := &model.User{ID: uuid.New(), Email: "taken@example.com"}
		f.users.users[other.ID] = other

		_, err := f.svc.UpdateProfile(ctx, f.userID, &model.UpdateProfileRequest{
			Email: strPtr("taken@example.com"),
		})
		assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
	})

	t.Run("keeping your own email is fine", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.UpdateProfile(ctx, f.userID, &model.UpdateProfileRequest{
			Email: strPtr("pat@example.com"),
		})
		assert.NoError(t, err)
	})
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the hash", func(t *testing.T) {
		f := newFixture()
		err := f.svc.UpdatePassword(ctx, f.userID, &model.UpdatePasswordRequest{
			CurrentPassword: "correct-horse",
			NewPassword:     "battery-staple",
		})
		require.NoError(t, err)
		assert.Equal(t, "hashed:battery-staple", f.users.users[f.userID].Password)
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture()
		err := f.svc.UpdatePassword(ctx, f.userID, &model.UpdatePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "battery-staple",
		})
		assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the user with all appointments and records", func(t *testing.T) {
		f := newFixture()
		err := f.svc.DeleteAccount(ctx, f.userID, "correct-horse")
		require.NoError(t, err)

		assert.Empty(t, f.users.users)
		assert.Empty(t, f.appointments.byID)
		assert.Empty(t, f.records.byID)
	})

	t.Run("wrong password leaves everything untouched", func(t *testing.T) {
		f := newFixture()
		err := f.svc.DeleteAccount(ctx, f.userID, "wrong")
		assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
		assert.Equal(t, 0, f.users.cascadeCalls)
		assert.Len(t, f.appointments.byID, 3)
		assert.Len(t, f.records.byID, 2)
	})

	t.Run("cascade failure rolls back, nothing partial survives", func(t *testing.T) {
		f := newFixture()
		f.users.cascadeErr = errors.New("constraint violation on appointments")

		err := f.svc.DeleteAccount(ctx, f.userID, "correct-horse")
		assert.True(t, apperrors.Is(err, apperrors.CodeIntegrityViolation))

		assert.Len(t, f.users.users, 1)
		assert.Len(t, f.appointments.byID, 3)
		assert.Len(t, f.records.byID, 2)
	})

	t.Run("storage deadline surfaces as timeout", func(t *testing.T) {
		f := newFixture()
		f.users.cascadeErr = context.DeadlineExceeded

		err := f.svc.DeleteAccount(ctx, f.userID, "correct-horse")
		assert.True(t, apperrors.Is(err, apperrors.CodeTimeout))
	})
}
