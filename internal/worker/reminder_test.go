package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	"github.com/carelink/carelink-api/pkg/logger"
	"github.com/carelink/carelink-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("worker_test")

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
func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return apt, nil
}
func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := r.byID[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *apt
	r.byID[apt.ID] = &stored
	return nil
}
func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) ListActiveTimesForDay(_ context.Context, _ uuid.UUID, _ time.Time) ([]string, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) ListUpcomingForUser(_ context.Context, _ uuid.UUID, _ time.Time, _ int) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) ListDueReminders(_ context.Context, before time.Time, limit int) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.byID {
		if len(out) >= limit {
			break
		}
		for _, rem := range apt.Reminders {
			if !rem.After(before) {
				copied := *apt
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

type fakeBroker struct {
	published []string
	messages  []interface{}
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.published = append(b.published, channel)
	b.messages = append(b.messages, message)
	return nil
}
func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}
func (b *fakeBroker) Close() error { return nil }

func TestNewReminderDispatcherValidatesConfig(t *testing.T) {
	repo := &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
	broker := &fakeBroker{}

	assert.Panics(t, func() {
		NewReminderDispatcher(repo, broker, ReminderDispatcherConfig{BatchSize: 0, PollInterval: time.Second}, logger.NewLogger(nil), testMetrics)
	})
	assert.Panics(t, func() {
		NewReminderDispatcher(repo, broker, ReminderDispatcherConfig{BatchSize: 10, PollInterval: 0}, logger.NewLogger(nil), testMetrics)
	})
}

func TestDispatchDue(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo := &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
	broker := &fakeBroker{}

	due := &model.Appointment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		HospitalID: uuid.New(),
		Time:       "10:00",
		Reminders: model.Reminders{
			now.Add(-time.Minute),
			now.Add(24 * time.Hour),
		},
	}
	notDue := &model.Appointment{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Reminders: model.Reminders{now.Add(48 * time.Hour)},
	}
	repo.byID[due.ID] = due
	repo.byID[notDue.ID] = notDue

	d := NewReminderDispatcher(repo, broker, ReminderDispatcherConfig{
		BatchSize:    100,
		PollInterval: time.Second,
	}, logger.NewLogger(nil), testMetrics)

	require.NoError(t, d.dispatchDue(ctx))

	require.Len(t, broker.published, 1)
	assert.Equal(t, "reminders", broker.published[0])

	event, ok := broker.messages[0].(*model.ReminderEvent)
	require.True(t, ok)
	assert.Equal(t, due.ID, event.AppointmentID)
	assert.Equal(t, due.UserID, event.UserID)

	// fired timestamp is stripped, the future one stays
	stored := repo.byID[due.ID]
	require.Len(t, stored.Reminders, 1)
	assert.True(t, stored.Reminders[0].After(now))

	// untouched appointment keeps its reminder
	assert.Len(t, repo.byID[notDue.ID].Reminders, 1)

	// a second poll finds nothing due
	broker.published = nil
	require.NoError(t, d.dispatchDue(ctx))
	assert.Empty(t, broker.published)
}
