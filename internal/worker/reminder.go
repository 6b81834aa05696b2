package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	"github.com/carelink/carelink-api/pkg/logger"
	"github.com/carelink/carelink-api/pkg/messaging"
	"github.com/carelink/carelink-api/pkg/metrics"
)

const reminderChannel = "reminders"

type ReminderDispatcherConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// ReminderDispatcher polls for appointments whose reminder timestamps
// have fallen due and publishes a reminder event for each.
type ReminderDispatcher struct {
	repo    repository.AppointmentRepository
	broker  messaging.Broker
	config  ReminderDispatcherConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewReminderDispatcher(
	repo repository.AppointmentRepository,
	broker messaging.Broker,
	config ReminderDispatcherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ReminderDispatcher {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}

	return &ReminderDispatcher{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (d *ReminderDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info("starting reminder dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down reminder dispatcher")
			return
		case <-ticker.C:
			if err := d.dispatchDue(ctx); err != nil {
				d.logger.Error(err, "failed to dispatch reminders")
			}
		}
	}
}

func (d *ReminderDispatcher) dispatchDue(ctx context.Context) error {
	now := time.Now()

	appointments, err := d.repo.ListDueReminders(ctx, now, d.config.BatchSize)
	if err != nil {
		d.metrics.DatabaseOperations.WithLabelValues("list_due_reminders", "error").Inc()
		return fmt.Errorf("failed to list due reminders: %w", err)
	}
	d.metrics.DatabaseOperations.WithLabelValues("list_due_reminders", "success").Inc()

	for _, apt := range appointments {
		if err := d.dispatch(ctx, apt, now); err != nil {
			d.logger.Error(err, "failed to dispatch reminder", "appointment_id", apt.ID.String())
			continue
		}
	}
	return nil
}

func (d *ReminderDispatcher) dispatch(ctx context.Context, apt *model.Appointment, now time.Time) error {
	event := &model.ReminderEvent{
		AppointmentID: apt.ID,
		UserID:        apt.UserID,
		HospitalID:    apt.HospitalID,
		RemindAt:      now,
		Date:          apt.Date,
		Time:          apt.Time,
	}

	if err := d.broker.Publish(ctx, reminderChannel, event); err != nil {
		return fmt.Errorf("failed to publish reminder: %w", err)
	}
	d.metrics.RemindersSent.Inc()

	// Drop the fired timestamps so the next poll doesn't resend them.
	var remaining model.Reminders
	for _, r := range apt.Reminders {
		if r.After(now) {
			remaining = append(remaining, r)
		}
	}
	apt.Reminders = remaining

	if err := d.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to clear fired reminders: %w", err)
	}
	return nil
}
