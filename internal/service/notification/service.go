package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink-api/internal/email"
	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/pkg/messaging"
	"github.com/carelink/carelink-api/pkg/metrics"
)

const notificationChannel = "notifications"

// Service dispatches notifications over email and the in-app broker.
type Service struct {
	emailSvc email.Service
	broker   messaging.Broker
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(emailSvc email.Service, broker messaging.Broker, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		emailSvc: emailSvc,
		broker:   broker,
		metrics:  m,
		logger:   logger,
	}
}

// NotifyHospital tells the hospital about a new booking. Called
// fire-and-forget by the scheduler; an error here never unwinds the
// reservation.
func (s *Service) NotifyHospital(ctx context.Context, hospital *model.Hospital, appointment *model.Appointment) error {
	subject := fmt.Sprintf("New appointment on %s at %s", appointment.Date.Format("2006-01-02"), appointment.Time)
	body := fmt.Sprintf(
		"A new appointment was booked.\n\nDepartment: %s\nDate: %s\nTime: %s\nReason: %s\n",
		appointment.Department,
		appointment.Date.Format("2006-01-02"),
		appointment.Time,
		appointment.Reason,
	)

	if err := s.emailSvc.Send(ctx, hospital.Email, subject, body); err != nil {
		s.metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
		return fmt.Errorf("failed to email hospital: %w", err)
	}
	s.metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()

	event := &model.Notification{
		ID:        uuid.New(),
		UserID:    appointment.UserID,
		Channel:   model.NotificationChannelInApp,
		Recipient: hospital.ID.String(),
		Subject:   subject,
		Content:   body,
		CreatedAt: time.Now(),
	}
	if err := s.broker.Publish(ctx, notificationChannel, event); err != nil {
		// The email already went out; a broker hiccup is not worth
		// failing the notification over.
		s.metrics.NotificationsSent.WithLabelValues("in_app", "failed").Inc()
		s.logger.Error().Err(err).Str("appointment_id", appointment.ID.String()).Msg("failed to publish in-app notification")
		return nil
	}
	s.metrics.NotificationsSent.WithLabelValues("in_app", "sent").Inc()

	return nil
}
