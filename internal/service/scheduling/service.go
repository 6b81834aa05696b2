package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink-api/internal/config"
	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	apperrors "github.com/carelink/carelink-api/pkg/errors"
	"github.com/carelink/carelink-api/pkg/metrics"
)

const dateLayout = "2006-01-02"

// notifyTimeout bounds the fire-and-forget hospital notification so it
// never outlives the process shutdown grace period.
const notifyTimeout = 10 * time.Second

// HospitalNotifier is the narrow interface to the messaging subsystem.
// Delivery failure must never fail a booking.
type HospitalNotifier interface {
	NotifyHospital(ctx context.Context, hospital *model.Hospital, appointment *model.Appointment) error
}

// Service owns appointment booking: it guards the
// at-most-one-active-appointment-per-(hospital, date, time) invariant and
// derives the open-slot view that invariant makes meaningful.
type Service struct {
	repo      repository.AppointmentRepository
	hospitals repository.HospitalRepository
	notifier  HospitalNotifier
	metrics   *metrics.Metrics
	cfg       config.SchedulingConfig
	logger    zerolog.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	hospitals repository.HospitalRepository,
	notifier HospitalNotifier,
	m *metrics.Metrics,
	cfg config.SchedulingConfig,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		hospitals: hospitals,
		notifier:  notifier,
		metrics:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// Book reserves a slot for the authenticated patient. The conflict check
// and the insert are one atomic step: the storage layer's uniqueness
// constraint linearizes concurrent attempts on the same tuple, so exactly
// one wins and the rest observe SlotTaken.
func (s *Service) Book(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid hospital ID", err)
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid doctor ID", err)
	}

	date, timeOfDay, err := s.validateSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	hospital, err := s.hospitals.Get(ctx, hospitalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("hospital", err)
		}
		return nil, apperrors.FromStorage("get hospital", err)
	}

	appointment := &model.Appointment{
		ID:         uuid.New(),
		UserID:     userID,
		HospitalID: hospitalID,
		DoctorID:   doctorID,
		Date:       date,
		Time:       timeOfDay,
		Department: req.Department,
		Reason:     req.Reason,
		Status:     model.AppointmentStatusPending,
	}

	if err := s.repo.Reserve(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			s.metrics.BookingConflicts.Inc()
			s.metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			return nil, apperrors.SlotTaken(hospitalID.String(), req.Date, timeOfDay)
		}
		s.metrics.BookingsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.FromStorage("reserve appointment", err)
	}

	s.metrics.BookingsTotal.WithLabelValues("success").Inc()
	s.notifyHospitalAsync(hospital, appointment)

	return appointment, nil
}

// Update modifies the patient's appointment. A date/time change re-runs
// the conflict check against the new tuple before anything is applied.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if appointment.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("cannot modify cancelled appointment", nil)
	}

	if req.Date != nil || req.Time != nil {
		newDate := appointment.Date.Format(dateLayout)
		if req.Date != nil {
			newDate = *req.Date
		}
		newTime := appointment.Time
		if req.Time != nil {
			newTime = *req.Time
		}

		date, timeOfDay, err := s.validateSlot(newDate, newTime)
		if err != nil {
			return nil, err
		}

		appointment.Date = date
		appointment.Time = timeOfDay
		appointment.Status = model.AppointmentStatusRescheduled
		if req.Status != nil {
			appointment.Status = *req.Status
		}

		if err := s.repo.UpdateSchedule(ctx, appointment); err != nil {
			if errors.Is(err, repository.ErrDuplicateSlot) {
				s.metrics.BookingConflicts.Inc()
				return nil, apperrors.SlotTaken(appointment.HospitalID.String(), newDate, timeOfDay)
			}
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("appointment", err)
			}
			return nil, apperrors.FromStorage("reschedule appointment", err)
		}
	} else if req.Status != nil {
		appointment.Status = *req.Status
	}

	applyUpdates(appointment, req)

	if err := s.repo.Update(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.FromStorage("update appointment", err)
	}

	return appointment, nil
}

// Cancel marks the appointment cancelled, releasing its slot.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID, reason string) (*model.Appointment, error) {
	appointment, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if appointment.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("appointment is already cancelled", nil)
	}
	if appointment.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.BadRequest("cannot cancel a completed appointment", nil)
	}

	appointment.Status = model.AppointmentStatusCancelled
	appointment.CancellationReason = &reason

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, apperrors.FromStorage("cancel appointment", err)
	}
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	return s.getOwned(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.FromStorage("list appointments", err)
	}
	return appointments, nil
}

// AvailableSlots computes the open slots for a hospital/day: the full
// granularity-stepped candidate sequence between opening and closing
// minus the times already booked by active appointments.
func (s *Service) AvailableSlots(ctx context.Context, hospitalID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	s.metrics.SlotQueries.Inc()

	if _, err := s.hospitals.Get(ctx, hospitalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("hospital", err)
		}
		return nil, apperrors.FromStorage("get hospital", err)
	}

	booked, err := s.repo.ListActiveTimesForDay(ctx, hospitalID, date)
	if err != nil {
		return nil, apperrors.FromStorage("list booked times", err)
	}

	candidates := GenerateSlots(s.cfg.OpeningTime, s.cfg.ClosingTime, s.cfg.SlotGranularityMinutes)
	open := FilterBooked(candidates, booked)

	slots := make([]model.TimeSlot, 0, len(open))
	for _, t := range open {
		slots = append(slots, model.TimeSlot{Date: date, Time: t})
	}
	return slots, nil
}

func (s *Service) getOwned(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.FromStorage("get appointment", err)
	}
	if appointment.UserID != userID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appointment, nil
}

func (s *Service) validateSlot(dateStr, timeOfDay string) (time.Time, string, error) {
	if !model.ValidTimeOfDay(timeOfDay) {
		return time.Time{}, "", apperrors.InvalidSlot(fmt.Sprintf("malformed time %q, expected HH:MM", timeOfDay))
	}
	timeOfDay = normalizeTime(timeOfDay)

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, "", apperrors.InvalidSlot(fmt.Sprintf("malformed date %q, expected YYYY-MM-DD", dateStr))
	}

	if !inWindow(timeOfDay, s.cfg.OpeningTime, s.cfg.ClosingTime) {
		return time.Time{}, "", apperrors.InvalidSlot(fmt.Sprintf(
			"time %s is outside operating hours %s-%s", timeOfDay, s.cfg.OpeningTime, s.cfg.ClosingTime))
	}

	return date, timeOfDay, nil
}

// notifyHospitalAsync dispatches the booking notification without
// blocking the reservation. Failure is logged, never propagated.
func (s *Service) notifyHospitalAsync(hospital *model.Hospital, appointment *model.Appointment) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyHospital(ctx, hospital, appointment); err != nil {
			s.logger.Error().
				Err(err).
				Str("appointment_id", appointment.ID.String()).
				Str("hospital_id", hospital.ID.String()).
				Msg("failed to notify hospital of new appointment")
		}
	}()
}

func applyUpdates(appointment *model.Appointment, req *model.UpdateAppointmentRequest) {
	if req.Department != nil {
		appointment.Department = *req.Department
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.CancellationReason != nil {
		appointment.CancellationReason = req.CancellationReason
	}
	if req.CheckedIn != nil {
		appointment.CheckedIn = *req.CheckedIn
	}
	if req.FollowUpDate != nil {
		if d, err := time.Parse(dateLayout, *req.FollowUpDate); err == nil {
			appointment.FollowUpDate = &d
		}
	}
	if req.FollowUpNotes != nil {
		appointment.FollowUpNotes = req.FollowUpNotes
	}
}
