package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	apperrors "github.com/carelink/carelink-api/pkg/errors"
	"github.com/carelink/carelink-api/pkg/security"
)

const (
	profileAppointmentLimit = 5
	profileRecordLimit      = 5
)

type Service struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	records      repository.HealthRecordRepository
	hasher       security.PasswordHasher
	logger       zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	appointments repository.AppointmentRepository,
	records repository.HealthRecordRepository,
	hasher security.PasswordHasher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		users:        users,
		appointments: appointments,
		records:      records,
		hasher:       hasher,
		logger:       logger,
	}
}

// GetProfile returns the user together with their next appointments and
// most recent health records.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.appointments.ListUpcomingForUser(ctx, userID, time.Now(), profileAppointmentLimit)
	if err != nil {
		return nil, apperrors.FromStorage("list upcoming appointments", err)
	}

	records, err := s.records.ListForUser(ctx, userID, profileRecordLimit)
	if err != nil {
		return nil, apperrors.FromStorage("list health records", err)
	}

	return &model.Profile{
		User:                 user,
		UpcomingAppointments: upcoming,
		RecentHealthRecords:  records,
	}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		if existing, err := s.users.GetByEmail(ctx, *req.Email); err == nil && existing.ID != userID {
			return nil, apperrors.BadRequest("email already in use", nil)
		}
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.FromStorage("update user", err)
	}
	return user, nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID uuid.UUID, req *model.UpdatePasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.Password, req.CurrentPassword); err != nil {
		return apperrors.Unauthorized(errors.New("current password is incorrect"))
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.BadRequest("invalid new password", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return apperrors.FromStorage("update password", err)
	}
	return nil
}

// DeleteAccount verifies the password and removes the account plus all of
// its appointments and health records atomically. A partial cascade is a
// data-integrity bug, so any failure surfaces as IntegrityViolation with
// everything rolled back.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		return apperrors.Unauthorized(errors.New("password is incorrect"))
	}

	if err := s.users.DeleteCascade(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Timeout("delete account", err)
		}
		return apperrors.IntegrityViolation("account deletion rolled back", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("account deleted")
	return nil
}

func (s *Service) getUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.FromStorage("get user", err)
	}
	return user, nil
}
