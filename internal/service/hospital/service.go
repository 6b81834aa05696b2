package hospital

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/repository"
	apperrors "github.com/carelink/carelink-api/pkg/errors"
	"github.com/carelink/carelink-api/pkg/metrics"
)

const (
	defaultRadiusMeters = 5000
	maxRadiusMeters     = 100000

	hospitalCacheTTL     = 15 * time.Minute
	hospitalCacheCleanup = 1 * time.Hour
)

// Service is the read path over the hospital directory: point lookups
// (cached, hospitals are immutable for scheduling purposes) and
// proximity-ranked search.
type Service struct {
	repo    repository.HospitalRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func NewService(repo repository.HospitalRepository, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		cache:   cache.New(hospitalCacheTTL, hospitalCacheCleanup),
		metrics: m,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Hospital), nil
	}

	hospital, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("hospital", err)
		}
		return nil, apperrors.FromStorage("get hospital", err)
	}

	s.cache.Set(id.String(), hospital, cache.DefaultExpiration)
	return hospital, nil
}

// Nearby returns every hospital within radiusMeters of the point that
// offers all required services, ordered ascending by distance. An empty
// result is not an error.
func (s *Service) Nearby(ctx context.Context, longitude, latitude, radiusMeters float64, requiredServices []string) ([]*model.NearbyHospital, error) {
	s.metrics.ProximityQueries.Inc()

	if longitude < -180 || longitude > 180 || latitude < -90 || latitude > 90 {
		return nil, apperrors.BadRequest("coordinates out of range", nil)
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultRadiusMeters
	}
	if radiusMeters > maxRadiusMeters {
		radiusMeters = maxRadiusMeters
	}

	hospitals, err := s.repo.Nearby(ctx, longitude, latitude, radiusMeters, requiredServices)
	if err != nil {
		return nil, apperrors.FromStorage("query nearby hospitals", err)
	}
	if hospitals == nil {
		hospitals = []*model.NearbyHospital{}
	}
	return hospitals, nil
}
