package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	schoolYearPrefix = "school_years:"
	schoolYearsKey   = schoolYearPrefix + "all"
	schoolYearTTL    = 10 * time.Minute
)

type schoolYearRepository interface {
	List(ctx context.Context) ([]models.SchoolYear, error)
	Current(ctx context.Context) (*models.SchoolYear, error)
	FindByID(ctx context.Context, id int64) (*models.SchoolYear, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, in models.SchoolYearInput) (int64, error)
	Update(ctx context.Context, id int64, in models.SchoolYearInput) error
	Delete(ctx context.Context, id int64) error
}

// SchoolYearService handles school year use-cases.
type SchoolYearService struct {
	repo      schoolYearRepository
	list      cachedList[models.SchoolYear]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolYearService constructs the school year service.
func NewSchoolYearService(repo schoolYearRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SchoolYearService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolYearService{
		repo:      repo,
		list:      cachedList[models.SchoolYear]{cache: cache, key: schoolYearsKey, ttl: schoolYearTTL},
		validator: newValidator(validate),
		logger:    logger,
	}
}

// Load returns all school years, newest first.
func (s *SchoolYearService) Load(ctx context.Context, force bool) ([]models.SchoolYear, error) {
	return s.list.load(ctx, force, s.repo.List)
}

// Cached returns the last stored list.
func (s *SchoolYearService) Cached(ctx context.Context) ([]models.SchoolYear, bool) {
	return s.list.cached(ctx)
}

// Current returns the active year or nil.
func (s *SchoolYearService) Current(ctx context.Context) (*models.SchoolYear, error) {
	return s.repo.Current(ctx)
}

// Get returns a year by id.
func (s *SchoolYearService) Get(ctx context.Context, id int64) (*models.SchoolYear, error) {
	return s.repo.FindByID(ctx, id)
}

// Count returns the number of years.
func (s *SchoolYearService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create registers a school year.
func (s *SchoolYearService) Create(ctx context.Context, in models.SchoolYearInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.Warn("create school year failed", zap.Error(err))
		return mutationFailed(err, "could not create the school year")
	}
	s.list.invalidate(ctx, schoolYearPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "school year created"}
}

// Update modifies a school year.
func (s *SchoolYearService) Update(ctx context.Context, id int64, in models.SchoolYearInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		s.logger.Warn("update school year failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not update the school year")
	}
	s.list.invalidate(ctx, schoolYearPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "school year updated"}
}

// Delete removes a school year.
func (s *SchoolYearService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete school year failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the school year")
	}
	s.list.invalidate(ctx, schoolYearPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "school year deleted"}
}
