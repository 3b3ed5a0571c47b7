package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	enrollmentPrefix = "student_enrollments:"
	enrollmentsKey   = enrollmentPrefix + "current"
	enrollmentTTL    = 5 * time.Minute
)

// EnrollmentStates are the keys of the enrollment counters.
var EnrollmentStates = []string{models.EnrollmentStateDraft, models.EnrollmentStateDone, models.EnrollmentStateCancel}

type enrollmentRepository interface {
	ListCurrent(ctx context.Context) ([]models.StudentEnrollment, error)
	CountByState(ctx context.Context, state string) (int, error)
	Create(ctx context.Context, in models.EnrollmentInput) (int64, error)
	Confirm(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// EnrollmentService handles student inscriptions of the current year.
type EnrollmentService struct {
	repo      enrollmentRepository
	list      cachedList[models.StudentEnrollment]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		list:      cachedList[models.StudentEnrollment]{cache: cache, key: enrollmentsKey, ttl: enrollmentTTL},
		validator: newValidator(validate),
		logger:    logger,
	}
}

// Load returns current enrollments.
func (s *EnrollmentService) Load(ctx context.Context, force bool) ([]models.StudentEnrollment, error) {
	return s.list.load(ctx, force, s.repo.ListCurrent)
}

// Cached returns the last stored list.
func (s *EnrollmentService) Cached(ctx context.Context) ([]models.StudentEnrollment, bool) {
	return s.list.cached(ctx)
}

// CountByState counts current enrollments per state in parallel.
func (s *EnrollmentService) CountByState(ctx context.Context) (map[string]int, error) {
	return countAll(ctx, EnrollmentStates, s.repo.CountByState)
}

// CanDelete allows removing draft inscriptions only.
func (s *EnrollmentService) CanDelete(e models.StudentEnrollment) models.DeleteValidation {
	if e.State != models.EnrollmentStateDraft {
		return models.DeleteValidation{Message: "only draft inscriptions can be deleted"}
	}
	return models.DeleteValidation{CanDelete: true}
}

// Create registers a draft inscription.
func (s *EnrollmentService) Create(ctx context.Context, in models.EnrollmentInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.Warn("create enrollment failed", zap.Int64("student_id", in.StudentID), zap.Error(err))
		return mutationFailed(err, "could not create the inscription")
	}
	s.list.invalidate(ctx, enrollmentPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "inscription created"}
}

// Confirm moves a draft inscription to done.
func (s *EnrollmentService) Confirm(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Confirm(ctx, id); err != nil {
		s.logger.Warn("confirm enrollment failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not confirm the inscription")
	}
	s.list.invalidate(ctx, enrollmentPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "student enrolled"}
}

// Delete removes an inscription.
func (s *EnrollmentService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete enrollment failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the inscription")
	}
	s.list.invalidate(ctx, enrollmentPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "inscription deleted"}
}
