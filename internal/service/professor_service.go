package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	professorPrefix = "professors:"
	professorsKey   = professorPrefix + "current"
	professorTTL    = 10 * time.Minute
)

type professorRepository interface {
	ListCurrent(ctx context.Context) ([]models.Professor, error)
	Create(ctx context.Context, in models.ProfessorInput) (int64, error)
	Update(ctx context.Context, id int64, in models.ProfessorInput) error
	Delete(ctx context.Context, id int64) error
}

// ProfessorService handles professor assignments for the current year.
type ProfessorService struct {
	repo      professorRepository
	list      cachedList[models.Professor]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfessorService constructs the professor service.
func NewProfessorService(repo professorRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{
		repo:      repo,
		list:      cachedList[models.Professor]{cache: cache, key: professorsKey, ttl: professorTTL},
		validator: newValidator(validate),
		logger:    logger,
	}
}

// Load returns professors assigned in the current year.
func (s *ProfessorService) Load(ctx context.Context, force bool) ([]models.Professor, error) {
	return s.list.load(ctx, force, s.repo.ListCurrent)
}

// Cached returns the last stored list.
func (s *ProfessorService) Cached(ctx context.Context) ([]models.Professor, bool) {
	return s.list.cached(ctx)
}

// Assign creates a professor assignment.
func (s *ProfessorService) Assign(ctx context.Context, in models.ProfessorInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.Warn("assign professor failed", zap.Int64("employee_id", in.EmployeeID), zap.Error(err))
		return mutationFailed(err, "could not assign the professor")
	}
	s.list.invalidate(ctx, professorPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "professor assigned"}
}

// Update replaces sections and subjects of an assignment.
func (s *ProfessorService) Update(ctx context.Context, id int64, in models.ProfessorInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		s.logger.Warn("update professor failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not update the professor")
	}
	s.list.invalidate(ctx, professorPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "professor updated"}
}

// Delete removes an assignment.
func (s *ProfessorService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete professor failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the professor")
	}
	s.list.invalidate(ctx, professorPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "professor deleted"}
}
