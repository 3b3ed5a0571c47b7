package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	evaluationPrefix = "evaluations:"
	evaluationsKey   = evaluationPrefix + "current"
	evaluationTTL    = 3 * time.Minute
)

// EvaluationStates are the keys of the evaluation counters.
var EvaluationStates = []string{models.EvaluationStateAll, models.EvaluationStatePartial, models.EvaluationStateDraft}

type evaluationRepository interface {
	ListCurrent(ctx context.Context) ([]models.Evaluation, error)
	CountByState(ctx context.Context, state string) (int, error)
	Create(ctx context.Context, in models.EvaluationInput) (int64, error)
	Update(ctx context.Context, id int64, in models.EvaluationInput) error
	Delete(ctx context.Context, id int64) error
}

// EvaluationService handles evaluations of the current year.
type EvaluationService struct {
	repo      evaluationRepository
	list      cachedList[models.Evaluation]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvaluationService constructs the evaluation service.
func NewEvaluationService(repo evaluationRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		repo:      repo,
		list:      cachedList[models.Evaluation]{cache: cache, key: evaluationsKey, ttl: evaluationTTL},
		validator: newValidator(validate),
		logger:    logger,
	}
}

// Load returns current evaluations.
func (s *EvaluationService) Load(ctx context.Context, force bool) ([]models.Evaluation, error) {
	return s.list.load(ctx, force, s.repo.ListCurrent)
}

// Cached returns the last stored list.
func (s *EvaluationService) Cached(ctx context.Context) ([]models.Evaluation, bool) {
	return s.list.cached(ctx)
}

// CountByState counts current evaluations per state in parallel.
func (s *EvaluationService) CountByState(ctx context.Context) (map[string]int, error) {
	return countAll(ctx, EvaluationStates, s.repo.CountByState)
}

// Create registers an evaluation.
func (s *EvaluationService) Create(ctx context.Context, in models.EvaluationInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.Warn("create evaluation failed", zap.Error(err))
		return mutationFailed(err, "could not create the evaluation")
	}
	s.list.invalidate(ctx, evaluationPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "evaluation created"}
}

// Update modifies an evaluation.
func (s *EvaluationService) Update(ctx context.Context, id int64, in models.EvaluationInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		s.logger.Warn("update evaluation failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not update the evaluation")
	}
	s.list.invalidate(ctx, evaluationPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "evaluation updated"}
}

// Delete removes an evaluation.
func (s *EvaluationService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete evaluation failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the evaluation")
	}
	s.list.invalidate(ctx, evaluationPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "evaluation deleted"}
}
