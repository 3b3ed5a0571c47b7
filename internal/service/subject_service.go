package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	subjectPrefix = "subjects:"
	subjectsKey   = subjectPrefix + "all"
	subjectTTL    = 10 * time.Minute
)

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	Create(ctx context.Context, in models.SubjectInput) (int64, error)
	Update(ctx context.Context, id int64, in models.SubjectInput) error
	Delete(ctx context.Context, id int64) error
}

// SubjectService handles registered subjects and their section and professor links.
type SubjectService struct {
	repo      subjectRepository
	list      cachedList[models.Subject]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{
		repo:      repo,
		list:      cachedList[models.Subject]{cache: cache, key: subjectsKey, ttl: subjectTTL},
		validator: newValidator(validate),
		logger:    logger,
	}
}

// Load returns all subjects.
func (s *SubjectService) Load(ctx context.Context, force bool) ([]models.Subject, error) {
	return s.list.load(ctx, force, s.repo.List)
}

// Cached returns the last stored list.
func (s *SubjectService) Cached(ctx context.Context) ([]models.Subject, bool) {
	return s.list.cached(ctx)
}

// Create registers a subject.
func (s *SubjectService) Create(ctx context.Context, in models.SubjectInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.Warn("create subject failed", zap.Error(err))
		return mutationFailed(err, "could not create the subject")
	}
	s.list.invalidate(ctx, subjectPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "subject created"}
}

// Update rewrites a subject.
func (s *SubjectService) Update(ctx context.Context, id int64, in models.SubjectInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		s.logger.Warn("update subject failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not update the subject")
	}
	s.list.invalidate(ctx, subjectPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "subject updated"}
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete subject failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the subject")
	}
	s.list.invalidate(ctx, subjectPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "subject deleted"}
}
