package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	sectionPrefix = "sections:"
	sectionsKey   = sectionPrefix + "all"
	sectionTTL    = 10 * time.Minute
)

// SectionTypes are the education levels a section can belong to.
var SectionTypes = []string{models.LevelPre, models.LevelPrimary, models.LevelSecundary}

type sectionRepository interface {
	List(ctx context.Context) ([]models.Section, error)
	CountByType(ctx context.Context, sectionType string) (int, error)
	Create(ctx context.Context, in models.SectionInput) (int64, error)
	Update(ctx context.Context, id int64, in models.SectionInput) error
	Delete(ctx context.Context, id int64) error
}

// SectionService handles registered sections.
type SectionService struct {
	repo      sectionRepository
	list      cachedList[models.Section]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService constructs the section service.
func NewSectionService(repo sectionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{
		repo:      repo,
		list:      cachedList[models.Section]{cache: cache, key: sectionsKey, ttl: sectionTTL},
		validator: newValidator(validate),
		logger:    logger,
	}
}

// Load returns all sections.
func (s *SectionService) Load(ctx context.Context, force bool) ([]models.Section, error) {
	return s.list.load(ctx, force, s.repo.List)
}

// Cached returns the last stored list.
func (s *SectionService) Cached(ctx context.Context) ([]models.Section, bool) {
	return s.list.cached(ctx)
}

// CountByType counts sections per education level in parallel.
func (s *SectionService) CountByType(ctx context.Context) (map[string]int, error) {
	return countAll(ctx, SectionTypes, s.repo.CountByType)
}

// Create registers a section.
func (s *SectionService) Create(ctx context.Context, in models.SectionInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.Warn("create section failed", zap.Error(err))
		return mutationFailed(err, "could not create the section")
	}
	s.list.invalidate(ctx, sectionPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "section created"}
}

// Update modifies a section.
func (s *SectionService) Update(ctx context.Context, id int64, in models.SectionInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		s.logger.Warn("update section failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not update the section")
	}
	s.list.invalidate(ctx, sectionPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "section updated"}
}

// Delete removes a section.
func (s *SectionService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete section failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the section")
	}
	s.list.invalidate(ctx, sectionPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "section deleted"}
}
