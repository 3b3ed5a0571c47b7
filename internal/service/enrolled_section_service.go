package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	enrolledSectionPrefix = "enrolled_sections:"
	enrolledSectionsKey   = enrolledSectionPrefix + "current"
	enrolledSectionTTL    = 5 * time.Minute
)

type enrolledSectionRepository interface {
	ListCurrent(ctx context.Context) ([]models.EnrolledSection, error)
	CountByType(ctx context.Context, sectionType string) (int, error)
	Create(ctx context.Context, in models.EnrolledSectionInput) (int64, error)
	Update(ctx context.Context, id int64, in models.EnrolledSectionUpdate) error
	Delete(ctx context.Context, id int64) error
}

// EnrolledSectionService handles the sections opened in the current year.
type EnrolledSectionService struct {
	repo      enrolledSectionRepository
	list      cachedList[models.EnrolledSection]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrolledSectionService constructs the enrolled section service.
func NewEnrolledSectionService(repo enrolledSectionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrolledSectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrolledSectionService{
		repo:      repo,
		list:      cachedList[models.EnrolledSection]{cache: cache, key: enrolledSectionsKey, ttl: enrolledSectionTTL},
		validator: newValidator(validate),
		logger:    logger,
	}
}

// Load returns the current year's sections.
func (s *EnrolledSectionService) Load(ctx context.Context, force bool) ([]models.EnrolledSection, error) {
	return s.list.load(ctx, force, s.repo.ListCurrent)
}

// Cached returns the last stored list.
func (s *EnrolledSectionService) Cached(ctx context.Context) ([]models.EnrolledSection, bool) {
	return s.list.cached(ctx)
}

// CountByType counts current sections per education level in parallel.
func (s *EnrolledSectionService) CountByType(ctx context.Context) (map[string]int, error) {
	return countAll(ctx, SectionTypes, s.repo.CountByType)
}

// Create opens a section for a year.
func (s *EnrolledSectionService) Create(ctx context.Context, in models.EnrolledSectionInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.Warn("enroll section failed", zap.Int64("section_id", in.SectionID), zap.Error(err))
		return mutationFailed(err, "could not enroll the section")
	}
	s.list.invalidate(ctx, enrolledSectionPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "section enrolled"}
}

// Update replaces the professors of an enrolled section.
func (s *EnrolledSectionService) Update(ctx context.Context, id int64, in models.EnrolledSectionUpdate) models.MutationResult {
	if err := s.repo.Update(ctx, id, in); err != nil {
		s.logger.Warn("update enrolled section failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not update the section")
	}
	s.list.invalidate(ctx, enrolledSectionPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "section updated"}
}

// Delete removes an enrolled section.
func (s *EnrolledSectionService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete enrolled section failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the section")
	}
	s.list.invalidate(ctx, enrolledSectionPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "section deleted"}
}
