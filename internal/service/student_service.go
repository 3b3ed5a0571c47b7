package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/internal/repository"
)

const (
	studentPrefix      = "students:"
	studentMetaKey     = studentPrefix + "pagination:meta"
	studentPageTTL     = 24 * time.Hour
	defaultSearchLimit = 50

	countTotal  = "total"
	countActive = "active"
)

func studentPageKey(page, size int) string {
	return fmt.Sprintf("%spage:%d:size:%d", studentPrefix, page, size)
}

type studentPageMeta struct {
	Total     int       `json:"total"`
	PageSize  int       `json:"page_size"`
	UpdatedAt time.Time `json:"updated_at"`
}

type studentRepository interface {
	Page(ctx context.Context, offset, limit int) ([]models.Student, error)
	Count(ctx context.Context, activeOnly bool) (int, error)
	Search(ctx context.Context, query string, limit int) ([]models.Student, error)
	Relations(ctx context.Context, id int64) (inscriptionIDs, parentIDs []int64, err error)
	Inscriptions(ctx context.Context, inscriptionIDs []int64) ([]repository.InscriptionState, error)
	DeleteScores(ctx context.Context, inscriptionIDs []int64) (int, error)
	DeleteInscriptions(ctx context.Context, inscriptionIDs []int64) error
	OrphanParents(ctx context.Context, parentIDs []int64, studentID int64) ([]int64, error)
	DeletePartners(ctx context.Context, partnerIDs []int64) error
}

// StudentService serves the paginated student directory and the student delete cascade.
type StudentService struct {
	repo        studentRepository
	cache       *CacheService
	searchLimit int
	logger      *zap.Logger
}

// NewStudentService constructs the student service. searchLimit caps global search results.
func NewStudentService(repo studentRepository, cache *CacheService, searchLimit int, logger *zap.Logger) *StudentService {
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, searchLimit: searchLimit, logger: logger}
}

// LoadPage fetches one page of students together with the total, caching both.
// Without force a cached page is served when present.
func (s *StudentService) LoadPage(ctx context.Context, page, pageSize int, force bool) (*models.StudentPage, error) {
	if page < 1 {
		page = 1
	}
	if !force {
		if cached, ok := s.CachedPage(ctx, page, pageSize); ok {
			return cached, nil
		}
	}

	var (
		students []models.Student
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = s.repo.Page(gctx, (page-1)*pageSize, pageSize)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &models.StudentPage{Students: students, Total: total, Page: page, PageSize: pageSize}
	_ = s.cache.Set(ctx, studentPageKey(page, pageSize), students, studentPageTTL)
	_ = s.cache.Set(ctx, studentMetaKey, studentPageMeta{Total: total, PageSize: pageSize, UpdatedAt: time.Now().UTC()}, studentPageTTL)
	return result, nil
}

// CachedPage returns a page previously stored by LoadPage.
func (s *StudentService) CachedPage(ctx context.Context, page, pageSize int) (*models.StudentPage, bool) {
	var students []models.Student
	if hit, err := s.cache.Get(ctx, studentPageKey(page, pageSize), &students); err != nil || !hit {
		return nil, false
	}
	var meta studentPageMeta
	if hit, err := s.cache.Get(ctx, studentMetaKey, &meta); err != nil || !hit {
		return nil, false
	}
	return &models.StudentPage{Students: students, Total: meta.Total, Page: page, PageSize: pageSize}, true
}

// Counts returns total and active student head counts.
func (s *StudentService) Counts(ctx context.Context) (models.StudentCounts, error) {
	counts, err := countAll(ctx, []string{countTotal, countActive}, func(ctx context.Context, key string) (int, error) {
		return s.repo.Count(ctx, key == countActive)
	})
	if err != nil {
		return models.StudentCounts{}, err
	}
	return models.StudentCounts{Total: counts[countTotal], Active: counts[countActive]}, nil
}

// Search runs a global search by name or identity document.
func (s *StudentService) Search(ctx context.Context, query string) ([]models.Student, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Student{}, nil
	}
	return s.repo.Search(ctx, query, s.searchLimit)
}

// CanDelete refuses students that still have confirmed inscriptions.
func (s *StudentService) CanDelete(ctx context.Context, id int64) (models.DeleteValidation, error) {
	inscriptionIDs, _, err := s.repo.Relations(ctx, id)
	if err != nil {
		return models.DeleteValidation{}, err
	}
	blocked, err := s.confirmedInscriptions(ctx, inscriptionIDs)
	if err != nil {
		return models.DeleteValidation{}, err
	}
	if len(blocked) > 0 {
		return models.DeleteValidation{Message: blockedStudentMessage(blocked)}, nil
	}
	return models.DeleteValidation{CanDelete: true}, nil
}

// Delete removes a student along with its scores, draft inscriptions and
// any parent left without other students.
func (s *StudentService) Delete(ctx context.Context, id int64) models.MutationResult {
	inscriptionIDs, parentIDs, err := s.repo.Relations(ctx, id)
	if err != nil {
		return s.deleteFailed(id, err)
	}
	blocked, err := s.confirmedInscriptions(ctx, inscriptionIDs)
	if err != nil {
		return s.deleteFailed(id, err)
	}
	if len(blocked) > 0 {
		return models.MutationResult{Message: blockedStudentMessage(blocked)}
	}

	scores, err := s.repo.DeleteScores(ctx, inscriptionIDs)
	if err != nil {
		return s.deleteFailed(id, err)
	}
	if err := s.repo.DeleteInscriptions(ctx, inscriptionIDs); err != nil {
		return s.deleteFailed(id, err)
	}
	orphans, err := s.repo.OrphanParents(ctx, parentIDs, id)
	if err != nil {
		return s.deleteFailed(id, err)
	}
	if err := s.repo.DeletePartners(ctx, orphans); err != nil {
		return s.deleteFailed(id, err)
	}
	if err := s.repo.DeletePartners(ctx, []int64{id}); err != nil {
		return s.deleteFailed(id, err)
	}

	s.logger.Info("student deleted",
		zap.Int64("id", id),
		zap.Int("scores", scores),
		zap.Int("inscriptions", len(inscriptionIDs)),
		zap.Int("parents", len(orphans)),
	)
	_ = s.cache.Invalidate(ctx, studentPrefix)
	return models.MutationResult{Success: true, ID: id, Message: "student deleted"}
}

func (s *StudentService) confirmedInscriptions(ctx context.Context, inscriptionIDs []int64) ([]string, error) {
	inscriptions, err := s.repo.Inscriptions(ctx, inscriptionIDs)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ins := range inscriptions {
		if ins.State == models.EnrollmentStateDone {
			names = append(names, ins.Name)
		}
	}
	return names, nil
}

func (s *StudentService) deleteFailed(id int64, err error) models.MutationResult {
	s.logger.Warn("delete student failed", zap.Int64("id", id), zap.Error(err))
	return mutationFailed(err, "could not delete the student")
}

func blockedStudentMessage(names []string) string {
	return fmt.Sprintf("the student has %d confirmed inscription(s) and cannot be deleted: %s", len(names), strings.Join(names, ", "))
}
