package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	attendancePrefix = "attendance:"
	attendanceTTL    = 2 * time.Minute
)

type attendanceRepository interface {
	ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error)
	CreateForSchedule(ctx context.Context, in models.BulkStudentAttendance) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}

// AttendanceService reads daily attendance and registers whole classes at once.
type AttendanceService struct {
	repo      attendanceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, validator: newValidator(validate), logger: logger}
}

func (s *AttendanceService) day(date string) cachedList[models.AttendanceRecord] {
	return cachedList[models.AttendanceRecord]{cache: s.cache, key: attendancePrefix + "date:" + date, ttl: attendanceTTL}
}

// LoadByDate returns the attendance of one day ("2006-01-02").
func (s *AttendanceService) LoadByDate(ctx context.Context, date string, force bool) ([]models.AttendanceRecord, error) {
	return s.day(date).load(ctx, force, func(ctx context.Context) ([]models.AttendanceRecord, error) {
		return s.repo.ListByDate(ctx, date)
	})
}

// CachedByDate returns the stored attendance of one day.
func (s *AttendanceService) CachedByDate(ctx context.Context, date string) ([]models.AttendanceRecord, bool) {
	return s.day(date).cached(ctx)
}

// RegisterBulk creates one attendance per student of a schedule slot in a single call.
func (s *AttendanceService) RegisterBulk(ctx context.Context, in models.BulkStudentAttendance) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	ids, err := s.repo.CreateForSchedule(ctx, in)
	if err != nil {
		s.logger.Warn("bulk attendance failed",
			zap.Int64("schedule_id", in.ScheduleID),
			zap.String("date", in.Date),
			zap.Error(err),
		)
		return mutationFailed(err, "could not register the attendance")
	}
	_ = s.cache.Invalidate(ctx, attendancePrefix)
	s.logger.Info("bulk attendance registered", zap.Int64("schedule_id", in.ScheduleID), zap.Int("records", len(ids)))
	return models.MutationResult{Success: true, IDs: ids, Message: "attendance registered"}
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete attendance failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the attendance")
	}
	_ = s.cache.Invalidate(ctx, attendancePrefix)
	return models.MutationResult{Success: true, ID: id, Message: "attendance deleted"}
}
