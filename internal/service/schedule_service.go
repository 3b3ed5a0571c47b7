package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const (
	schedulePrefix  = "schedule:"
	timeSlotTTL     = 30 * time.Minute
	weeklyTTL       = 5 * time.Minute
	allLevelsSuffix = "all"
)

type scheduleRepository interface {
	TimeSlots(ctx context.Context, level string) ([]models.TimeSlot, error)
	SectionSchedules(ctx context.Context, sectionID int64) ([]models.Schedule, error)
	CreateTimeSlot(ctx context.Context, in models.TimeSlotInput) (int64, error)
	DeleteTimeSlot(ctx context.Context, id int64) error
	ProfessorAvailability(ctx context.Context, professorID int64, day string, start, end float64, excludeID int64) (*models.ProfessorAvailability, error)
}

// ScheduleService serves time slots and weekly section timetables.
type ScheduleService struct {
	repo      scheduleRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(repo scheduleRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, cache: cache, validator: newValidator(validate), logger: logger}
}

func (s *ScheduleService) slots(level string) cachedList[models.TimeSlot] {
	if level == "" {
		level = allLevelsSuffix
	}
	return cachedList[models.TimeSlot]{cache: s.cache, key: schedulePrefix + "timeslots:" + level, ttl: timeSlotTTL}
}

func (s *ScheduleService) weekly(sectionID int64) cachedList[models.Schedule] {
	return cachedList[models.Schedule]{cache: s.cache, key: fmt.Sprintf("%sweekly:%d", schedulePrefix, sectionID), ttl: weeklyTTL}
}

// TimeSlots returns active slots of a level; an empty level returns every level.
func (s *ScheduleService) TimeSlots(ctx context.Context, level string, force bool) ([]models.TimeSlot, error) {
	return s.slots(level).load(ctx, force, func(ctx context.Context) ([]models.TimeSlot, error) {
		return s.repo.TimeSlots(ctx, level)
	})
}

// CachedTimeSlots returns stored slots of a level.
func (s *ScheduleService) CachedTimeSlots(ctx context.Context, level string) ([]models.TimeSlot, bool) {
	return s.slots(level).cached(ctx)
}

// SectionSchedules returns the weekly timetable of a section.
func (s *ScheduleService) SectionSchedules(ctx context.Context, sectionID int64, force bool) ([]models.Schedule, error) {
	return s.weekly(sectionID).load(ctx, force, func(ctx context.Context) ([]models.Schedule, error) {
		return s.repo.SectionSchedules(ctx, sectionID)
	})
}

// CachedSectionSchedules returns the stored timetable of a section.
func (s *ScheduleService) CachedSectionSchedules(ctx context.Context, sectionID int64) ([]models.Schedule, bool) {
	return s.weekly(sectionID).cached(ctx)
}

// CreateTimeSlot registers a slot; the end must come after the start.
func (s *ScheduleService) CreateTimeSlot(ctx context.Context, in models.TimeSlotInput) models.MutationResult {
	if err := s.validator.Struct(in); err != nil {
		return invalidPayload(err)
	}
	if odoo.TimeStringToFloat(in.EndTime) <= odoo.TimeStringToFloat(in.StartTime) {
		return models.MutationResult{Message: "end time must be after start time"}
	}
	in.Name = strings.TrimSpace(in.Name)
	id, err := s.repo.CreateTimeSlot(ctx, in)
	if err != nil {
		s.logger.Warn("create time slot failed", zap.String("name", in.Name), zap.Error(err))
		return mutationFailed(err, "could not create the time slot")
	}
	_ = s.cache.Invalidate(ctx, schedulePrefix)
	return models.MutationResult{Success: true, ID: id, Message: "time slot created"}
}

// DeleteTimeSlot removes a slot.
func (s *ScheduleService) DeleteTimeSlot(ctx context.Context, id int64) models.MutationResult {
	if err := s.repo.DeleteTimeSlot(ctx, id); err != nil {
		s.logger.Warn("delete time slot failed", zap.Int64("id", id), zap.Error(err))
		return mutationFailed(err, "could not delete the time slot")
	}
	_ = s.cache.Invalidate(ctx, schedulePrefix)
	return models.MutationResult{Success: true, ID: id, Message: "time slot deleted"}
}

// ProfessorAvailability checks a professor against a day and "HH:MM" window.
// excludeID skips one schedule, typically the one being edited.
func (s *ScheduleService) ProfessorAvailability(ctx context.Context, professorID int64, day, start, end string, excludeID int64) (*models.ProfessorAvailability, error) {
	return s.repo.ProfessorAvailability(ctx, professorID, day, odoo.TimeStringToFloat(start), odoo.TimeStringToFloat(end), excludeID)
}
