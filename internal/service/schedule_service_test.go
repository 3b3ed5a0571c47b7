package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

type fakeScheduleRepo struct {
	slotCalls  map[string]int
	created    []models.TimeSlotInput
	availStart float64
	availEnd   float64
	availExcl  int64
	available  bool
}

func (f *fakeScheduleRepo) TimeSlots(_ context.Context, level string) ([]models.TimeSlot, error) {
	if f.slotCalls == nil {
		f.slotCalls = map[string]int{}
	}
	f.slotCalls[level]++
	return []models.TimeSlot{{ID: 1, Name: "First", EducationLevel: level, StartTime: 7, EndTime: 7.75}}, nil
}

func (f *fakeScheduleRepo) SectionSchedules(_ context.Context, sectionID int64) ([]models.Schedule, error) {
	return []models.Schedule{{ID: 1, SectionID: sectionID, DayOfWeek: "0"}}, nil
}

func (f *fakeScheduleRepo) CreateTimeSlot(_ context.Context, in models.TimeSlotInput) (int64, error) {
	f.created = append(f.created, in)
	return 12, nil
}

func (f *fakeScheduleRepo) DeleteTimeSlot(context.Context, int64) error { return nil }

func (f *fakeScheduleRepo) ProfessorAvailability(_ context.Context, _ int64, _ string, start, end float64, excludeID int64) (*models.ProfessorAvailability, error) {
	f.availStart, f.availEnd, f.availExcl = start, end, excludeID
	return &models.ProfessorAvailability{Available: f.available}, nil
}

func TestScheduleServiceTimeSlotsCachedPerLevel(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeScheduleRepo{}
	svc := NewScheduleService(repo, cache, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.TimeSlots(ctx, models.LevelPrimary, false)
		require.NoError(t, err)
	}
	_, err := svc.TimeSlots(ctx, models.LevelPre, false)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.slotCalls[models.LevelPrimary])
	assert.Equal(t, 1, repo.slotCalls[models.LevelPre])
	_, ok := svc.CachedTimeSlots(ctx, models.LevelSecundary)
	assert.False(t, ok)
}

func TestScheduleServiceCreateTimeSlot(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeScheduleRepo{}
	svc := NewScheduleService(repo, cache, nil, nil)
	ctx := context.Background()

	_, err := svc.SectionSchedules(ctx, 4, false)
	require.NoError(t, err)

	res := svc.CreateTimeSlot(ctx, models.TimeSlotInput{Name: " Second ", EducationLevel: models.LevelPrimary, StartTime: "08:00", EndTime: "07:30"})
	assert.False(t, res.Success)
	assert.Equal(t, "end time must be after start time", res.Message)

	res = svc.CreateTimeSlot(ctx, models.TimeSlotInput{Name: " Second ", EducationLevel: models.LevelPrimary, StartTime: "07:45", EndTime: "08:30"})
	require.True(t, res.Success, res.Message)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Second", repo.created[0].Name)

	_, ok := svc.CachedSectionSchedules(ctx, 4)
	assert.False(t, ok)
}

func TestScheduleServiceProfessorAvailabilityConvertsTimes(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeScheduleRepo{available: true}
	svc := NewScheduleService(repo, cache, nil, nil)

	got, err := svc.ProfessorAvailability(context.Background(), 9, "1", "08:30", "09:15", 0)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.InDelta(t, 8.5, repo.availStart, 1e-9)
	assert.InDelta(t, 9.25, repo.availEnd, 1e-9)
	assert.Zero(t, repo.availExcl)
}
