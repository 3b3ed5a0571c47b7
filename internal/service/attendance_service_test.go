package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

type fakeAttendanceRepo struct {
	byDate  map[string][]models.AttendanceRecord
	created []models.BulkStudentAttendance
	err     error
}

func (f *fakeAttendanceRepo) ListByDate(_ context.Context, date string) ([]models.AttendanceRecord, error) {
	return f.byDate[date], nil
}

func (f *fakeAttendanceRepo) CreateForSchedule(_ context.Context, in models.BulkStudentAttendance) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	ids := make([]int64, len(in.Students))
	for i := range in.Students {
		ids[i] = int64(100 + i)
	}
	return ids, nil
}

func (f *fakeAttendanceRepo) Delete(context.Context, int64) error { return nil }

func TestAttendanceServiceCachesPerDate(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeAttendanceRepo{byDate: map[string][]models.AttendanceRecord{
		"2024-10-01": {{ID: 1, State: models.AttendancePresent}},
	}}
	svc := NewAttendanceService(repo, cache, nil, nil)
	ctx := context.Background()

	records, err := svc.LoadByDate(ctx, "2024-10-01", false)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, ok := svc.CachedByDate(ctx, "2024-10-01")
	assert.True(t, ok)
	_, ok = svc.CachedByDate(ctx, "2024-10-02")
	assert.False(t, ok)
}

func TestAttendanceServiceRegisterBulk(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeAttendanceRepo{byDate: map[string][]models.AttendanceRecord{
		"2024-10-01": {{ID: 1, State: models.AttendancePresent}},
	}}
	svc := NewAttendanceService(repo, cache, nil, nil)
	ctx := context.Background()
	_, err := svc.LoadByDate(ctx, "2024-10-01", false)
	require.NoError(t, err)

	res := svc.RegisterBulk(ctx, models.BulkStudentAttendance{
		ScheduleID: 7,
		Date:       "2024-10-01",
		Students: []models.StudentAttendanceRow{
			{StudentID: 1, State: models.AttendancePresent, CheckInTime: 7.5},
			{StudentID: 2, State: models.AttendanceLate, CheckInTime: 8},
		},
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []int64{100, 101}, res.IDs)
	require.Len(t, repo.created, 1)

	_, ok := svc.CachedByDate(ctx, "2024-10-01")
	assert.False(t, ok)
}

func TestAttendanceServiceRegisterBulkValidation(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceService(repo, cache, nil, nil)

	res := svc.RegisterBulk(context.Background(), models.BulkStudentAttendance{
		ScheduleID: 7,
		Date:       "01/10/2024",
		Students:   []models.StudentAttendanceRow{{StudentID: 1, State: "sleeping"}},
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "date (datetime)")
	assert.Contains(t, res.Message, "state (oneof)")
	assert.Empty(t, repo.created)
}
