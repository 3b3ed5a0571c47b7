package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

type fakeEnrollmentRepo struct {
	items      []models.StudentEnrollment
	counts     map[string]int
	countErr   error
	confirmErr error
	confirmed  []int64
}

func (f *fakeEnrollmentRepo) ListCurrent(context.Context) ([]models.StudentEnrollment, error) {
	return f.items, nil
}

func (f *fakeEnrollmentRepo) CountByState(_ context.Context, state string) (int, error) {
	if f.countErr != nil && state == models.EnrollmentStateCancel {
		return 0, f.countErr
	}
	return f.counts[state], nil
}

func (f *fakeEnrollmentRepo) Create(context.Context, models.EnrollmentInput) (int64, error) {
	return 31, nil
}

func (f *fakeEnrollmentRepo) Confirm(_ context.Context, id int64) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, id)
	return nil
}

func (f *fakeEnrollmentRepo) Delete(context.Context, int64) error { return nil }

func TestEnrollmentServiceCountByState(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeEnrollmentRepo{counts: map[string]int{"draft": 4, "done": 20, "cancel": 1}}
	svc := NewEnrollmentService(repo, cache, nil, nil)

	counts, err := svc.CountByState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"draft": 4, "done": 20, "cancel": 1}, counts)

	repo.countErr = errors.New("boom")
	_, err = svc.CountByState(context.Background())
	assert.Error(t, err)
}

func TestEnrollmentServiceConfirmInvalidatesCache(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeEnrollmentRepo{items: []models.StudentEnrollment{{ID: 3, State: models.EnrollmentStateDraft}}}
	svc := NewEnrollmentService(repo, cache, nil, nil)
	ctx := context.Background()

	_, err := svc.Load(ctx, false)
	require.NoError(t, err)

	res := svc.Confirm(ctx, 3)
	require.True(t, res.Success)
	assert.Equal(t, []int64{3}, repo.confirmed)
	_, ok := svc.Cached(ctx)
	assert.False(t, ok)
}

func TestEnrollmentServiceConfirmFailure(t *testing.T) {
	cache, _ := newTestCache(t)
	svc := NewEnrollmentService(&fakeEnrollmentRepo{confirmErr: userErr("The section is full")}, cache, nil, nil)

	res := svc.Confirm(context.Background(), 3)
	assert.False(t, res.Success)
	assert.Equal(t, "The section is full", res.Message)
}

func TestEnrollmentServiceCanDeleteOnlyDrafts(t *testing.T) {
	cache, _ := newTestCache(t)
	svc := NewEnrollmentService(&fakeEnrollmentRepo{}, cache, nil, nil)

	assert.True(t, svc.CanDelete(models.StudentEnrollment{State: models.EnrollmentStateDraft}).CanDelete)
	blocked := svc.CanDelete(models.StudentEnrollment{State: models.EnrollmentStateDone})
	assert.False(t, blocked.CanDelete)
	assert.NotEmpty(t, blocked.Message)
}
