package liststore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

func TestStartLoadsAndPaginatesLocally(t *testing.T) {
	src := &fakeSource{items: years(12)}
	obs := &recordingObserver{}
	cfg := baseConfig(src)
	cfg.PageSize = 8
	store := New(cfg, newGate(), WithObserver[year](obs))

	assert.True(t, store.Snapshot().InitialLoading)
	store.Start(context.Background())

	state := store.Snapshot()
	assert.False(t, state.InitialLoading)
	assert.False(t, state.Loading)
	assert.Equal(t, 12, state.Total)
	assert.Equal(t, 2, state.TotalPages)
	assert.Equal(t, 1, state.CurrentPage)
	require.Len(t, state.Items, 8)
	assert.True(t, state.Items[0].Current)
	assert.False(t, state.IsOfflineMode)
	assert.True(t, src.lastCall().Force)
	assert.Equal(t, []string{OutcomeOnline}, obs.outcomes)
}

func TestStartIsIdempotent(t *testing.T) {
	src := &fakeSource{items: years(3)}
	store := New(baseConfig(src), newGate())

	store.Start(context.Background())
	store.Start(context.Background())

	assert.Equal(t, 1, src.onlineCalls())
}

func TestStartOfflineServesCache(t *testing.T) {
	t.Run("cached data", func(t *testing.T) {
		src := &fakeSource{items: years(5), cached: years(3)}
		gate := newGate()
		gate.healthy = false
		store := New(baseConfig(src), gate)

		store.Start(context.Background())

		state := store.Snapshot()
		assert.True(t, state.IsOfflineMode)
		assert.Len(t, state.Items, 3)
		assert.Equal(t, NoticeOfflineCached, state.Notice)
		assert.Zero(t, src.onlineCalls())
	})

	t.Run("nothing cached", func(t *testing.T) {
		src := &fakeSource{items: years(5)}
		gate := newGate()
		gate.healthy = false
		obs := &recordingObserver{}
		store := New(baseConfig(src), gate, WithObserver[year](obs))

		store.Start(context.Background())

		state := store.Snapshot()
		assert.True(t, state.IsOfflineMode)
		assert.Empty(t, state.Items)
		assert.NotNil(t, state.Items)
		assert.Equal(t, NoticeOfflineNoData, state.Notice)
		assert.False(t, state.InitialLoading)
		assert.Equal(t, []string{OutcomeOfflineEmpty}, obs.outcomes)
	})
}

func TestStartFetchErrorFallsBackToCache(t *testing.T) {
	src := &fakeSource{err: errors.New("boom"), cached: years(2)}
	obs := &recordingObserver{}
	store := New(baseConfig(src), newGate(), WithObserver[year](obs))

	store.Start(context.Background())

	state := store.Snapshot()
	assert.True(t, state.IsOfflineMode)
	assert.Len(t, state.Items, 2)
	assert.Equal(t, []string{OutcomeError, OutcomeOfflineCache}, obs.outcomes)
}

func TestStartWithoutSessionAbortsSilently(t *testing.T) {
	src := &fakeSource{items: years(3)}
	gate := newGate()
	gate.session = nil
	store := New(baseConfig(src), gate)

	store.Start(context.Background())

	state := store.Snapshot()
	assert.Empty(t, state.Items)
	assert.False(t, state.IsOfflineMode)
	assert.False(t, state.InitialLoading)
	assert.Zero(t, src.onlineCalls())
}

func TestRefreshOfflineKeepsData(t *testing.T) {
	src := &fakeSource{items: years(5)}
	gate := newGate()
	store := New(baseConfig(src), gate)
	store.Start(context.Background())

	gate.setHealthy(false)
	store.Refresh(context.Background())

	state := store.Snapshot()
	assert.True(t, state.IsOfflineMode)
	assert.Len(t, state.Items, 5)
	assert.False(t, state.Refreshing)
	assert.Equal(t, 1, src.onlineCalls())
}

func TestRefreshErrorWithEmptyCacheKeepsData(t *testing.T) {
	src := &fakeSource{items: years(4)}
	store := New(baseConfig(src), newGate())
	store.Start(context.Background())

	src.mu.Lock()
	src.err = errors.New("timeout")
	src.mu.Unlock()
	store.Refresh(context.Background())

	state := store.Snapshot()
	assert.True(t, state.IsOfflineMode)
	assert.Len(t, state.Items, 4)
}

func TestRefreshBackOnlineClearsOfflineMode(t *testing.T) {
	src := &fakeSource{items: years(2), cached: years(1)}
	gate := newGate()
	gate.healthy = false
	store := New(baseConfig(src), gate)
	store.Start(context.Background())
	require.True(t, store.Snapshot().IsOfflineMode)

	gate.setHealthy(true)
	store.Refresh(context.Background())

	state := store.Snapshot()
	assert.False(t, state.IsOfflineMode)
	assert.Empty(t, state.Notice)
	assert.Len(t, state.Items, 2)
}

type blockingSource struct {
	fakeSource
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	first   []year
}

func (b *blockingSource) Fetch(ctx context.Context, req FetchRequest) (Batch[year], error) {
	blocked := false
	b.once.Do(func() { blocked = true })
	if blocked {
		close(b.entered)
		<-b.release
		return Batch[year]{Items: b.first}, nil
	}
	return b.fakeSource.Fetch(ctx, req)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	src := &blockingSource{
		fakeSource: fakeSource{items: years(2)},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
		first:      years(9),
	}
	store := New(baseConfig(src), newGate())

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Start(context.Background())
	}()
	<-src.entered

	store.Refresh(context.Background())
	close(src.release)
	<-done

	assert.Len(t, store.Snapshot().Items, 2)
}

func TestClassifyDerivesCounts(t *testing.T) {
	items := years(4)
	items[0].State = "done"
	src := &fakeSource{items: items}
	cfg := baseConfig(src)
	cfg.Classify = func(y year) string { return y.State }
	store := New(cfg, newGate())

	store.Start(context.Background())

	assert.Equal(t, map[string]int{"done": 1, "draft": 3}, store.Snapshot().CountByState)
}

func TestClassifyKeepsCountKeys(t *testing.T) {
	src := &fakeSource{cached: years(2)}
	gate := newGate()
	gate.setHealthy(false)
	cfg := baseConfig(src)
	cfg.Classify = func(y year) string { return y.State }
	cfg.CountKeys = []string{"draft", "done", "cancel"}
	store := New(cfg, gate)

	store.Start(context.Background())

	assert.Equal(t, map[string]int{"draft": 2, "done": 0, "cancel": 0}, store.Snapshot().CountByState)
}

func TestDeleteRemovesItemAndRefreshes(t *testing.T) {
	src := &fakeSource{items: years(3)}
	cfg := baseConfig(src)
	var deleted []int64
	cfg.Delete = func(_ context.Context, id int64) models.MutationResult {
		deleted = append(deleted, id)
		src.mu.Lock()
		src.items = src.items[1:]
		src.mu.Unlock()
		return models.MutationResult{Success: true}
	}
	store := New(cfg, newGate())
	store.Start(context.Background())

	require.NoError(t, store.Delete(context.Background(), 1))

	state := store.Snapshot()
	assert.Equal(t, []int64{1}, deleted)
	assert.Equal(t, 2, state.Total)
	for _, item := range state.Items {
		assert.NotEqual(t, int64(1), item.ID)
	}
	assert.Equal(t, 2, src.onlineCalls())
}

func TestDeleteFailures(t *testing.T) {
	src := &fakeSource{items: years(3)}

	t.Run("rejected", func(t *testing.T) {
		cfg := baseConfig(src)
		cfg.Delete = func(context.Context, int64) models.MutationResult {
			return models.MutationResult{Message: "the year has evaluations"}
		}
		store := New(cfg, newGate())
		store.Start(context.Background())

		err := store.Delete(context.Background(), 2)
		require.True(t, errors.Is(err, appErrors.ErrBlocked))
		assert.Equal(t, "the year has evaluations", appErrors.FromError(err).Message)
		assert.Len(t, store.Snapshot().Items, 3)
	})

	t.Run("session expired", func(t *testing.T) {
		cfg := baseConfig(src)
		cfg.Delete = func(context.Context, int64) models.MutationResult {
			return models.MutationResult{Message: "session expired", SessionExpired: true}
		}
		store := New(cfg, newGate())
		err := store.Delete(context.Background(), 2)
		assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
	})

	t.Run("unsupported", func(t *testing.T) {
		store := New(baseConfig(src), newGate())
		assert.True(t, errors.Is(store.Delete(context.Background(), 2), appErrors.ErrUnsupported))
	})
}

func TestConfirmRefreshes(t *testing.T) {
	src := &fakeSource{items: years(2)}
	cfg := baseConfig(src)
	cfg.Confirm = func(context.Context, int64) models.MutationResult {
		src.mu.Lock()
		src.items[0].State = "done"
		src.mu.Unlock()
		return models.MutationResult{Success: true}
	}
	store := New(cfg, newGate())
	store.Start(context.Background())

	require.NoError(t, store.Confirm(context.Background(), 1))

	assert.Equal(t, "done", store.Snapshot().Items[0].State)
	assert.Equal(t, 2, src.onlineCalls())
}

func TestListenerReceivesSnapshots(t *testing.T) {
	src := &fakeSource{items: years(2)}
	var mu sync.Mutex
	var seen []State[year]
	store := New(baseConfig(src), newGate(), WithListener(func(s State[year]) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))

	store.Start(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.True(t, seen[0].Loading)
	last := seen[len(seen)-1]
	assert.False(t, last.Loading)
	assert.Len(t, last.Items, 2)
}

func TestClosedStoreRejectsWork(t *testing.T) {
	src := &fakeSource{items: years(2)}
	cfg := baseConfig(src)
	cfg.PageSize = 1
	store := New(cfg, newGate())
	store.Close()
	store.Close()

	store.Start(context.Background())
	assert.Zero(t, src.onlineCalls())
	_, err := store.GoToPage(context.Background(), 2)
	assert.ErrorIs(t, err, ErrClosed)
}
