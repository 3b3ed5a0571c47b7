package liststore

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoToPageLocal(t *testing.T) {
	cfg := baseConfig(&fakeSource{items: years(12)})
	cfg.PageSize = 8
	store := New(cfg, newGate())
	store.Start(context.Background())

	ok, err := store.GoToPage(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, ok)

	state := store.Snapshot()
	assert.Equal(t, 2, state.CurrentPage)
	require.Len(t, state.Items, 4)
	assert.Equal(t, int64(9), state.Items[0].ID)
}

func TestGoToPageRejections(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig(&fakeSource{items: years(12)})
	cfg.PageSize = 8
	store := New(cfg, newGate())
	store.Start(ctx)

	for _, n := range []int{0, -1, 1, 3} {
		ok, err := store.GoToPage(ctx, n)
		require.NoError(t, err)
		assert.False(t, ok, "page %d", n)
	}

	store.ApplySearch(ctx, "2015")
	ok, _ := store.GoToPage(ctx, 2)
	assert.False(t, ok)

	unpaged := New(baseConfig(&fakeSource{items: years(12)}), newGate())
	unpaged.Start(ctx)
	ok, _ = unpaged.GoToPage(ctx, 2)
	assert.False(t, ok)
	assert.Len(t, unpaged.Snapshot().Items, 12)
}

func TestVisibleNeverExceedsPageSize(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 16, 17} {
		cfg := baseConfig(&fakeSource{items: years(n)})
		cfg.PageSize = 8
		store := New(cfg, newGate())
		store.Start(context.Background())

		state := store.Snapshot()
		for page := 1; page <= state.TotalPages; page++ {
			_, err := store.GoToPage(context.Background(), page)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(store.Snapshot().Items), 8)
		}
		assert.GreaterOrEqual(t, state.TotalPages, 1)
	}
}

func remotePagedSource() *fakeSource {
	all := years(20)
	return &fakeSource{
		pages:       map[int][]year{1: all[:8], 2: all[8:16], 3: all[16:]},
		cachedPages: map[int][]year{1: all[:8], 2: all[8:16]},
		total:       20,
	}
}

func TestGoToPageRemote(t *testing.T) {
	src := remotePagedSource()
	cfg := baseConfig(src)
	cfg.PageSize = 8
	cfg.RemotePaging = true
	store := New(cfg, newGate())
	store.Start(context.Background())

	assert.Equal(t, FetchRequest{Page: 1, PageSize: 8, Force: true}, src.lastCall())
	assert.Equal(t, 3, store.Snapshot().TotalPages)

	ok, err := store.GoToPage(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, ok)

	state := store.Snapshot()
	assert.Equal(t, 3, state.CurrentPage)
	assert.Len(t, state.Items, 4)
	assert.Equal(t, 20, state.Total)
	assert.Equal(t, 3, src.lastCall().Page)
}

func TestGoToPageRemoteOffline(t *testing.T) {
	src := remotePagedSource()
	gate := newGate()
	cfg := baseConfig(src)
	cfg.PageSize = 8
	cfg.RemotePaging = true
	store := New(cfg, gate)
	store.Start(context.Background())
	gate.setHealthy(false)

	ok, err := store.GoToPage(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, ok)
	state := store.Snapshot()
	assert.True(t, state.IsOfflineMode)
	assert.Equal(t, NoticeOfflineCached, state.Notice)
	assert.Equal(t, int64(9), state.Items[0].ID)

	ok, err = store.GoToPage(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	state = store.Snapshot()
	assert.Equal(t, 2, state.CurrentPage)
	assert.Equal(t, NoticeOfflinePageMissing, state.Notice)
	assert.Equal(t, int64(9), state.Items[0].ID)
}

func TestExitSearchRefetchesFirstRemotePage(t *testing.T) {
	src := remotePagedSource()
	cfg := baseConfig(src)
	cfg.PageSize = 8
	cfg.RemotePaging = true
	cfg.Match = nil
	cfg.Search = func(context.Context, string) ([]year, error) { return years(2), nil }
	store := New(cfg, newGate())
	store.Start(context.Background())
	_, err := store.GoToPage(context.Background(), 2)
	require.NoError(t, err)

	store.ApplySearch(context.Background(), "garcia")
	store.ExitSearchMode(context.Background())

	state := store.Snapshot()
	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, int64(1), state.Items[0].ID)
	assert.Equal(t, 1, src.lastCall().Page)
}

func TestRefreshClampsRemotePage(t *testing.T) {
	src := remotePagedSource()
	cfg := baseConfig(src)
	cfg.PageSize = 8
	cfg.RemotePaging = true
	store := New(cfg, newGate())
	store.Start(context.Background())
	_, err := store.GoToPage(context.Background(), 3)
	require.NoError(t, err)

	src.mu.Lock()
	src.total = 12
	src.pages = map[int][]year{1: years(8), 2: years(12)[8:]}
	src.mu.Unlock()
	store.Refresh(context.Background())

	state := store.Snapshot()
	assert.Equal(t, 2, state.CurrentPage)
	assert.Equal(t, 2, state.TotalPages)
	assert.Len(t, state.Items, 4)
}

func TestExitSearchOfflineResetsToEmptyFirstPage(t *testing.T) {
	src := remotePagedSource()
	src.cachedPages = map[int][]year{3: years(20)[16:]}
	gate := newGate()
	cfg := baseConfig(src)
	cfg.PageSize = 8
	cfg.RemotePaging = true
	cfg.Match = nil
	cfg.Search = func(context.Context, string) ([]year, error) { return years(2), nil }
	store := New(cfg, gate)
	store.Start(context.Background())
	_, err := store.GoToPage(context.Background(), 3)
	require.NoError(t, err)

	store.ApplySearch(context.Background(), "garcia")
	gate.setHealthy(false)
	store.ExitSearchMode(context.Background())

	state := store.Snapshot()
	assert.False(t, state.SearchMode)
	assert.Equal(t, 1, state.CurrentPage)
	assert.Empty(t, state.Items)
	assert.True(t, state.IsOfflineMode)
	assert.Equal(t, NoticeOfflinePageMissing, state.Notice)
}

func TestSearchKeepsLoadingWhilePageFetchRuns(t *testing.T) {
	src := remotePagedSource()
	var block atomic.Bool
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := SourceFunc[year](func(ctx context.Context, req FetchRequest) (Batch[year], error) {
		if block.Load() && req.Page == 2 && !req.Offline {
			close(started)
			<-release
		}
		return src.Fetch(ctx, req)
	})

	cfg := baseConfig(src)
	cfg.Source = blocking
	cfg.PageSize = 8
	cfg.RemotePaging = true
	cfg.Match = nil
	cfg.Search = func(context.Context, string) ([]year, error) { return years(1), nil }
	store := New(cfg, newGate())
	store.Start(context.Background())

	block.Store(true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.GoToPage(context.Background(), 2)
	}()
	<-started

	store.ApplySearch(context.Background(), "garcia")
	assert.True(t, store.Snapshot().Loading)

	close(release)
	<-done
	assert.False(t, store.Snapshot().Loading)
}
