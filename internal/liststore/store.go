package liststore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

// Store is a generic, offline-aware remote list. It is safe for concurrent use:
// state changes happen under one mutex and network calls happen outside it.
type Store[T any] struct {
	cfg       Config[T]
	gate      Gate
	logger    *zap.Logger
	observer  LoadObserver
	afterFunc AfterFunc
	listener  func(State[T])

	base   context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	started        bool
	closed         bool
	all            []T
	visible        []T
	total          int
	counts         map[string]int
	currentPage    int
	loading        bool
	inflight       int
	initialLoading bool
	refreshing     bool
	searchQuery    string
	searchMode     bool
	appliedQuery   string
	searchApplied  bool
	offline        bool
	loadNotice     string
	notice         string
	loadGen        uint64
	searchGen      uint64
	debounce       Timer
}

// New builds a store. Nothing is fetched until Start.
func New[T any](cfg Config[T], gate Gate, opts ...Option[T]) *Store[T] {
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = defaultMinQueryLength
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.PageSize < 0 {
		cfg.PageSize = 0
	}
	base, cancel := context.WithCancel(context.Background())
	s := &Store[T]{
		cfg:            cfg,
		gate:           gate,
		logger:         zap.NewNop(),
		afterFunc:      realAfterFunc,
		base:           base,
		cancel:         cancel,
		all:            []T{},
		visible:        []T{},
		currentPage:    1,
		initialLoading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("store", cfg.Name))
	return s
}

// Name returns the configured store name.
func (s *Store[T]) Name() string { return s.cfg.Name }

// Start performs the initial load. Calling it again is a no-op.
func (s *Store[T]) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.beginLoadingLocked()
	s.mu.Unlock()
	s.emit()

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	defer func() {
		s.mu.Lock()
		s.endLoadingLocked()
		s.initialLoading = false
		s.mu.Unlock()
		s.emit()
	}()
	s.load(ctx, false)
}

// Refresh reloads from the server. When the server is unreachable the
// current data is kept and the store only flips to offline mode.
func (s *Store[T]) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.mu.Unlock()
	s.emit()

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
		s.emit()
	}()
	if s.load(ctx, true) {
		s.reapplyMode(ctx)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Loaded returns a copy of every loaded item, ignoring search and local paging.
func (s *Store[T]) Loaded() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.all))
	copy(out, s.all)
	return out
}

// Close cancels the pending debounce and discards in-flight results.
func (s *Store[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopDebounceLocked()
	s.searchGen++
	s.loadGen++
	s.mu.Unlock()
	s.cancel()
}

// Delete removes an item on the server, splices it out locally and refreshes.
func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	if s.cfg.Delete == nil {
		return appErrors.ErrUnsupported
	}
	if s.isClosed() {
		return ErrClosed
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if res := s.cfg.Delete(ctx, id); !res.Success {
		return mutationError(res.Message, res.SessionExpired)
	}

	s.mu.Lock()
	s.all = s.without(s.all, id)
	s.visible = s.without(s.visible, id)
	if s.cfg.RemotePaging {
		if s.total > 0 {
			s.total--
		}
	} else {
		s.total = len(s.all)
	}
	if s.cfg.Classify != nil {
		s.counts = countBy(s.all, s.cfg.Classify, s.cfg.CountKeys)
	}
	s.recompute()
	s.mu.Unlock()
	s.emit()

	s.Refresh(ctx)
	return nil
}

// Confirm runs the confirmation workflow of an item and refreshes.
func (s *Store[T]) Confirm(ctx context.Context, id int64) error {
	if s.cfg.Confirm == nil {
		return appErrors.ErrUnsupported
	}
	if s.isClosed() {
		return ErrClosed
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if res := s.cfg.Confirm(ctx, id); !res.Success {
		return mutationError(res.Message, res.SessionExpired)
	}
	s.Refresh(ctx)
	return nil
}

// load runs health check, session check and fetch. It reports whether fresh
// server data was applied.
func (s *Store[T]) load(ctx context.Context, refresh bool) bool {
	gen := s.nextLoadGen()
	page := s.requestPage()

	if !s.gate.CheckServerHealth(ctx).OK {
		if refresh {
			s.setOffline()
			return false
		}
		s.loadCached(ctx, gen, page, false)
		return false
	}
	if !s.sessionValid(ctx) {
		return false
	}

	batch, err := s.cfg.Source.Fetch(ctx, FetchRequest{Page: page, PageSize: s.cfg.PageSize, Force: true})
	if err != nil {
		s.logger.Warn("list load failed, using cache", zap.Error(err))
		s.observe(OutcomeError)
		s.loadCached(ctx, gen, page, refresh)
		return false
	}
	if !s.apply(gen, batch, page, false) {
		return false
	}
	s.observe(OutcomeOnline)
	return true
}

// loadCached serves the cached copy. With keep set an empty cache leaves the
// current data in place.
func (s *Store[T]) loadCached(ctx context.Context, gen uint64, page int, keep bool) {
	batch, err := s.cfg.Source.Fetch(ctx, FetchRequest{Page: page, PageSize: s.cfg.PageSize, Offline: true})
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.Error(err))
		}
		batch = Batch[T]{}
	}
	if len(batch.Items) == 0 {
		s.observe(OutcomeOfflineEmpty)
		if keep {
			s.setOffline()
			return
		}
	} else {
		s.observe(OutcomeOfflineCache)
	}
	s.apply(gen, batch, page, true)
}

// apply installs a batch unless a newer load has started since gen was taken.
func (s *Store[T]) apply(gen uint64, batch Batch[T], page int, offline bool) bool {
	s.mu.Lock()
	if gen != s.loadGen || s.closed {
		s.mu.Unlock()
		s.logger.Debug("discarding stale load", zap.Uint64("generation", gen))
		return false
	}
	items := batch.Items
	if items == nil {
		items = []T{}
	}
	s.all = items
	if s.cfg.RemotePaging {
		s.total = batch.Total
		if page > 0 {
			s.currentPage = page
		}
	} else {
		s.total = len(items)
	}
	switch {
	case batch.Counts != nil:
		s.counts = cloneCounts(batch.Counts)
	case s.cfg.Classify != nil:
		s.counts = countBy(items, s.cfg.Classify, s.cfg.CountKeys)
	}
	s.offline = offline
	s.loadNotice = ""
	if offline {
		s.loadNotice = NoticeOfflineNoData
		if len(items) > 0 {
			s.loadNotice = NoticeOfflineCached
		}
	}
	s.notice = s.loadNotice
	s.recompute()
	s.mu.Unlock()
	s.emit()
	return true
}

// reapplyMode re-runs a remote search and clamps a remote page after a refresh.
func (s *Store[T]) reapplyMode(ctx context.Context) {
	s.mu.Lock()
	rerun := s.searchMode && s.searchApplied && s.cfg.Match == nil
	query, gen := s.appliedQuery, s.searchGen
	clampTo := 0
	if s.cfg.RemotePaging && !s.searchMode {
		if pages := totalPages(s.total, s.cfg.PageSize); s.currentPage > pages {
			clampTo = pages
		}
	}
	s.mu.Unlock()

	if rerun {
		s.runSearch(ctx, query, gen)
	}
	if clampTo > 0 {
		s.fetchPage(ctx, clampTo)
	}
}

// recompute rebuilds visible from all for the current mode. Caller holds mu.
func (s *Store[T]) recompute() {
	localPaging := s.cfg.PageSize > 0 && !s.cfg.RemotePaging
	if localPaging {
		if pages := totalPages(len(s.all), s.cfg.PageSize); s.currentPage > pages {
			s.currentPage = pages
		}
		if s.currentPage < 1 {
			s.currentPage = 1
		}
	}
	if s.searchMode {
		if s.searchApplied && s.cfg.Match != nil {
			s.visible = s.filter(s.appliedQuery)
		}
		return
	}
	if localPaging {
		s.visible = pageSlice(s.all, s.currentPage, s.cfg.PageSize)
		return
	}
	s.visible = s.all
}

func (s *Store[T]) filter(query string) []T {
	if utf8.RuneCountInString(query) < s.cfg.MinQueryLength {
		return []T{}
	}
	query = strings.ToLower(query)
	out := make([]T, 0)
	for _, item := range s.all {
		if s.cfg.Match(item, query) {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store[T]) snapshotLocked() State[T] {
	items := make([]T, len(s.visible))
	copy(items, s.visible)
	return State[T]{
		Items:          items,
		Loading:        s.loading,
		InitialLoading: s.initialLoading,
		Refreshing:     s.refreshing,
		SearchQuery:    s.searchQuery,
		SearchMode:     s.searchMode,
		Total:          s.total,
		IsOfflineMode:  s.offline,
		CountByState:   cloneCounts(s.counts),
		CurrentPage:    s.currentPage,
		TotalPages:     s.totalPagesLocked(),
		PageSize:       s.cfg.PageSize,
		Notice:         s.notice,
	}
}

func (s *Store[T]) totalPagesLocked() int {
	if s.cfg.RemotePaging {
		return totalPages(s.total, s.cfg.PageSize)
	}
	return totalPages(len(s.all), s.cfg.PageSize)
}

func (s *Store[T]) without(items []T, id int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.cfg.ID(item) != id {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store[T]) find(id int64) (T, bool) {
	for _, list := range [][]T{s.all, s.visible} {
		for _, item := range list {
			if s.cfg.ID(item) == id {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}

func (s *Store[T]) sessionValid(ctx context.Context) bool {
	session, err := s.gate.VerifySession(ctx)
	if err != nil {
		s.logger.Warn("session check failed", zap.Error(err))
		return false
	}
	if session == nil {
		s.logger.Debug("no valid session, skipping load")
		return false
	}
	return true
}

func (s *Store[T]) requestPage() int {
	if !s.cfg.RemotePaging {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

func (s *Store[T]) nextLoadGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadGen++
	return s.loadGen
}

func (s *Store[T]) setOffline() {
	s.mu.Lock()
	s.offline = true
	s.mu.Unlock()
	s.emit()
}

// beginLoadingLocked and endLoadingLocked keep loading set while any
// operation is in flight. Caller holds mu.
func (s *Store[T]) beginLoadingLocked() {
	s.inflight++
	s.loading = true
}

func (s *Store[T]) endLoadingLocked() {
	if s.inflight > 0 {
		s.inflight--
	}
	s.loading = s.inflight > 0
}

func (s *Store[T]) beginLoading() {
	s.mu.Lock()
	s.beginLoadingLocked()
	s.mu.Unlock()
	s.emit()
}

func (s *Store[T]) endLoading() {
	s.mu.Lock()
	s.endLoadingLocked()
	s.mu.Unlock()
	s.emit()
}

func (s *Store[T]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store[T]) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveStoreLoad(s.cfg.Name, outcome)
	}
}

func (s *Store[T]) emit() {
	if s.listener == nil {
		return
	}
	s.listener(s.Snapshot())
}

// opContext derives a context that is also cancelled by Close.
func (s *Store[T]) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func mutationError(message string, sessionExpired bool) error {
	if sessionExpired {
		return appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	return appErrors.Clone(appErrors.ErrBlocked, message)
}
