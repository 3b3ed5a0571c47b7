package liststore

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SetSearchQuery records the query and schedules a debounced search. Only the
// last query typed within the debounce window runs. An empty query leaves
// search mode.
func (s *Store[T]) SetSearchQuery(ctx context.Context, query string) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.ExitSearchMode(ctx)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopDebounceLocked()
	s.searchGen++
	gen := s.searchGen
	s.searchQuery = query
	s.searchMode = true
	base := s.base
	s.debounce = s.afterFunc(s.cfg.Debounce, func() {
		s.runSearch(base, trimmed, gen)
	})
	s.mu.Unlock()
	s.emit()
}

// ApplySearch runs a search right away, skipping the debounce.
func (s *Store[T]) ApplySearch(ctx context.Context, query string) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.ExitSearchMode(ctx)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopDebounceLocked()
	s.searchGen++
	gen := s.searchGen
	s.searchQuery = query
	s.searchMode = true
	s.mu.Unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	s.runSearch(ctx, trimmed, gen)
}

// ExitSearchMode clears the query and goes back to browsing from page one.
// Calling it outside search mode does nothing.
func (s *Store[T]) ExitSearchMode(ctx context.Context) {
	s.mu.Lock()
	if s.closed || (s.searchQuery == "" && !s.searchMode) {
		s.mu.Unlock()
		return
	}
	s.stopDebounceLocked()
	s.searchGen++
	s.searchQuery = ""
	s.searchMode = false
	s.appliedQuery = ""
	s.searchApplied = false
	if s.notice == NoticeOfflineSearchUnavailable {
		s.notice = s.loadNotice
	}
	reload := s.cfg.RemotePaging && s.currentPage != 1
	if s.cfg.PageSize > 0 {
		s.currentPage = 1
	}
	if reload {
		// The retained items belong to another page until page one arrives.
		s.all = []T{}
	}
	s.recompute()
	s.mu.Unlock()
	s.emit()

	if reload {
		ctx, cancel := s.opContext(ctx)
		defer cancel()
		s.fetchPage(ctx, 1)
	}
}

func (s *Store[T]) runSearch(ctx context.Context, query string, gen uint64) {
	s.mu.Lock()
	if gen != s.searchGen || s.closed {
		s.mu.Unlock()
		return
	}
	s.debounce = nil
	s.appliedQuery = query
	s.searchApplied = true
	if utf8.RuneCountInString(query) < s.cfg.MinQueryLength || s.cfg.Match != nil {
		s.visible = s.filter(query)
		s.mu.Unlock()
		s.emit()
		return
	}
	s.beginLoadingLocked()
	s.mu.Unlock()
	s.emit()

	items, notice, ok := s.remoteSearch(ctx, query)

	s.mu.Lock()
	s.endLoadingLocked()
	if ok && gen == s.searchGen && s.searchMode && !s.closed {
		s.visible = items
		switch {
		case notice != "":
			s.notice = notice
			s.offline = true
		case s.notice == NoticeOfflineSearchUnavailable:
			s.notice = s.loadNotice
		}
	}
	s.mu.Unlock()
	s.emit()
}

func (s *Store[T]) remoteSearch(ctx context.Context, query string) ([]T, string, bool) {
	if s.cfg.Search == nil {
		return []T{}, "", true
	}
	if !s.gate.CheckServerHealth(ctx).OK {
		return []T{}, NoticeOfflineSearchUnavailable, true
	}
	if !s.sessionValid(ctx) {
		return nil, "", false
	}
	items, err := s.cfg.Search(ctx, query)
	if err != nil {
		s.logger.Warn("remote search failed", zap.String("query", query), zap.Error(err))
		return []T{}, "", true
	}
	if items == nil {
		items = []T{}
	}
	return items, "", true
}

func (s *Store[T]) stopDebounceLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}
