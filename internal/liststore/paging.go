package liststore

import (
	"context"

	"go.uber.org/zap"
)

// GoToPage moves to page n. It reports false without error when the move is
// not allowed: search mode, no paging, out of range or already there.
func (s *Store[T]) GoToPage(ctx context.Context, n int) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if s.cfg.PageSize <= 0 || s.searchMode || n < 1 || n == s.currentPage || n > s.totalPagesLocked() {
		s.mu.Unlock()
		return false, nil
	}
	if !s.cfg.RemotePaging {
		s.currentPage = n
		s.recompute()
		s.mu.Unlock()
		s.emit()
		return true, nil
	}
	s.mu.Unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	ok := s.fetchPage(ctx, n)
	if !ok && ctx.Err() != nil {
		return false, ctx.Err()
	}
	return ok, nil
}

// fetchPage loads one remote page, falling back to the cached copy of it.
func (s *Store[T]) fetchPage(ctx context.Context, page int) bool {
	gen := s.nextLoadGen()
	s.beginLoading()
	defer s.endLoading()

	if !s.gate.CheckServerHealth(ctx).OK {
		return s.cachedPage(ctx, gen, page)
	}
	if !s.sessionValid(ctx) {
		return false
	}
	batch, err := s.cfg.Source.Fetch(ctx, FetchRequest{Page: page, PageSize: s.cfg.PageSize, Force: true})
	if err != nil {
		s.logger.Warn("page load failed, using cache", zap.Int("page", page), zap.Error(err))
		s.observe(OutcomeError)
		return s.cachedPage(ctx, gen, page)
	}
	if !s.apply(gen, batch, page, false) {
		return false
	}
	s.observe(OutcomeOnline)
	return true
}

// cachedPage keeps the current items and sets a notice when the requested
// page was never cached.
func (s *Store[T]) cachedPage(ctx context.Context, gen uint64, page int) bool {
	batch, err := s.cfg.Source.Fetch(ctx, FetchRequest{Page: page, PageSize: s.cfg.PageSize, Offline: true})
	if err != nil || len(batch.Items) == 0 {
		s.observe(OutcomeOfflineEmpty)
		s.mu.Lock()
		if gen == s.loadGen && !s.closed {
			s.offline = true
			s.notice = NoticeOfflinePageMissing
		}
		s.mu.Unlock()
		s.emit()
		return false
	}
	if !s.apply(gen, batch, page, true) {
		return false
	}
	s.observe(OutcomeOfflineCache)
	return true
}
