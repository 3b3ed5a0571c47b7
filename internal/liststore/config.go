// Package liststore keeps the state of a remote entity list in sync with an
// Odoo server that may go away at any time. One Store serves one screen: it
// checks the server, falls back to cached data when offline, switches between
// browsing and searching, and paginates locally or remotely.
package liststore

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

const (
	defaultMinQueryLength = 3
	defaultDebounce       = 300 * time.Millisecond
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("liststore: store closed")

// FetchRequest describes one list load.
// Page is 1-based and only meaningful for remote paging; zero asks for everything.
// Offline means answer from cache only, Force means skip cache reads.
type FetchRequest struct {
	Page     int
	PageSize int
	Offline  bool
	Force    bool
}

// Batch is the answer of a Source.
type Batch[T any] struct {
	Items  []T
	Total  int
	Counts map[string]int
}

// Source loads list data from the server or, when offline, from the cache.
type Source[T any] interface {
	Fetch(ctx context.Context, req FetchRequest) (Batch[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, req FetchRequest) (Batch[T], error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context, req FetchRequest) (Batch[T], error) {
	return f(ctx, req)
}

// Gate answers the connectivity and session questions asked before every network step.
type Gate interface {
	CheckServerHealth(ctx context.Context) models.ServerHealth
	VerifySession(ctx context.Context) (*models.UserSession, error)
}

// LoadObserver receives one outcome per list load.
type LoadObserver interface {
	ObserveStoreLoad(store, outcome string)
}

// Load outcomes.
const (
	OutcomeOnline       = "online"
	OutcomeOfflineCache = "offline_cache"
	OutcomeOfflineEmpty = "offline_empty"
	OutcomeError        = "error"
)

// Config parametrises a store for one entity.
type Config[T any] struct {
	Name   string
	Source Source[T]
	ID     func(T) int64

	// Match filters loaded items in memory; the query is trimmed and lower-cased.
	Match func(item T, query string) bool
	// Search queries the server instead; used when Match is nil.
	Search func(ctx context.Context, query string) ([]T, error)
	// Classify derives CountByState from the items when the source gives no counts.
	Classify func(T) string
	// CountKeys are always present in derived counts, zero when no item has them.
	CountKeys []string

	PageSize       int
	RemotePaging   bool
	MinQueryLength int
	Debounce       time.Duration

	Delete    func(ctx context.Context, id int64) models.MutationResult
	Confirm   func(ctx context.Context, id int64) models.MutationResult
	CanDelete func(ctx context.Context, item T) (models.DeleteValidation, error)
	Describe  func(T) string
}

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option customises a Store.
type Option[T any] func(*Store[T])

// WithLogger sets the logger.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(s *Store[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports load outcomes, typically to Prometheus.
func WithObserver[T any](o LoadObserver) Option[T] {
	return func(s *Store[T]) { s.observer = o }
}

// WithAfterFunc replaces the debounce timer factory.
func WithAfterFunc[T any](fn AfterFunc) Option[T] {
	return func(s *Store[T]) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// WithListener is called with a fresh snapshot after every state change.
func WithListener[T any](fn func(State[T])) Option[T] {
	return func(s *Store[T]) { s.listener = fn }
}
