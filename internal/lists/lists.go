// Package lists binds every school entity to a liststore configuration and
// exposes the resulting stores behind one type-erased interface.
package lists

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/liststore"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/export"
)

// List names, also used as HTTP path segments.
const (
	NameSchoolYears      = "school_years"
	NameEvaluations      = "evaluations"
	NameProfessors       = "professors"
	NameSections         = "sections"
	NameEnrolledSections = "enrolled_sections"
	NameSubjects         = "subjects"
	NameStudents         = "students"
	NameEnrollments      = "enrollments"
	NameAttendance       = "attendance"
	NameTimeSlots        = "time_slots"
)

// List is a store seen from the HTTP and CLI surfaces.
type List interface {
	Name() string
	Start(ctx context.Context)
	Refresh(ctx context.Context)
	ApplySearch(ctx context.Context, query string)
	ExitSearchMode(ctx context.Context)
	GoToPage(ctx context.Context, n int) (bool, error)
	Delete(ctx context.Context, id int64) error
	Confirm(ctx context.Context, id int64) error
	PlanDelete(ctx context.Context, id int64) liststore.Intent
	// Create and Update take the entity's JSON input and refresh the list on success.
	Create(ctx context.Context, payload json.RawMessage) (int64, error)
	Update(ctx context.Context, id int64, payload json.RawMessage) error
	// State returns a liststore.State of the list's entity type.
	State() any
	Offline() bool
	Notice() string
	Export() export.Table
	Close()
}

// Settings tunes the stores.
type Settings struct {
	Debounce           time.Duration
	MinQueryLength     int
	StudentPageSize    int
	YearPageSize       int
	AttendancePageSize int
}

// Deps carries what every store needs.
type Deps struct {
	Gate     liststore.Gate
	Observer liststore.LoadObserver
	Logger   *zap.Logger
	Settings Settings
}

// Column renders one field of T for exports.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

type list[T any] struct {
	*liststore.Store[T]
	title   string
	columns []Column[T]
}

func newList[T any](d Deps, cfg liststore.Config[T], title string, columns []Column[T]) *list[T] {
	cfg.Debounce = d.Settings.Debounce
	cfg.MinQueryLength = d.Settings.MinQueryLength
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []liststore.Option[T]{liststore.WithLogger[T](logger)}
	if d.Observer != nil {
		opts = append(opts, liststore.WithObserver[T](d.Observer))
	}
	return &list[T]{
		Store:   liststore.New(cfg, d.Gate, opts...),
		title:   title,
		columns: columns,
	}
}

func (l *list[T]) State() any { return l.Snapshot() }

func (l *list[T]) Offline() bool { return l.Snapshot().IsOfflineMode }

func (l *list[T]) Notice() string { return l.Snapshot().Notice }

func (l *list[T]) Create(context.Context, json.RawMessage) (int64, error) {
	return 0, appErrors.ErrUnsupported
}

func (l *list[T]) Update(context.Context, int64, json.RawMessage) error {
	return appErrors.ErrUnsupported
}

// Export flattens every loaded item, ignoring search and local paging.
func (l *list[T]) Export() export.Table {
	table := export.Table{Title: l.title, Headers: make([]string, len(l.columns))}
	for i, c := range l.columns {
		table.Headers[i] = c.Header
	}
	for _, item := range l.Loaded() {
		row := make([]string, len(l.columns))
		for i, c := range l.columns {
			row[i] = c.Value(item)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Registry holds the lists of a process in a stable order.
type Registry struct {
	lists map[string]List
	names []string
}

// NewRegistry indexes lists by name.
func NewRegistry(lists ...List) *Registry {
	r := &Registry{lists: make(map[string]List, len(lists))}
	for _, l := range lists {
		if _, dup := r.lists[l.Name()]; dup {
			continue
		}
		r.lists[l.Name()] = l
		r.names = append(r.names, l.Name())
	}
	return r
}

// Get returns the named list.
func (r *Registry) Get(name string) (List, bool) {
	l, ok := r.lists[name]
	return l, ok
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	out := append([]string(nil), r.names...)
	sort.Strings(out)
	return out
}

// Close closes every list.
func (r *Registry) Close() {
	for _, name := range r.names {
		r.lists[name].Close()
	}
}
