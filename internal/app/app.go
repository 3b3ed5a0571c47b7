// Package app wires configuration, the Odoo client, caches, services and list
// stores into one process-wide container shared by the gateway and the CLI.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/lists"
	"github.com/noah-isme/sma-odoo-sync/internal/repository"
	"github.com/noah-isme/sma-odoo-sync/internal/service"
	"github.com/noah-isme/sma-odoo-sync/pkg/cache"
	"github.com/noah-isme/sma-odoo-sync/pkg/config"
	"github.com/noah-isme/sma-odoo-sync/pkg/jobs"
	"github.com/noah-isme/sma-odoo-sync/pkg/logger"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

// App holds every long-lived component.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Odoo     *odoo.Client
	Metrics  *service.MetricsService
	Sessions *service.SessionService
	Services lists.Services
	Lists    *lists.Registry
	Warmup   *jobs.Queue

	cacheStore io.Closer
}

// Option customises New.
type Option func(*options)

type options struct {
	odooOpts  []odoo.Option
	cacheRepo cacheRepository
}

type cacheRepository interface {
	service.CacheRepository
	io.Closer
}

// WithOdooOptions passes extra options to the Odoo client, e.g. a test HTTP client.
func WithOdooOptions(opts ...odoo.Option) Option {
	return func(o *options) { o.odooOpts = append(o.odooOpts, opts...) }
}

// WithCacheRepository replaces the configured cache backend.
func WithCacheRepository(repo cacheRepository) Option {
	return func(o *options) { o.cacheRepo = repo }
}

// New builds the container. Nothing talks to Odoo until a list is started.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	repo := o.cacheRepo
	if repo == nil {
		var err error
		repo, err = newCacheRepository(cfg, log)
		if err != nil {
			return nil, err
		}
	}

	clientOpts := append([]odoo.Option{
		odoo.WithLogger(logger.Component(log, "odoo")),
		odoo.WithObserver(metrics),
	}, o.odooOpts...)
	client := odoo.NewClient(cfg.Odoo, clientOpts...)

	svcLog := logger.Component(log, "service")
	cacheSvc := service.NewCacheService(repo, metrics, cfg.Cache.DefaultTTL, svcLog, true)
	sessions := service.NewSessionService(
		client,
		repository.NewSessionRepository(repo, cfg.Session.MaxAge),
		cfg.Session.MaxAge,
		cfg.Session.NearExpiry,
		svcLog,
	)

	services := lists.Services{
		SchoolYears:      service.NewSchoolYearService(repository.NewSchoolYearRepository(client), cacheSvc, nil, svcLog),
		Evaluations:      service.NewEvaluationService(repository.NewEvaluationRepository(client), cacheSvc, nil, svcLog),
		Professors:       service.NewProfessorService(repository.NewProfessorRepository(client), cacheSvc, nil, svcLog),
		Sections:         service.NewSectionService(repository.NewSectionRepository(client), cacheSvc, nil, svcLog),
		EnrolledSections: service.NewEnrolledSectionService(repository.NewEnrolledSectionRepository(client), cacheSvc, nil, svcLog),
		Subjects:         service.NewSubjectService(repository.NewSubjectRepository(client), cacheSvc, nil, svcLog),
		Students:         service.NewStudentService(repository.NewStudentRepository(client), cacheSvc, cfg.Sync.GlobalSearchLimit, svcLog),
		Enrollments:      service.NewEnrollmentService(repository.NewEnrollmentRepository(client), cacheSvc, nil, svcLog),
		Attendance:       service.NewAttendanceService(repository.NewAttendanceRepository(client), cacheSvc, nil, svcLog),
		Schedules:        service.NewScheduleService(repository.NewScheduleRepository(client), cacheSvc, nil, svcLog),
	}

	deps := lists.Deps{
		Gate:     sessions,
		Observer: metrics,
		Logger:   logger.Component(log, "liststore"),
		Settings: lists.Settings{
			Debounce:           cfg.Sync.Debounce,
			MinQueryLength:     cfg.Sync.MinQueryLength,
			StudentPageSize:    cfg.Sync.StudentPageSize,
			YearPageSize:       cfg.Sync.YearPageSize,
			AttendancePageSize: cfg.Sync.AttendancePageSize,
		},
	}
	if metrics == nil {
		deps.Observer = nil
	}
	registry := lists.Build(services, deps)

	warmup := jobs.NewQueue("list-warmup", registry.JobHandler(), jobs.QueueConfig{
		Workers:    2,
		MaxRetries: 0,
		Logger:     logger.Component(log, "jobs"),
	})

	return &App{
		Config:     cfg,
		Logger:     log,
		Odoo:       client,
		Metrics:    metrics,
		Sessions:   sessions,
		Services:   services,
		Lists:      registry,
		Warmup:     warmup,
		cacheStore: repo,
	}, nil
}

func newCacheRepository(cfg *config.Config, log *zap.Logger) (cacheRepository, error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		return repository.NewRedisCacheRepository(client, logger.Component(log, "cache")), nil
	case config.CacheDriverMemory, "":
		return repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Cache), cfg.Cache.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// StartWarmup runs the worker pool and enqueues a first load of every list.
func (a *App) StartWarmup(ctx context.Context) error {
	a.Warmup.Start(ctx)
	return a.Lists.Warm(a.Warmup)
}

// Close stops the warm-up workers, closes every list and releases the cache.
// Pending warm-up jobs are abandoned.
func (a *App) Close() error {
	a.Warmup.Stop()
	a.Lists.Close()
	if a.cacheStore != nil {
		return a.cacheStore.Close()
	}
	return nil
}
