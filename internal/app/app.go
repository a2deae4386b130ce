// Package app assembles the repositories and services from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/fieldops/internal/async"
	"github.com/joseph-ayodele/fieldops/internal/cache"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/estimate"
	"github.com/joseph-ayodele/fieldops/internal/export"
	"github.com/joseph-ayodele/fieldops/internal/gamification"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/kv"
	"github.com/joseph-ayodele/fieldops/internal/repository"
	"github.com/joseph-ayodele/fieldops/internal/services/estimates"
	gamesvc "github.com/joseph-ayodele/fieldops/internal/services/gamification"
	"github.com/joseph-ayodele/fieldops/internal/services/timesheet"
)

// App holds every long-lived component. Close releases them in reverse order.
type App struct {
	Config *common.Config
	DB     *repository.DB
	Store  kv.Store
	Cache  *cache.Service
	Queue  *async.ProcessorQueue

	Timesheets   *timesheet.Service
	Estimates    *estimates.Service
	Gamification *gamesvc.Service
	Flags        *gamification.Flags
	Export       *export.Service

	logger *slog.Logger
}

// Options tune Build.
type Options struct {
	// Migrate applies pending schema migrations after connecting.
	Migrate bool
	// StartQueue routes job-completion XP awards through the worker queue.
	StartQueue bool
}

// Build connects to the database and wires the services. The cache janitor
// is not started; call Start for long-running processes.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DB: db, logger: logger}

	if opts.Migrate {
		if err := repository.Migrate(db, logger); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	if a.Store, err = openStore(cfg.KV, db, logger); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if a.Cache, err = cache.New(cfg.Cache, logger); err != nil {
		a.Close(ctx)
		return nil, err
	}

	settings := estimate.DefaultSettings()
	if cfg.Business.SettingsFile != "" {
		if settings, err = estimate.LoadSettings(cfg.Business.SettingsFile); err != nil {
			a.Close(ctx)
			return nil, err
		}
		logger.Info("loaded business settings", "path", cfg.Business.SettingsFile)
	}
	yard := geo.Point{Latitude: cfg.Business.Latitude, Longitude: cfg.Business.Longitude}

	employees := repository.NewEmployeeRepository(db, logger)
	timesheets := repository.NewTimesheetRepository(db, logger)
	estimateRepo := repository.NewEstimateRepository(db, logger)

	a.Timesheets = timesheet.NewService(employees, timesheets, cfg.Business, logger)
	a.Estimates = estimates.NewService(estimate.NewComposer(settings, yard), estimateRepo, logger)
	a.Gamification = gamesvc.NewService(a.Store, employees, a.Cache, logger)
	a.Flags = gamification.NewFlags(a.Store, cfg.Features, logger)
	a.Export = export.NewService(timesheets, estimateRepo, employees, logger)

	if opts.StartQueue {
		a.Queue = async.NewProcessorQueue(a.Gamification, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		)
		a.Gamification.UseQueue(a.Queue)
	}
	return a, nil
}

func openStore(cfg common.KVConfig, db *repository.DB, logger *slog.Logger) (kv.Store, error) {
	switch cfg.Backend {
	case "file":
		s, err := kv.OpenFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open kv file %s: %w", cfg.Path, err)
		}
		logger.Info("using file kv store", "path", cfg.Path)
		return s, nil
	case "memory":
		logger.Warn("using in-memory kv store; flags and xp are not persisted")
		return kv.NewMemory(), nil
	default:
		return repository.NewKVStore(db, logger), nil
	}
}

// Start launches background maintenance tied to ctx.
func (a *App) Start(ctx context.Context) {
	if a.Cache != nil {
		a.Cache.Start(ctx)
	}
}

// Health pings the database.
func (a *App) Health(ctx context.Context) error {
	return repository.HealthCheck(ctx, a.DB, a.Config.Database.HealthTimeout, a.logger)
}

// Close drains the queue, stops the cache and closes the database.
func (a *App) Close(ctx context.Context) {
	if a.Queue != nil {
		a.Queue.Shutdown(ctx)
	}
	if a.Cache != nil {
		a.Cache.Stop()
	}
	if a.DB != nil {
		repository.Close(a.DB, a.logger)
	}
}
