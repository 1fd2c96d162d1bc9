// Package infrastructure assembles the systems every stage depends on:
// lifecycle coordination, logging, metrics, storage, the optional database,
// and the trigger substrate.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Sakshi281205/sleeppeddlers/internal/config"
	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/metrics"
	"github.com/Sakshi281205/sleeppeddlers/pkg/database"
	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

// Infrastructure holds the core systems required by the pipeline stages.
//
// Registry maps invocation targets to stage handlers. Dispatcher is the
// in-process pool that receives inbound events (object notifications and the
// invoke endpoint). Trigger is the outbound substrate stages use to invoke
// their successor; in local mode it is the Dispatcher itself.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Database   database.System
	Storage    storage.System
	Jobs       *jobs.Store
	Registry   *trigger.Registry
	Dispatcher *trigger.Local
	Trigger    trigger.Trigger

	durable *trigger.DBOS
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with log output directed to w.
func NewWithWriter(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, w)

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Metrics:   metrics.New(),
		Registry:  trigger.NewRegistry(),
	}

	if cfg.NeedsDatabase() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	store, err := newStorage(&cfg.Storage, infra.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	infra.Storage = store
	infra.Jobs = jobs.NewStore(store)

	infra.Dispatcher = trigger.NewLocal(infra.Registry, &cfg.Trigger, logger)

	outbound, err := infra.newTrigger(&cfg.Trigger)
	if err != nil {
		return nil, fmt.Errorf("trigger init failed: %w", err)
	}
	infra.Trigger = infra.Metrics.Instrument(outbound)

	return infra, nil
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Dispatcher.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("dispatcher start failed: %w", err)
	}
	if i.durable != nil {
		if err := i.durable.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("durable trigger start failed: %w", err)
		}
	}
	return nil
}

func newStorage(cfg *storage.Config, db database.System, logger *slog.Logger) (storage.System, error) {
	switch cfg.Backend {
	case storage.BackendMemory:
		return storage.Watch(storage.NewMemory(cfg.Container)), nil
	case storage.BackendAzure:
		sys, err := storage.NewAzure(cfg, logger)
		if err != nil {
			return nil, err
		}
		return storage.Watch(sys), nil
	case storage.BackendMinIO:
		sys, err := storage.NewMinIO(cfg, logger)
		if err != nil {
			return nil, err
		}
		if !cfg.MinIO.Listen {
			return storage.Synthesize(sys), nil
		}
		return sys, nil
	case storage.BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres backend requires a database")
		}
		return storage.Watch(storage.NewPostgres(db.Connection(), logger)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (i *Infrastructure) newTrigger(cfg *trigger.Config) (trigger.Trigger, error) {
	switch cfg.Mode {
	case trigger.ModeLocal:
		return i.Dispatcher, nil
	case trigger.ModeHTTP:
		return trigger.NewHTTP(cfg, i.Logger), nil
	case trigger.ModeDBOS:
		if i.Database == nil {
			return nil, fmt.Errorf("dbos mode requires a database")
		}
		d, err := trigger.NewDBOS(i.Lifecycle.Context(), i.Registry, cfg, i.Database.URL(), i.Logger)
		if err != nil {
			return nil, err
		}
		i.durable = d
		return d, nil
	default:
		return nil, fmt.Errorf("unknown trigger mode %q", cfg.Mode)
	}
}
