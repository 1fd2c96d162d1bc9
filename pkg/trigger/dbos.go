package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/google/uuid"

	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
)

// DBOS enqueues invocations as durable workflows on a DBOS queue. Workflows
// are checkpointed in PostgreSQL and resumed after a restart, which gives
// at-least-once delivery to the registry handlers.
type DBOS struct {
	ctx      dbos.DBOSContext
	queue    string
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration
}

// NewDBOS creates the DBOS context and queue and registers the dispatch
// workflow. Launch happens in Start.
func NewDBOS(ctx context.Context, registry *Registry, cfg *Config, databaseURL string, logger *slog.Logger) (*DBOS, error) {
	dctx, err := dbos.NewDBOSContext(ctx, dbos.Config{
		DatabaseURL: databaseURL,
		AppName:     cfg.DBOS.AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("create dbos context: %w", err)
	}

	dbos.NewWorkflowQueue(dctx, cfg.DBOS.Queue)

	d := &DBOS{
		ctx:      dctx,
		queue:    cfg.DBOS.Queue,
		registry: registry,
		logger:   logger.With("system", "trigger", "mode", ModeDBOS),
		timeout:  cfg.TimeoutDuration(),
	}
	dbos.RegisterWorkflow(dctx, d.dispatch)

	return d, nil
}

func (d *DBOS) Fire(ctx context.Context, inv Invocation) error {
	if !d.registry.Has(inv.Target) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, inv.Target)
	}

	id := fmt.Sprintf("%s-%s", inv.Target, uuid.NewString())
	handle, err := dbos.RunWorkflow[Invocation, string](
		d.ctx,
		d.dispatch,
		inv,
		dbos.WithWorkflowID(id),
		dbos.WithQueue(d.queue),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", inv.Target, err)
	}

	d.logger.Debug("workflow enqueued", "target", inv.Target, "workflow_id", handle.GetWorkflowID())
	return nil
}

func (d *DBOS) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting durable trigger", "queue", d.queue)

	lc.OnStartup("trigger", func() error {
		if err := dbos.Launch(d.ctx); err != nil {
			d.logger.Error("dbos launch failed", "error", err)
			return err
		}
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		dbos.Shutdown(d.ctx, d.timeout)
		d.logger.Info("durable trigger stopped")
	})

	return nil
}

// dispatch is the registered workflow. DBOSContext implements context.Context.
func (d *DBOS) dispatch(ctx dbos.DBOSContext, inv Invocation) (string, error) {
	if err := d.registry.Dispatch(ctx, inv); err != nil {
		d.logger.Error("workflow failed", "target", inv.Target, "error", err)
		return "", err
	}
	return inv.Target, nil
}
