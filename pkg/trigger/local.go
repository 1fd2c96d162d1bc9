package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
)

// Local runs invocations on an in-process worker pool fed by a bounded queue.
// Handler errors are logged; they never reach the caller of Fire.
type Local struct {
	registry *Registry
	queue    chan Invocation
	workers  int
	logger   *slog.Logger
	done     chan struct{}
}

// NewLocal creates a pool of cfg.Workers draining a queue of cfg.QueueSize.
func NewLocal(registry *Registry, cfg *Config, logger *slog.Logger) *Local {
	return &Local{
		registry: registry,
		queue:    make(chan Invocation, cfg.QueueSize),
		workers:  cfg.Workers,
		logger:   logger.With("system", "trigger", "mode", ModeLocal),
		done:     make(chan struct{}),
	}
}

// Fire enqueues inv without blocking. A full queue returns ErrQueueFull.
func (l *Local) Fire(ctx context.Context, inv Invocation) error {
	if !l.registry.Has(inv.Target) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, inv.Target)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case l.queue <- inv:
		return nil
	default:
		return ErrQueueFull
	}
}

func (l *Local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting trigger workers", "workers", l.workers, "queue", cap(l.queue))

	lc.OnStartup("trigger", func() error {
		go l.run(lc.Context())
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-l.done
		l.logger.Info("trigger workers stopped")
	})

	return nil
}

func (l *Local) run(ctx context.Context) {
	defer close(l.done)

	var g errgroup.Group
	g.SetLimit(l.workers)

	for {
		select {
		case <-ctx.Done():
			g.Wait()
			return
		case inv := <-l.queue:
			// In-flight invocations finish even after shutdown begins.
			runCtx := context.WithoutCancel(ctx)
			g.Go(func() error {
				l.execute(runCtx, inv)
				return nil
			})
		}
	}
}

func (l *Local) execute(ctx context.Context, inv Invocation) {
	start := time.Now()
	if err := l.registry.Dispatch(ctx, inv); err != nil {
		l.logger.Error("invocation failed", "target", inv.Target, "error", err)
		return
	}
	l.logger.Info(
		"invocation complete",
		"target", inv.Target,
		"duration", time.Since(start),
	)
}
