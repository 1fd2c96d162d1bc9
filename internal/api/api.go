// Package api assembles the pipeline stages into the HTTP module and wires
// invocation targets and object notifications to them.
package api

import (
	"context"
	"net/http"

	"github.com/Sakshi281205/sleeppeddlers/internal/config"
	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/internal/infrastructure"
	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
	"github.com/Sakshi281205/sleeppeddlers/pkg/middleware"
	"github.com/Sakshi281205/sleeppeddlers/pkg/module"
	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

// API is the mounted HTTP module plus the domain it serves.
type API struct {
	Module *module.Module
	Domain *Domain

	runtime *Runtime
}

// New creates the API module with all domain handlers and middleware, and
// registers every stage with the infrastructure's trigger registry.
func New(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*API, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(ctx, runtime, cfg)
	if err != nil {
		return nil, err
	}
	domain.Register(runtime.Registry)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return &API{Module: m, Domain: domain, runtime: runtime}, nil
}

// Start subscribes the object-created listener to new artifacts. Storage
// that raises no events leaves the invoke endpoint as the only entry point.
func (a *API) Start(lc *lifecycle.Coordinator) error {
	watcher, ok := a.runtime.Storage.(storage.Watcher)
	if !ok {
		a.runtime.Logger.Warn("storage raises no object events")
		return nil
	}
	return watcher.Watch(lc.Context(), jobs.UploadsPrefix, a.notify)
}

// notify must not block: the synthetic watcher calls it inside Upload.
func (a *API) notify(ctx context.Context, event storage.ObjectEvent) {
	inv, err := trigger.NewInvocation(events.TargetObjectCreated, event)
	if err == nil {
		err = a.runtime.Dispatcher.Fire(ctx, inv)
	}
	if err != nil {
		a.runtime.Metrics.Listener("dropped")
		a.runtime.Logger.Error("object event dropped", "key", event.Key, "error", err)
	}
}
