package main

import (
	"context"
	"net/http"

	"github.com/Sakshi281205/sleeppeddlers/internal/api"
	"github.com/Sakshi281205/sleeppeddlers/internal/config"
	"github.com/Sakshi281205/sleeppeddlers/internal/infrastructure"
	"github.com/Sakshi281205/sleeppeddlers/pkg/handlers"
	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
	"github.com/Sakshi281205/sleeppeddlers/pkg/module"
)

type Modules struct {
	API *api.API
}

func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.New(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API.Module)
}

func (m *Modules) Start(lc *lifecycle.Coordinator) error {
	return m.API.Start(lc)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	router.HandleNative("GET /metrics", infra.Metrics.Handler().ServeHTTP)

	return router
}
