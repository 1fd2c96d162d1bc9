package api

import (
	"github.com/Sakshi281205/sleeppeddlers/internal/config"
	"github.com/Sakshi281205/sleeppeddlers/internal/infrastructure"
	"github.com/Sakshi281205/sleeppeddlers/internal/intake"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Policy    intake.Policy
	CacheSize int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Policy:         cfg.Pipeline.Policy(),
		CacheSize:      cfg.Cache.Size,
	}
}
