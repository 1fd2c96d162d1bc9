package api

import (
	"net/http"

	"github.com/Sakshi281205/sleeppeddlers/internal/intake"
	"github.com/Sakshi281205/sleeppeddlers/internal/status"
	"github.com/Sakshi281205/sleeppeddlers/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(mux, intake.NewHandler(domain.Intake, runtime.Logger).Routes())
	routes.Register(mux, status.NewHandler(domain.Status, runtime.Logger).Routes()...)
	routes.Register(
		mux,
		newInvokeHandler(domain.Validator, runtime.Dispatcher, runtime.Logger).routes(),
		newArtifactHandler(runtime.Jobs, runtime.Logger).routes(),
	)
}
