package status

import (
	"log/slog"
	"net/http"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/pkg/handlers"
	"github.com/Sakshi281205/sleeppeddlers/pkg/routes"
)

// Handler exposes the status and result endpoints.
type Handler struct {
	reader *Reader
	logger *slog.Logger
}

func NewHandler(reader *Reader, logger *slog.Logger) *Handler {
	return &Handler{
		reader: reader,
		logger: logger.With("handler", "status"),
	}
}

func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix: "/status",
			Routes: []routes.Route{{Method: "GET", Pattern: "/{job_id}", Handler: h.Status}},
		},
		{
			Prefix: "/results",
			Routes: []routes.Route{{Method: "GET", Pattern: "/{job_id}", Handler: h.Result}},
		},
	}
}

// Status answers 202 while processing, 200 for every other known status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	view, err := h.reader.Status(r.Context(), r.PathValue("job_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, jobs.MapHTTPStatus(err), err)
		return
	}

	code := http.StatusOK
	if view.Status == jobs.StatusProcessing {
		code = http.StatusAccepted
	}
	handlers.RespondJSON(w, code, view)
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	doc, err := h.reader.Result(r.Context(), r.PathValue("job_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, jobs.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, doc)
}
