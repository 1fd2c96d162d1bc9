package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/pkg/handlers"
	"github.com/Sakshi281205/sleeppeddlers/pkg/routes"
	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
)

// artifactHandler serves the uploaded image for a job, read-only.
type artifactHandler struct {
	store  *jobs.Store
	logger *slog.Logger
}

func newArtifactHandler(store *jobs.Store, logger *slog.Logger) *artifactHandler {
	return &artifactHandler{
		store:  store,
		logger: logger.With("handler", "artifacts"),
	}
}

func (h *artifactHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/artifacts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{job_id}", Handler: h.download},
			{Method: "GET", Pattern: "/{job_id}/metadata", Handler: h.find},
		},
	}
}

func (h *artifactHandler) find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.FindArtifact(r.Context(), jobs.ArtifactKey(r.PathValue("job_id")))
	if err != nil {
		handlers.RespondError(w, h.logger, jobs.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *artifactHandler) download(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	blob, err := h.store.Blobs().Download(r.Context(), jobs.ArtifactKey(jobID))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", jobID))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, blob.Body)
}
