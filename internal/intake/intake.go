// Package intake accepts uploaded artifacts and starts the pipeline.
//
// Stage validates and persists an upload. Listener reacts to the resulting
// object-created notification, re-validates the stored artifact, and fires
// Classification.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/metrics"
)

// UploadCommand carries a decoded upload.
type UploadCommand struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Validate runs the pure pre-check. It never touches the store.
func (c UploadCommand) Validate(p Policy) error {
	switch {
	case len(c.Data) == 0:
		return ErrMissingImage
	case c.Filename == "":
		return ErrMissingFilename
	case c.ContentType == "":
		return ErrMissingContentType
	}
	return p.Check(c.ContentType, int64(len(c.Data)))
}

// Stage persists valid uploads.
type Stage struct {
	store   *jobs.Store
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
	newID   func() string
	now     func() time.Time
}

func New(store *jobs.Store, policy Policy, logger *slog.Logger, m *metrics.Metrics) *Stage {
	return &Stage{
		store:   store,
		policy:  policy,
		logger:  logger.With("stage", "intake"),
		metrics: m,
		newID:   uuid.NewString,
		now:     jobs.Now,
	}
}

// Policy returns the acceptance policy the stage enforces.
func (s *Stage) Policy() Policy {
	return s.policy
}

// Upload validates cmd and, on success, writes the JobDocument{uploaded}
// followed by the artifact. A rejected upload writes nothing.
//
// The job document is written first so it exists before the artifact write
// raises the object-created notification.
func (s *Stage) Upload(ctx context.Context, cmd UploadCommand) (*jobs.JobDocument, error) {
	if err := cmd.Validate(s.policy); err != nil {
		s.metrics.Upload(err.Error())
		s.logger.WarnContext(ctx, "upload_error",
			"reason", err.Error(),
			"filename", cmd.Filename,
			"content_type", cmd.ContentType,
			"size_bytes", len(cmd.Data),
		)
		return nil, err
	}

	id := s.newID()
	doc := &jobs.JobDocument{
		JobID:       id,
		Status:      jobs.StatusUploaded,
		Timestamp:   s.now(),
		ImageKey:    jobs.ArtifactKey(id),
		ContentType: normalizeType(cmd.ContentType),
		SizeBytes:   int64(len(cmd.Data)),
	}

	if err := s.store.PutJob(ctx, doc); err != nil {
		s.metrics.Upload("storage_error")
		return nil, fmt.Errorf("intake %s: %w", id, err)
	}

	if err := s.store.PutArtifact(ctx, id, cmd.Data, doc.ContentType); err != nil {
		s.metrics.Upload("storage_error")
		failed := *doc
		failed.Status = jobs.StatusError
		failed.Error = "storage_error"
		failed.Timestamp = s.now()
		if perr := s.store.PutJob(ctx, &failed); perr != nil {
			s.logger.ErrorContext(ctx, "record storage failure", "job_id", id, "error", perr)
		}
		return nil, fmt.Errorf("intake %s: %w", id, err)
	}

	s.metrics.Upload("accepted")
	s.logger.InfoContext(ctx, "upload_ok",
		"job_id", id,
		"filename", cmd.Filename,
		"content_type", doc.ContentType,
		"size_bytes", doc.SizeBytes,
	)
	return doc, nil
}
