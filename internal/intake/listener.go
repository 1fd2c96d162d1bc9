package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/metrics"
	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

// Listener handles object-created notifications for artifacts. It trusts
// only the stored object, not the event or the upload path.
type Listener struct {
	store   *jobs.Store
	policy  Policy
	trigger trigger.Trigger
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewListener(store *jobs.Store, policy Policy, t trigger.Trigger, logger *slog.Logger, m *metrics.Metrics) *Listener {
	return &Listener{
		store:   store,
		policy:  policy,
		trigger: t,
		logger:  logger.With("stage", "listener"),
		metrics: m,
		now:     jobs.Now,
	}
}

// Handle re-validates the artifact named by event. A failed check writes an
// error JobDocument and stops the job. Otherwise the job moves to processing
// and Classification is fired.
//
// A duplicate delivery after Classification overwrites ai_complete with
// processing and re-fires classify. The status steps back until the re-run
// converges on equal documents; a ResultDocument still wins in readers.
func (l *Listener) Handle(ctx context.Context, event storage.ObjectEvent) error {
	id := jobs.IDFromArtifactKey(event.Key)
	if id == "" {
		l.metrics.Listener("ignored")
		l.logger.DebugContext(ctx, "ignoring object outside uploads", "key", event.Key)
		return nil
	}

	meta, err := l.store.FindArtifact(ctx, event.Key)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			// Deleted or never durably written; nothing to classify.
			l.metrics.Listener("missing")
			l.logger.WarnContext(ctx, "artifact missing", "job_id", id, "key", event.Key)
			return nil
		}
		l.metrics.Listener("error")
		return fmt.Errorf("listener %s: %w", id, err)
	}

	doc := &jobs.JobDocument{
		JobID:       id,
		Timestamp:   l.now(),
		ImageKey:    event.Key,
		ContentType: meta.ContentType,
		SizeBytes:   meta.Size,
	}

	if err := l.policy.Check(meta.ContentType, meta.Size); err != nil {
		doc.Status = jobs.StatusError
		doc.Error = err.Error()
		if err := l.store.PutJob(ctx, doc); err != nil {
			l.metrics.Listener("error")
			return fmt.Errorf("listener %s: %w", id, err)
		}
		l.metrics.Listener("rejected")
		l.logger.WarnContext(ctx, "artifact rejected", "job_id", id, "reason", doc.Error)
		return nil
	}

	doc.Status = jobs.StatusProcessing
	if err := l.store.PutJob(ctx, doc); err != nil {
		l.metrics.Listener("error")
		return fmt.Errorf("listener %s: %w", id, err)
	}

	inv, err := trigger.NewInvocation(events.TargetClassify, events.ClassifyRequest{
		Bucket:   l.bucket(event),
		ImageKey: event.Key,
		JobID:    id,
		JobKey:   jobs.JobKey(id),
	})
	if err != nil {
		return err
	}
	if err := l.trigger.Fire(ctx, inv); err != nil {
		l.metrics.Listener("error")
		return fmt.Errorf("listener %s: fire classify: %w", id, err)
	}

	l.metrics.Listener("processing")
	l.logger.InfoContext(ctx, "listener invoked classification", "job_id", id, "key", event.Key)
	return nil
}

func (l *Listener) bucket(event storage.ObjectEvent) string {
	if event.Bucket != "" {
		return event.Bucket
	}
	return l.store.Blobs().Container()
}
