// Package classification derives a finding for an uploaded artifact, records
// it as the job's analysis document, and fires Summarization.
package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/metrics"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

// ErrArtifactMissing indicates the referenced artifact is not in the store.
var ErrArtifactMissing = errors.New("artifact_missing")

// simulatedLatency is added to measured time so processing_time reflects a
// realistic inference budget.
const simulatedLatency = 300 * time.Millisecond

// Stage runs Classification for one job per invocation.
type Stage struct {
	store      *jobs.Store
	classifier Classifier
	trigger    trigger.Trigger
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	elapsed    func(time.Time) time.Duration
}

// Option configures a Stage.
type Option func(*Stage)

// WithClassifier replaces the hash classifier.
func WithClassifier(c Classifier) Option {
	return func(s *Stage) { s.classifier = c }
}

// WithClock fixes the timestamp source and measured duration, making
// documents byte-for-byte reproducible.
func WithClock(now func() time.Time, elapsed func(time.Time) time.Duration) Option {
	return func(s *Stage) {
		s.now = now
		s.elapsed = elapsed
	}
}

func New(store *jobs.Store, t trigger.Trigger, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Stage {
	s := &Stage{
		store:      store,
		classifier: HashClassifier{},
		trigger:    t,
		logger:     logger.With("stage", "classification"),
		metrics:    m,
		now:        jobs.Now,
		elapsed:    time.Since,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run classifies req.ImageKey, writes the AnalysisDocument, overwrites the
// JobDocument to ai_complete, then fires Summarization. The overwrite keeps
// only job_id, status, timestamp, and image_key.
func (s *Stage) Run(ctx context.Context, req events.ClassifyRequest) (doc *jobs.AnalysisDocument, err error) {
	start := time.Now()
	defer func() { s.metrics.Stage(events.TargetClassify, start, err) }()

	jobKey := req.JobKey
	if jobKey == "" {
		jobKey = jobs.JobKey(req.JobID)
	}

	exists, err := s.store.Blobs().Exists(ctx, req.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", req.JobID, err)
	}
	if !exists {
		return nil, s.fail(ctx, req, jobKey, ErrArtifactMissing)
	}

	began := s.now()
	finding, err := s.classifier.Classify(ctx, req.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", req.JobID, err)
	}
	took := s.elapsed(began) + simulatedLatency

	doc = &jobs.AnalysisDocument{
		JobID: req.JobID,
		AIAnalysis: jobs.Analysis{
			Findings:       finding.Label,
			Confidence:     finding.Confidence,
			ImageKey:       req.ImageKey,
			ModelVersion:   finding.ModelVersion,
			ProcessingTime: fmt.Sprintf("%.2f seconds", took.Seconds()),
		},
	}
	if err := s.store.PutAnalysis(ctx, doc); err != nil {
		return nil, fmt.Errorf("classify %s: %w", req.JobID, err)
	}

	status := &jobs.JobDocument{
		JobID:     req.JobID,
		Status:    jobs.StatusAIComplete,
		Timestamp: s.now(),
		ImageKey:  req.ImageKey,
	}
	if err := s.store.PutJobAt(ctx, jobKey, status); err != nil {
		return nil, fmt.Errorf("classify %s: %w", req.JobID, err)
	}

	inv, err := trigger.NewInvocation(events.TargetSummarize, events.SummarizeRequest{
		Bucket:       req.Bucket,
		AIResultsKey: jobs.AnalysisKey(req.JobID),
		JobKey:       jobKey,
		JobID:        req.JobID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.trigger.Fire(ctx, inv); err != nil {
		return nil, fmt.Errorf("classify %s: fire summarize: %w", req.JobID, err)
	}

	s.logger.InfoContext(ctx, "classification complete",
		"job_id", req.JobID,
		"findings", finding.Label,
		"confidence", finding.Confidence,
	)
	return doc, nil
}

// fail records reason as a terminal error JobDocument so readers stop
// reporting processing. No trigger is fired.
func (s *Stage) fail(ctx context.Context, req events.ClassifyRequest, jobKey string, reason error) error {
	doc := &jobs.JobDocument{
		JobID:     req.JobID,
		Status:    jobs.StatusError,
		Timestamp: s.now(),
		ImageKey:  req.ImageKey,
		Error:     reason.Error(),
	}
	if err := s.store.PutJobAt(ctx, jobKey, doc); err != nil {
		return fmt.Errorf("classify %s: %w (record failure: %v)", req.JobID, reason, err)
	}

	s.logger.WarnContext(ctx, "classification failed", "job_id", req.JobID, "reason", reason.Error())
	return fmt.Errorf("classify %s: %w: %s", req.JobID, reason, req.ImageKey)
}

// Handle is the trigger entry point.
func (s *Stage) Handle(ctx context.Context, req events.ClassifyRequest) error {
	_, err := s.Run(ctx, req)
	return err
}
