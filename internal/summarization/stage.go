package summarization

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/metrics"
)

// Stage is the event-triggered adapter over the Summarizer. It is terminal:
// nothing is fired after the result is written.
type Stage struct {
	store      *jobs.Store
	summarizer *Summarizer
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewStage(store *jobs.Store, summarizer *Summarizer, logger *slog.Logger, m *metrics.Metrics) *Stage {
	return &Stage{
		store:      store,
		summarizer: summarizer,
		logger:     logger.With("stage", "summarization"),
		metrics:    m,
	}
}

// Run reads the analysis at req.AIResultsKey and writes the ResultDocument.
// The job id comes from req.JobKey, falling back to req.JobID. Re-runs
// overwrite the result.
func (s *Stage) Run(ctx context.Context, req events.SummarizeRequest) (doc *jobs.ResultDocument, err error) {
	start := time.Now()
	defer func() { s.metrics.Stage(events.TargetSummarize, start, err) }()

	id := jobs.IDFromJobKey(req.JobKey)
	if id == "" {
		id = req.JobID
	}
	if id == "" {
		return nil, fmt.Errorf("summarize: no job id in %q", req.JobKey)
	}

	analysis, err := s.store.GetAnalysisAt(ctx, req.AIResultsKey)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", id, err)
	}

	summary := s.summarizer.Summarize(ctx, analysis)
	s.metrics.Summary(summary.Fallback())

	doc = &jobs.ResultDocument{
		JobID:           id,
		AIAnalysis:      *analysis,
		ClinicalSummary: summary.Text,
		ModelUsed:       summary.ModelUsed,
		GeneratedAt:     summary.GeneratedAt,
	}
	if err := s.store.PutResult(ctx, doc); err != nil {
		return nil, fmt.Errorf("summarize %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "result written",
		"job_id", id,
		"model_used", doc.ModelUsed,
		"key", jobs.ResultKey(id),
	)
	return doc, nil
}

// Handle is the trigger entry point.
func (s *Stage) Handle(ctx context.Context, req events.SummarizeRequest) error {
	_, err := s.Run(ctx, req)
	return err
}
