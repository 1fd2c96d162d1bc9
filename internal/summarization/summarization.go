// Package summarization turns an analysis document into a clinical summary.
//
// The Summarizer core is shared by two entry adapters: the event-triggered
// Stage and the summarize command. A remote model is tried first; any
// failure selects a deterministic template instead, so a classified job
// always reaches a result.
package summarization

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
)

// Summary is the Summarizer's output.
type Summary struct {
	Text        string    `json:"summary"`
	ModelUsed   string    `json:"model_used"`
	GeneratedAt time.Time `json:"generated_at"`
	// Reason explains why the fallback was used. Empty on model success.
	Reason string `json:"-"`
}

// Fallback reports whether the text came from a template.
func (s Summary) Fallback() bool {
	return s.ModelUsed == jobs.FallbackModel
}

// Summarizer wraps a Model with a per-call timeout and the fallback path.
type Summarizer struct {
	model   Model
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewSummarizer(model Model, timeout time.Duration, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		model:   model,
		timeout: timeout,
		logger:  logger.With("component", "summarizer"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewModel builds the configured provider. base is the HTTP transport for
// watsonx; nil uses the default.
func NewModel(ctx context.Context, cfg *Config, base http.RoundTripper) (Model, error) {
	switch cfg.Provider {
	case ProviderWatsonx:
		return NewWatsonx(cfg, base), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderNone, "":
		return NoModel{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Summarize never fails: a model failure yields the fallback template.
func (s *Summarizer) Summarize(ctx context.Context, analysis *jobs.AnalysisDocument) Summary {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out := s.model.Generate(callCtx, BuildPrompt(analysis))
	if out.OK {
		return Summary{
			Text:        out.Text,
			ModelUsed:   s.model.Name(),
			GeneratedAt: s.now(),
		}
	}

	s.logger.WarnContext(ctx, "model failed, using fallback",
		"job_id", analysis.JobID,
		"model", s.model.Name(),
		"reason", out.Reason,
	)
	return Summary{
		Text:        Fallback(analysis),
		ModelUsed:   jobs.FallbackModel,
		GeneratedAt: s.now(),
		Reason:      out.Reason,
	}
}
