package api

import (
	"context"
	"fmt"

	"github.com/Sakshi281205/sleeppeddlers/internal/classification"
	"github.com/Sakshi281205/sleeppeddlers/internal/config"
	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/internal/intake"
	"github.com/Sakshi281205/sleeppeddlers/internal/status"
	"github.com/Sakshi281205/sleeppeddlers/internal/summarization"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

// Domain holds the pipeline stages and readers that comprise the API.
type Domain struct {
	Validator      *events.Validator
	Intake         *intake.Stage
	Listener       *intake.Listener
	Classification *classification.Stage
	Summarization  *summarization.Stage
	Status         *status.Reader
}

// NewDomain creates every stage from the API runtime. Stages invoke their
// successor through the runtime's outbound trigger.
func NewDomain(ctx context.Context, runtime *Runtime, cfg *config.Config) (*Domain, error) {
	validator, err := events.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("compile event schemas: %w", err)
	}

	model, err := summarization.NewModel(ctx, &cfg.Model, nil)
	if err != nil {
		return nil, fmt.Errorf("summarization model: %w", err)
	}
	summarizer := summarization.NewSummarizer(model, cfg.Model.TimeoutDuration(), runtime.Logger)

	reader, err := status.NewReader(runtime.Jobs, runtime.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Domain{
		Validator:      validator,
		Intake:         intake.New(runtime.Jobs, runtime.Policy, runtime.Logger, runtime.Metrics),
		Listener:       intake.NewListener(runtime.Jobs, runtime.Policy, runtime.Trigger, runtime.Logger, runtime.Metrics),
		Classification: classification.New(runtime.Jobs, runtime.Trigger, runtime.Logger, runtime.Metrics),
		Summarization:  summarization.NewStage(runtime.Jobs, summarizer, runtime.Logger, runtime.Metrics),
		Status:         reader,
	}, nil
}

// Register binds each invocation target to its stage. Payloads are
// schema-validated before the stage sees them.
func (d *Domain) Register(reg *trigger.Registry) {
	reg.Register(
		events.TargetObjectCreated,
		events.Handle(d.Validator, events.TargetObjectCreated, d.Listener.Handle),
	)
	reg.Register(
		events.TargetClassify,
		events.Handle(d.Validator, events.TargetClassify, d.Classification.Handle),
	)
	reg.Register(
		events.TargetSummarize,
		events.Handle(d.Validator, events.TargetSummarize, d.Summarization.Handle),
	)
}
