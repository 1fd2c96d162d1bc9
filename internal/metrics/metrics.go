// Package metrics exposes pipeline counters in Prometheus format.
//
// All recording methods are safe on a nil *Metrics so stages can run
// uninstrumented in tests and the CLI.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

const namespace = "triage"

// Metrics holds the pipeline collectors and the registry they are bound to.
type Metrics struct {
	registry *prometheus.Registry

	uploads   *prometheus.CounterVec
	listener  *prometheus.CounterVec
	stageRuns *prometheus.CounterVec
	stageTime *prometheus.HistogramVec
	summaries *prometheus.CounterVec
	fires     *prometheus.CounterVec
}

// New creates a registry with Go runtime and process collectors plus the
// pipeline counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload requests by outcome (accepted or a rejection reason).",
		}, []string{"outcome"}),
		listener: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_events_total",
			Help:      "Object-created events by listener outcome.",
		}, []string{"outcome"}),
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Stage invocations by stage and outcome.",
		}, []string{"stage", "outcome"}),
		stageTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Stage invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Written summaries by provenance (model or fallback).",
		}, []string{"provenance"}),
		fires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_fires_total",
			Help:      "Trigger enqueue attempts by target and outcome.",
		}, []string{"target", "outcome"}),
	}

	reg.MustRegister(m.uploads, m.listener, m.stageRuns, m.stageTime, m.summaries, m.fires)
	return m
}

// Handler serves the registry at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Listener(outcome string) {
	if m == nil {
		return
	}
	m.listener.WithLabelValues(outcome).Inc()
}

// Stage records one stage run. A nil err counts as "ok".
func (m *Metrics) Stage(stage string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.stageRuns.WithLabelValues(stage, outcome(err)).Inc()
	m.stageTime.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Summary(fallback bool) {
	if m == nil {
		return
	}
	provenance := "model"
	if fallback {
		provenance = "fallback"
	}
	m.summaries.WithLabelValues(provenance).Inc()
}

// Instrument wraps t so every Fire is counted by target and outcome.
func (m *Metrics) Instrument(t trigger.Trigger) trigger.Trigger {
	if m == nil {
		return t
	}
	return trigger.Func(func(ctx context.Context, inv trigger.Invocation) error {
		err := t.Fire(ctx, inv)
		m.fires.WithLabelValues(inv.Target, outcome(err)).Inc()
		return err
	})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
