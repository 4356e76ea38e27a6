// Package metrics exposes Prometheus counters for pipeline runs. The
// API server mounts the default registry at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed pipeline runs per region.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Completed pipeline runs.",
	}, []string{"region"})

	// SourcesAttempted counts source executions per region and outcome.
	SourcesAttempted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_sources_attempted_total",
		Help: "Source executions by outcome (succeeded or failed).",
	}, []string{"region", "outcome"})

	// CandidatesDropped counts dropped candidates per region and reason
	// (no_date, quality, duplicate).
	CandidatesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_candidates_dropped_total",
		Help: "Candidates dropped during normalization, classification and dedup.",
	}, []string{"region", "reason"})

	// EventsEmitted counts events in final pipeline output per region.
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_events_emitted_total",
		Help: "Events in the final deduplicated output.",
	}, []string{"region"})
)
