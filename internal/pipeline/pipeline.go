// Package pipeline drives one ingestion run: source discovery, isolated
// per-source extraction, image enrichment, normalization, quality
// classification and cross-source deduplication.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"city-events-pipeline/internal/classify"
	"city-events-pipeline/internal/dedupe"
	"city-events-pipeline/internal/metrics"
	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/normalize"
	"city-events-pipeline/internal/registry"
)

// DefaultSourceTimeout bounds one source's extraction call. The timeout
// cancels only that source; the run continues with the next one.
const DefaultSourceTimeout = 30 * time.Second

// Discoverer enumerates extraction capabilities for a region;
// satisfied by registry.Registry.
type Discoverer interface {
	Discover(region string) ([]registry.SourceDescriptor, error)
}

// ImageEnricher finds a representative image for an event detail page;
// satisfied by enrich.Enricher. An empty return means no image.
type ImageEnricher interface {
	FetchImage(ctx context.Context, url string) string
}

// Pipeline runs the ingestion flow for one region at a time. Sources
// execute sequentially to stay polite to upstream sites and keep
// failure attribution simple.
type Pipeline struct {
	log           zerolog.Logger
	registry      Discoverer
	enricher      ImageEnricher
	sourceTimeout time.Duration
	now           func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSourceTimeout overrides the per-source extraction timeout.
func WithSourceTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.sourceTimeout = d }
}

// WithClock overrides the pipeline's clock; tests pin it so year
// inference is deterministic.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline. The enricher may be nil, in which case image
// enrichment is skipped entirely.
func New(log zerolog.Logger, reg Discoverer, enricher ImageEnricher, opts ...Option) *Pipeline {
	p := &Pipeline{
		log:           log,
		registry:      reg,
		enricher:      enricher,
		sourceTimeout: DefaultSourceTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full pipeline for a region. Individual source
// failures are recorded in the statistics and never abort the batch;
// the only fatal error is a registry that cannot be built.
func (p *Pipeline) Run(ctx context.Context, region string) (Result, error) {
	stats := RunStats{
		RunID:     "run_" + uuid.NewString()[:8],
		Region:    region,
		StartedAt: p.now(),
	}

	descriptors, err := p.registry.Discover(region)
	if err != nil {
		return Result{}, fmt.Errorf("registry discovery failed for %q: %w", region, err)
	}

	var pool []models.RawCandidate

	for _, descriptor := range descriptors {
		stats.SourcesAttempted++

		candidates, err := p.runSource(ctx, descriptor, region)
		if err != nil {
			stats.SourcesFailed++
			stats.Sources = append(stats.Sources, SourceOutcome{
				Name:  descriptor.Name,
				Error: err.Error(),
			})
			metrics.SourcesAttempted.WithLabelValues(region, "failed").Inc()
			p.log.Error().
				Str("source", descriptor.Name).
				Err(err).
				Msg("source failed; continuing with remaining sources")
			continue
		}

		stats.SourcesSucceeded++
		stats.RawCount += len(candidates)
		stats.Sources = append(stats.Sources, SourceOutcome{
			Name:      descriptor.Name,
			Succeeded: true,
			RawCount:  len(candidates),
		})
		metrics.SourcesAttempted.WithLabelValues(region, "succeeded").Inc()

		pool = append(pool, candidates...)
	}

	events := p.process(ctx, pool, &stats)

	deduped := dedupe.Dedupe(events)
	stats.DuplicatesRemoved = len(events) - len(deduped)
	stats.CompletedAt = p.now()

	metrics.RunsTotal.WithLabelValues(region).Inc()
	metrics.CandidatesDropped.WithLabelValues(region, "no_date").Add(float64(stats.DroppedNoDate))
	metrics.CandidatesDropped.WithLabelValues(region, "quality").Add(float64(stats.DroppedQuality))
	metrics.CandidatesDropped.WithLabelValues(region, "duplicate").Add(float64(stats.DuplicatesRemoved))
	metrics.EventsEmitted.WithLabelValues(region).Add(float64(len(deduped)))

	p.log.Info().
		Str("run_id", stats.RunID).
		Str("region", region).
		Int("sources_attempted", stats.SourcesAttempted).
		Int("sources_succeeded", stats.SourcesSucceeded).
		Int("raw", stats.RawCount).
		Int("dropped_no_date", stats.DroppedNoDate).
		Int("dropped_quality", stats.DroppedQuality).
		Int("duplicates_removed", stats.DuplicatesRemoved).
		Int("events", len(deduped)).
		Msg("pipeline run complete")

	return Result{Events: deduped, Stats: stats}, nil
}

// runSource invokes one extraction capability under a timeout and a
// panic boundary, then tags every candidate with its origin.
func (p *Pipeline) runSource(ctx context.Context, descriptor registry.SourceDescriptor, region string) (candidates []models.RawCandidate, err error) {
	sourceCtx, cancel := context.WithTimeout(ctx, p.sourceTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			candidates = nil
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()

	raw, err := descriptor.Extractor.Extract(sourceCtx, region)
	if err != nil {
		return nil, err
	}

	tagged := make([]models.RawCandidate, 0, len(raw))
	for _, candidate := range raw {
		candidate.SourceName = descriptor.Name
		candidate.Region = region
		if descriptor.Curated {
			candidate.Curated = true
		}
		tagged = append(tagged, candidate)
	}

	return tagged, nil
}

// process runs enrichment, normalization and classification over the
// pooled candidates.
func (p *Pipeline) process(ctx context.Context, pool []models.RawCandidate, stats *RunStats) []models.Event {
	now := p.now()
	events := make([]models.Event, 0, len(pool))

	for _, candidate := range pool {
		if candidate.ImageURL == "" && candidate.SourceURL != "" && p.enricher != nil {
			// Best effort; an empty result leaves the candidate without
			// an image, never with a substitute.
			candidate.ImageURL = p.enricher.FetchImage(ctx, candidate.SourceURL)
		}

		event, ok := normalize.ToEvent(candidate, now)
		if !ok {
			stats.DroppedNoDate++
			p.log.Debug().
				Str("source", candidate.SourceName).
				Str("title", candidate.Title).
				Str("date_text", candidate.DateText).
				Msg("dropping candidate with unresolvable date")
			continue
		}

		if !classify.IsRealEvent(event) {
			stats.DroppedQuality++
			continue
		}

		events = append(events, event)
	}

	return events
}
