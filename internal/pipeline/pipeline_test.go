package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/registry"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type fakeExtractor struct {
	candidates []models.RawCandidate
	err        error
	panics     bool
}

func (f fakeExtractor) Extract(context.Context, string) ([]models.RawCandidate, error) {
	if f.panics {
		panic("nil pointer dereference in page parser")
	}
	return f.candidates, f.err
}

type fakeRegistry struct {
	descriptors []registry.SourceDescriptor
	err         error
}

func (f fakeRegistry) Discover(string) ([]registry.SourceDescriptor, error) {
	return f.descriptors, f.err
}

type fakeEnricher struct {
	images  map[string]string
	fetched []string
}

func (f *fakeEnricher) FetchImage(_ context.Context, url string) string {
	f.fetched = append(f.fetched, url)
	return f.images[url]
}

func newTestPipeline(reg Discoverer, enricher ImageEnricher) *Pipeline {
	return New(zerolog.Nop(), reg, enricher, WithClock(func() time.Time { return testNow }))
}

func TestRunFullScenario(t *testing.T) {
	// Three sources: one healthy, one broken, one yielding a duplicate of
	// a healthy source's event under a different venue spelling.
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "orpheum", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{
				Title:     "Vancouver Symphony: Summer Nights Concert",
				DateText:  "June 20, 2025",
				VenueName: "Orpheum Theatre",
				SourceURL: "https://example.com/events/summer-nights",
			},
			{
				Title:     "Late Night Comedy Show",
				DateText:  "June 21, 2025",
				VenueName: "Orpheum Theatre",
				SourceURL: "https://example.com/events/comedy",
			},
		}}},
		{Name: "broken-site", Extractor: fakeExtractor{err: fmt.Errorf("connection refused")}},
		{Name: "aggregator", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{
				Title:     "Vancouver Symphony: Summer Nights Concert",
				DateText:  "June 20, 2025",
				VenueName: "Orpheum Theater",
				SourceURL: "https://aggregator.example.com/summer-nights",
			},
		}}},
	}}

	result, err := newTestPipeline(reg, nil).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(result.Events), result.Events)
	}
	if result.Events[0].SourceName != "orpheum" {
		t.Errorf("first occurrence should win dedup, retained source %q", result.Events[0].SourceName)
	}

	stats := result.Stats
	if stats.SourcesAttempted != 3 {
		t.Errorf("SourcesAttempted = %d, want 3", stats.SourcesAttempted)
	}
	if stats.SourcesSucceeded != 2 {
		t.Errorf("SourcesSucceeded = %d, want 2", stats.SourcesSucceeded)
	}
	if stats.SourcesFailed != 1 {
		t.Errorf("SourcesFailed = %d, want 1", stats.SourcesFailed)
	}
	if stats.RawCount != 3 {
		t.Errorf("RawCount = %d, want 3", stats.RawCount)
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", stats.DuplicatesRemoved)
	}
	if stats.RunID == "" || stats.Region != "Vancouver" {
		t.Errorf("stats missing run identity: %+v", stats)
	}
}

func TestRunRecordsPerSourceOutcomes(t *testing.T) {
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "good", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{Title: "Summer Jazz Festival Opening", DateText: "July 1, 2025", VenueName: "Malkin Bowl"},
		}}},
		{Name: "bad", Extractor: fakeExtractor{err: fmt.Errorf("HTTP 503")}},
	}}

	result, err := newTestPipeline(reg, nil).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Stats.Sources) != 2 {
		t.Fatalf("got %d source outcomes, want 2", len(result.Stats.Sources))
	}
	good, bad := result.Stats.Sources[0], result.Stats.Sources[1]
	if !good.Succeeded || good.RawCount != 1 || good.Error != "" {
		t.Errorf("healthy source outcome wrong: %+v", good)
	}
	if bad.Succeeded || bad.Error != "HTTP 503" {
		t.Errorf("failed source outcome wrong: %+v", bad)
	}
}

func TestRunRecoversFromPanickingSource(t *testing.T) {
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "panicky", Extractor: fakeExtractor{panics: true}},
		{Name: "steady", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{Title: "Folk Music Festival Weekend", DateText: "August 2, 2025", VenueName: "Jericho Beach Park"},
		}}},
	}}

	result, err := newTestPipeline(reg, nil).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("a panicking source aborted the run: %v", err)
	}
	if result.Stats.SourcesFailed != 1 {
		t.Errorf("SourcesFailed = %d, want 1", result.Stats.SourcesFailed)
	}
	if len(result.Events) != 1 {
		t.Errorf("sources after the panic did not run: got %d events, want 1", len(result.Events))
	}
}

func TestRunTagsCandidatesWithOrigin(t *testing.T) {
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "vogue", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{Title: "An Evening of Chamber Music", DateText: "July 10, 2025", VenueName: "Vogue Theatre"},
		}}},
	}}

	result, err := newTestPipeline(reg, nil).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(result.Events))
	}
	event := result.Events[0]
	if event.SourceName != "vogue" {
		t.Errorf("SourceName = %q, want %q", event.SourceName, "vogue")
	}
	if event.Region != "Vancouver" {
		t.Errorf("Region = %q, want %q", event.Region, "Vancouver")
	}
}

func TestRunCuratedDescriptorMarksCandidates(t *testing.T) {
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "manual", Curated: true, Extractor: fakeExtractor{candidates: []models.RawCandidate{
			// Short generic title that the classifier would normally
			// reject; the curated flag must carry it through.
			{Title: "Gala", DateText: "2025-09-01", VenueName: "Hotel Vancouver"},
		}}},
	}}

	result, err := newTestPipeline(reg, nil).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("curated candidate was dropped: %+v", result.Stats)
	}
	if !result.Events[0].Curated {
		t.Error("curated flag lost on the way to the event record")
	}
}

func TestRunCountsDateDrops(t *testing.T) {
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "listing", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{Title: "Indie Rock Concert Night", DateText: "Coming soon", VenueName: "Fox Cabaret"},
			{Title: "Indie Rock Concert Night", DateText: "July 4, 2025", VenueName: "Fox Cabaret"},
		}}},
	}}

	result, err := newTestPipeline(reg, nil).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Stats.DroppedNoDate != 1 {
		t.Errorf("DroppedNoDate = %d, want 1", result.Stats.DroppedNoDate)
	}
	if len(result.Events) != 1 {
		t.Errorf("got %d events, want 1", len(result.Events))
	}
}

func TestRunCountsQualityDrops(t *testing.T) {
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "listing", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{Title: "Buy Tickets", DateText: "July 4, 2025", VenueName: "Fox Cabaret"},
		}}},
	}}

	result, err := newTestPipeline(reg, nil).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Stats.DroppedQuality != 1 {
		t.Errorf("DroppedQuality = %d, want 1", result.Stats.DroppedQuality)
	}
	if len(result.Events) != 0 {
		t.Errorf("navigational title survived: %+v", result.Events)
	}
}

func TestRunEnrichesOnlyCandidatesWithoutImages(t *testing.T) {
	reg := fakeRegistry{descriptors: []registry.SourceDescriptor{
		{Name: "listing", Extractor: fakeExtractor{candidates: []models.RawCandidate{
			{
				Title:     "Jazz Quartet Live Performance",
				DateText:  "July 8, 2025",
				VenueName: "Frankie's Jazz Club",
				SourceURL: "https://example.com/events/jazz-quartet",
			},
			{
				Title:     "Blues Night Concert Series",
				DateText:  "July 9, 2025",
				VenueName: "Frankie's Jazz Club",
				SourceURL: "https://example.com/events/blues-night",
				ImageURL:  "https://example.com/img/blues.jpg",
			},
		}}},
	}}

	enricher := &fakeEnricher{images: map[string]string{
		"https://example.com/events/jazz-quartet": "https://example.com/img/jazz.jpg",
	}}

	result, err := newTestPipeline(reg, enricher).Run(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(enricher.fetched) != 1 || enricher.fetched[0] != "https://example.com/events/jazz-quartet" {
		t.Errorf("enricher fetched %v, want only the image-less candidate", enricher.fetched)
	}
	if result.Events[0].ImageURL != "https://example.com/img/jazz.jpg" {
		t.Errorf("enriched image not applied: %q", result.Events[0].ImageURL)
	}
	if result.Events[1].ImageURL != "https://example.com/img/blues.jpg" {
		t.Errorf("existing image overwritten: %q", result.Events[1].ImageURL)
	}
}

func TestRunDiscoveryFailureIsFatal(t *testing.T) {
	reg := fakeRegistry{err: fmt.Errorf("no sources configured for region %q", "Atlantis")}
	if _, err := newTestPipeline(reg, nil).Run(context.Background(), "Atlantis"); err == nil {
		t.Error("Run succeeded with a failing registry")
	}
}
