package sources

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"city-events-pipeline/internal/registry"
)

type stubFetcher struct {
	pages map[string]string
	err   error
}

func (s stubFetcher) FetchPage(_ context.Context, url string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, ok := s.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return body, nil
}

const calendarPage = `<!DOCTYPE html>
<html><body>
<nav><a href="/about">About Us</a></nav>
<div class="event-card">
  <h3><a href="/events/symphony-night">Symphony Under the Stars</a></h3>
  <span class="date">July 12, 2025</span>
  <img src="/img/symphony.jpg">
</div>
<div class="event-card">
  <h3><a href="https://tickets.example.com/jazz">Jazz Festival Weekend — August 2, 2025</a></h3>
</div>
<div class="event-card">
  <h3><a href="/events/undated">Mystery Show With No Date Anywhere</a></h3>
  <span>Details coming</span>
</div>
<footer><a href="#top">Back to top</a></footer>
</body></html>`

func newListingSource(t *testing.T, fetcher PageFetcher) *ListingSource {
	t.Helper()
	src, err := NewListingSource(registry.Definition{
		Name:    "vogue",
		URLs:    []string{"https://vogue.example.com/calendar"},
		Venue:   "Vogue Theatre",
		Address: "918 Granville St",
	}, fetcher, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewListingSource failed: %v", err)
	}
	return src
}

func TestListingExtract(t *testing.T) {
	src := newListingSource(t, stubFetcher{pages: map[string]string{
		"https://vogue.example.com/calendar": calendarPage,
	}})

	got, err := src.Extract(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.Title != "Symphony Under the Stars" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.SourceURL != "https://vogue.example.com/events/symphony-night" {
		t.Errorf("relative href not resolved: %q", first.SourceURL)
	}
	if first.VenueName != "Vogue Theatre" || first.VenueAddress != "918 Granville St" {
		t.Errorf("venue defaults not applied: %q, %q", first.VenueName, first.VenueAddress)
	}

	second := got[1]
	if second.SourceURL != "https://tickets.example.com/jazz" {
		t.Errorf("absolute href changed: %q", second.SourceURL)
	}
}

func TestListingDatePairing(t *testing.T) {
	src := newListingSource(t, stubFetcher{pages: map[string]string{
		"https://vogue.example.com/calendar": calendarPage,
	}})

	got, err := src.Extract(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// Date in a sibling span inside the card.
	if got[0].DateText == "" || got[0].DateText == got[0].Title {
		t.Errorf("sibling date not picked up: %q", got[0].DateText)
	}
	// Date embedded in the anchor text itself.
	if got[1].DateText != got[1].Title {
		t.Errorf("inline date should keep the anchor text: %q", got[1].DateText)
	}
}

func TestListingFindsCardImage(t *testing.T) {
	src := newListingSource(t, stubFetcher{pages: map[string]string{
		"https://vogue.example.com/calendar": `<div>
			<a href="/events/show"><img src="/img/show.jpg">Rock Concert July 3, 2025</a>
		</div>`,
	}})

	got, err := src.Extract(context.Background(), "Vancouver")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].ImageURL != "https://vogue.example.com/img/show.jpg" {
		t.Errorf("ImageURL = %q", got[0].ImageURL)
	}
}

func TestListingFetchFailureFailsSource(t *testing.T) {
	src := newListingSource(t, stubFetcher{err: fmt.Errorf("connection reset")})
	if _, err := src.Extract(context.Background(), "Vancouver"); err == nil {
		t.Error("Extract succeeded despite fetch failure")
	}
}

func TestListingRequiresVenueAndURLs(t *testing.T) {
	if _, err := NewListingSource(registry.Definition{Name: "x", Venue: "V"}, stubFetcher{}, zerolog.Nop()); err == nil {
		t.Error("source built with no urls")
	}
	if _, err := NewListingSource(registry.Definition{Name: "x", URLs: []string{"https://a"}}, stubFetcher{}, zerolog.Nop()); err == nil {
		t.Error("source built with no venue")
	}
}
