package classify

import (
	"reflect"
	"testing"

	"city-events-pipeline/internal/models"
)

func event(title, venue string) models.Event {
	return models.Event{
		Title:   title,
		ISODate: "2025-11-06",
		Venue:   models.Venue{Name: venue, City: "Vancouver"},
		Region:  "Vancouver",
	}
}

func TestIsRealEventAccepts(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
	}{
		{"colon in title", event("Hamilton: An American Musical", "Queen Elizabeth Theatre")},
		{"event keyword", event("Jazz Concert Under the Stars", "Some Bar")},
		{"keyword festival", event("Winter Lights Festival", "Stanley Park")},
		{"trademark glyph", event("Cirque™", "Concord Pacific Place")},
		{"self-descriptive length", event("An Evening with the Vancouver Writers Collective", "Back Room")},
		{"allow-listed venue", event("The National", "Orpheum Theatre")},
		{"allow-listed venue alternate spelling", event("The National", "Orpheum Theater")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsRealEvent(tt.event) {
				t.Errorf("IsRealEvent rejected %q at %q", tt.event.Title, tt.event.Venue.Name)
			}
		})
	}
}

func TestIsRealEventRejects(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
	}{
		{"empty title", event("", "Orpheum Theatre")},
		{"short title", event("Go", "Orpheum Theatre")},
		{"blocked exact", event("Upcoming Events", "Orpheum Theatre")},
		{"blocked prefix", event("Today's Events", "Orpheum Theatre")},
		{"blocked weekday", event("Friday", "Orpheum Theatre")},
		{"blocked leasing", event("Leasing", "Orpheum Theatre")},
		{"blocked legal", event("Privacy Policy", "Orpheum Theatre")},
		{"title is a date", event("November 6, 2025", "Orpheum Theatre")},
		{"title is a date with time", event("June 8 2025 @ 7:30 pm", "Orpheum Theatre")},
		{"title is numeric date", event("11/6/2025", "Orpheum Theatre")},
		{"starts with bare month", event("June Happenings", "Orpheum Theatre")},
		{"single generic word", event("Music", "Orpheum Theatre")},
		{"placeholder venue TBA", event("An Otherwise Fine Gathering Name", "TBA")},
		{"placeholder venue various", event("An Otherwise Fine Gathering Name", "Various")},
		{"venue is region name", event("An Otherwise Fine Gathering Name", "Vancouver")},
		{"no accepting heuristic", event("Something Here", "Some Bar")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsRealEvent(tt.event) {
				t.Errorf("IsRealEvent accepted %q at %q", tt.event.Title, tt.event.Venue.Name)
			}
		})
	}
}

func TestIsRealEventCuratedBypass(t *testing.T) {
	e := event("Friday", "TBA")
	e.Curated = true
	if !IsRealEvent(e) {
		t.Error("curated candidate was rejected; manual input is trusted")
	}
}

// The classifier never mutates its input.
func TestIsRealEventPure(t *testing.T) {
	e := event("Jazz Concert", "Orpheum Theatre")
	before := e
	IsRealEvent(e)
	if !reflect.DeepEqual(e, before) {
		t.Error("IsRealEvent mutated the event")
	}
}
