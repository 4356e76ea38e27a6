package dedupe

import (
	"reflect"
	"testing"

	"city-events-pipeline/internal/models"
)

func event(title, date, venue, source string) models.Event {
	return models.Event{
		Title:      title,
		ISODate:    date,
		Venue:      models.Venue{Name: venue, City: "Vancouver"},
		SourceName: source,
		Region:     "Vancouver",
	}
}

func TestDedupeFirstSeenWins(t *testing.T) {
	input := []models.Event{
		event("The National", "2025-11-06", "Orpheum Theatre", "orpheum"),
		event("The National", "2025-11-06", "Orpheum Theater", "ticketweb"),
	}

	got := Dedupe(input)
	if len(got) != 1 {
		t.Fatalf("Dedupe kept %d events, want 1", len(got))
	}
	if got[0].SourceName != "orpheum" {
		t.Errorf("retained source = %s, want orpheum (first seen)", got[0].SourceName)
	}
}

func TestDedupeVenueFoldingEquivalence(t *testing.T) {
	a := event("The National", "2025-11-06", "Orpheum Theatre", "a")
	b := event("The National", "2025-11-06", "Orpheum Theater", "b")

	if KeyFor(a) != KeyFor(b) {
		t.Errorf("keys differ for folded venue spellings: %+v vs %+v", KeyFor(a), KeyFor(b))
	}
}

func TestDedupeFillerWords(t *testing.T) {
	a := event("Live Nation Presents The National", "2025-11-06", "Orpheum Theatre", "a")
	b := event("Live Nation: The National", "2025-11-06", "Orpheum Theatre", "b")

	if KeyFor(a) != KeyFor(b) {
		t.Errorf("keys differ for filler-word variants: %+v vs %+v", KeyFor(a), KeyFor(b))
	}
}

func TestDedupeKeepsDistinctEvents(t *testing.T) {
	input := []models.Event{
		event("The National", "2025-11-06", "Orpheum Theatre", "a"),
		event("The National", "2025-11-07", "Orpheum Theatre", "a"), // different night
		event("The War on Drugs", "2025-11-06", "Orpheum Theatre", "a"),
		event("The National", "2025-11-06", "Commodore Ballroom", "a"), // different venue
	}

	got := Dedupe(input)
	if len(got) != len(input) {
		t.Errorf("Dedupe kept %d events, want %d", len(got), len(input))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	input := []models.Event{
		event("The National", "2025-11-06", "Orpheum Theatre", "a"),
		event("The National", "2025-11-06", "Orpheum Theater", "b"),
		event("The War on Drugs", "2025-11-06", "Commodore Ballroom", "a"),
	}

	once := Dedupe(input)
	twice := Dedupe(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe is not idempotent: %v vs %v", once, twice)
	}
}

func TestDedupeOrderPreserving(t *testing.T) {
	input := []models.Event{
		event("C Show", "2025-11-08", "Venue C", "a"),
		event("A Show", "2025-11-06", "Venue A", "a"),
		event("B Show", "2025-11-07", "Venue B", "a"),
	}

	got := Dedupe(input)
	for i := range input {
		if got[i].Title != input[i].Title {
			t.Fatalf("order changed at %d: got %s, want %s", i, got[i].Title, input[i].Title)
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Dedupe(nil) = %v, want empty", got)
	}
}
