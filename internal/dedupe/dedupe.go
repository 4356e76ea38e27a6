// Package dedupe collapses records that represent the same real-world
// event across sources within a single pipeline run. Identity is
// run-scoped: keys are recomputed every run and never persisted.
package dedupe

import (
	"regexp"
	"strings"

	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/normalize"
)

// fillerWords carry no identity in a title: "X presents Y" and "Y" are
// the same event announced two ways.
var fillerWords = []string{"presents", "featuring", "feat", "ft", "with"}

var (
	separatorRE = regexp.MustCompile(`[:\-–—|/&+]`)
	punctRE     = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spaceRE     = regexp.MustCompile(`\s+`)
)

// Key is the normalized (title, date, venue) triple used to detect
// same-event duplicates within one run.
type Key struct {
	Title string
	Date  string
	Venue string
}

// KeyFor computes the dedup key for an event.
func KeyFor(event models.Event) Key {
	return Key{
		Title: normalizeTitle(event.Title),
		Date:  event.ISODate,
		Venue: normalize.FoldVenueName(event.Venue.Name),
	}
}

// Dedupe removes duplicate events, preserving input order; of two
// records with equal keys, the first encountered is retained.
func Dedupe(events []models.Event) []models.Event {
	seen := make(map[Key]bool, len(events))
	result := make([]models.Event, 0, len(events))

	for _, event := range events {
		key := KeyFor(event)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, event)
	}

	return result
}

// normalizeTitle reduces a title to its identity: lowercase, separators
// and punctuation stripped, filler words removed.
func normalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = separatorRE.ReplaceAllString(s, " ")
	s = punctRE.ReplaceAllString(s, "")
	s = spaceRE.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if isFiller(w) {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}

func isFiller(word string) bool {
	for _, f := range fillerWords {
		if word == f {
			return true
		}
	}
	return false
}
