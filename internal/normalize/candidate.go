package normalize

import (
	"time"

	"city-events-pipeline/internal/models"
)

// ToEvent builds a canonical Event from a raw candidate. The second
// return value is false when the candidate's date text cannot be
// resolved to a valid calendar date; such candidates do not become
// events.
func ToEvent(raw models.RawCandidate, now time.Time) (models.Event, bool) {
	isoDate, ok := ResolveDate(raw.DateText, now)
	if !ok {
		return models.Event{}, false
	}

	title := CleanTitle(raw.Title)
	venueName := CleanText(raw.VenueName)

	return models.Event{
		ID:    models.GenerateEventID(title, isoDate, venueName),
		Title: title,
		ISODate: isoDate,
		Venue: models.Venue{
			Name:    venueName,
			Address: CleanText(raw.VenueAddress),
			City:    raw.Region,
		},
		SourceURL:  raw.SourceURL,
		ImageURL:   raw.ImageURL,
		Region:     raw.Region,
		Categories: Categorize(title),
		SourceName: raw.SourceName,
		Curated:    raw.Curated,
	}, true
}
