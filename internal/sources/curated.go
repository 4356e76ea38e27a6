package sources

import (
	"context"
	"fmt"

	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/registry"
)

// CuratedSource yields events listed directly in configuration. Used
// for venues that publish no machine-readable calendar; an operator
// maintains the entries by hand and they bypass quality screening.
type CuratedSource struct {
	name   string
	venue  string
	events []registry.CuratedEvent
}

// NewCuratedSource builds a curated source from its definition.
func NewCuratedSource(def registry.Definition) (*CuratedSource, error) {
	if len(def.Events) == 0 {
		return nil, fmt.Errorf("curated source %q has no events", def.Name)
	}
	return &CuratedSource{
		name:   def.Name,
		venue:  def.Venue,
		events: def.Events,
	}, nil
}

// Extract returns the configured entries as raw candidates.
func (s *CuratedSource) Extract(ctx context.Context, region string) ([]models.RawCandidate, error) {
	candidates := make([]models.RawCandidate, 0, len(s.events))
	for _, entry := range s.events {
		venue := entry.Venue
		if venue == "" {
			venue = s.venue
		}
		candidates = append(candidates, models.RawCandidate{
			Title:        entry.Title,
			DateText:     entry.Date,
			VenueName:    venue,
			VenueAddress: entry.Address,
			SourceURL:    entry.URL,
			ImageURL:     entry.ImageURL,
			Curated:      true,
		})
	}
	return candidates, nil
}
