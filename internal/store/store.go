// Package store persists pipeline output. SQLite backs local runs and
// the read API; DynamoDB backs the cloud deployment; S3 holds the
// published feed snapshot.
package store

import (
	"context"
	"strings"

	"city-events-pipeline/internal/models"
)

// EventStore is the persistence surface the pipeline and the API share.
// Upserts are keyed by Event.ID, so re-running the pipeline refreshes
// records instead of duplicating them.
type EventStore interface {
	UpsertEvents(ctx context.Context, events []models.Event) error
	QueryEvents(ctx context.Context, filter Filter) ([]models.Event, int, error)
	DeleteByRegion(ctx context.Context, region string) error
	Close() error
}

// Filter narrows a query. Zero values mean "no constraint"; Page and
// Limit are expected to be normalized by the caller (the API layer
// applies its configured defaults and caps).
type Filter struct {
	Region   string
	City     string
	DateFrom string
	DateTo   string
	Query    string
	Venue    string
	Category string
	Page     int
	Limit    int
}

// matches reports whether an event satisfies every set constraint.
// Used by backends that filter in memory after a coarse fetch.
func (f Filter) matches(e models.Event) bool {
	if f.Region != "" && e.Region != f.Region {
		return false
	}
	if f.City != "" && !strings.EqualFold(e.Venue.City, f.City) {
		return false
	}
	if f.DateFrom != "" && e.ISODate < f.DateFrom {
		return false
	}
	if f.DateTo != "" && e.ISODate > f.DateTo {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Query)) {
		return false
	}
	if f.Venue != "" && !strings.Contains(strings.ToLower(e.Venue.Name), strings.ToLower(f.Venue)) {
		return false
	}
	if f.Category != "" {
		found := false
		for _, c := range e.Categories {
			if strings.EqualFold(c, f.Category) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// page slices one page out of the filtered result set.
func (f Filter) page(events []models.Event) []models.Event {
	if f.Limit <= 0 {
		return events
	}
	pageNum := f.Page
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * f.Limit
	if start >= len(events) {
		return nil
	}
	end := start + f.Limit
	if end > len(events) {
		end = len(events)
	}
	return events[start:end]
}
