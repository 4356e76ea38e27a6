package models

import "time"

// RawCandidate is the output of one extraction capability before
// normalization. It is created by a source and consumed exactly once by
// the pipeline; it is never mutated after creation.
type RawCandidate struct {
	Title        string `json:"title"`
	DateText     string `json:"dateText"`
	VenueName    string `json:"venueName"`
	VenueAddress string `json:"venueAddress,omitempty"`
	SourceURL    string `json:"sourceURL,omitempty"`
	ImageURL     string `json:"imageURL,omitempty"`
	SourceName   string `json:"sourceName"`
	Region       string `json:"region"`

	// Curated marks candidates from manually maintained sources, which
	// bypass quality classification.
	Curated bool `json:"curated,omitempty"`
}

// Event is the canonical, pipeline-owned representation of a single
// event. ISODate is always a valid YYYY-MM-DD calendar date; candidates
// whose date cannot be resolved never become Events.
type Event struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	ISODate    string   `json:"isoDate"`
	Venue      Venue    `json:"venue"`
	SourceURL  string   `json:"sourceURL,omitempty"`
	ImageURL   string   `json:"imageURL,omitempty"` // empty means no image, never a placeholder
	Region     string   `json:"region"`
	Categories []string `json:"categories"`
	SourceName string   `json:"sourceName"`
	Curated    bool     `json:"curated,omitempty"`
}

// Venue identifies where an event takes place.
type Venue struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city"`
}

// FeedOutput is the complete JSON structure published as the event feed
// snapshot after a pipeline run.
type FeedOutput struct {
	Metadata FeedMetadata `json:"metadata"`
	Events   []Event      `json:"events"`
}

// FeedMetadata describes one published feed snapshot.
type FeedMetadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
	TotalEvents int       `json:"totalEvents"`
	Sources     []string  `json:"sources"`
	Region      string    `json:"region"`
	Version     string    `json:"version"`
}

// NewFeedMetadata creates metadata for a feed snapshot.
func NewFeedMetadata(region string, totalEvents int, sources []string) FeedMetadata {
	return FeedMetadata{
		LastUpdated: time.Now(),
		TotalEvents: totalEvents,
		Sources:     sources,
		Region:      region,
		Version:     "1.0.0",
	}
}
