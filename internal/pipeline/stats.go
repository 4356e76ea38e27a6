package pipeline

import (
	"time"

	"city-events-pipeline/internal/models"
)

// Result is the output of one pipeline run.
type Result struct {
	Events []models.Event `json:"events"`
	Stats  RunStats       `json:"stats"`
}

// RunStats records what happened during a run. Counts are exact:
// RawCount equals the sum of drops plus duplicates plus emitted events.
type RunStats struct {
	RunID             string          `json:"runId"`
	Region            string          `json:"region"`
	StartedAt         time.Time       `json:"startedAt"`
	CompletedAt       time.Time       `json:"completedAt"`
	SourcesAttempted  int             `json:"sourcesAttempted"`
	SourcesSucceeded  int             `json:"sourcesSucceeded"`
	SourcesFailed     int             `json:"sourcesFailed"`
	RawCount          int             `json:"rawCount"`
	DroppedNoDate     int             `json:"droppedNoDate"`
	DroppedQuality    int             `json:"droppedQuality"`
	DuplicatesRemoved int             `json:"duplicatesRemoved"`
	Sources           []SourceOutcome `json:"sources"`
}

// SourceOutcome is the per-source line item in RunStats. Failed sources
// carry the error text so a run report shows exactly which site broke.
type SourceOutcome struct {
	Name      string `json:"name"`
	Succeeded bool   `json:"succeeded"`
	RawCount  int    `json:"rawCount"`
	Error     string `json:"error,omitempty"`
}
