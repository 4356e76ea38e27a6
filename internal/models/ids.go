package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateEventID creates a stable ID for an event from its identity
// attributes. Two records describing the same event (same title, date
// and venue after trimming) map to the same ID, which is what storage
// upserts key on.
func GenerateEventID(title, isoDate, venueName string) string {
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))
	normalizedDate := strings.ToLower(strings.TrimSpace(isoDate))
	normalizedVenue := strings.ToLower(strings.TrimSpace(venueName))

	input := fmt.Sprintf("%s|%s|%s", normalizedTitle, normalizedDate, normalizedVenue)
	hash := sha256.Sum256([]byte(input))

	return "evt_" + hex.EncodeToString(hash[:])[:8]
}

// IsValidURL performs basic URL validation.
func IsValidURL(url string) bool {
	if url == "" {
		return false
	}
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// IsValidISODate reports whether s looks like a zero-padded
// YYYY-MM-DD calendar date with month and day in range.
func IsValidISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	var year, month, day int
	if _, err := fmt.Sscanf(s, "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return false
	}
	return year >= 1900 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}
