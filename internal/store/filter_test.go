package store

import (
	"testing"

	"city-events-pipeline/internal/models"
)

func TestFilterMatches(t *testing.T) {
	event := models.Event{
		ID:         "evt_aaa11111",
		Title:      "Symphony Under the Stars",
		ISODate:    "2025-07-12",
		Venue:      models.Venue{Name: "Orpheum Theatre", City: "Vancouver"},
		Region:     "Vancouver",
		Categories: []string{"music"},
	}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"city case-insensitive", Filter{City: "VANCOUVER"}, true},
		{"wrong city", Filter{City: "Toronto"}, false},
		{"date inside range", Filter{DateFrom: "2025-07-01", DateTo: "2025-07-31"}, true},
		{"date before range", Filter{DateFrom: "2025-08-01"}, false},
		{"title substring", Filter{Query: "under the"}, true},
		{"title miss", Filter{Query: "opera"}, false},
		{"venue substring", Filter{Venue: "orpheum"}, true},
		{"category", Filter{Category: "Music"}, true},
		{"wrong category", Filter{Category: "sports"}, false},
		{"combined", Filter{City: "Vancouver", Category: "music", Query: "symphony"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.matches(event); got != tc.want {
				t.Errorf("matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterPage(t *testing.T) {
	events := []models.Event{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no limit returns all", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"first page", Filter{Page: 1, Limit: 2}, []string{"1", "2"}},
		{"middle page", Filter{Page: 2, Limit: 2}, []string{"3", "4"}},
		{"short last page", Filter{Page: 3, Limit: 2}, []string{"5"}},
		{"page past the end", Filter{Page: 9, Limit: 2}, nil},
		{"zero page treated as first", Filter{Page: 0, Limit: 3}, []string{"1", "2", "3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.page(events)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}
