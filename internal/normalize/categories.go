package normalize

import "strings"

// categoryKeywords maps title keywords to category tags. Matching is
// substring-based on the lowercased title, same as the per-venue
// extractors historically did. Order is fixed so tags come out stable.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"music", []string{"concert", "band", "dj", "live music", "symphony", "orchestra", "choir", "tour"}},
	{"comedy", []string{"comedy", "stand-up", "standup", "improv"}},
	{"theatre", []string{"theatre", "theater", "musical", "play", "ballet", "opera", "dance"}},
	{"arts", []string{"exhibition", "gallery", "vernissage", "film", "screening"}},
	{"festival", []string{"festival", "celebration", "parade"}},
	{"sports", []string{"hockey", "soccer", "basketball", "race", "marathon"}},
	{"nightlife", []string{"club night", "party", "rave", "nightlife"}},
	{"community", []string{"market", "fair", "workshop", "meetup", "fundraiser"}},
}

// Categorize derives category tags from an event title. Untaggable
// titles get the generic "events" tag so that every event carries at
// least one category.
func Categorize(title string) []string {
	lower := strings.ToLower(title)

	var tags []string
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, entry.category)
				break
			}
		}
	}

	if len(tags) == 0 {
		return []string{"events"}
	}
	return tags
}
