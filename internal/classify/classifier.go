// Package classify decides whether a normalized candidate is a genuine,
// displayable event or navigational/administrative noise picked up by a
// per-venue extractor.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/normalize"
)

// Titles at least this long are considered self-descriptive and
// accepted even without a recognized keyword.
const selfDescriptiveLength = 24

const trademarkGlyphs = "™®©"

var (
	// "June 8 2025 @ 7:30 pm", "November 6, 2025" — a title that is
	// nothing but a date, optionally with a time of day.
	titleIsDateRE = regexp.MustCompile(`(?i)^[a-z]{3,9}\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s*(?:\d{4})?\s*(?:@?\s*\d{1,2}:\d{2}\s*(?:am|pm)?)?\s*$`)

	// Pure numeric dates: "11/6/2025", "11-6-25".
	titleIsNumericDateRE = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)
)

var monthNames = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
	"nov": true, "dec": true,
}

// IsRealEvent reports whether the candidate should appear in the feed.
// Pure function: it never mutates the event. Candidates from curated
// sources bypass every heuristic — manual input is trusted.
func IsRealEvent(event models.Event) bool {
	if event.Curated {
		return true
	}

	title := strings.TrimSpace(event.Title)
	lower := strings.ToLower(title)

	if len([]rune(title)) < 3 {
		return false
	}
	if matchesBlockList(lower) {
		return false
	}
	if titleIsDateRE.MatchString(title) && startsWithMonth(lower) {
		return false
	}
	if titleIsNumericDateRE.MatchString(title) {
		return false
	}
	if startsWithMonth(lower) {
		return false
	}
	if isBareGenericWord(title, lower) {
		return false
	}
	if isPlaceholderVenue(event.Venue.Name, event.Region) {
		return false
	}

	// Acceptance heuristics, flat OR.
	if containsEventKeyword(lower) {
		return true
	}
	if strings.Contains(title, ":") {
		return true
	}
	if strings.ContainsAny(title, trademarkGlyphs) {
		return true
	}
	if len([]rune(title)) >= selfDescriptiveLength {
		return true
	}
	if allowedVenues[normalize.FoldVenueName(event.Venue.Name)] {
		return true
	}

	return false
}

// matchesBlockList checks exact and word-prefix matches against the
// blocked title table ("today" blocks "Today's Events" but not
// "Todayland Live").
func matchesBlockList(lower string) bool {
	for _, blocked := range blockedTitles {
		if lower == blocked {
			return true
		}
		if strings.HasPrefix(lower, blocked) {
			rest := lower[len(blocked):]
			r := []rune(rest)[0]
			if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
				return true
			}
		}
	}
	return false
}

func startsWithMonth(lower string) bool {
	first, _, _ := strings.Cut(lower, " ")
	first = strings.TrimSuffix(first, ".")
	first = strings.TrimSuffix(first, ",")
	return monthNames[first]
}

func isBareGenericWord(title, lower string) bool {
	if strings.ContainsAny(title, trademarkGlyphs) {
		return false
	}
	if strings.Contains(strings.TrimSpace(lower), " ") {
		return false
	}
	return len([]rune(lower)) <= 12 && genericWords[lower]
}

func isPlaceholderVenue(venueName, region string) bool {
	folded := normalize.FoldVenueName(venueName)
	if folded == "" {
		return true
	}
	if placeholderVenues[folded] {
		return true
	}
	return folded == normalize.FoldVenueName(region)
}

func containsEventKeyword(lower string) bool {
	for _, kw := range eventKeywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in lower as a whole word, so
// "show" matches "late show" but not "showcase" or "slideshow".
func containsWord(lower, kw string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		startOK := start == 0 || !isWordChar(rune(lower[start-1]))
		endOK := end == len(lower) || !isWordChar(rune(lower[end]))
		if startOK && endOK {
			return true
		}
		idx = end
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
