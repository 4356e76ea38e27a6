// Package normalize turns free-form, possibly bilingual scraped text
// into canonical form: dates become zero-padded YYYY-MM-DD strings and
// title/venue text is cleaned for display and comparison.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// frenchMonths maps French month names to their English equivalents.
// Both accented and unaccented spellings appear because scraped
// Montreal listings mix encodings.
var frenchMonths = map[string]string{
	"janvier":   "January",
	"février":   "February",
	"fevrier":   "February",
	"mars":      "March",
	"avril":     "April",
	"mai":       "May",
	"juin":      "June",
	"juillet":   "July",
	"août":      "August",
	"aout":      "August",
	"septembre": "September",
	"octobre":   "October",
	"novembre":  "November",
	"décembre":  "December",
	"decembre":  "December",
}

var monthIndex = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// Ordered date patterns; the first match wins. Month-name groups are
// matched case-insensitively after French month translation.
var (
	reISO = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)

	// "June 8, 2025", "June 8" (year optional), ordinal suffixes allowed
	reMonthDay = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b,?(?:\s+(\d{4}))?`)

	// "6/8/2025" or "6-8-2025"
	reNumeric = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)

	// "8 June 2025", "8 juin" (year optional)
	reDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]{3,9})\.?(?:\s+(\d{4}))?\b`)

	// "7 & 8, June 2025" — only the first day is kept
	reAmpRange = regexp.MustCompile(`(?i)\b(\d{1,2})\s*&\s*\d{1,2},?\s+([a-z]{3,9})\.?(?:\s+(\d{4}))?`)

	// "7–9 June 2025" or "7-9 June" — only the first day is kept
	reDashRange = regexp.MustCompile(`(?i)\b(\d{1,2})\s*[–—-]\s*\d{1,2}\s+([a-z]{3,9})\.?(?:\s+(\d{4}))?`)

	// "June 8, 7:30PM ... 2025" — date embedded before a time of day
	reMonthDayTime = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s*,?\s*@?\s*\d{1,2}:\d{2}\s*(?:am|pm)(?:.*?(\d{4}))?`)
)

// ResolveDate turns free-form date text into a canonical YYYY-MM-DD
// string. The second return value is false when no pattern matches or
// the matched month/day is out of range; such candidates carry no date
// and are dropped by the pipeline.
func ResolveDate(dateText string, now time.Time) (string, bool) {
	text := strings.TrimSpace(dateText)
	if text == "" {
		return "", false
	}

	text = translateFrenchMonths(text)

	if m := reISO.FindStringSubmatch(text); m != nil {
		return formatDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	// Range patterns go before the plain day-month pattern so that
	// "7 & 8, June" resolves to the 7th rather than matching "8 June".
	if m := reAmpRange.FindStringSubmatch(text); m != nil {
		return resolveNamedMonth(m[2], atoi(m[1]), m[3], now)
	}
	if m := reDashRange.FindStringSubmatch(text); m != nil {
		return resolveNamedMonth(m[2], atoi(m[1]), m[3], now)
	}

	if m := reMonthDayTime.FindStringSubmatch(text); m != nil {
		if date, ok := resolveNamedMonth(m[1], atoi(m[2]), m[3], now); ok {
			return date, true
		}
	}

	// Words like "Monday" also match the month-name shape, so every
	// candidate match is tried until one names a real month.
	for _, m := range reMonthDay.FindAllStringSubmatch(text, -1) {
		if date, ok := resolveNamedMonth(m[1], atoi(m[2]), m[3], now); ok {
			return date, true
		}
	}

	if m := reNumeric.FindStringSubmatch(text); m != nil {
		return formatDate(atoi(m[3]), atoi(m[1]), atoi(m[2]))
	}

	for _, m := range reDayMonth.FindAllStringSubmatch(text, -1) {
		if date, ok := resolveNamedMonth(m[2], atoi(m[1]), m[3], now); ok {
			return date, true
		}
	}

	return "", false
}

// translateFrenchMonths rewrites known French month names to English
// before any pattern matching.
func translateFrenchMonths(text string) string {
	lower := strings.ToLower(text)
	for french, english := range frenchMonths {
		if strings.Contains(lower, french) {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(french) + `\b`)
			text = re.ReplaceAllString(text, english)
			lower = strings.ToLower(text)
		}
	}
	return text
}

// resolveNamedMonth resolves a month-name match. An empty yearText
// means the year was absent and must be inferred: a month earlier than
// the current one rolls into next year.
func resolveNamedMonth(monthName string, day int, yearText string, now time.Time) (string, bool) {
	month, ok := monthIndex[strings.ToLower(strings.TrimSuffix(monthName, "."))]
	if !ok {
		return "", false
	}

	var year int
	if yearText != "" {
		year = atoi(yearText)
	} else {
		year = now.Year()
		if month < int(now.Month()) {
			year++
		}
	}

	return formatDate(year, month, day)
}

func formatDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	if year < 1900 || year > 2200 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
