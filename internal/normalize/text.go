package normalize

import (
	"regexp"
	"strings"
)

// maxTitleLength caps display titles; scraped headings occasionally
// swallow whole paragraphs.
const maxTitleLength = 120

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	punctRE      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// venueSynonyms folds cosmetically different spellings of the same
// venue word so that "Orpheum Theatre" and "Orpheum Theater" compare
// equal.
var venueSynonyms = map[string]string{
	"theatre":      "theater",
	"centre":       "center",
	"amphitheatre": "amphitheater",
}

// venueSuffixes are trailing words dropped from venue names for
// comparison ("Massey Hall" vs "Massey").
var venueSuffixes = []string{"music hall", "hall"}

// CleanText collapses repeated whitespace and strips line breaks.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// CleanTitle prepares a scraped title for display. Content after an
// em-dash or pipe is a descriptive suffix, not part of the event's
// identity, and is stripped.
func CleanTitle(s string) string {
	s = CleanText(s)

	for _, sep := range []string{"—", " | ", "|"} {
		if idx := strings.Index(s, sep); idx > 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}

	if len(s) > maxTitleLength {
		runes := []rune(s)
		if len(runes) > maxTitleLength {
			s = strings.TrimSpace(string(runes[:maxTitleLength]))
		}
	}

	return s
}

// FoldVenueName normalizes a venue name for comparison: lowercase, no
// punctuation, synonym spellings unified and generic trailing suffixes
// removed. Display names are left alone; only dedup keys and the
// classifier use folded names.
func FoldVenueName(s string) string {
	s = strings.ToLower(CleanText(s))
	s = punctRE.ReplaceAllString(s, "")
	s = whitespaceRE.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	words := strings.Fields(s)
	for i, w := range words {
		if folded, ok := venueSynonyms[w]; ok {
			words[i] = folded
		}
	}
	s = strings.Join(words, " ")

	for _, suffix := range venueSuffixes {
		if trimmed, ok := strings.CutSuffix(s, " "+suffix); ok {
			s = trimmed
			break
		}
	}

	return s
}
