package classify

// Data tables for the quality classifier. These were historically
// inline literals scattered across per-venue extractors; they are
// consolidated here so tests can pin them down and additions land in
// one place.

// blockedTitles rejects navigational and administrative phrases that
// per-venue extractors routinely misread as event titles. Matching is
// exact or prefix on the lowercased title.
var blockedTitles = []string{
	"today",
	"tomorrow",
	"upcoming events",
	"events",
	"event calendar",
	"calendar",
	"all events",
	"more events",
	"view all",
	"see more",
	"learn more",
	"read more",
	"buy tickets",
	"tickets",
	"get tickets",
	"home",
	"about",
	"about us",
	"contact",
	"contact us",
	"menu",
	"hours",
	"location",
	"directions",
	"parking",
	"faq",
	"newsletter",
	"subscribe",
	"sign up",
	"log in",
	"privacy policy",
	"terms of service",
	"terms and conditions",
	"cookie policy",
	"leasing",
	"rentals",
	"private events",
	"venue rental",
	"gift cards",
	"donate",
	"careers",
	"mon", "tue", "tues", "wed", "thu", "thurs", "fri", "sat", "sun",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// eventKeywords are words whose presence marks a title as describing a
// real event.
var eventKeywords = []string{
	"show", "concert", "live", "tour", "festival", "fest",
	"performance", "exhibition", "exhibit", "screening", "premiere",
	"gala", "party", "night", "presents", "featuring", "music",
	"comedy", "theatre", "theater", "musical", "opera", "ballet",
	"dance", "dj", "band", "orchestra", "symphony", "recital",
	"workshop", "market", "fair", "celebration", "launch", "tasting",
}

// allowedVenues is a fixed allow-list of well-known venues. A title
// that fails every heuristic is still accepted when it plays at one of
// these; the folded venue name is compared.
var allowedVenues = map[string]bool{
	"orpheum theater":        true,
	"queen elizabeth theater": true,
	"commodore ballroom":     true,
	"vogue theater":          true,
	"fox cabaret":            true,
	"rickshaw theater":       true,
	"rogers arena":           true,
	"bc place":               true,
	"massey":                 true,
	"roy thomson":            true,
	"scotiabank arena":       true,
	"danforth":               true,
	"bell center":            true,
	"place des arts":         true,
	"saddledome":             true,
	"scotiabank saddledome":  true,
	"jack singer concert":    true,
	"madison square garden":  true,
	"radio city music":       true,
	"apollo theater":         true,
}

// placeholderVenues are venue names that carry no identity. The
// region's own name is checked separately.
var placeholderVenues = map[string]bool{
	"tba":     true,
	"tbd":     true,
	"various": true,
	"unknown": true,
	"n/a":     true,
	"online":  true,
}

// genericWords are single words that only count as a title when
// accompanied by a trademark glyph (a bare brand name is usually a
// sponsor logo caption, not an event).
var genericWords = map[string]bool{
	"music":   true,
	"events":  true,
	"shows":   true,
	"live":    true,
	"tickets": true,
	"info":    true,
	"news":    true,
	"more":    true,
}
