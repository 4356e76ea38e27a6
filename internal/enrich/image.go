// Package enrich discovers a representative image for an event record
// that has a detail-page URL but no image. Strictly best-effort: every
// failure degrades to "no image", never to a substitute.
package enrich

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"city-events-pipeline/internal/fetch"
)

// listingSuffixes mark URLs that point at a listing/calendar/index page
// rather than a single-event detail page. Listing pages yield venue
// logos, not event art, so they are skipped entirely.
var listingSuffixes = []string{
	"/events", "/events/",
	"/calendar", "/calendar/",
	"/shows", "/shows/",
	"/schedule", "/schedule/",
	"/whats-on", "/whats-on/",
}

// blockedImageSubstrings rejects generic logos, placeholders and
// tracking pixels that sites put in their share metadata.
var blockedImageSubstrings = []string{
	"logo",
	"placeholder",
	"default",
	"favicon",
	"spacer",
	"pixel",
	"1x1",
	"blank",
	"avatar",
	"icon-",
	"sprite",
	"facebook.com/tr",
	"doubleclick",
}

// PageFetcher retrieves a page body; satisfied by fetch.Reader.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Enricher fetches event detail pages and extracts their Open Graph
// image.
type Enricher struct {
	fetcher PageFetcher
}

// New creates an image enricher around the given page fetcher.
func New(fetcher PageFetcher) *Enricher {
	return &Enricher{fetcher: fetcher}
}

// NewWithDefaults creates an enricher with the standard page reader.
func NewWithDefaults() *Enricher {
	return New(fetch.NewReader())
}

// FetchImage returns the URL of a representative image for the event
// page at url, or "" when none can be found. It never returns an error:
// absence is the degraded result, and no fallback image is ever
// substituted.
func (e *Enricher) FetchImage(ctx context.Context, url string) string {
	if url == "" || IsListingPage(url) {
		return ""
	}

	body, err := e.fetcher.FetchPage(ctx, url)
	if err != nil {
		return ""
	}

	imageURL := extractOGImage(body)
	if imageURL == "" || IsBlockedImage(imageURL) {
		return ""
	}

	return imageURL
}

// IsListingPage reports whether url looks like a listing or calendar
// index rather than a single-event detail page.
func IsListingPage(url string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(url))
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	for _, suffix := range listingSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

// IsBlockedImage reports whether an image URL matches the generic-logo
// and placeholder block list.
func IsBlockedImage(imageURL string) bool {
	lower := strings.ToLower(imageURL)
	for _, blocked := range blockedImageSubstrings {
		if strings.Contains(lower, blocked) {
			return true
		}
	}
	return false
}

// extractOGImage pulls the og:image meta tag content from an HTML
// document. A tokenizer pass is enough; meta tags live in head and the
// whole tree is never needed.
func extractOGImage(body string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(body))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}

			var property, content string
			for {
				key, val, more := tokenizer.TagAttr()
				switch string(key) {
				case "property", "name":
					property = string(val)
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}

			if property == "og:image" && content != "" {
				return strings.TrimSpace(content)
			}
		}
	}
}
