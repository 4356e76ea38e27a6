package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/normalize"
	"city-events-pipeline/internal/registry"
)

// dateHintRE detects date-bearing text without parsing it; the exact
// interpretation is the normalizer's job.
var dateHintRE = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec|janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)[a-zéû]*\.?\s+\d{1,2}|\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}/\d{4}|\d{1,2}\s+(janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)`)

// ListingSource extracts candidates from venue calendar pages by
// walking anchors and pairing their text with nearby date fragments.
// It is deliberately tolerant: pages change markup constantly and a
// partial read beats a parse failure.
type ListingSource struct {
	name    string
	urls    []string
	venue   string
	address string
	fetcher PageFetcher
	log     zerolog.Logger
}

// NewListingSource builds a listing source from its definition.
func NewListingSource(def registry.Definition, fetcher PageFetcher, log zerolog.Logger) (*ListingSource, error) {
	if len(def.URLs) == 0 {
		return nil, fmt.Errorf("listing source %q has no urls", def.Name)
	}
	if def.Venue == "" {
		return nil, fmt.Errorf("listing source %q has no venue name", def.Name)
	}
	return &ListingSource{
		name:    def.Name,
		urls:    def.URLs,
		venue:   def.Venue,
		address: def.Address,
		fetcher: fetcher,
		log:     log,
	}, nil
}

// Extract fetches every configured page and scrapes candidates. A page
// that fails to fetch fails the whole source; the orchestrator records
// the failure and moves on.
func (s *ListingSource) Extract(ctx context.Context, region string) ([]models.RawCandidate, error) {
	var candidates []models.RawCandidate

	for _, pageURL := range s.urls {
		body, err := s.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
		}

		found, err := s.scrape(body, pageURL)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
		}

		s.log.Debug().
			Str("source", s.name).
			Str("url", pageURL).
			Int("candidates", len(found)).
			Msg("listing page scraped")

		candidates = append(candidates, found...)
	}

	return candidates, nil
}

func (s *ListingSource) scrape(body, pageURL string) ([]models.RawCandidate, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	var candidates []models.RawCandidate
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if c, ok := s.candidateFromAnchor(n, base); ok {
				key := c.Title + "|" + c.SourceURL
				if !seen[key] {
					seen[key] = true
					candidates = append(candidates, c)
				}
			}
			return // anchors don't nest; no need to descend
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return candidates, nil
}

// candidateFromAnchor turns one anchor into a candidate. The title is
// the anchor's own text; the date is taken from the anchor's text when
// present, otherwise from the enclosing card element.
func (s *ListingSource) candidateFromAnchor(n *html.Node, base *url.URL) (models.RawCandidate, bool) {
	title := normalize.CleanText(nodeText(n))
	if len([]rune(title)) < 3 {
		return models.RawCandidate{}, false
	}

	dateText := title
	if !dateHintRE.MatchString(dateText) {
		dateText = containerDateText(n)
	}
	if dateText == "" {
		return models.RawCandidate{}, false
	}

	return models.RawCandidate{
		Title:        title,
		DateText:     dateText,
		VenueName:    s.venue,
		VenueAddress: s.address,
		SourceURL:    resolveHref(n, base),
		ImageURL:     firstImageSrc(n, base),
	}, true
}

// structuralElements end the upward search for a card: their text
// spans many events, so a date found there cannot be attributed to
// this anchor.
var structuralElements = map[string]bool{
	"body": true, "html": true, "main": true, "section": true,
	"nav": true, "header": true, "footer": true,
	"ul": true, "ol": true, "table": true,
}

// containerDateText climbs toward the enclosing event card looking for
// date-bearing text. Two levels is enough for the common
// card > heading > anchor markup; climbing further starts picking up
// other events' dates.
func containerDateText(n *html.Node) string {
	parent := n.Parent
	for depth := 0; depth < 2 && parent != nil; depth++ {
		if parent.Type != html.ElementNode || structuralElements[parent.Data] {
			return ""
		}
		text := normalize.CleanText(nodeText(parent))
		if dateHintRE.MatchString(text) {
			return text
		}
		parent = parent.Parent
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func resolveHref(n *html.Node, base *url.URL) string {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		href := strings.TrimSpace(attr.Val)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return ""
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return ""
		}
		return resolved.String()
	}
	return ""
}

func firstImageSrc(n *html.Node, base *url.URL) string {
	if n.Type == html.ElementNode && n.Data == "img" {
		for _, attr := range n.Attr {
			if attr.Key == "src" && attr.Val != "" {
				resolved, err := base.Parse(attr.Val)
				if err != nil {
					return ""
				}
				return resolved.String()
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if src := firstImageSrc(child, base); src != "" {
			return src
		}
	}
	return ""
}
