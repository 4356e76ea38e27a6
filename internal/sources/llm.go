package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"city-events-pipeline/internal/models"
	"city-events-pipeline/internal/registry"
)

const (
	llmDefaultModel = "gpt-4o-mini"
	llmTemperature  = 0.1
	llmMaxTokens    = 4000

	// Pages shorter than this carry no extractable listings, usually a
	// bot wall or an empty calendar shell.
	llmMinContentLength = 200
)

// llmEvent is the JSON shape the model is asked to emit per event.
type llmEvent struct {
	Title    string `json:"title"`
	DateText string `json:"dateText"`
	Venue    string `json:"venue"`
	Address  string `json:"address"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl"`
}

// LLMSource extracts candidates from pages whose markup is too
// irregular to scrape, by handing the page text to a chat model and
// parsing its JSON reply. Dates are passed through as text so the
// normalizer stays the single authority on date interpretation.
type LLMSource struct {
	name    string
	urls    []string
	venue   string
	address string
	client  *openai.Client
	model   string
	fetcher PageFetcher
	log     zerolog.Logger
}

// NewLLMSource builds an LLM-backed source from its definition.
func NewLLMSource(def registry.Definition, fetcher PageFetcher, apiKey string, log zerolog.Logger) (*LLMSource, error) {
	if len(def.URLs) == 0 {
		return nil, fmt.Errorf("llm source %q has no urls", def.Name)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("llm source %q requires an OpenAI API key", def.Name)
	}

	model := def.Options["model"]
	if model == "" {
		model = llmDefaultModel
	}

	return &LLMSource{
		name:    def.Name,
		urls:    def.URLs,
		venue:   def.Venue,
		address: def.Address,
		client:  openai.NewClient(apiKey),
		model:   model,
		fetcher: fetcher,
		log:     log,
	}, nil
}

// Extract fetches every configured page and runs model extraction on
// each one.
func (s *LLMSource) Extract(ctx context.Context, region string) ([]models.RawCandidate, error) {
	var candidates []models.RawCandidate

	for _, pageURL := range s.urls {
		body, err := s.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
		}
		if len(body) < llmMinContentLength {
			return nil, fmt.Errorf("page %s too short (%d chars) to extract from", pageURL, len(body))
		}

		found, err := s.extractFromContent(ctx, body, pageURL, region)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	return candidates, nil
}

func (s *LLMSource) extractFromContent(ctx context.Context, content, pageURL, region string) ([]models.RawCandidate, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: llmTemperature,
		MaxTokens:   llmMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(region)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(content, pageURL)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai request for %s failed: %w", pageURL, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices from OpenAI for %s", pageURL)
	}

	events, err := parseEventsJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing model output for %s: %w", pageURL, err)
	}

	s.log.Debug().
		Str("source", s.name).
		Str("url", pageURL).
		Int("events", len(events)).
		Int("tokens", resp.Usage.TotalTokens).
		Msg("llm extraction complete")

	candidates := make([]models.RawCandidate, 0, len(events))
	for _, event := range events {
		venue := event.Venue
		if venue == "" {
			venue = s.venue
		}
		address := event.Address
		if address == "" {
			address = s.address
		}
		sourceURL := event.URL
		if sourceURL == "" {
			sourceURL = pageURL
		}
		candidates = append(candidates, models.RawCandidate{
			Title:        event.Title,
			DateText:     event.DateText,
			VenueName:    venue,
			VenueAddress: address,
			SourceURL:    sourceURL,
			ImageURL:     event.ImageURL,
		})
	}

	return candidates, nil
}

// parseEventsJSON decodes the model's reply, stripping the markdown
// code fences it sometimes wraps JSON in.
func parseEventsJSON(reply string) ([]llmEvent, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload struct {
		Events []llmEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	valid := payload.Events[:0]
	for _, event := range payload.Events {
		if event.Title == "" || event.DateText == "" {
			continue
		}
		valid = append(valid, event)
	}

	return valid, nil
}

func buildSystemPrompt(region string) string {
	return fmt.Sprintf(`You extract public event listings from web page content for %s.

Return a JSON object with this exact structure and nothing else:
{
  "events": [
    {
      "title": "Event name as printed",
      "dateText": "The date exactly as it appears on the page",
      "venue": "Venue name",
      "address": "Street address if shown",
      "url": "Event detail page URL if shown",
      "imageUrl": "Event image URL if shown"
    }
  ]
}

RULES:
- Only include real scheduled events with a title and a date.
- Copy dateText verbatim from the page. Do not reformat, translate or guess dates.
- Skip navigation links, venue amenities, and promotional banners.
- Leave a field empty rather than inventing a value.
- If the page lists no events, return {"events": []}.`, region)
}

func buildUserPrompt(content, pageURL string) string {
	return fmt.Sprintf(`Extract all event listings from the following page content.

Source URL: %s

Content:
%s`, pageURL, content)
}
