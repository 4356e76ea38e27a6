// Package sources implements the extraction capabilities the registry
// can bind: HTML listing pages, curated configuration entries, and an
// LLM-backed extractor for sites with no parseable structure.
package sources

import (
	"context"

	"github.com/rs/zerolog"

	"city-events-pipeline/internal/registry"
)

// PageFetcher retrieves a web page body; satisfied by fetch.Reader.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// RegisterAll binds the standard source types onto a registry. The
// "llm" type is only registered when an OpenAI API key is available;
// definitions of that type are otherwise skipped at discovery time.
func RegisterAll(r *registry.Registry, fetcher PageFetcher, openaiKey string, log zerolog.Logger) {
	r.RegisterType("listing", func(def registry.Definition) (registry.Extractor, error) {
		return NewListingSource(def, fetcher, log)
	})
	r.RegisterType("curated", func(def registry.Definition) (registry.Extractor, error) {
		return NewCuratedSource(def)
	})
	if openaiKey != "" {
		r.RegisterType("llm", func(def registry.Definition) (registry.Extractor, error) {
			return NewLLMSource(def, fetcher, openaiKey, log)
		})
	}
}
