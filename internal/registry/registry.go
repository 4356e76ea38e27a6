// Package registry enumerates the extraction capabilities available for
// a region. Sources are declared in configuration and bound to
// registered extractor constructors by type name; there is no runtime
// module scanning.
package registry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"city-events-pipeline/internal/models"
)

// Extractor is the common interface every extraction capability
// implements. An extractor is a black box that yields raw candidate
// records for one venue or listing site.
type Extractor interface {
	Extract(ctx context.Context, region string) ([]models.RawCandidate, error)
}

// Definition declares one source in configuration.
type Definition struct {
	Name    string            `koanf:"name"`
	Type    string            `koanf:"type"`
	URLs    []string          `koanf:"urls"`
	Venue   string            `koanf:"venue"`
	Address string            `koanf:"address"`
	Curated bool              `koanf:"curated"`
	Events  []CuratedEvent    `koanf:"events"`
	Options map[string]string `koanf:"options"`
}

// CuratedEvent is an event listed directly in configuration for a
// curated source.
type CuratedEvent struct {
	Title    string `koanf:"title"`
	Date     string `koanf:"date"`
	Venue    string `koanf:"venue"`
	Address  string `koanf:"address"`
	URL      string `koanf:"url"`
	ImageURL string `koanf:"imageUrl"`
}

// SourceDescriptor is the registry's view of one discovered capability.
// Immutable for the lifetime of a run.
type SourceDescriptor struct {
	Name      string
	URLs      []string
	Curated   bool
	Extractor Extractor
}

// Factory builds an extractor from its definition.
type Factory func(def Definition) (Extractor, error)

// Registry holds source definitions per region and the extractor
// factories they bind to.
type Registry struct {
	log       zerolog.Logger
	factories map[string]Factory
	regions   map[string][]Definition
}

// New creates a registry over the given per-region definitions.
func New(log zerolog.Logger, regions map[string][]Definition) *Registry {
	return &Registry{
		log:       log,
		factories: make(map[string]Factory),
		regions:   regions,
	}
}

// RegisterType binds a source type name to its extractor factory.
func (r *Registry) RegisterType(name string, factory Factory) {
	r.factories[name] = factory
}

// Discover returns the extraction capabilities available for a region.
// A definition that fails to load (unknown type, factory error) is
// logged and excluded; it never aborts discovery. Discovery fails only
// when the region has no definitions at all.
func (r *Registry) Discover(region string) ([]SourceDescriptor, error) {
	defs, ok := r.regions[region]
	if !ok || len(defs) == 0 {
		return nil, fmt.Errorf("no sources configured for region %q", region)
	}

	descriptors := make([]SourceDescriptor, 0, len(defs))
	skipped := 0

	for _, def := range defs {
		extractor, err := r.load(def)
		if err != nil {
			skipped++
			r.log.Warn().
				Str("source", def.Name).
				Str("type", def.Type).
				Err(err).
				Msg("skipping source that failed to load")
			continue
		}

		descriptors = append(descriptors, SourceDescriptor{
			Name:      def.Name,
			URLs:      def.URLs,
			Curated:   def.Curated || def.Type == "curated",
			Extractor: extractor,
		})
	}

	r.log.Info().
		Str("region", region).
		Int("discovered", len(descriptors)).
		Int("skipped", skipped).
		Msg("source discovery complete")

	return descriptors, nil
}

func (r *Registry) load(def Definition) (Extractor, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("source definition has no name")
	}

	factory, ok := r.factories[def.Type]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q", def.Type)
	}

	extractor, err := factory(def)
	if err != nil {
		return nil, fmt.Errorf("factory for type %q failed: %w", def.Type, err)
	}

	return extractor, nil
}
