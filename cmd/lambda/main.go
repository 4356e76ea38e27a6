package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"city-events-pipeline/internal/config"
	"city-events-pipeline/internal/enrich"
	"city-events-pipeline/internal/fetch"
	"city-events-pipeline/internal/pipeline"
	"city-events-pipeline/internal/registry"
	"city-events-pipeline/internal/sources"
	"city-events-pipeline/internal/store"
)

// Event is the invocation payload, typically from an EventBridge
// schedule. An empty Region falls back to the configured default.
type Event struct {
	Region string `json:"region,omitempty"`
}

// Response carries the run statistics back to the invoker.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Stats   pipeline.RunStats `json:"stats"`
}

type handler struct {
	cfg *config.Config
	log zerolog.Logger
}

func main() {
	cfg, err := config.Load(os.Getenv(config.ConfigPathEnvVar))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	h := &handler{cfg: cfg, log: newLogger(cfg.Logging)}
	lambda.Start(h.handle)
}

func (h *handler) handle(ctx context.Context, event Event) (Response, error) {
	region := event.Region
	if region == "" {
		region = h.cfg.Pipeline.DefaultRegion
	}
	if region == "" {
		return Response{}, fmt.Errorf("no region in event and no default configured")
	}

	reader := fetch.NewReaderWithTimeout(h.cfg.Pipeline.FetchTimeout)
	reg := registry.New(h.log, h.cfg.Regions)
	sources.RegisterAll(reg, reader, h.cfg.OpenAI.APIKey, h.log)

	p := pipeline.New(h.log, reg, enrich.New(reader),
		pipeline.WithSourceTimeout(h.cfg.Pipeline.SourceTimeout))

	result, err := p.Run(ctx, region)
	if err != nil {
		return Response{}, err
	}

	if err := h.persist(ctx, region, result); err != nil {
		return Response{}, err
	}

	return Response{
		Success: true,
		Message: fmt.Sprintf("pipeline run complete: %d events from %d sources", len(result.Events), result.Stats.SourcesSucceeded),
		Stats:   result.Stats,
	}, nil
}

func (h *handler) persist(ctx context.Context, region string, result pipeline.Result) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	if h.cfg.Store.Driver == "dynamodb" {
		eventStore := store.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), h.cfg.Store.DynamoDBTable)
		if err := eventStore.UpsertEvents(ctx, result.Events); err != nil {
			return fmt.Errorf("persisting events: %w", err)
		}
	}

	if h.cfg.Store.S3Bucket != "" {
		publisher := store.NewSnapshotPublisher(s3.NewFromConfig(awsCfg), h.cfg.Store.S3Bucket, awsCfg.Region)
		url, err := publisher.Publish(ctx, h.cfg.Store.S3Key, region, result.Events)
		if err != nil {
			return fmt.Errorf("publishing feed snapshot: %w", err)
		}
		h.log.Info().Str("url", url).Msg("feed snapshot published")
	}

	return nil
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
