package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

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

func main() {
	configPath := flag.String("config", "", "path to config file")
	region := flag.String("region", "", "region to run (overrides config default)")
	flag.Parse()

	if err := run(*configPath, *region); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, regionFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := newLogger(cfg.Logging)

	region := regionFlag
	if region == "" {
		region = cfg.Pipeline.DefaultRegion
	}
	if region == "" {
		return fmt.Errorf("no region given: set -region or pipeline.default_region")
	}

	ctx := context.Background()

	reader := fetch.NewReaderWithTimeout(cfg.Pipeline.FetchTimeout)
	reg := registry.New(log, cfg.Regions)
	sources.RegisterAll(reg, reader, cfg.OpenAI.APIKey, log)

	p := pipeline.New(log, reg, enrich.New(reader),
		pipeline.WithSourceTimeout(cfg.Pipeline.SourceTimeout))

	result, err := p.Run(ctx, region)
	if err != nil {
		return err
	}

	if err := persist(ctx, cfg, log, region, result); err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(result.Stats)
}

func persist(ctx context.Context, cfg *config.Config, log zerolog.Logger, region string, result pipeline.Result) error {
	eventStore, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if eventStore != nil {
		defer eventStore.Close()
		if err := eventStore.UpsertEvents(ctx, result.Events); err != nil {
			return fmt.Errorf("persisting events: %w", err)
		}
		log.Info().Int("events", len(result.Events)).Str("driver", cfg.Store.Driver).Msg("events persisted")
	}

	if cfg.Store.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}
		publisher := store.NewSnapshotPublisher(s3.NewFromConfig(awsCfg), cfg.Store.S3Bucket, awsCfg.Region)
		url, err := publisher.Publish(ctx, cfg.Store.S3Key, region, result.Events)
		if err != nil {
			return fmt.Errorf("publishing feed snapshot: %w", err)
		}
		log.Info().Str("url", url).Msg("feed snapshot published")
	}

	return nil
}

func buildStore(ctx context.Context, cfg config.StoreConfig) (store.EventStore, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.OpenSQLite(ctx, cfg.SQLitePath)
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return store.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
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
