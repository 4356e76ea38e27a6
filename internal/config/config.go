// Package config loads pipeline configuration from layered sources:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"city-events-pipeline/internal/registry"
)

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfigPaths are searched in order when no explicit path is
// given; the first existing file wins.
var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/city-events/config.yaml",
}

// Config is the full runtime configuration.
type Config struct {
	Logging  LoggingConfig                    `koanf:"logging"`
	Pipeline PipelineConfig                   `koanf:"pipeline"`
	Store    StoreConfig                      `koanf:"store"`
	API      APIConfig                        `koanf:"api"`
	OpenAI   OpenAIConfig                     `koanf:"openai"`
	Regions  map[string][]registry.Definition `koanf:"regions" validate:"required,min=1"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// PipelineConfig controls run behavior.
type PipelineConfig struct {
	DefaultRegion string        `koanf:"default_region"`
	SourceTimeout time.Duration `koanf:"source_timeout" validate:"gt=0"`
	FetchTimeout  time.Duration `koanf:"fetch_timeout" validate:"gt=0"`
}

// StoreConfig selects and configures event persistence. Driver "none"
// runs the pipeline without persisting, useful for dry runs.
type StoreConfig struct {
	Driver        string `koanf:"driver" validate:"oneof=sqlite dynamodb none"`
	SQLitePath    string `koanf:"sqlite_path"`
	DynamoDBTable string `koanf:"dynamodb_table"`
	S3Bucket      string `koanf:"s3_bucket"`
	S3Key         string `koanf:"s3_key"`
}

// APIConfig controls the read-only HTTP API.
type APIConfig struct {
	Addr            string `koanf:"addr" validate:"required"`
	DefaultPageSize int    `koanf:"default_page_size" validate:"gt=0"`
	MaxPageSize     int    `koanf:"max_page_size" validate:"gtefield=DefaultPageSize"`
}

// OpenAIConfig configures the LLM extraction source. An empty APIKey
// disables the "llm" source type entirely.
type OpenAIConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Pipeline: PipelineConfig{
			SourceTimeout: 30 * time.Second,
			FetchTimeout:  30 * time.Second,
		},
		Store: StoreConfig{
			Driver:     "sqlite",
			SQLitePath: "events.db",
			S3Key:      "events/latest.json",
		},
		API: APIConfig{
			Addr:            ":8080",
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// Load reads configuration with precedence ENV > file > defaults. An
// empty path triggers the default search; a missing file is only an
// error when the path was explicit.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, candidate := range defaultConfigPaths {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables are skipped so unrelated environment noise never
// reaches the config.
func envTransformFunc(key string) string {
	mappings := map[string]string{
		"log_level":             "logging.level",
		"log_format":            "logging.format",
		"pipeline_region":       "pipeline.default_region",
		"source_timeout":        "pipeline.source_timeout",
		"fetch_timeout":         "pipeline.fetch_timeout",
		"store_driver":          "store.driver",
		"sqlite_path":           "store.sqlite_path",
		"dynamodb_table":        "store.dynamodb_table",
		"s3_bucket":             "store.s3_bucket",
		"s3_key":                "store.s3_key",
		"api_addr":              "api.addr",
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",
		"openai_api_key":        "openai.api_key",
		"openai_model":          "openai.model",
	}
	if mapped, ok := mappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
