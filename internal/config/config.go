package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	llmcatalog "github.com/kingfs/go-llm-catalog"
)

// Config holds all environment backed configuration for the catalog tools.
type Config struct {
	// Storage
	DBPath       string `env:"CATALOG_DB_PATH" envDefault:"data/catalog.db"`
	SnapshotPath string `env:"CATALOG_SNAPSHOT_PATH" envDefault:"data/models.json"`
	CacheDir     string `env:"CATALOG_CACHE_DIR" envDefault:"data/cache"`
	DefaultsFile string `env:"CATALOG_DEFAULTS_FILE"`

	// Sources
	Sources          []string      `env:"CATALOG_SOURCES" envSeparator:"," envDefault:"modelsdev,openrouter"`
	ModelsDevURL     string        `env:"MODELS_DEV_URL" envDefault:"https://models.dev/api.json"`
	OpenRouterURL    string        `env:"OPENROUTER_URL" envDefault:"https://openrouter.ai/api/v1/models"`
	HuggingFaceURL   string        `env:"HUGGINGFACE_URL" envDefault:"https://huggingface.co/api/models"`
	HuggingFaceLimit int           `env:"HUGGINGFACE_LIMIT" envDefault:"200"`
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Evaluation
	EvalConcurrency int    `env:"EVAL_CONCURRENCY" envDefault:"0"`
	UserID          string `env:"CATALOG_USER"`
	TeamID          string `env:"CATALOG_TEAM"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads an optional .env file, parses environment variables into Config
// and performs minimal validation.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return errors.New("CATALOG_SOURCES must name at least one source")
	}
	for i, s := range c.Sources {
		kind := llmcatalog.SourceKind(strings.ToLower(strings.TrimSpace(s)))
		switch kind {
		case llmcatalog.KindModelsDev, llmcatalog.KindOpenRouter, llmcatalog.KindHuggingFace:
			c.Sources[i] = string(kind)
		default:
			return fmt.Errorf("unknown source %q in CATALOG_SOURCES", s)
		}
	}
	for name, raw := range map[string]string{
		"MODELS_DEV_URL":  c.ModelsDevURL,
		"OPENROUTER_URL":  c.OpenRouterURL,
		"HUGGINGFACE_URL": c.HuggingFaceURL,
	} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if c.EvalConcurrency < 0 {
		return errors.New("EVAL_CONCURRENCY must not be negative")
	}
	return nil
}

// SourceKinds returns the configured sources as kinds.
func (c *Config) SourceKinds() []llmcatalog.SourceKind {
	kinds := make([]llmcatalog.SourceKind, 0, len(c.Sources))
	for _, s := range c.Sources {
		kinds = append(kinds, llmcatalog.SourceKind(s))
	}
	return kinds
}
