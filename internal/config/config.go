// Package config provides configuration management for the paper search service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/helixir/paper-search-service/internal/domain"
)

// Config holds all configuration for the paper search service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Search contains search orchestration defaults.
	Search SearchConfig `mapstructure:"search"`
	// Sources contains primary paper source API configurations.
	Sources SourcesConfig `mapstructure:"sources"`
	// Enrichment contains secondary metadata source settings.
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace is the prefix for all metric names.
	Namespace string `mapstructure:"namespace"`
}

// SearchConfig holds search orchestration defaults.
type SearchConfig struct {
	// DefaultMaxResults is the result cap applied when a request sets none.
	DefaultMaxResults int `mapstructure:"default_max_results"`
	// MaxResultsLimit is the hard upper bound on requested results.
	MaxResultsLimit int `mapstructure:"max_results_limit"`
	// DefaultSort is the sort method applied when a request sets none.
	DefaultSort string `mapstructure:"default_sort"`
}

// SourcesConfig holds configuration for all primary paper source APIs.
type SourcesConfig struct {
	// ArXiv contains arXiv API settings.
	ArXiv SourceConfig `mapstructure:"arxiv"`
}

// SourceConfig holds configuration for a single paper source API.
type SourceConfig struct {
	// Enabled controls whether this source is registered.
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// MaxResults is the maximum results per query.
	MaxResults int `mapstructure:"max_results"`
}

// EnrichmentConfig holds secondary metadata source settings.
type EnrichmentConfig struct {
	// SemanticScholar contains Semantic Scholar Graph API settings.
	SemanticScholar SemanticScholarConfig `mapstructure:"semantic_scholar"`
}

// SemanticScholarConfig holds Semantic Scholar client settings.
type SemanticScholarConfig struct {
	// APIKey is the API key (loaded from PAPERSEARCH_ENRICHMENT_SEMANTIC_SCHOLAR_API_KEY).
	APIKey string `mapstructure:"-"`
	// BaseURL is the Graph API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for lookup calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second to the API.
	RateLimit float64 `mapstructure:"rate_limit"`
	// CallRate throttles consecutive enrichment lookups per second,
	// shared across all searches in the process.
	CallRate float64 `mapstructure:"call_rate"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("PAPERSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paper-search-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
func loadSecrets(cfg *Config) {
	cfg.Enrichment.SemanticScholar.APIKey = os.Getenv("PAPERSEARCH_ENRICHMENT_SEMANTIC_SCHOLAR_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "papersearch")

	// Search defaults
	v.SetDefault("search.default_max_results", 20)
	v.SetDefault("search.max_results_limit", 100)
	v.SetDefault("search.default_sort", "relevance")

	// Sources defaults - arXiv
	v.SetDefault("sources.arxiv.enabled", true)
	v.SetDefault("sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("sources.arxiv.timeout", "30s")
	v.SetDefault("sources.arxiv.rate_limit", 3.0) // arXiv recommends max 3 req/sec
	v.SetDefault("sources.arxiv.max_results", 100)

	// Enrichment defaults - Semantic Scholar
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("enrichment.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("enrichment.semantic_scholar.timeout", "5s")
	v.SetDefault("enrichment.semantic_scholar.rate_limit", 10.0)
	v.SetDefault("enrichment.semantic_scholar.call_rate", 10.0)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Search.DefaultMaxResults <= 0 {
		return fmt.Errorf("search default_max_results must be positive")
	}
	if c.Search.MaxResultsLimit < c.Search.DefaultMaxResults {
		return fmt.Errorf("search max_results_limit (%d) must be >= default_max_results (%d)",
			c.Search.MaxResultsLimit, c.Search.DefaultMaxResults)
	}
	if !domain.ValidSortMethod(domain.SortMethod(c.Search.DefaultSort)) {
		return fmt.Errorf("invalid search default_sort: %s", c.Search.DefaultSort)
	}

	if c.Sources.ArXiv.Enabled {
		if c.Sources.ArXiv.RateLimit <= 0 {
			return fmt.Errorf("arxiv rate_limit must be positive")
		}
		if c.Sources.ArXiv.MaxResults <= 0 {
			return fmt.Errorf("arxiv max_results must be positive")
		}
	}

	if c.Enrichment.SemanticScholar.CallRate <= 0 {
		return fmt.Errorf("semantic scholar call_rate must be positive")
	}

	return nil
}
