// Package config provides configuration management for the indexer.
// It supports loading configuration from environment variables, files (YAML/JSON),
// and defaults, with a clear precedence order: env > file > defaults.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ferg-cod3s/conexus-index/internal/validation"
	"gopkg.in/yaml.v3"
)

// Config represents the complete indexer configuration.
type Config struct {
	Database          DatabaseConfig          `json:"database" yaml:"database"`
	Indexer           IndexerConfig           `json:"indexer" yaml:"indexer"`
	ContextProvider   ContextProviderConfig   `json:"contextProvider" yaml:"contextProvider"`
	EmbeddingsProvider EmbeddingsProviderConfig `json:"embeddingsProvider" yaml:"embeddingsProvider"`
	Reranker          RerankerConfig          `json:"reranker" yaml:"reranker"`
	DisableInFiles    []string                `json:"disableInFiles" yaml:"disableInFiles"`
	Logging           LoggingConfig           `json:"logging" yaml:"logging"`
	Observability     ObservabilityConfig     `json:"observability" yaml:"observability"`
}

// DatabaseConfig holds catalog/lexical/vector database configuration.
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// IndexerConfig holds walker/chunker/refresh configuration.
type IndexerConfig struct {
	RootPath        string   `json:"root_path" yaml:"root_path"`
	MaxFileSize     int64    `json:"max_file_size" yaml:"max_file_size"`
	IgnorePatterns  []string `json:"ignore_patterns" yaml:"ignore_patterns"`
	ProviderConcurrency int  `json:"provider_concurrency" yaml:"provider_concurrency"`
}

// ContextProviderConfig holds retrieval-pipeline (C8) tuning, matching
// spec.md §6's contextProvider.* keys.
type ContextProviderConfig struct {
	NRetrieve    int  `json:"nRetrieve" yaml:"nRetrieve"`
	NFinal       int  `json:"nFinal" yaml:"nFinal"`
	UseReranking bool `json:"useReranking" yaml:"useReranking"`
}

// EmbeddingsProviderConfig holds embedding provider configuration, matching
// spec.md §6's embeddingsProvider.{provider,model,apiBase,apiKey,maxChunkSize}.
type EmbeddingsProviderConfig struct {
	Provider     string `json:"provider" yaml:"provider"`
	Model        string `json:"model" yaml:"model"`
	APIBase      string `json:"apiBase" yaml:"apiBase"`
	APIKey       string `json:"apiKey" yaml:"apiKey"`
	MaxChunkSize int    `json:"maxChunkSize" yaml:"maxChunkSize"`
}

// RerankerConfig holds reranker provider configuration, matching spec.md
// §6's reranker.{name,model,apiKey}.
type RerankerConfig struct {
	Name   string `json:"name" yaml:"name"`
	Model  string `json:"model" yaml:"model"`
	APIKey string `json:"apiKey" yaml:"apiKey"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	Sentry  SentryConfig  `json:"sentry" yaml:"sentry"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port" yaml:"port"`
	Path    string `json:"path" yaml:"path"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	Endpoint   string  `json:"endpoint" yaml:"endpoint"`
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate"`
}

// SentryConfig holds Sentry error monitoring configuration.
type SentryConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	DSN         string  `json:"dsn" yaml:"dsn"`
	Environment string  `json:"environment" yaml:"environment"`
	SampleRate  float64 `json:"sample_rate" yaml:"sample_rate"`
	Release     string  `json:"release" yaml:"release"`
}

// Default values
const (
	DefaultDBPath              = "./data/conexus.db"
	DefaultRootPath            = "."
	DefaultMaxFileSize         = 1 << 20 // 1 MiB
	DefaultProviderConcurrency = 4
	DefaultNRetrieve           = 25
	DefaultNFinal              = 5
	DefaultUseReranking        = true
	DefaultEmbeddingsProvider  = "mock"
	DefaultEmbeddingsModel     = "mock-768"
	DefaultEmbeddingsMaxChunk  = 512
	DefaultRerankerName        = ""
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
	DefaultMetricsEnabled      = false
	DefaultMetricsPort         = 9091
	DefaultMetricsPath         = "/metrics"
	DefaultTracingEnabled      = false
	DefaultTracingEndpoint     = "http://localhost:4318"
	DefaultSampleRate          = 0.1
	DefaultSentryEnabled       = false
	DefaultSentryDSN           = ""
	DefaultSentryEnv           = "development"
	DefaultSentrySampleRate    = 1.0
	DefaultSentryRelease       = "0.1.2-alpha"
)

// Valid values for validation
var (
	ValidLogLevels  = []string{"debug", "info", "warn", "error"}
	ValidLogFormats = []string{"json", "text"}
)

// Load loads configuration from environment variables and optional config file.
// Precedence: env vars > config file > defaults.
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	cfg := defaults()

	// Load from config file if specified
	if configFile := os.Getenv("CONEXUS_CONFIG_FILE"); configFile != "" {
		// Validate config file path to prevent path traversal
		validatedPath, err := validation.ValidateConfigPath(configFile)
		if err != nil {
			return nil, fmt.Errorf("config file path validation failed: %w", err)
		}

		fileCfg, err := loadFile(validatedPath)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		cfg = merge(cfg, fileCfg)
	}

	// Override with environment variables
	cfg = loadEnv(cfg)

	// Validate final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config with all default values.
func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: DefaultDBPath,
		},
		Indexer: IndexerConfig{
			RootPath:            DefaultRootPath,
			MaxFileSize:         DefaultMaxFileSize,
			ProviderConcurrency: DefaultProviderConcurrency,
		},
		ContextProvider: ContextProviderConfig{
			NRetrieve:    DefaultNRetrieve,
			NFinal:       DefaultNFinal,
			UseReranking: DefaultUseReranking,
		},
		EmbeddingsProvider: EmbeddingsProviderConfig{
			Provider:     DefaultEmbeddingsProvider,
			Model:        DefaultEmbeddingsModel,
			MaxChunkSize: DefaultEmbeddingsMaxChunk,
		},
		Reranker: RerankerConfig{
			Name: DefaultRerankerName,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
				Port:    DefaultMetricsPort,
				Path:    DefaultMetricsPath,
			},
			Tracing: TracingConfig{
				Enabled:    DefaultTracingEnabled,
				Endpoint:   DefaultTracingEndpoint,
				SampleRate: DefaultSampleRate,
			},
			Sentry: SentryConfig{
				Enabled:     DefaultSentryEnabled,
				DSN:         DefaultSentryDSN,
				Environment: DefaultSentryEnv,
				SampleRate:  DefaultSentrySampleRate,
				Release:     DefaultSentryRelease,
			},
		},
	}
}

// loadFile loads configuration from a YAML or JSON file.
func loadFile(path string) (*Config, error) {
	// Clean path to prevent basic traversal attacks
	safePath := filepath.Clean(path)

	data, err := os.ReadFile(safePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := &Config{}
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}

	return cfg, nil
}

// loadEnv loads configuration from environment variables.
// Only overrides non-zero values from the provided config.
func loadEnv(cfg *Config) *Config {
	// Database config
	if dbPath := os.Getenv("CONEXUS_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Indexer config
	if rootPath := os.Getenv("CONEXUS_ROOT_PATH"); rootPath != "" {
		cfg.Indexer.RootPath = rootPath
	}
	if maxFileSize := os.Getenv("CONEXUS_MAX_FILE_SIZE"); maxFileSize != "" {
		if v, err := strconv.ParseInt(maxFileSize, 10, 64); err == nil {
			cfg.Indexer.MaxFileSize = v
		}
	}
	if ignorePatterns := os.Getenv("CONEXUS_IGNORE_PATTERNS"); ignorePatterns != "" {
		cfg.Indexer.IgnorePatterns = splitCSV(ignorePatterns)
	}
	if providerConcurrency := os.Getenv("CONEXUS_PROVIDER_CONCURRENCY"); providerConcurrency != "" {
		if v, err := strconv.Atoi(providerConcurrency); err == nil {
			cfg.Indexer.ProviderConcurrency = v
		}
	}

	// ContextProvider config
	if nRetrieve := os.Getenv("CONEXUS_CONTEXT_N_RETRIEVE"); nRetrieve != "" {
		if v, err := strconv.Atoi(nRetrieve); err == nil {
			cfg.ContextProvider.NRetrieve = v
		}
	}
	if nFinal := os.Getenv("CONEXUS_CONTEXT_N_FINAL"); nFinal != "" {
		if v, err := strconv.Atoi(nFinal); err == nil {
			cfg.ContextProvider.NFinal = v
		}
	}
	if useReranking := os.Getenv("CONEXUS_CONTEXT_USE_RERANKING"); useReranking != "" {
		if v, err := strconv.ParseBool(useReranking); err == nil {
			cfg.ContextProvider.UseReranking = v
		}
	}

	// EmbeddingsProvider config
	if provider := os.Getenv("CONEXUS_EMBEDDINGS_PROVIDER"); provider != "" {
		cfg.EmbeddingsProvider.Provider = provider
	}
	if model := os.Getenv("CONEXUS_EMBEDDINGS_MODEL"); model != "" {
		cfg.EmbeddingsProvider.Model = model
	}
	if apiBase := os.Getenv("CONEXUS_EMBEDDINGS_API_BASE"); apiBase != "" {
		cfg.EmbeddingsProvider.APIBase = apiBase
	}
	if apiKey := os.Getenv("CONEXUS_EMBEDDINGS_API_KEY"); apiKey != "" {
		cfg.EmbeddingsProvider.APIKey = apiKey
	}
	if maxChunkSize := os.Getenv("CONEXUS_EMBEDDINGS_MAX_CHUNK_SIZE"); maxChunkSize != "" {
		if v, err := strconv.Atoi(maxChunkSize); err == nil {
			cfg.EmbeddingsProvider.MaxChunkSize = v
		}
	}

	// Reranker config
	if name := os.Getenv("CONEXUS_RERANKER_NAME"); name != "" {
		cfg.Reranker.Name = name
	}
	if model := os.Getenv("CONEXUS_RERANKER_MODEL"); model != "" {
		cfg.Reranker.Model = model
	}
	if apiKey := os.Getenv("CONEXUS_RERANKER_API_KEY"); apiKey != "" {
		cfg.Reranker.APIKey = apiKey
	}

	// DisableInFiles
	if disableInFiles := os.Getenv("CONEXUS_DISABLE_IN_FILES"); disableInFiles != "" {
		cfg.DisableInFiles = splitCSV(disableInFiles)
	}

	// Logging config
	if logLevel := os.Getenv("CONEXUS_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("CONEXUS_LOG_FORMAT"); logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	// Metrics config
	if metricsEnabled := os.Getenv("CONEXUS_METRICS_ENABLED"); metricsEnabled != "" {
		if enabled, err := strconv.ParseBool(metricsEnabled); err == nil {
			cfg.Observability.Metrics.Enabled = enabled
		}
	}
	if metricsPort := os.Getenv("CONEXUS_METRICS_PORT"); metricsPort != "" {
		if port, err := strconv.Atoi(metricsPort); err == nil {
			cfg.Observability.Metrics.Port = port
		}
	}
	if metricsPath := os.Getenv("CONEXUS_METRICS_PATH"); metricsPath != "" {
		cfg.Observability.Metrics.Path = metricsPath
	}

	// Tracing config
	if tracingEnabled := os.Getenv("CONEXUS_TRACING_ENABLED"); tracingEnabled != "" {
		if enabled, err := strconv.ParseBool(tracingEnabled); err == nil {
			cfg.Observability.Tracing.Enabled = enabled
		}
	}
	if tracingEndpoint := os.Getenv("CONEXUS_TRACING_ENDPOINT"); tracingEndpoint != "" {
		cfg.Observability.Tracing.Endpoint = tracingEndpoint
	}
	if sampleRate := os.Getenv("CONEXUS_TRACING_SAMPLE_RATE"); sampleRate != "" {
		if rate, err := strconv.ParseFloat(sampleRate, 64); err == nil {
			cfg.Observability.Tracing.SampleRate = rate
		}
	}

	// Sentry config
	if sentryEnabled := os.Getenv("CONEXUS_SENTRY_ENABLED"); sentryEnabled != "" {
		if enabled, err := strconv.ParseBool(sentryEnabled); err == nil {
			cfg.Observability.Sentry.Enabled = enabled
		}
	}
	if sentryDSN := os.Getenv("CONEXUS_SENTRY_DSN"); sentryDSN != "" {
		cfg.Observability.Sentry.DSN = sentryDSN
	}
	if sentryEnv := os.Getenv("CONEXUS_SENTRY_ENVIRONMENT"); sentryEnv != "" {
		cfg.Observability.Sentry.Environment = sentryEnv
	}
	if sentrySampleRate := os.Getenv("CONEXUS_SENTRY_SAMPLE_RATE"); sentrySampleRate != "" {
		if rate, err := strconv.ParseFloat(sentrySampleRate, 64); err == nil {
			cfg.Observability.Sentry.SampleRate = rate
		}
	}
	if sentryRelease := os.Getenv("CONEXUS_SENTRY_RELEASE"); sentryRelease != "" {
		cfg.Observability.Sentry.Release = sentryRelease
	}

	return cfg
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// merge merges two configs, preferring values from 'override' when non-zero.
func merge(base, override *Config) *Config {
	result := *base

	// Database
	if override.Database.Path != "" {
		result.Database.Path = override.Database.Path
	}

	// Indexer
	if override.Indexer.RootPath != "" {
		result.Indexer.RootPath = override.Indexer.RootPath
	}
	if override.Indexer.MaxFileSize != 0 {
		result.Indexer.MaxFileSize = override.Indexer.MaxFileSize
	}
	if len(override.Indexer.IgnorePatterns) > 0 {
		result.Indexer.IgnorePatterns = override.Indexer.IgnorePatterns
	}
	if override.Indexer.ProviderConcurrency != 0 {
		result.Indexer.ProviderConcurrency = override.Indexer.ProviderConcurrency
	}

	// ContextProvider
	if override.ContextProvider.NRetrieve != 0 {
		result.ContextProvider.NRetrieve = override.ContextProvider.NRetrieve
	}
	if override.ContextProvider.NFinal != 0 {
		result.ContextProvider.NFinal = override.ContextProvider.NFinal
	}
	if override.ContextProvider.UseReranking != DefaultUseReranking {
		result.ContextProvider.UseReranking = override.ContextProvider.UseReranking
	}

	// EmbeddingsProvider
	if override.EmbeddingsProvider.Provider != "" {
		result.EmbeddingsProvider.Provider = override.EmbeddingsProvider.Provider
	}
	if override.EmbeddingsProvider.Model != "" {
		result.EmbeddingsProvider.Model = override.EmbeddingsProvider.Model
	}
	if override.EmbeddingsProvider.APIBase != "" {
		result.EmbeddingsProvider.APIBase = override.EmbeddingsProvider.APIBase
	}
	if override.EmbeddingsProvider.APIKey != "" {
		result.EmbeddingsProvider.APIKey = override.EmbeddingsProvider.APIKey
	}
	if override.EmbeddingsProvider.MaxChunkSize != 0 {
		result.EmbeddingsProvider.MaxChunkSize = override.EmbeddingsProvider.MaxChunkSize
	}

	// Reranker
	if override.Reranker.Name != "" {
		result.Reranker.Name = override.Reranker.Name
	}
	if override.Reranker.Model != "" {
		result.Reranker.Model = override.Reranker.Model
	}
	if override.Reranker.APIKey != "" {
		result.Reranker.APIKey = override.Reranker.APIKey
	}

	// DisableInFiles
	if len(override.DisableInFiles) > 0 {
		result.DisableInFiles = override.DisableInFiles
	}

	// Logging
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	// Observability - Metrics
	// For boolean flags, we need to check if they differ from defaults
	if override.Observability.Metrics.Enabled != DefaultMetricsEnabled {
		result.Observability.Metrics.Enabled = override.Observability.Metrics.Enabled
	}
	if override.Observability.Metrics.Port != 0 {
		result.Observability.Metrics.Port = override.Observability.Metrics.Port
	}
	if override.Observability.Metrics.Path != "" {
		result.Observability.Metrics.Path = override.Observability.Metrics.Path
	}

	// Observability - Tracing
	if override.Observability.Tracing.Enabled != DefaultTracingEnabled {
		result.Observability.Tracing.Enabled = override.Observability.Tracing.Enabled
	}
	if override.Observability.Tracing.Endpoint != "" {
		result.Observability.Tracing.Endpoint = override.Observability.Tracing.Endpoint
	}
	if override.Observability.Tracing.SampleRate != 0 {
		result.Observability.Tracing.SampleRate = override.Observability.Tracing.SampleRate
	}

	// Observability - Sentry
	if override.Observability.Sentry.Enabled != DefaultSentryEnabled {
		result.Observability.Sentry.Enabled = override.Observability.Sentry.Enabled
	}
	if override.Observability.Sentry.DSN != "" {
		result.Observability.Sentry.DSN = override.Observability.Sentry.DSN
	}
	if override.Observability.Sentry.Environment != "" {
		result.Observability.Sentry.Environment = override.Observability.Sentry.Environment
	}
	if override.Observability.Sentry.SampleRate != 0 {
		result.Observability.Sentry.SampleRate = override.Observability.Sentry.SampleRate
	}
	if override.Observability.Sentry.Release != "" {
		result.Observability.Sentry.Release = override.Observability.Sentry.Release
	}

	return &result
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	// Validate database config
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	// Validate indexer config
	if c.Indexer.RootPath == "" {
		return fmt.Errorf("indexer root path cannot be empty")
	}
	if c.Indexer.MaxFileSize < 1 {
		return fmt.Errorf("indexer max file size must be positive: %d", c.Indexer.MaxFileSize)
	}
	if c.Indexer.ProviderConcurrency < 1 {
		return fmt.Errorf("indexer provider concurrency must be positive: %d", c.Indexer.ProviderConcurrency)
	}

	// Validate context provider config
	if c.ContextProvider.NRetrieve < 1 {
		return fmt.Errorf("contextProvider.nRetrieve must be positive: %d", c.ContextProvider.NRetrieve)
	}
	if c.ContextProvider.NFinal < 1 {
		return fmt.Errorf("contextProvider.nFinal must be positive: %d", c.ContextProvider.NFinal)
	}
	if c.ContextProvider.NFinal > c.ContextProvider.NRetrieve {
		return fmt.Errorf("contextProvider.nFinal (%d) must not exceed nRetrieve (%d)",
			c.ContextProvider.NFinal, c.ContextProvider.NRetrieve)
	}

	// Validate embeddings provider config
	if c.EmbeddingsProvider.Provider == "" {
		return fmt.Errorf("embeddingsProvider.provider cannot be empty")
	}
	if c.EmbeddingsProvider.MaxChunkSize < 1 {
		return fmt.Errorf("embeddingsProvider.maxChunkSize must be positive: %d", c.EmbeddingsProvider.MaxChunkSize)
	}

	// Validate logging config
	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}

	// Validate metrics config
	if c.Observability.Metrics.Enabled {
		if c.Observability.Metrics.Port < 1 || c.Observability.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d (must be 1-65535)", c.Observability.Metrics.Port)
		}
		if c.Observability.Metrics.Path == "" {
			return fmt.Errorf("metrics path cannot be empty when metrics enabled")
		}
	}

	// Validate tracing config
	if c.Observability.Tracing.Enabled {
		if c.Observability.Tracing.Endpoint == "" {
			return fmt.Errorf("tracing endpoint cannot be empty when tracing enabled")
		}
		if c.Observability.Tracing.SampleRate < 0 || c.Observability.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing sample rate must be between 0 and 1: %f", c.Observability.Tracing.SampleRate)
		}
	}

	// Validate sentry config
	if c.Observability.Sentry.Enabled {
		if c.Observability.Sentry.DSN == "" {
			return fmt.Errorf("sentry DSN cannot be empty when sentry enabled")
		}
		if c.Observability.Sentry.SampleRate < 0 || c.Observability.Sentry.SampleRate > 1 {
			return fmt.Errorf("sentry sample rate must be between 0 and 1: %f", c.Observability.Sentry.SampleRate)
		}
	}

	return nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Default returns a default configuration for testing and documentation.
func Default() *Config {
	return defaults()
}
