package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	assert.Equal(t, DefaultDBPath, cfg.Database.Path)
	assert.Equal(t, DefaultRootPath, cfg.Indexer.RootPath)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Indexer.MaxFileSize)
	assert.Equal(t, DefaultProviderConcurrency, cfg.Indexer.ProviderConcurrency)
	assert.Equal(t, DefaultNRetrieve, cfg.ContextProvider.NRetrieve)
	assert.Equal(t, DefaultNFinal, cfg.ContextProvider.NFinal)
	assert.Equal(t, DefaultUseReranking, cfg.ContextProvider.UseReranking)
	assert.Equal(t, DefaultEmbeddingsProvider, cfg.EmbeddingsProvider.Provider)
	assert.Equal(t, DefaultEmbeddingsModel, cfg.EmbeddingsProvider.Model)
	assert.Equal(t, DefaultEmbeddingsMaxChunk, cfg.EmbeddingsProvider.MaxChunkSize)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
}

func TestLoadEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "all env vars",
			envVars: map[string]string{
				"CONEXUS_DB_PATH":                    "/custom/db.sqlite",
				"CONEXUS_ROOT_PATH":                  "/custom/root",
				"CONEXUS_MAX_FILE_SIZE":               "2048",
				"CONEXUS_PROVIDER_CONCURRENCY":        "8",
				"CONEXUS_CONTEXT_N_RETRIEVE":          "50",
				"CONEXUS_CONTEXT_N_FINAL":             "10",
				"CONEXUS_CONTEXT_USE_RERANKING":       "false",
				"CONEXUS_EMBEDDINGS_PROVIDER":         "openai",
				"CONEXUS_EMBEDDINGS_MODEL":            "text-embedding-3-small",
				"CONEXUS_EMBEDDINGS_API_BASE":         "https://api.openai.com/v1",
				"CONEXUS_EMBEDDINGS_API_KEY":          "sk-test",
				"CONEXUS_EMBEDDINGS_MAX_CHUNK_SIZE":   "1024",
				"CONEXUS_RERANKER_NAME":               "cohere",
				"CONEXUS_RERANKER_MODEL":              "rerank-v3",
				"CONEXUS_RERANKER_API_KEY":            "rr-test",
				"CONEXUS_DISABLE_IN_FILES":            "*.lock, vendor/**",
				"CONEXUS_LOG_LEVEL":                   "debug",
				"CONEXUS_LOG_FORMAT":                  "text",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/custom/db.sqlite", cfg.Database.Path)
				assert.Equal(t, "/custom/root", cfg.Indexer.RootPath)
				assert.Equal(t, int64(2048), cfg.Indexer.MaxFileSize)
				assert.Equal(t, 8, cfg.Indexer.ProviderConcurrency)
				assert.Equal(t, 50, cfg.ContextProvider.NRetrieve)
				assert.Equal(t, 10, cfg.ContextProvider.NFinal)
				assert.False(t, cfg.ContextProvider.UseReranking)
				assert.Equal(t, "openai", cfg.EmbeddingsProvider.Provider)
				assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingsProvider.Model)
				assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingsProvider.APIBase)
				assert.Equal(t, "sk-test", cfg.EmbeddingsProvider.APIKey)
				assert.Equal(t, 1024, cfg.EmbeddingsProvider.MaxChunkSize)
				assert.Equal(t, "cohere", cfg.Reranker.Name)
				assert.Equal(t, "rerank-v3", cfg.Reranker.Model)
				assert.Equal(t, "rr-test", cfg.Reranker.APIKey)
				assert.Equal(t, []string{"*.lock", "vendor/**"}, cfg.DisableInFiles)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "partial env vars",
			envVars: map[string]string{
				"CONEXUS_LOG_LEVEL": "warn",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
				assert.Equal(t, DefaultDBPath, cfg.Database.Path)
			},
		},
		{
			name:    "no env vars (defaults)",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, defaults(), cfg)
			},
		},
		{
			name: "invalid int values ignored",
			envVars: map[string]string{
				"CONEXUS_MAX_FILE_SIZE":      "not-a-number",
				"CONEXUS_CONTEXT_N_RETRIEVE": "also-invalid",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(DefaultMaxFileSize), cfg.Indexer.MaxFileSize)
				assert.Equal(t, DefaultNRetrieve, cfg.ContextProvider.NRetrieve)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			t.Cleanup(func() { clearEnv(t) })

			cfg := defaults()
			result := loadEnv(cfg)

			tt.check(t, result)
		})
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		ext         string
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid yaml",
			content: `
database:
  path: "/custom/db.sqlite"
indexer:
  root_path: "/custom/root"
  max_file_size: 2048
contextProvider:
  nRetrieve: 50
  nFinal: 10
logging:
  level: "debug"
  format: "text"
`,
			ext: ".yaml",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/custom/db.sqlite", cfg.Database.Path)
				assert.Equal(t, "/custom/root", cfg.Indexer.RootPath)
				assert.Equal(t, int64(2048), cfg.Indexer.MaxFileSize)
				assert.Equal(t, 50, cfg.ContextProvider.NRetrieve)
				assert.Equal(t, 10, cfg.ContextProvider.NFinal)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "valid json",
			content: `{
  "database": {"path": "/custom/db.sqlite"},
  "indexer": {"root_path": "/custom/root"},
  "logging": {"level": "debug", "format": "text"}
}`,
			ext: ".json",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/custom/db.sqlite", cfg.Database.Path)
				assert.Equal(t, "/custom/root", cfg.Indexer.RootPath)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name:        "invalid yaml",
			content:     "invalid: yaml: content: [",
			ext:         ".yaml",
			expectError: true,
		},
		{
			name:        "invalid json",
			content:     "{invalid json",
			ext:         ".json",
			expectError: true,
		},
		{
			name:        "unsupported extension",
			content:     "some content",
			ext:         ".txt",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tmpFile := filepath.Join(tmpDir, "config"+tt.ext)
			err := os.WriteFile(tmpFile, []byte(tt.content), 0644)
			require.NoError(t, err)

			result, err := loadFile(tmpFile)

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, result)
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := loadFile("/nonexistent/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}

func TestMerge(t *testing.T) {
	base := &Config{
		Database: DatabaseConfig{
			Path: "./data/db.sqlite",
		},
		Indexer: IndexerConfig{
			RootPath:    ".",
			MaxFileSize: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	override := &Config{
		Logging: LoggingConfig{
			Level: "debug", // override
		},
	}

	result := merge(base, override)

	// Overridden values
	assert.Equal(t, "debug", result.Logging.Level)

	// Preserved values
	assert.Equal(t, "./data/db.sqlite", result.Database.Path)
	assert.Equal(t, ".", result.Indexer.RootPath)
	assert.Equal(t, int64(1<<20), result.Indexer.MaxFileSize)
	assert.Equal(t, "json", result.Logging.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			cfg:         defaults(),
			expectError: false,
		},
		{
			name: "empty database path",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Database.Path = ""
				return cfg
			}(),
			expectError: true,
			errorMsg:    "database path cannot be empty",
		},
		{
			name: "empty root path",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Indexer.RootPath = ""
				return cfg
			}(),
			expectError: true,
			errorMsg:    "root path cannot be empty",
		},
		{
			name: "invalid max file size",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Indexer.MaxFileSize = 0
				return cfg
			}(),
			expectError: true,
			errorMsg:    "max file size must be positive",
		},
		{
			name: "nFinal exceeds nRetrieve",
			cfg: func() *Config {
				cfg := defaults()
				cfg.ContextProvider.NRetrieve = 5
				cfg.ContextProvider.NFinal = 10
				return cfg
			}(),
			expectError: true,
			errorMsg:    "must not exceed nRetrieve",
		},
		{
			name: "empty embeddings provider",
			cfg: func() *Config {
				cfg := defaults()
				cfg.EmbeddingsProvider.Provider = ""
				return cfg
			}(),
			expectError: true,
			errorMsg:    "embeddingsProvider.provider cannot be empty",
		},
		{
			name: "invalid log level",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Logging.Level = "invalid"
				return cfg
			}(),
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name: "invalid log format",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Logging.Format = "invalid"
				return cfg
			}(),
			expectError: true,
			errorMsg:    "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.expectError {
				assert.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		clearEnv(t)
		t.Cleanup(func() { clearEnv(t) })

		cfg, err := Load(context.Background())
		require.NoError(t, err)

		expected := defaults()
		assert.Equal(t, expected, cfg)
	})

	t.Run("with config file", func(t *testing.T) {
		clearEnv(t)
		t.Cleanup(func() { clearEnv(t) })

		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		content := `
logging:
  level: "debug"
`
		err := os.WriteFile(configFile, []byte(content), 0644)
		require.NoError(t, err)

		os.Setenv("CONEXUS_CONFIG_FILE", configFile)

		cfg, err := Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, DefaultDBPath, cfg.Database.Path)
	})

	t.Run("env overrides file", func(t *testing.T) {
		clearEnv(t)
		t.Cleanup(func() { clearEnv(t) })

		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		content := `
logging:
  level: "debug"
`
		err := os.WriteFile(configFile, []byte(content), 0644)
		require.NoError(t, err)

		os.Setenv("CONEXUS_CONFIG_FILE", configFile)
		os.Setenv("CONEXUS_LOG_LEVEL", "error") // override file

		cfg, err := Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "error", cfg.Logging.Level)
	})

	t.Run("invalid config file", func(t *testing.T) {
		clearEnv(t)
		t.Cleanup(func() { clearEnv(t) })

		os.Setenv("CONEXUS_CONFIG_FILE", "/nonexistent/config.yaml")

		_, err := Load(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "load config file")
	})

	t.Run("validation error", func(t *testing.T) {
		clearEnv(t)
		t.Cleanup(func() { clearEnv(t) })

		os.Setenv("CONEXUS_MAX_FILE_SIZE", "0") // invalid

		_, err := Load(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "validate config")
	})
}

func TestContains(t *testing.T) {
	slice := []string{"a", "b", "c"}

	assert.True(t, contains(slice, "a"))
	assert.True(t, contains(slice, "b"))
	assert.True(t, contains(slice, "c"))
	assert.False(t, contains(slice, "d"))
	assert.False(t, contains(slice, ""))
	assert.False(t, contains([]string{}, "a"))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	expectedDefaults := defaults()
	assert.Equal(t, expectedDefaults, cfg)

	assert.Equal(t, DefaultDBPath, cfg.Database.Path)
	assert.Equal(t, DefaultRootPath, cfg.Indexer.RootPath)
	assert.Equal(t, DefaultEmbeddingsProvider, cfg.EmbeddingsProvider.Provider)
	assert.Equal(t, DefaultEmbeddingsModel, cfg.EmbeddingsProvider.Model)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
}

func TestLoadEnv_Observability(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, obs ObservabilityConfig)
	}{
		{
			name: "metrics enabled",
			envVars: map[string]string{
				"CONEXUS_METRICS_ENABLED": "true",
				"CONEXUS_METRICS_PORT":    "9090",
				"CONEXUS_METRICS_PATH":    "/custom/metrics",
			},
			check: func(t *testing.T, obs ObservabilityConfig) {
				assert.True(t, obs.Metrics.Enabled)
				assert.Equal(t, 9090, obs.Metrics.Port)
				assert.Equal(t, "/custom/metrics", obs.Metrics.Path)
			},
		},
		{
			name: "tracing enabled",
			envVars: map[string]string{
				"CONEXUS_TRACING_ENABLED":     "true",
				"CONEXUS_TRACING_ENDPOINT":    "http://custom:4318",
				"CONEXUS_TRACING_SAMPLE_RATE": "0.5",
			},
			check: func(t *testing.T, obs ObservabilityConfig) {
				assert.True(t, obs.Tracing.Enabled)
				assert.Equal(t, "http://custom:4318", obs.Tracing.Endpoint)
				assert.Equal(t, 0.5, obs.Tracing.SampleRate)
			},
		},
		{
			name: "sentry enabled",
			envVars: map[string]string{
				"CONEXUS_SENTRY_ENABLED":     "true",
				"CONEXUS_SENTRY_DSN":         "https://test@sentry.io/123",
				"CONEXUS_SENTRY_ENVIRONMENT": "production",
				"CONEXUS_SENTRY_SAMPLE_RATE": "0.8",
				"CONEXUS_SENTRY_RELEASE":     "v1.0.0",
			},
			check: func(t *testing.T, obs ObservabilityConfig) {
				assert.True(t, obs.Sentry.Enabled)
				assert.Equal(t, "https://test@sentry.io/123", obs.Sentry.DSN)
				assert.Equal(t, "production", obs.Sentry.Environment)
				assert.Equal(t, 0.8, obs.Sentry.SampleRate)
				assert.Equal(t, "v1.0.0", obs.Sentry.Release)
			},
		},
		{
			name: "invalid boolean values ignored",
			envVars: map[string]string{
				"CONEXUS_METRICS_ENABLED": "invalid",
				"CONEXUS_TRACING_ENABLED": "not-a-bool",
				"CONEXUS_SENTRY_ENABLED":  "maybe",
			},
			check: func(t *testing.T, obs ObservabilityConfig) {
				assert.Equal(t, DefaultMetricsEnabled, obs.Metrics.Enabled)
				assert.Equal(t, DefaultTracingEnabled, obs.Tracing.Enabled)
				assert.Equal(t, DefaultSentryEnabled, obs.Sentry.Enabled)
			},
		},
		{
			name: "invalid float values ignored",
			envVars: map[string]string{
				"CONEXUS_TRACING_SAMPLE_RATE": "not-a-float",
				"CONEXUS_SENTRY_SAMPLE_RATE":  "invalid",
			},
			check: func(t *testing.T, obs ObservabilityConfig) {
				assert.Equal(t, DefaultSampleRate, obs.Tracing.SampleRate)
				assert.Equal(t, DefaultSentrySampleRate, obs.Sentry.SampleRate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			t.Cleanup(func() { clearEnv(t) })

			cfg := defaults()
			result := loadEnv(cfg)

			tt.check(t, result.Observability)
		})
	}
}

func TestMerge_Observability(t *testing.T) {
	base := &Config{
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Enabled: false, Port: 9090, Path: "/metrics"},
			Tracing: TracingConfig{Enabled: false, Endpoint: "http://localhost:4318", SampleRate: 0.1},
			Sentry:  SentryConfig{Enabled: false, Environment: "development", SampleRate: 1.0, Release: "v0.1.0"},
		},
	}

	override := &Config{
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Enabled: true, Port: 8080, Path: "/custom"},
			Tracing: TracingConfig{Enabled: true, Endpoint: "http://custom:4318", SampleRate: 0.5},
			Sentry: SentryConfig{
				Enabled:     true,
				DSN:         "https://test@sentry.io/123",
				Environment: "production",
				SampleRate:  0.8,
				Release:     "v1.0.0",
			},
		},
	}

	result := merge(base, override)

	assert.True(t, result.Observability.Metrics.Enabled)
	assert.Equal(t, 8080, result.Observability.Metrics.Port)
	assert.Equal(t, "/custom", result.Observability.Metrics.Path)

	assert.True(t, result.Observability.Tracing.Enabled)
	assert.Equal(t, "http://custom:4318", result.Observability.Tracing.Endpoint)
	assert.Equal(t, 0.5, result.Observability.Tracing.SampleRate)

	assert.True(t, result.Observability.Sentry.Enabled)
	assert.Equal(t, "https://test@sentry.io/123", result.Observability.Sentry.DSN)
	assert.Equal(t, "production", result.Observability.Sentry.Environment)
	assert.Equal(t, 0.8, result.Observability.Sentry.SampleRate)
	assert.Equal(t, "v1.0.0", result.Observability.Sentry.Release)
}

func TestValidate_Observability(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid observability disabled",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Observability.Metrics.Enabled = false
				cfg.Observability.Tracing.Enabled = false
				cfg.Observability.Sentry.Enabled = false
				return cfg
			}(),
			expectError: false,
		},
		{
			name: "invalid metrics port",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Observability.Metrics.Enabled = true
				cfg.Observability.Metrics.Port = 0
				return cfg
			}(),
			expectError: true,
			errorMsg:    "invalid metrics port",
		},
		{
			name: "empty metrics path when enabled",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Observability.Metrics.Enabled = true
				cfg.Observability.Metrics.Path = ""
				return cfg
			}(),
			expectError: true,
			errorMsg:    "metrics path cannot be empty",
		},
		{
			name: "empty tracing endpoint when enabled",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Observability.Tracing.Enabled = true
				cfg.Observability.Tracing.Endpoint = ""
				return cfg
			}(),
			expectError: true,
			errorMsg:    "tracing endpoint cannot be empty",
		},
		{
			name: "invalid tracing sample rate",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Observability.Tracing.Enabled = true
				cfg.Observability.Tracing.SampleRate = 1.5
				return cfg
			}(),
			expectError: true,
			errorMsg:    "tracing sample rate must be between 0 and 1",
		},
		{
			name: "empty sentry DSN when enabled",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Observability.Sentry.Enabled = true
				cfg.Observability.Sentry.DSN = ""
				return cfg
			}(),
			expectError: true,
			errorMsg:    "sentry DSN cannot be empty",
		},
		{
			name: "invalid sentry sample rate",
			cfg: func() *Config {
				cfg := defaults()
				cfg.Observability.Sentry.Enabled = true
				cfg.Observability.Sentry.DSN = "https://test@sentry.io/123"
				cfg.Observability.Sentry.SampleRate = 1.5
				return cfg
			}(),
			expectError: true,
			errorMsg:    "sentry sample rate must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.expectError {
				assert.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Helper to clear all CONEXUS_* env vars
func clearEnv(t *testing.T) {
	vars := []string{
		"CONEXUS_DB_PATH",
		"CONEXUS_ROOT_PATH",
		"CONEXUS_MAX_FILE_SIZE",
		"CONEXUS_IGNORE_PATTERNS",
		"CONEXUS_PROVIDER_CONCURRENCY",
		"CONEXUS_CONTEXT_N_RETRIEVE",
		"CONEXUS_CONTEXT_N_FINAL",
		"CONEXUS_CONTEXT_USE_RERANKING",
		"CONEXUS_EMBEDDINGS_PROVIDER",
		"CONEXUS_EMBEDDINGS_MODEL",
		"CONEXUS_EMBEDDINGS_API_BASE",
		"CONEXUS_EMBEDDINGS_API_KEY",
		"CONEXUS_EMBEDDINGS_MAX_CHUNK_SIZE",
		"CONEXUS_RERANKER_NAME",
		"CONEXUS_RERANKER_MODEL",
		"CONEXUS_RERANKER_API_KEY",
		"CONEXUS_DISABLE_IN_FILES",
		"CONEXUS_LOG_LEVEL",
		"CONEXUS_LOG_FORMAT",
		"CONEXUS_CONFIG_FILE",
		"CONEXUS_METRICS_ENABLED",
		"CONEXUS_METRICS_PORT",
		"CONEXUS_METRICS_PATH",
		"CONEXUS_TRACING_ENABLED",
		"CONEXUS_TRACING_ENDPOINT",
		"CONEXUS_TRACING_SAMPLE_RATE",
		"CONEXUS_SENTRY_ENABLED",
		"CONEXUS_SENTRY_DSN",
		"CONEXUS_SENTRY_ENVIRONMENT",
		"CONEXUS_SENTRY_SAMPLE_RATE",
		"CONEXUS_SENTRY_RELEASE",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
