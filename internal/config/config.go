// Package config provides configuration loading and structs for the embeddings server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug" env:"EMBEDDINGS_DEBUG"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" env:"EMBEDDINGS_HOST"`
	Port int    `yaml:"port" env:"EMBEDDINGS_PORT"`
	// ShutdownTimeoutSeconds bounds how long graceful shutdown waits for
	// in-flight requests.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds" env:"EMBEDDINGS_SHUTDOWN_TIMEOUT"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the backend: "onnx", "openai" or "hash".
	Provider string `yaml:"provider" env:"EMBEDDINGS_PROVIDER"`
	// Model is the model identifier reported to clients.
	Model     string `yaml:"model" env:"EMBEDDINGS_MODEL"`
	ModelPath string `yaml:"model_path" env:"EMBEDDINGS_MODEL_PATH"`
	// VocabPath points at a WordPiece vocab.txt. When empty the ONNX
	// embedder falls back to a whitespace tokenizer.
	VocabPath  string `yaml:"vocab_path" env:"EMBEDDINGS_VOCAB_PATH"`
	Dimensions int    `yaml:"dimensions" env:"EMBEDDINGS_DIMENSIONS"`
	MaxTokens  int    `yaml:"max_tokens" env:"EMBEDDINGS_MAX_TOKENS"`
	Normalize  *bool  `yaml:"normalize" env:"EMBEDDINGS_NORMALIZE"`
}

// NormalizeOrDefault returns whether vectors are L2-normalized before
// being returned; defaults to true when unset. Requests may override it
// per call.
func (e *EmbeddingConfig) NormalizeOrDefault() bool {
	if e.Normalize != nil {
		return *e.Normalize
	}
	return true
}

// OpenAIConfig holds credentials for the remote OpenAI provider.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model  string `yaml:"model" env:"OPENAI_EMBEDDING_MODEL"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled" env:"EMBEDDINGS_METRICS"`
}

// EnabledOrDefault returns whether the /metrics endpoint is served; defaults to true when unset.
func (m *MetricsConfig) EnabledOrDefault() bool {
	if m.Enabled != nil {
		return *m.Enabled
	}
	return true
}

// Load reads and parses the config file at path, applies environment
// overrides, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)

	return &cfg, nil
}

// FromEnv builds a config from environment variables and defaults alone,
// for running without a config file. Relative paths are resolved against
// the working directory.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, ".")
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, ".")

	return &cfg, nil
}

// Save writes the config to path. Used by the config init subcommand.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Empty paths stay empty. Paths
// starting with "./" are relative to configDir; other relative paths are
// relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
