package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
embedding:
  provider: "hash"
  dimensions: 128
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("provider = %s, want hash", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 128 {
		t.Errorf("dimensions = %d, want 128", cfg.Embedding.Dimensions)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Embedding.MaxTokens != 256 {
		t.Errorf("max_tokens should default to 256, got %d", cfg.Embedding.MaxTokens)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8501
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
embedding:
  model_path: "./models/all-MiniLM-L6-v2.onnx"
  vocab_path: "./models/vocab.txt"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantModel := filepath.Join(dir, "models", "all-MiniLM-L6-v2.onnx")
	if cfg.Embedding.ModelPath != wantModel {
		t.Errorf("model_path = %s, want %s", cfg.Embedding.ModelPath, wantModel)
	}
	wantVocab := filepath.Join(dir, "models", "vocab.txt")
	if cfg.Embedding.VocabPath != wantVocab {
		t.Errorf("vocab_path = %s, want %s", cfg.Embedding.VocabPath, wantVocab)
	}
}

func TestLoad_emptyVocabPathStaysEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
embedding:
  model_path: "/opt/models/model.onnx"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.VocabPath != "" {
		t.Errorf("vocab_path should stay empty, got %s", cfg.Embedding.VocabPath)
	}
}

func TestLoad_envOverridesFile(t *testing.T) {
	t.Setenv("EMBEDDINGS_PORT", "9999")
	t.Setenv("EMBEDDINGS_PROVIDER", "hash")
	t.Setenv("EMBEDDINGS_NORMALIZE", "false")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8501
embedding:
  provider: "onnx"
  normalize: true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("provider = %s, want env override hash", cfg.Embedding.Provider)
	}
	if cfg.Embedding.NormalizeOrDefault() {
		t.Error("normalize should be overridden to false by environment")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("EMBEDDINGS_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("provider = %s, want openai", cfg.Embedding.Provider)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api_key = %s, want sk-test", cfg.OpenAI.APIKey)
	}
	if cfg.Server.Port != 8501 {
		t.Errorf("port should default to 8501, got %d", cfg.Server.Port)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8501 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeoutSeconds != 10 {
		t.Errorf("default shutdown timeout: got %d, want 10", cfg.Server.ShutdownTimeoutSeconds)
	}
	if cfg.Embedding.Provider != "onnx" {
		t.Errorf("default provider: got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "all-MiniLM-L6-v2" {
		t.Errorf("default model: got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.ModelPath == "" {
		t.Error("model_path should be set by default")
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.MaxTokens != 256 {
		t.Errorf("default max_tokens: got %d, want 256", cfg.Embedding.MaxTokens)
	}
	if cfg.OpenAI.Model != "text-embedding-3-small" {
		t.Errorf("default openai model: got %s", cfg.OpenAI.Model)
	}
	if !cfg.Embedding.NormalizeOrDefault() {
		t.Error("normalize should default to true")
	}
	if !cfg.Metrics.EnabledOrDefault() {
		t.Error("metrics should default to enabled")
	}
}

func TestEmbeddingConfig_NormalizeOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		e := &EmbeddingConfig{}
		if got := e.NormalizeOrDefault(); !got {
			t.Errorf("NormalizeOrDefault() = %v, want true", got)
		}
	})
	t.Run("true_returns_true", func(t *testing.T) {
		v := true
		e := &EmbeddingConfig{Normalize: &v}
		if got := e.NormalizeOrDefault(); !got {
			t.Errorf("NormalizeOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		e := &EmbeddingConfig{Normalize: &f}
		if got := e.NormalizeOrDefault(); got {
			t.Errorf("NormalizeOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:    ServerConfig{Host: "localhost", Port: 9090},
		Embedding: EmbeddingConfig{Provider: "hash", Dimensions: 64},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Embedding.Provider != "hash" {
		t.Errorf("loaded provider: got %s", loaded.Embedding.Provider)
	}
}
