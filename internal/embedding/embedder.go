// Package embedding provides text embedding providers and a factory for creating them.
package embedding

import (
	"context"
	"fmt"
)

// DefaultDimensions is the embedding vector size (384 = all-MiniLM-L6-v2).
// OpenAI text-embedding-3-small also supports 384 via the dimensions parameter.
const DefaultDimensions = 384

// Embedder produces vector embeddings for text. Implementations return raw
// provider output; callers decide whether to L2-normalize.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
	Name() string
	Close() error
}

// ProviderType selects the embedding backend.
type ProviderType string

const (
	// ProviderONNX runs a local ONNX model. Requires CGO and the onnxruntime
	// shared library.
	ProviderONNX ProviderType = "onnx"
	// ProviderOpenAI calls the OpenAI embeddings API.
	ProviderOpenAI ProviderType = "openai"
	// ProviderHash hashes words into dimensions. Deterministic and dependency-free,
	// but not semantically meaningful.
	ProviderHash ProviderType = "hash"
)

// Options configures NewEmbedder. Fields that a provider does not use are ignored.
type Options struct {
	ModelPath   string // ONNX model file
	VocabPath   string // WordPiece vocab file; empty selects the simple tokenizer
	Model       string // model identifier reported by the ONNX embedder
	Dimensions  int
	MaxTokens   int
	APIKey      string // OpenAI API key
	OpenAIModel string // OpenAI model name
}

// NewEmbedder creates an embedder of the specified provider type.
// Supported providers: "onnx" (default), "openai", "hash".
func NewEmbedder(provider string, opts Options) (Embedder, error) {
	switch ProviderType(provider) {
	case ProviderONNX, "":
		return NewONNXEmbedder(opts.ModelPath, opts.VocabPath, opts.Model, opts.Dimensions, opts.MaxTokens)
	case ProviderOpenAI:
		return NewOpenAIEmbedder(opts.APIKey, opts.OpenAIModel, opts.Dimensions)
	case ProviderHash:
		return NewHashEmbedder(opts.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, openai, hash)", provider)
	}
}
