package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// HashEmbedder produces embeddings by hashing words into vector dimensions.
// Not semantically meaningful, but deterministic and dependency-free: the same
// text always maps to the same vector, and texts sharing words land near each
// other. Serves as the fallback when no model is available and as a test double.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns an embedder that produces deterministic embeddings
// of the given dimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed hashes each word to a dimension index and accumulates its contribution.
// Bigrams are added at half weight so word order shifts the vector slightly.
// The result is raw (unnormalized).
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)
	words := hashWords(text)

	for _, word := range words {
		vec[e.bucket(word)] += 1.0
	}
	for i := 0; i < len(words)-1; i++ {
		vec[e.bucket(words[i]+" "+words[i+1])] += 0.5
	}
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the model identifier.
func (e *HashEmbedder) Model() string {
	return "hash-fnv1a"
}

// Name returns the provider name for logging.
func (e *HashEmbedder) Name() string {
	return string(ProviderHash)
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}

func (e *HashEmbedder) bucket(token string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(token))
	return h.Sum64() % uint64(e.dimensions)
}

// hashWords splits text into lowercase word tokens, dropping punctuation and
// tokens shorter than two characters.
func hashWords(text string) []string {
	text = strings.ToLower(text)
	for _, c := range ".,;:!?()[]{}\"'`~@#$%^&*+=|\\/<>" {
		text = strings.ReplaceAll(text, string(c), " ")
	}
	fields := strings.Fields(text)
	var result []string
	for _, f := range fields {
		if len(f) >= 2 {
			result = append(result, f)
		}
	}
	return result
}
