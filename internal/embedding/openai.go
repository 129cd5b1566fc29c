package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIEmbedder calls the OpenAI embeddings API. Every request carries the
// dimensions parameter so remote vectors match the local model's width.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIEmbedder creates an OpenAI embedder. The model defaults to
// text-embedding-3-small, which supports reduced dimensions.
func NewOpenAIEmbedder(apiKey, model string, dimensions int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key required")
	}
	embeddingModel := openai.EmbeddingModel(model)
	if model == "" {
		embeddingModel = openai.EmbeddingModelTextEmbedding3Small
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEmbedder{
		client:     &cli,
		model:      embeddingModel,
		dimensions: dimensions,
	}, nil
}

// Embed returns the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch sends all texts in one API call. Results are placed by the index
// the API reports, so output order always matches input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	params := openai.EmbeddingNewParams{
		Model:      e.model,
		Dimensions: openai.Int(int64(e.dimensions)),
	}
	if len(texts) == 1 {
		params.Input.OfString = openai.String(texts[0])
	} else {
		params.Input.OfArrayOfStrings = append(params.Input.OfArrayOfStrings, texts...)
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || int(item.Index) >= len(texts) {
			return nil, fmt.Errorf("openai returned out-of-range embedding index %d", item.Index)
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		out[item.Index] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the model identifier.
func (e *OpenAIEmbedder) Model() string {
	return string(e.model)
}

// Name returns the provider name for logging.
func (e *OpenAIEmbedder) Name() string {
	return string(ProviderOpenAI)
}

// Close is a no-op for OpenAIEmbedder.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
