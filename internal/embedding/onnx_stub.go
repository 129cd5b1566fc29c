//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errONNXUnavailable = errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXEmbedder is a stub that returns an error when built without CGO
// (see onnx.go for the real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_, _, _ string, _, _ int) (*ONNXEmbedder, error) {
	return nil, errONNXUnavailable
}

// Embed is not implemented without CGO.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errONNXUnavailable
}

// EmbedBatch is not implemented without CGO.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errONNXUnavailable
}

// Dimensions returns 0 without CGO.
func (e *ONNXEmbedder) Dimensions() int {
	return 0
}

// Model returns an empty identifier without CGO.
func (e *ONNXEmbedder) Model() string {
	return ""
}

// Name returns the provider name.
func (e *ONNXEmbedder) Name() string {
	return string(ProviderONNX)
}

// Close is a no-op without CGO.
func (e *ONNXEmbedder) Close() error {
	return nil
}
