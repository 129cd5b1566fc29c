package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// OpenAIEmbeddingsRequest is the OpenAI-compatible request accepted on
// /v1/embeddings. Input is kept raw because the API allows both a single
// string and an array of strings.
type OpenAIEmbeddingsRequest struct {
	Model string          `json:"model"`
	Input json.RawMessage `json:"input"`
}

// Validate checks the model field. Input is validated by ParseInput.
func (r *OpenAIEmbeddingsRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return errors.New("model is required")
	}
	return nil
}

// ParseInput returns the request input as a slice of texts, accepting either
// a JSON string or a JSON array of strings.
func (r *OpenAIEmbeddingsRequest) ParseInput() ([]string, error) {
	if len(r.Input) == 0 || string(r.Input) == "null" {
		return nil, errors.New("input is required")
	}

	var str string
	if err := json.Unmarshal(r.Input, &str); err == nil {
		return []string{str}, nil
	}

	var arr []string
	if err := json.Unmarshal(r.Input, &arr); err == nil {
		return arr, nil
	}

	return nil, errors.New("input must be string or array of strings")
}

// OpenAIEmbedding is one embedding in an OpenAI-compatible response.
type OpenAIEmbedding struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// OpenAIUsage reports token consumption for an OpenAI-compatible response.
type OpenAIUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// OpenAIEmbeddingsResponse is the OpenAI-compatible response shape.
type OpenAIEmbeddingsResponse struct {
	Object string            `json:"object"`
	Model  string            `json:"model"`
	Data   []OpenAIEmbedding `json:"data"`
	Usage  OpenAIUsage       `json:"usage"`
}

// OpenAIModel describes the loaded model on /v1/models.
type OpenAIModel struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// OpenAIModelList is the OpenAI-compatible model listing.
type OpenAIModelList struct {
	Object string        `json:"object"`
	Data   []OpenAIModel `json:"data"`
}

// OpenAIError is the error payload OpenAI clients expect.
type OpenAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// OpenAIErrorResponse wraps an OpenAIError the way the OpenAI API does.
type OpenAIErrorResponse struct {
	Error OpenAIError `json:"error"`
}
