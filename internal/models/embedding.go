// Package models defines the wire types for the embeddings API.
package models

import "fmt"

// EmbedRequest is the native embedding request: a batch of texts, embedded in
// order. Normalize overrides the server default when set.
type EmbedRequest struct {
	Texts     []string `json:"texts"`
	Normalize *bool    `json:"normalize,omitempty"`
}

// Validate ensures the request carries a texts field. An empty array is valid
// (the response carries an empty embeddings array); a missing or null texts
// field is not.
func (r *EmbedRequest) Validate() error {
	if r.Texts == nil {
		return fmt.Errorf("texts is required")
	}
	return nil
}

// NormalizeOrDefault returns the per-request normalize flag, or def when unset.
func (r *EmbedRequest) NormalizeOrDefault(def bool) bool {
	if r.Normalize == nil {
		return def
	}
	return *r.Normalize
}

// EmbedResponse carries one embedding per input text, in input order.
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}
