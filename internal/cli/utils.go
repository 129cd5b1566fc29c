// Package cli provides CLI utilities for the Alexandria embeddings service.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/DarlingtonDeveloper/Alexandria/internal/models"
	"github.com/DarlingtonDeveloper/Alexandria/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteEmbeddings writes an embedding batch to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteEmbeddings(w io.Writer, texts []string, response *models.EmbedResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeEmbeddingsText(w, texts, response)
		return nil
	}
}

func writeEmbeddingsText(w io.Writer, texts []string, response *models.EmbedResponse) {
	fmt.Fprintf(w, "\nEmbedded %d text(s)\n\n", len(response.Embeddings))
	for i, vec := range response.Embeddings {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		if i < len(texts) {
			fmt.Fprintf(w, "[%d] %s\n", i, utils.Truncate(texts[i], 60))
		} else {
			fmt.Fprintf(w, "[%d]\n", i)
		}
		fmt.Fprintf(w, "dimensions: %d | norm: %.4f\n", len(vec), utils.L2Norm(vec))
		fmt.Fprintf(w, "%s\n\n", previewVector(vec, 6))
	}
}

// previewVector formats the first n components of vec, eliding the rest.
func previewVector(vec []float32, n int) string {
	if n > len(vec) {
		n = len(vec)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("%.4f", vec[i])
	}
	preview := strings.Join(parts, ", ")
	if len(vec) > n {
		preview += ", ..."
	}
	return "[" + preview + "]"
}

// WriteServiceInfo writes service info to w in the given format.
func WriteServiceInfo(w io.Writer, info *models.ServiceInfo, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	default:
		fmt.Fprintf(w, "model:       %s\n", info.Model)
		fmt.Fprintf(w, "provider:    %s\n", info.Provider)
		fmt.Fprintf(w, "dimensions:  %d\n", info.Dimensions)
		fmt.Fprintf(w, "max_tokens:  %d\n", info.MaxTokens)
		fmt.Fprintf(w, "normalize:   %t\n", info.Normalize)
		fmt.Fprintf(w, "uptime:      %ds\n", info.UptimeSeconds)
		if info.Version != "" {
			fmt.Fprintf(w, "version:     %s\n", info.Version)
		}
		return nil
	}
}
