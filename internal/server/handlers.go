package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DarlingtonDeveloper/Alexandria/internal/embedding"
	"github.com/DarlingtonDeveloper/Alexandria/internal/models"
	"github.com/DarlingtonDeveloper/Alexandria/pkg/utils"
	"go.uber.org/zap"
)

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req models.EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			s.respondError(w, http.StatusUnprocessableEntity, "texts must be an array of strings")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Debug("embed request", zap.Int("texts", len(req.Texts)))

	start := time.Now()
	vectors, err := s.embedder.EmbedBatch(r.Context(), req.Texts)
	if err != nil {
		s.logger.Error("embedding failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.RecordEmbedBatch(s.embedder.Name(), len(req.Texts), time.Since(start))

	if req.NormalizeOrDefault(s.config.Embedding.NormalizeOrDefault()) {
		for _, vec := range vectors {
			utils.NormalizeL2(vec)
		}
	}
	if vectors == nil {
		vectors = [][]float32{}
	}

	s.respondJSON(w, http.StatusOK, models.EmbedResponse{Embeddings: vectors})
}

func (s *Server) handleOpenAIEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req models.OpenAIEmbeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondOpenAIError(w, http.StatusBadRequest, "invalid request body", "invalid_request_error")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondOpenAIError(w, http.StatusBadRequest, err.Error(), "invalid_request_error")
		return
	}
	if req.Model != s.embedder.Model() {
		s.respondOpenAIError(w, http.StatusNotFound, "model '"+req.Model+"' not found", "invalid_request_error")
		return
	}
	texts, err := req.ParseInput()
	if err != nil {
		s.respondOpenAIError(w, http.StatusBadRequest, err.Error(), "invalid_request_error")
		return
	}
	if len(texts) == 0 {
		s.respondOpenAIError(w, http.StatusBadRequest, "input is required", "invalid_request_error")
		return
	}
	s.logger.Debug("openai embeddings request", zap.String("model", req.Model), zap.Int("texts", len(texts)))

	start := time.Now()
	vectors, err := s.embedder.EmbedBatch(r.Context(), texts)
	if err != nil {
		s.logger.Error("embedding failed", zap.Error(err))
		s.respondOpenAIError(w, http.StatusInternalServerError, err.Error(), "server_error")
		return
	}
	s.metrics.RecordEmbedBatch(s.embedder.Name(), len(texts), time.Since(start))

	if s.config.Embedding.NormalizeOrDefault() {
		for _, vec := range vectors {
			utils.NormalizeL2(vec)
		}
	}

	data := make([]models.OpenAIEmbedding, len(vectors))
	promptTokens := 0
	for i, vec := range vectors {
		data[i] = models.OpenAIEmbedding{
			Object:    "embedding",
			Index:     i,
			Embedding: vec,
		}
		promptTokens += embedding.CountTokens(texts[i], s.config.Embedding.MaxTokens)
	}

	s.respondJSON(w, http.StatusOK, models.OpenAIEmbeddingsResponse{
		Object: "list",
		Model:  req.Model,
		Data:   data,
		Usage: models.OpenAIUsage{
			PromptTokens: promptTokens,
			TotalTokens:  promptTokens,
		},
	})
}

func (s *Server) handleOpenAIModels(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.OpenAIModelList{
		Object: "list",
		Data: []models.OpenAIModel{
			{
				ID:      s.embedder.Model(),
				Object:  "model",
				Created: s.startTime.Unix(),
				OwnedBy: s.embedder.Name(),
			},
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.HealthStatus{Status: "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.ServiceInfo{
		Model:         s.embedder.Model(),
		Provider:      s.embedder.Name(),
		Dimensions:    s.embedder.Dimensions(),
		MaxTokens:     s.config.Embedding.MaxTokens,
		Normalize:     s.config.Embedding.NormalizeOrDefault(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Version:       s.version,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) respondOpenAIError(w http.ResponseWriter, status int, message, errType string) {
	s.respondJSON(w, status, models.OpenAIErrorResponse{
		Error: models.OpenAIError{Message: message, Type: errType},
	})
}
