// Package server provides the HTTP API for the Alexandria embeddings service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/DarlingtonDeveloper/Alexandria/internal/config"
	"github.com/DarlingtonDeveloper/Alexandria/internal/embedding"
	"github.com/DarlingtonDeveloper/Alexandria/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the HTTP server for the embeddings API.
type Server struct {
	embedder  embedding.Embedder
	config    *config.Config
	logger    *zap.Logger
	metrics   *observability.Provider
	version   string
	startTime time.Time
	server    *http.Server
}

// NewServer creates a server with the given dependencies. metrics may be nil.
func NewServer(
	embedder embedding.Embedder,
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Provider,
	version string,
) *Server {
	return &Server{
		embedder:  embedder,
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		version:   version,
		startTime: time.Now(),
	}
}

// routes builds the router with all middleware and endpoints.
func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/embed", s.handleEmbed)
	r.Post("/v1/embeddings", s.handleOpenAIEmbeddings)
	r.Get("/v1/models", s.handleOpenAIModels)
	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)

	if handler := s.metrics.PrometheusHandler(); handler != nil {
		r.Method(http.MethodGet, "/metrics", handler)
	}

	return r
}

// Handler returns the server's HTTP handler, for tests and for embedding
// the API in a parent mux.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// requestLogger logs each request and records it in the metrics registry.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.RecordHTTPRequest(r.Method, route, ww.Status(), duration)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", duration),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	s.logger.Info("Starting server",
		zap.String("addr", addr),
		zap.String("provider", s.embedder.Name()),
		zap.String("model", s.embedder.Model()),
	)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
