// Package observability exposes Prometheus metrics for the embeddings service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider owns the metrics registry. A nil Provider is valid and
// records nothing, so callers never need to branch on metrics being
// enabled.
type Provider struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpRequestCounter *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
	embedBatchCounter  *prometheus.CounterVec
	embedTextCounter   *prometheus.CounterVec
	inferenceLatency   *prometheus.HistogramVec
}

// Setup builds a Provider backed by a private registry. Returns nil
// when metrics are disabled.
func Setup(enabled bool) (*Provider, error) {
	if !enabled {
		return nil, nil
	}

	registry := prometheus.NewRegistry()
	provider := &Provider{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true}),
	}

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alexandria_embeddings",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	latencyBuckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	httpLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alexandria_embeddings",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   latencyBuckets,
		},
		[]string{"method", "route", "status"},
	)
	embedBatches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alexandria_embeddings",
			Name:      "embed_batches_total",
			Help:      "Total number of embedding batches served.",
		},
		[]string{"provider"},
	)
	embedTexts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alexandria_embeddings",
			Name:      "embed_texts_total",
			Help:      "Total number of texts embedded.",
		},
		[]string{"provider"},
	)
	inferenceLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alexandria_embeddings",
			Name:      "inference_duration_seconds",
			Help:      "Duration of model inference per batch.",
			Buckets:   latencyBuckets,
		},
		[]string{"provider"},
	)

	if err := registry.Register(httpRequests); err != nil {
		return nil, err
	}
	if err := registry.Register(httpLatency); err != nil {
		return nil, err
	}
	if err := registry.Register(embedBatches); err != nil {
		return nil, err
	}
	if err := registry.Register(embedTexts); err != nil {
		return nil, err
	}
	if err := registry.Register(inferenceLatency); err != nil {
		return nil, err
	}

	provider.httpRequestCounter = httpRequests
	provider.httpRequestLatency = httpLatency
	provider.embedBatchCounter = embedBatches
	provider.embedTextCounter = embedTexts
	provider.inferenceLatency = inferenceLatency

	return provider, nil
}

// PrometheusHandler returns the scrape handler, or nil when metrics are disabled.
func (p *Provider) PrometheusHandler() http.Handler {
	if p == nil || p.handler == nil {
		return nil
	}
	return p.handler
}

// RecordHTTPRequest counts a finished HTTP request and observes its latency.
func (p *Provider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if p == nil {
		return
	}

	statusLabel := strconv.Itoa(status)

	if p.httpRequestCounter != nil {
		p.httpRequestCounter.WithLabelValues(method, route, statusLabel).Inc()
	}

	if p.httpRequestLatency != nil {
		p.httpRequestLatency.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
	}
}

// RecordEmbedBatch counts one served batch and its texts, and observes
// the inference latency for the given provider.
func (p *Provider) RecordEmbedBatch(provider string, texts int, duration time.Duration) {
	if p == nil {
		return
	}

	if p.embedBatchCounter != nil {
		p.embedBatchCounter.WithLabelValues(provider).Inc()
	}
	if p.embedTextCounter != nil && texts > 0 {
		p.embedTextCounter.WithLabelValues(provider).Add(float64(texts))
	}
	if p.inferenceLatency != nil {
		p.inferenceLatency.WithLabelValues(provider).Observe(duration.Seconds())
	}
}
