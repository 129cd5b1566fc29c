package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DarlingtonDeveloper/Alexandria/internal/config"
	"github.com/DarlingtonDeveloper/Alexandria/internal/embedding"
	"github.com/DarlingtonDeveloper/Alexandria/internal/observability"
	"github.com/DarlingtonDeveloper/Alexandria/internal/server"
	"go.uber.org/zap"
)

const e2eDimensions = 64

// newTestService starts the full HTTP stack on a local listener, backed by
// the deterministic hash provider.
func newTestService(t *testing.T) *httptest.Server {
	t.Helper()
	embedder := embedding.NewHashEmbedder(e2eDimensions)
	t.Cleanup(func() { _ = embedder.Close() })

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	metrics, err := observability.Setup(true)
	if err != nil {
		t.Fatal(err)
	}

	srv := server.NewServer(embedder, cfg, zap.NewNop(), metrics, "e2e")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func embedBatch(t *testing.T, ts *httptest.Server, texts []string) [][]float32 {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"texts": texts})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/embed", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("embed returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out.Embeddings
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestE2E_EmbedCorpus(t *testing.T) {
	ts := newTestService(t)
	corpus := BuildCorpus()
	if corpus.TotalTexts == 0 {
		t.Fatal("corpus has no texts")
	}

	vectors := embedBatch(t, ts, corpus.Texts)
	if len(vectors) != corpus.TotalTexts {
		t.Fatalf("got %d embeddings for %d texts", len(vectors), corpus.TotalTexts)
	}
	for i, vec := range vectors {
		if len(vec) != e2eDimensions {
			t.Fatalf("embedding %d: got %d dimensions, want %d", i, len(vec), e2eDimensions)
		}
		if n := norm(vec); math.Abs(n-1.0) > 1e-3 {
			t.Errorf("embedding %d: norm %f, want 1.0", i, n)
		}
	}

	// Same corpus again: the service is deterministic.
	again := embedBatch(t, ts, corpus.Texts)
	for i := range vectors {
		for j := range vectors[i] {
			if vectors[i][j] != again[i][j] {
				t.Fatalf("embedding %d differs between identical requests", i)
			}
		}
	}
}

func TestE2E_OrderPreserved(t *testing.T) {
	ts := newTestService(t)
	corpus := BuildCorpus()
	texts := corpus.Texts[:5]

	batch := embedBatch(t, ts, texts)
	for i, text := range texts {
		single := embedBatch(t, ts, []string{text})
		if len(single) != 1 {
			t.Fatalf("single embed of text %d: got %d embeddings", i, len(single))
		}
		for j := range single[0] {
			if single[0][j] != batch[i][j] {
				t.Fatalf("batch position %d does not match its single-text embedding", i)
			}
		}
	}
}

func TestE2E_OpenAICompatParity(t *testing.T) {
	ts := newTestService(t)
	corpus := BuildCorpus()
	texts := corpus.Texts[:10]

	native := embedBatch(t, ts, texts)

	payload, err := json.Marshal(map[string]interface{}{"model": "hash-fnv1a", "input": texts})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/v1/embeddings", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("compat endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Object string `json:"object"`
		Data   []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
		Usage struct {
			PromptTokens int `json:"prompt_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Object != "list" {
		t.Errorf("object: got %s, want list", out.Object)
	}
	if len(out.Data) != len(texts) {
		t.Fatalf("data: got %d items, want %d", len(out.Data), len(texts))
	}
	if out.Usage.PromptTokens < len(texts) {
		t.Errorf("prompt_tokens: got %d, want at least one per text", out.Usage.PromptTokens)
	}
	for i, d := range out.Data {
		if d.Index != i {
			t.Fatalf("data[%d].index = %d", i, d.Index)
		}
		for j := range d.Embedding {
			if d.Embedding[j] != native[i][j] {
				t.Fatalf("compat embedding %d differs from native /embed result", i)
			}
		}
	}
}

func TestE2E_HealthAndInfo(t *testing.T) {
	ts := newTestService(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status: got %d", resp.StatusCode)
	}
	if got := strings.TrimSpace(string(body)); got != `{"status":"ok"}` {
		t.Errorf("health body: got %s", got)
	}

	resp, err = http.Get(ts.URL + "/info")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var info struct {
		Provider   string `json:"provider"`
		Dimensions int    `json:"dimensions"`
		Normalize  bool   `json:"normalize"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Provider != "hash" || info.Dimensions != e2eDimensions || !info.Normalize {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestE2E_ValidationErrors(t *testing.T) {
	ts := newTestService(t)
	tests := []struct {
		body       string
		wantStatus int
	}{
		{`{"texts":[]}`, http.StatusOK},
		{`{"texts":"not an array"}`, http.StatusUnprocessableEntity},
		{`{}`, http.StatusUnprocessableEntity},
		{`{"texts":null}`, http.StatusUnprocessableEntity},
		{`{"texts":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Post(ts.URL+"/embed", "application/json", strings.NewReader(tt.body))
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("body %q: status %d, want %d (response: %s)", tt.body, resp.StatusCode, tt.wantStatus, string(b))
		}
	}
}

func TestE2E_MetricsAfterTraffic(t *testing.T) {
	ts := newTestService(t)
	_ = embedBatch(t, ts, []string{"one text", "another text"})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status: got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	out := string(body)
	for _, want := range []string{
		"alexandria_embeddings_embed_texts_total",
		"alexandria_embeddings_http_requests_total",
		`provider="hash"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
