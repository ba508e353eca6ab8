package ollama

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// embedHandler answers /api/embeddings with a vector derived from the
// prompt and /api/tags with 200 OK.
func embedHandler(fn func(prompt string) []float64, calls *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embeddings":
			if calls != nil {
				calls.Add(1)
			}
			var req embedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(embedResponse{Embedding: fn(req.Prompt)})
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestService(t *testing.T, handler http.Handler) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{BaseURL: srv.URL})
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	if svc.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", svc.baseURL, DefaultBaseURL)
	}
	if svc.model != DefaultModel {
		t.Errorf("model = %q, want %q", svc.model, DefaultModel)
	}
	if svc.batchSize != DefaultBatchSize {
		t.Errorf("batchSize = %d, want %d", svc.batchSize, DefaultBatchSize)
	}
	if svc.ModelName() != DefaultModel {
		t.Errorf("ModelName() = %q, want %q", svc.ModelName(), DefaultModel)
	}
}

func TestEmbed_NormalisesVector(t *testing.T) {
	svc := newTestService(t, embedHandler(func(string) []float64 {
		return []float64{3, 4}
	}, nil))

	vec, err := svc.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 2 {
		t.Fatalf("got %d dimensions, want 2", len(vec))
	}
	if math.Abs(float64(vec[0])-0.6) > 1e-6 || math.Abs(float64(vec[1])-0.8) > 1e-6 {
		t.Errorf("vector = %v, want [0.6 0.8]", vec)
	}
	if norm := vectorNorm(vec); math.Abs(norm-1) > 1e-6 {
		t.Errorf("norm = %v, want 1", norm)
	}
}

func TestEmbed_RecordsDimensions(t *testing.T) {
	var calls atomic.Int64
	svc := newTestService(t, embedHandler(func(string) []float64 {
		return []float64{1, 2, 3}
	}, &calls))

	if _, err := svc.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	// The dimension is known from the embed; no probe request follows.
	dims, err := svc.Dimensions(context.Background())
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if dims != 3 {
		t.Errorf("dimensions = %d, want 3", dims)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestDimensions_ProbesOnce(t *testing.T) {
	var calls atomic.Int64
	svc := newTestService(t, embedHandler(func(string) []float64 {
		return []float64{1, 2, 3, 4}
	}, &calls))

	for i := 0; i < 3; i++ {
		dims, err := svc.Dimensions(context.Background())
		if err != nil {
			t.Fatalf("Dimensions call %d: %v", i, err)
		}
		if dims != 4 {
			t.Errorf("dimensions = %d, want 4", dims)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("probe requests = %d, want 1", n)
	}
}

func TestDimensions_RetriesAfterFailure(t *testing.T) {
	var calls atomic.Int64
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{1, 2}})
	}))

	if _, err := svc.Dimensions(context.Background()); err == nil {
		t.Fatal("expected error from first probe")
	}

	// A failed probe must not poison the service.
	dims, err := svc.Dimensions(context.Background())
	if err != nil {
		t.Fatalf("Dimensions after failure: %v", err)
	}
	if dims != 2 {
		t.Errorf("dimensions = %d, want 2", dims)
	}
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	svc := newTestService(t, embedHandler(func(prompt string) []float64 {
		return []float64{float64(len(prompt)), 1}
	}, nil))

	texts := []string{"a", "bb", "ccc"}
	embeddings, err := svc.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(embeddings) != len(texts) {
		t.Fatalf("got %d embeddings, want %d", len(embeddings), len(texts))
	}

	for i, text := range texts {
		l := float64(len(text))
		want := l / math.Sqrt(l*l+1)
		if math.Abs(float64(embeddings[i][0])-want) > 1e-6 {
			t.Errorf("embeddings[%d][0] = %v, want %v", i, embeddings[i][0], want)
		}
		if norm := vectorNorm(embeddings[i]); math.Abs(norm-1) > 1e-6 {
			t.Errorf("embeddings[%d] norm = %v, want 1", i, norm)
		}
	}
}

func TestEmbedBatch_DimensionMismatch(t *testing.T) {
	// "ab" yields 2 dimensions, "abc" yields 3.
	svc := newTestService(t, embedHandler(func(prompt string) []float64 {
		vec := make([]float64, len(prompt))
		vec[0] = 1
		return vec
	}, nil))

	_, err := svc.EmbedBatch(context.Background(), []string{"ab", "abc"})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if !strings.Contains(err.Error(), "dimension changed") {
		t.Errorf("error = %q, want mention of dimension change", err)
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	embeddings, err := svc.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil): %v", err)
	}
	if embeddings != nil {
		t.Errorf("got %v, want nil", embeddings)
	}
}

func TestEmbedBatch_ContextCancelled(t *testing.T) {
	var calls atomic.Int64
	svc := newTestService(t, embedHandler(func(string) []float64 {
		return []float64{1}
	}, &calls))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.EmbedBatch(ctx, []string{"a", "b"}); err == nil {
		t.Fatal("expected context error")
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestEmbed_ServerError(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := svc.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %q, want status 500", err)
	}
}

func TestEmbed_EmptyEmbedding(t *testing.T) {
	svc := newTestService(t, embedHandler(func(string) []float64 {
		return nil
	}, nil))

	_, err := svc.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "empty embedding") {
		t.Errorf("error = %q, want empty embedding", err)
	}
}

func TestPing(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		svc := newTestService(t, embedHandler(func(string) []float64 {
			return []float64{1}
		}, nil))

		if err := svc.Ping(context.Background()); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})

	t.Run("bad status", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusServiceUnavailable)
		}))

		err := svc.Ping(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "status 503") {
			t.Errorf("error = %q, want status 503", err)
		}
	})
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{"unit scaling", []float32{3, 4}, []float32{0.6, 0.8}},
		{"already unit", []float32{1, 0}, []float32{1, 0}},
		{"zero vector untouched", []float32{0, 0}, []float32{0, 0}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalise(tt.in)
			for i := range tt.want {
				if math.Abs(float64(tt.in[i]-tt.want[i])) > 1e-6 {
					t.Errorf("index %d = %v, want %v", i, tt.in[i], tt.want[i])
				}
			}
		})
	}
}
