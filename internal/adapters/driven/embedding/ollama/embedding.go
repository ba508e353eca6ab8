// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "nomic-embed-text"
	DefaultTimeout   = 30 * time.Second
	DefaultBatchSize = 32
)

// dimensionProbe is the throwaway text embedded once to discover the
// model's vector size.
const dimensionProbe = "dimension probe"

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// BatchSize is the sub-batch size for EmbedBatch (default: 32).
	BatchSize int
}

// EmbeddingService generates embeddings using Ollama.
//
// The vector dimension is a property of the loaded model and is
// discovered from the first embedding rather than configured.
type EmbeddingService struct {
	client    *http.Client
	baseURL   string
	model     string
	batchSize int

	// mu guards dimensions. Holding it across the probe request gives
	// concurrent first callers a single initialisation.
	mu         sync.Mutex
	dimensions int // 0 until the first vector comes back
}

// embedRequest is the Ollama API request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the Ollama API response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
	}
}

// Embed generates a vector embedding for the given text.
// The returned vector is scaled to unit length.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding, err := s.embedRaw(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.noteDimensions(len(embedding)); err != nil {
		return nil, err
	}
	normalise(embedding)
	return embedding, nil
}

// embedRaw performs a single embedding request without normalisation.
func (s *EmbeddingService) embedRaw(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model:  s.model,
		Prompt: text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama: model %s returned an empty embedding", s.model)
	}

	// Convert float64 to float32
	embedding := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts. Ollama has no
// native batch endpoint, so texts are embedded one at a time, grouped
// into sub-batches with a cancellation check between groups.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		for i := start; i < end; i++ {
			embedding, err := s.Embed(ctx, texts[i])
			if err != nil {
				return nil, fmt.Errorf("embed text %d: %w", i, err)
			}
			embeddings[i] = embedding
		}
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size, probing the model on
// first call. A failed probe leaves the service uninitialised so the
// next caller retries.
func (s *EmbeddingService) Dimensions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimensions > 0 {
		return s.dimensions, nil
	}

	embedding, err := s.embedRaw(ctx, dimensionProbe)
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimensions: %w", err)
	}
	s.dimensions = len(embedding)
	return s.dimensions, nil
}

// noteDimensions records the dimension of the first returned vector and
// rejects any later change. Every vector in an index must share one
// dimension.
func (s *EmbeddingService) noteDimensions(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimensions == 0 {
		s.dimensions = n
		return nil
	}
	if n != s.dimensions {
		return fmt.Errorf("ollama: embedding dimension changed from %d to %d", s.dimensions, n)
	}
	return nil
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// normalise scales vec to unit length in place. Zero vectors are left
// as-is rather than dividing by zero.
func normalise(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}
