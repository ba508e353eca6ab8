// Package embedding selects and constructs the configured embedding
// backend.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driven/embedding/ollama"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driven/embedding/openai"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// NewService creates the embedding service named by the settings.
func NewService(settings domain.Settings) (driven.EmbeddingService, error) {
	switch settings.EmbeddingProvider {
	case domain.ProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:   settings.EmbeddingBaseURL,
			Model:     settings.EmbeddingModel,
			BatchSize: settings.EmbeddingBatchSize,
		}), nil

	case domain.ProviderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:    settings.EmbeddingAPIKey,
			BaseURL:   settings.EmbeddingBaseURL,
			Model:     settings.EmbeddingModel,
			BatchSize: settings.EmbeddingBatchSize,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.EmbeddingProvider)
	}
}

// NewValidatedService creates the configured embedding service and
// verifies connectivity before returning it.
// Returns the service if successful, or an error with guidance.
func NewValidatedService(settings domain.Settings) (driven.EmbeddingService, error) {
	svc, err := NewService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Check the [embedding] section of config.toml",
			domain.ErrEmbeddingUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("%w: service unreachable (%w). Check the [embedding] section of config.toml",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}
