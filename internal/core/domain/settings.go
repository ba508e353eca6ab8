package domain

import "time"

// EmbeddingProvider identifies an embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// ProviderOllama is a local Ollama instance.
	ProviderOllama EmbeddingProvider = "ollama"

	// ProviderOpenAI is an OpenAI-compatible HTTP API.
	ProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	return p == ProviderOllama || p == ProviderOpenAI
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Settings is the runtime configuration materialised once at startup.
// Configuration is read at construction and never hot-reloaded.
type Settings struct {
	// DataDir is where the store and index files live.
	DataDir string

	// WatchDir is the directory tree the watcher observes.
	WatchDir string

	// WatchDebounce is the per-path quiet period before an event
	// is dispatched.
	WatchDebounce time.Duration

	// WatchConcurrency caps concurrent ingestion operations.
	WatchConcurrency int

	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the character overlap between adjacent chunks.
	ChunkOverlap int

	// EmbeddingProvider selects the embedding backend.
	EmbeddingProvider EmbeddingProvider

	// EmbeddingBaseURL is the backend's base URL. Empty selects the
	// provider's own default.
	EmbeddingBaseURL string

	// EmbeddingModel is the model identifier.
	EmbeddingModel string

	// EmbeddingAPIKey authenticates cloud providers. Unused for Ollama.
	EmbeddingAPIKey string

	// EmbeddingBatchSize is the sub-batch size for batched embedding.
	EmbeddingBatchSize int

	// SearchTopK is the default number of search results.
	SearchTopK int

	// MaxFileBytes is the per-file ingestion size limit.
	MaxFileBytes int64

	// IndexPrecision selects the native index storage precision
	// (float32, float16, int8).
	IndexPrecision string

	// APIAddr is the listen address for the diagnostic HTTP façade.
	// Empty disables it.
	APIAddr string
}

// Default configuration values.
const (
	DefaultWatchDebounce      = 600 * time.Millisecond
	DefaultWatchConcurrency   = 3
	DefaultChunkSize          = 1000
	DefaultChunkOverlap       = 120
	DefaultEmbeddingBatchSize = 32
	DefaultMaxFileBytes       = 20 << 20
	DefaultEmbeddingModel     = "nomic-embed-text"
	DefaultIndexPrecision     = "float32"
)

// DefaultSettings returns settings with every field at its default.
// DataDir and WatchDir are left empty for the caller to resolve.
func DefaultSettings() Settings {
	return Settings{
		WatchDebounce:      DefaultWatchDebounce,
		WatchConcurrency:   DefaultWatchConcurrency,
		ChunkSize:          DefaultChunkSize,
		ChunkOverlap:       DefaultChunkOverlap,
		EmbeddingProvider:  ProviderOllama,
		EmbeddingModel:     DefaultEmbeddingModel,
		EmbeddingBatchSize: DefaultEmbeddingBatchSize,
		SearchTopK:         DefaultTopK,
		MaxFileBytes:       DefaultMaxFileBytes,
		IndexPrecision:     DefaultIndexPrecision,
	}
}
