package services

import (
	"time"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// Config keys for settings storage.
const (
	keyWatchDir         = "watch.dir"
	keyWatchDebounceMS  = "watch.debounce_ms"
	keyWatchConcurrency = "watch.concurrency"
	keyChunkSize        = "chunker.chunk_size"
	keyChunkOverlap     = "chunker.chunk_overlap"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedModel       = "embedding.model"
	keyEmbedAPIKey      = "embedding.api_key" //nolint:gosec // G101: config key name, not a credential.
	keyEmbedBatchSize   = "embedding.batch_size"
	keySearchTopK       = "search.top_k"
	keyMaxFileBytes     = "ingest.max_file_bytes"
	keyIndexPrecision   = "index.precision"
	keyAPIAddr          = "api.addr"
)

// SettingsService materialises typed runtime settings from the config
// store. Configuration is read once at startup; flags override the
// materialised values, and nothing hot-reloads.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get reads every configuration key, falling back to the defaults for
// absent ones. DataDir is not a config key: the caller resolves it
// before the config file can even be located.
func (s *SettingsService) Get() domain.Settings {
	defaults := domain.DefaultSettings()

	return domain.Settings{
		WatchDir:           s.configStore.GetString(keyWatchDir),
		WatchDebounce:      time.Duration(s.getInt(keyWatchDebounceMS, int(defaults.WatchDebounce/time.Millisecond))) * time.Millisecond,
		WatchConcurrency:   s.getInt(keyWatchConcurrency, defaults.WatchConcurrency),
		ChunkSize:          s.getInt(keyChunkSize, defaults.ChunkSize),
		ChunkOverlap:       s.getInt(keyChunkOverlap, defaults.ChunkOverlap),
		EmbeddingProvider:  s.getProvider(defaults.EmbeddingProvider),
		EmbeddingBaseURL:   s.configStore.GetString(keyEmbedBaseURL), // No default - empty selects the provider's own endpoint
		EmbeddingModel:     s.getString(keyEmbedModel, defaults.EmbeddingModel),
		EmbeddingAPIKey:    s.configStore.GetString(keyEmbedAPIKey),
		EmbeddingBatchSize: s.getInt(keyEmbedBatchSize, defaults.EmbeddingBatchSize),
		SearchTopK:         s.getInt(keySearchTopK, defaults.SearchTopK),
		MaxFileBytes:       int64(s.getInt(keyMaxFileBytes, int(defaults.MaxFileBytes))),
		IndexPrecision:     s.getPrecision(defaults.IndexPrecision),
		APIAddr:            s.configStore.GetString(keyAPIAddr),
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt falls back on absence, not on zero, so an explicit zero
// (e.g. chunker.chunk_overlap = 0) is honoured.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getPrecision(defaultVal string) string {
	switch val := s.configStore.GetString(keyIndexPrecision); val {
	case "float32", "float16", "int8":
		return val
	default:
		return defaultVal
	}
}
