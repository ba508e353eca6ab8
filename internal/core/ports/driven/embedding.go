package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Vectors are L2-normalised and of fixed dimension; the dimension is
// a property of the loaded model, discovered at initialisation rather
// than hardcoded. Implementations initialise lazily and must be safe
// to call concurrently: simultaneous first calls wait on one
// initialisation instead of loading the model twice.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI-compatible APIs (text-embedding-3-small)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, order
	// preserving and the same length as the input. Internally grouped
	// into fixed-size sub-batches to bound peak memory.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size, initialising the
	// model first if needed.
	Dimensions(ctx context.Context) (int, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to an index.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
