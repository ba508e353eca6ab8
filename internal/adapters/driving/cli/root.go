// Package cli implements the pocketmcp command tree. All commands share
// one wiring path: config store, settings, embedding backend, vector
// index, SQLite store, and the core services built on top of them.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kailash-Sankar/PocketMCP/cgo/hnsw"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driven/config/file"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driven/embedding"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driven/storage/sqlite"
	"github.com/Kailash-Sankar/PocketMCP/internal/chunker"
	"github.com/Kailash-Sankar/PocketMCP/internal/connectors/filesystem"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/services"
	"github.com/Kailash-Sankar/PocketMCP/internal/extractors"
	"github.com/Kailash-Sankar/PocketMCP/internal/logger"
)

// version is reported by the version command.
// Overridable at build time via -ldflags "-X ...cli.version=v1.2.3".
var version = "0.1.0"

// dimensionsTimeout bounds the startup probe of the embedding backend.
const dimensionsTimeout = 5 * time.Second

// Persistent flag values.
var (
	cfgFile string
	dataDir string
	verbose bool
)

// Services shared across commands, wired by ensureServices. Commands
// guard against nil so tests can substitute doubles.
var (
	appSettings     domain.Settings
	configStore     driven.ConfigStore
	searchService   driving.Searcher
	ingestService   driving.Ingestor
	documentService driving.DocumentReader
	extractorSet    driven.ExtractorRegistry
	embedder        driven.EmbeddingService
	vectorIndex     driven.VectorIndex
	dbStore         *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "pocketmcp",
	Short: "Local semantic search over your documents, served via MCP",
	Long: `PocketMCP keeps a locally-stored, semantically searchable index of
your documents and exposes it to AI assistants over the Model Context
Protocol (MCP).

Point it at a directory and it extracts text from Markdown, HTML, PDF,
DOCX and plain text files, chunks and embeds the content, and keeps the
index current as files change. Everything stays on your machine.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default <data-dir>/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.pocketmcp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging on stderr")
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command
// context so long-running commands shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeServices()

	return rootCmd.ExecuteContext(ctx)
}

// ensureConfig opens the config store and materialises settings.
// Idempotent; later calls are no-ops.
func ensureConfig() error {
	if configStore != nil {
		return nil
	}

	resolved := dataDir
	if resolved == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		resolved = filepath.Join(home, ".pocketmcp")
	}

	var (
		store *file.ConfigStore
		err   error
	)
	if cfgFile != "" {
		store, err = file.NewConfigStoreAt(cfgFile)
	} else {
		store, err = file.NewConfigStore(resolved)
	}
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	configStore = store
	appSettings = services.NewSettingsService(configStore).Get()
	appSettings.DataDir = resolved
	return nil
}

// wireServices is what commands call at the top of their RunE.
// Package variable so tests can stub the wiring and inject doubles.
var wireServices = ensureServices

// ensureServices wires the full service stack. Idempotent.
func ensureServices() error {
	if searchService != nil {
		return nil
	}

	if err := ensureConfig(); err != nil {
		return err
	}

	svc, err := embedding.NewService(appSettings)
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}
	embedder = svc

	storeDir := filepath.Join(appSettings.DataDir, "data")
	if err := os.MkdirAll(storeDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	vectorIndex = openVectorIndex(storeDir)

	store, err := sqlite.NewStore(storeDir, vectorIndex)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	dbStore = store

	extractorSet = extractors.Defaults()
	chk := chunker.New(
		chunker.WithChunkSize(appSettings.ChunkSize),
		chunker.WithOverlap(appSettings.ChunkOverlap),
	)

	docStore := store.DocumentStore()
	ingestService = services.NewIngestOrchestrator(docStore, extractorSet, chk, embedder, appSettings)
	documentService = services.NewDocumentService(docStore)
	searchService = services.NewSearchService(embedder, store.Searcher())
	return nil
}

// openVectorIndex opens the HNSW index next to the database. Dimension
// comes from the embedding model, so an unreachable backend means no
// native index this run; the store falls back to SQL search.
func openVectorIndex(storeDir string) driven.VectorIndex {
	ctx, cancel := context.WithTimeout(context.Background(), dimensionsTimeout)
	defer cancel()

	dims, err := embedder.Dimensions(ctx)
	if err != nil {
		logger.Warn("Embedding backend unreachable (%v); continuing without the native index", err)
		return nil
	}

	index, err := hnsw.New(filepath.Join(storeDir, "vectors.hnsw"), dims, indexPrecision(appSettings.IndexPrecision))
	if err != nil {
		logger.Warn("Opening vector index: %v; continuing without the native index", err)
		return nil
	}
	return index
}

// indexPrecision maps the config value onto the index's storage modes.
// The settings service already validated it; default to full precision.
func indexPrecision(value string) hnsw.Precision {
	switch value {
	case "float16":
		return hnsw.PrecisionFloat16
	case "int8":
		return hnsw.PrecisionInt8
	default:
		return hnsw.PrecisionFloat32
	}
}

// newWatcher builds a watcher over dir using the wired services.
// Package variable so tests can substitute a double.
var newWatcher = func(dir string) (driving.Watcher, error) {
	source, err := filesystem.New(dir, extractorSet.Extensions())
	if err != nil {
		return nil, fmt.Errorf("opening watch directory: %w", err)
	}
	return services.NewWatchService(source, ingestService, extractorSet, appSettings), nil
}

// closeServices releases the store, index and embedding backend.
func closeServices() {
	if dbStore != nil {
		dbStore.Close() //nolint:errcheck
		dbStore = nil
	}
	if vectorIndex != nil {
		vectorIndex.Close() //nolint:errcheck
		vectorIndex = nil
	}
	if embedder != nil {
		embedder.Close() //nolint:errcheck
		embedder = nil
	}
}
