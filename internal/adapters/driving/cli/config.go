package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit the configuration file. Values live in config.toml inside
the data directory (or the file named by --config) and every command
reads them on startup; flags override file values for a single run.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a value and writes the file immediately. Keys use dotted form,
for example:

  pocketmcp config set watch.dir ~/notes
  pocketmcp config set embedding.model nomic-embed-text
  pocketmcp config set search.top_k 12

Numbers and booleans are stored typed; everything else is a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ensureConfig(); err != nil {
		return err
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	settings := appSettings

	cmd.Println("Current configuration")
	cmd.Println()
	cmd.Println("[watch]")
	cmd.Printf("  dir:          %s\n", orUnset(settings.WatchDir))
	cmd.Printf("  debounce_ms:  %d\n", settings.WatchDebounce.Milliseconds())
	cmd.Printf("  concurrency:  %d\n", settings.WatchConcurrency)
	cmd.Println()
	cmd.Println("[chunker]")
	cmd.Printf("  chunk_size:    %d\n", settings.ChunkSize)
	cmd.Printf("  chunk_overlap: %d\n", settings.ChunkOverlap)
	cmd.Println()
	cmd.Println("[embedding]")
	cmd.Printf("  provider:   %s\n", settings.EmbeddingProvider)
	cmd.Printf("  model:      %s\n", settings.EmbeddingModel)
	cmd.Printf("  base_url:   %s\n", orUnset(settings.EmbeddingBaseURL))
	if settings.EmbeddingAPIKey != "" {
		cmd.Printf("  api_key:    %s\n", maskAPIKey(settings.EmbeddingAPIKey))
	} else {
		cmd.Printf("  api_key:    (not set)\n")
	}
	cmd.Printf("  batch_size: %d\n", settings.EmbeddingBatchSize)
	cmd.Println()
	cmd.Println("[search]")
	cmd.Printf("  top_k: %d\n", settings.SearchTopK)
	cmd.Println()
	cmd.Println("[ingest]")
	cmd.Printf("  max_file_bytes: %d\n", settings.MaxFileBytes)
	cmd.Println()
	cmd.Println("[index]")
	cmd.Printf("  precision: %s\n", settings.IndexPrecision)
	cmd.Println()
	cmd.Println("[api]")
	cmd.Printf("  addr: %s\n", orUnset(settings.APIAddr))

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := ensureConfig(); err != nil {
		return err
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, exists := configStore.Get(args[0])
	if !exists {
		cmd.Println("(not set)")
		return nil
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := ensureConfig(); err != nil {
		return err
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := ensureConfig(); err != nil {
		return err
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println(configStore.Path())
	return nil
}

// parseConfigValue keeps numeric and boolean values typed so TOML
// round-trips them as written. Integers win over booleans, so "1"
// stays a number.
func parseConfigValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
