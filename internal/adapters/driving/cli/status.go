package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics and configuration",
	Long: `Prints where data lives, which embedding backend is configured, and
how many documents and chunks the index holds. The search strategy
line shows whether the native vector index is active or the SQL
fallback is in use.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}

	cmd.Println("PocketMCP status")
	cmd.Println()
	cmd.Printf("  Data dir:   %s\n", appSettings.DataDir)
	if configStore != nil {
		cmd.Printf("  Config:     %s\n", configStore.Path())
	}
	if appSettings.WatchDir != "" {
		cmd.Printf("  Watch dir:  %s\n", appSettings.WatchDir)
	}
	cmd.Println()
	cmd.Printf("  Embedding:  %s (%s)\n", appSettings.EmbeddingModel, appSettings.EmbeddingProvider)
	if appSettings.EmbeddingBaseURL != "" {
		cmd.Printf("  Base URL:   %s\n", appSettings.EmbeddingBaseURL)
	}
	cmd.Printf("  Precision:  %s\n", appSettings.IndexPrecision)
	cmd.Printf("  Strategy:   %s\n", stats.Strategy)
	cmd.Println()
	cmd.Printf("  Documents:  %d\n", stats.Documents)
	cmd.Printf("  Segments:   %d\n", stats.Segments)
	cmd.Printf("  Chunks:     %d\n", stats.Chunks)

	return nil
}
