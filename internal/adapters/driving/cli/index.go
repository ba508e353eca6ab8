package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kailash-Sankar/PocketMCP/internal/connectors/filesystem"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index <path>...",
	Short: "Index files or directories once",
	Long: `Indexes the given files and directories and exits. Directories are
walked recursively; hidden entries and unsupported extensions are
skipped. Unchanged files (same content hash) are skipped cheaply, so
re-running over the same tree is inexpensive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

// indexTally counts per-file outcomes across all arguments.
type indexTally struct {
	indexed int
	skipped int
	failed  int
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if ingestService == nil || extractorSet == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	tally := &indexTally{}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("stat %s: %w", arg, err)
		}

		if info.IsDir() {
			if err := indexDirectory(ctx, cmd, arg, tally); err != nil {
				return err
			}
			continue
		}

		if !extractorSet.Supported(arg) {
			cmd.Printf("  skip      %s (unsupported extension)\n", arg)
			tally.skipped++
			continue
		}
		indexFile(ctx, cmd, arg, tally)
	}

	cmd.Printf("\nIndexed %d, skipped %d, failed %d\n", tally.indexed, tally.skipped, tally.failed)

	if tally.indexed == 0 && tally.failed > 0 {
		return fmt.Errorf("all %d files failed", tally.failed)
	}
	return nil
}

// indexDirectory walks dir and ingests every supported file in it.
func indexDirectory(ctx context.Context, cmd *cobra.Command, dir string, tally *indexTally) error {
	source, err := filesystem.New(dir, extractorSet.Extensions())
	if err != nil {
		return err
	}
	defer source.Close() //nolint:errcheck

	err = source.Walk(ctx, func(path string) error {
		indexFile(ctx, cmd, path, tally)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}
	return nil
}

// indexFile ingests one file and prints its outcome. Per-file failures
// count but never stop the run.
func indexFile(ctx context.Context, cmd *cobra.Command, path string, tally *indexTally) {
	result, err := ingestService.IngestFile(ctx, path)
	if err != nil {
		cmd.Printf("  error     %s: %v\n", path, err)
		tally.failed++
		return
	}

	switch result.Status {
	case domain.ResultInserted, domain.ResultUpdated:
		cmd.Printf("  %-9s %s (%d chunks)\n", result.Status, path, result.ChunkCount)
		tally.indexed++
	case domain.ResultSkipped:
		cmd.Printf("  unchanged %s\n", path)
		tally.skipped++
	default:
		cmd.Printf("  error     %s: %s\n", path, result.Err)
		tally.failed++
	}
}
