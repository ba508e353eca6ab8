package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and keep the index current",
	Long: `Watches a directory tree and mirrors it into the index: creates and
edits are (re)ingested after a debounce quiet period, deletions are
removed. An initial rescan picks up changes made while the watcher was
not running.

The directory comes from watch.dir in config.toml; a positional
argument overrides it. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := appSettings.WatchDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no watch directory given; pass one or set watch.dir in config.toml")
	}

	watcher, err := newWatcher(dir)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	count, err := watcher.Rescan(ctx)
	if err != nil {
		watcher.Stop() //nolint:errcheck
		return fmt.Errorf("initial rescan: %w", err)
	}
	cmd.Printf("Watching %s (%d files enqueued). Press Ctrl+C to stop.\n", dir, count)

	// Poll progress; the watcher itself logs per-file detail in
	// verbose mode.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var last driving.WatchStatus
	for {
		select {
		case <-ctx.Done():
			if err := watcher.Stop(); err != nil {
				return fmt.Errorf("stopping watcher: %w", err)
			}
			status := watcher.Status()
			cmd.Printf("\nProcessed %d operations (%d errors)\n", status.Processed, status.Errors)
			return nil
		case <-ticker.C:
			status := watcher.Status()
			if status.Processed != last.Processed || status.Errors != last.Errors {
				cmd.Printf("\rProcessed %d operations (%d errors)", status.Processed, status.Errors)
				last = status
			}
		}
	}
}
