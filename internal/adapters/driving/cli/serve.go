package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/api"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/mcp"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
	"github.com/Kailash-Sankar/PocketMCP/internal/logger"
)

var (
	serveHTTPAddr string
	serveAPIAddr  string
	serveWatch    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants. Stdout
belongs to the protocol; all logging goes to stderr.

Use --http to serve streamable HTTP instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  pocketmcp serve

  # HTTP mode (for MCP Inspector, remote access)
  pocketmcp serve --http :8080

  # Keep the index current and expose diagnostics while serving
  pocketmcp serve --watch --api 127.0.0.1:7700

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "pocketmcp": {
        "command": "/path/to/pocketmcp",
        "args": ["serve"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "serve MCP over streamable HTTP on this address instead of stdio")
	serveCmd.Flags().StringVar(&serveAPIAddr, "api", "", "serve the read-only diagnostic API on this address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "watch the configured directory while serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := wireServices(); err != nil {
		return err
	}

	ctx := cmd.Context()

	// A configured watch directory gives the rescan tool somewhere to
	// work even without --watch; --watch additionally runs the event
	// loop so edits flow into the index as they happen.
	var watcher driving.Watcher
	if appSettings.WatchDir != "" {
		w, err := newWatcher(appSettings.WatchDir)
		if err != nil {
			return err
		}
		watcher = w
	}

	if serveWatch {
		if watcher == nil {
			return errors.New("no watch directory configured; set watch.dir in config.toml")
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer watcher.Stop() //nolint:errcheck

		// Catch up on changes made while the process was down. Runs in
		// the background so a large tree does not delay the handshake.
		go func() {
			if _, err := watcher.Rescan(ctx); err != nil {
				logger.Warn("Startup rescan: %v", err)
			}
		}()
	}

	ports := &mcp.Ports{
		Search:    searchService,
		Ingest:    ingestService,
		Documents: documentService,
		Watch:     watcher,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	// Flag beats config for the diagnostic API address.
	apiAddr := serveAPIAddr
	if apiAddr == "" {
		apiAddr = appSettings.APIAddr
	}
	if apiAddr != "" {
		apiServer := api.NewServer(searchService, documentService, watcher)
		g.Go(func() error {
			fmt.Fprintf(cmd.ErrOrStderr(), "Diagnostic API listening on http://%s\n", apiAddr)
			return apiServer.Run(gctx, apiAddr)
		})
	}

	g.Go(func() error {
		if serveHTTPAddr != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", serveHTTPAddr)
			return server.RunHTTP(gctx, serveHTTPAddr)
		}
		return server.Run(gctx)
	})

	return g.Wait()
}
