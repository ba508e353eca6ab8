package main

import (
	"os"

	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/cli"
)

func main() {
	// Cobra prints the error itself; stdout stays clean for MCP stdio.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
