package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
	searchDocs []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Embeds the query and returns the nearest chunks with scores, previews
and resource addresses. Uses the native vector index when available,
with a SQL fallback otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringSliceVar(&searchDocs, "doc", nil, "restrict to these document IDs (repeatable)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := args[0]
	topK := searchTopK
	if topK <= 0 {
		topK = appSettings.SearchTopK
	}

	matches, err := searchService.Search(cmd.Context(), query, domain.SearchOptions{
		TopK:   topK,
		DocIDs: searchDocs,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, matches)
	}

	return outputSearchTable(cmd, matches)
}

func outputSearchJSON(cmd *cobra.Command, matches []domain.Match) error {
	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, matches []domain.Match) error {
	if len(matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range matches {
		// Format: [N] Title (Score), resource address, preview
		title := matches[i].Title
		if title == "" {
			title = matches[i].DocID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, matches[i].Score)
		cmd.Printf("      %s\n", matches[i].Resource)
		if matches[i].Preview != "" {
			cmd.Printf("      %s\n", matches[i].Preview)
		}
		cmd.Println()
	}

	return nil
}
