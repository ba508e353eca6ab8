package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage indexed documents",
	Long:  `List, inspect, or remove indexed documents.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Long: `Lists documents ordered by most recently updated. Pages are keyed by
an opaque cursor; pass --cursor to continue where a previous page
stopped.`,
	Args: cobra.NoArgs,
	RunE: runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsRmCmd = &cobra.Command{
	Use:   "rm [doc-id]...",
	Short: "Remove documents from the index",
	Long: `Removes documents and their chunks. Unknown identifiers are ignored;
the command reports what was actually deleted. Use --external to
address documents by their external ID (for watched files, the
absolute path) instead of the document ID.`,
	RunE: runDocumentsRm,
}

var (
	documentsListLimit  int
	documentsListCursor string
	documentsRmExternal []string
)

func init() {
	documentsListCmd.Flags().IntVarP(&documentsListLimit, "limit", "n", 0, "maximum documents per page (default 50)")
	documentsListCmd.Flags().StringVar(&documentsListCursor, "cursor", "", "resume listing from this cursor")
	documentsRmCmd.Flags().StringSliceVarP(&documentsRmExternal, "external", "e", nil, "external IDs to remove (repeatable)")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsRmCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	page, err := documentService.List(cmd.Context(), documentsListLimit, documentsListCursor)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(page.Documents) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	for i := range page.Documents {
		doc := &page.Documents[i]
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    Title:   %s\n", doc.Title)
		if doc.URI != "" {
			cmd.Printf("    URI:     %s\n", doc.URI)
		}
		cmd.Printf("    Status:  %s\n", doc.IngestStatus)
		cmd.Printf("    Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(page.Documents))
	if page.NextCursor != "" {
		cmd.Printf("More available: --cursor %s\n", page.NextCursor)
	}
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:        %s\n", doc.Title)
	cmd.Printf("  External ID:  %s\n", doc.ExternalID)
	cmd.Printf("  Source:       %s\n", doc.Source)
	cmd.Printf("  URI:          %s\n", doc.URI)
	cmd.Printf("  Content type: %s\n", doc.ContentType)
	cmd.Printf("  Size:         %d bytes\n", doc.SizeBytes)
	cmd.Printf("  Status:       %s\n", doc.IngestStatus)
	if doc.Notes != "" {
		cmd.Printf("  Notes:        %s\n", doc.Notes)
	}
	cmd.Printf("  Created:      %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:      %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func runDocumentsRm(cmd *cobra.Command, args []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	result, err := ingestService.DeleteDocuments(cmd.Context(), args, documentsRmExternal)
	if err != nil {
		return fmt.Errorf("failed to remove documents: %w", err)
	}

	if len(result.DeletedDocIDs) == 0 {
		cmd.Println("Nothing deleted (no matching documents).")
		return nil
	}

	cmd.Printf("Deleted %d documents (%d chunks): %s\n",
		len(result.DeletedDocIDs), result.DeletedChunks, strings.Join(result.DeletedDocIDs, ", "))
	return nil
}
