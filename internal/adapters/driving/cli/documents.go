package cli

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Inspect ingested documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list [worker-id]",
	Short: "List documents for a worker, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsList,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document and its metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsGet,
}

// documentsLimit is a flag for the list command.
var documentsLimit int

func init() {
	documentsListCmd.Flags().IntVarP(&documentsLimit, "limit", "n", 20, "Maximum documents to list (0 for all)")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsGetCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	workerID := args[0]
	ctx := commandContext(cmd)

	docs, err := documentService.List(ctx, workerID, documentsLimit)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Printf("No documents found for worker: %s\n", workerID)
		return nil
	}

	total, err := documentService.Count(ctx, workerID)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	cmd.Printf("Documents for worker %s:\n\n", workerID)
	for i := range docs {
		cmd.Printf("  %s [%s]\n", docs[i].ID, docs[i].Kind)
		if docs[i].Title != "" {
			cmd.Printf("    Title: %s\n", docs[i].Title)
		}
		cmd.Printf("    URI: %s\n", docs[i].URI)
		cmd.Printf("    Created: %s\n", docs[i].CreatedAt.Format(time.RFC3339))
		cmd.Println()
	}

	cmd.Printf("Showing %d of %d documents\n", len(docs), total)
	return nil
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID: %s\n", doc.ID)
	cmd.Printf("Worker: %s\n", doc.WorkerID)
	cmd.Printf("Identity: %s\n", doc.Identity)
	cmd.Printf("Kind: %s\n", doc.Kind)
	cmd.Printf("Title: %s\n", doc.Title)
	cmd.Printf("URI: %s\n", doc.URI)
	cmd.Printf("Created: %s\n", doc.CreatedAt.Format(time.RFC3339))
	cmd.Printf("Ingested: %s\n", doc.IngestedAt.Format(time.RFC3339))

	if len(doc.Metadata) > 0 {
		keys := make([]string, 0, len(doc.Metadata))
		for k := range doc.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		cmd.Println("Metadata:")
		for _, k := range keys {
			cmd.Printf("  %s: %v\n", k, doc.Metadata[k])
		}
	}
	return nil
}
