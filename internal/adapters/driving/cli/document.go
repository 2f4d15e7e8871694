package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, view, delete or open ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document from every index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentOpenCmd = &cobra.Command{
	Use:   "open [doc-id]",
	Short: "Open the source file in the default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentOpen,
}

// documentLang restricts the list to one language.
var documentLang string

func init() {
	documentListCmd.Flags().StringVarP(&documentLang, "lang", "l", "",
		"Only list documents in this language")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentOpenCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var lang domain.Language
	if documentLang != "" {
		parsed, ok := domain.ParseLanguage(documentLang)
		if !ok {
			return fmt.Errorf("unknown language %q (supported: en, zh, hi, bn, ur)", documentLang)
		}
		lang = parsed
	}

	docs, err := documentService.List(context.Background(), lang)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	cmd.Println("Documents:")
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s (%s)\n", docs[i].Title, docs[i].Language.Name())
		cmd.Printf("    Pages: %d, Chunks: %d\n", docs[i].PageCount, docs[i].ChunkCount)
	}

	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:     %s\n", doc.Title)
	cmd.Printf("  Language:  %s\n", doc.Language.Name())
	cmd.Printf("  Source:    %s\n", doc.SourcePath)
	cmd.Printf("  Pages:     %d\n", doc.PageCount)
	cmd.Printf("  Chunks:    %d\n", doc.ChunkCount)
	cmd.Printf("  Ingested:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:   %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	content, err := documentService.GetContent(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentOpen(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Open(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	cmd.Printf("Opened document %s in default application.\n", args[0])
	return nil
}
