package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest PDF documents into the corpus",
	Long: `Ingests PDF documents: text extraction (OCR for scanned pages),
cleanup, chunking, embedding and indexing.

With a path, ingests that file or every PDF under that directory;
--lang declares the document language. Without a path, scans the
incoming directory, where the language comes from the subdirectory
name (incoming/hi/, incoming/zh/, ...).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the incoming directory and ingest new files",
	Long: `Scans the incoming directory, then blocks and ingests PDFs as they
appear under incoming/<lang>/. Stop with Ctrl-C.`,
	RunE: runWatch,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the sparse index from stored chunks",
	RunE:  runReindex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ingestion queue and corpus counts",
	RunE:  runStatus,
}

// ingestLang declares the language of directly ingested files.
var ingestLang string

func init() {
	ingestCmd.Flags().StringVarP(&ingestLang, "lang", "l", "",
		"Document language (en, zh, hi, bn, ur)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statusCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	if len(args) == 0 {
		cmd.Println("Scanning incoming directory...")
		if err := ingestService.ScanIncoming(ctx); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		return printStatus(ctx, cmd)
	}

	lang, ok := domain.ParseLanguage(ingestLang)
	if !ok {
		return fmt.Errorf("unknown language %q (supported: en, zh, hi, bn, ur)", ingestLang)
	}

	paths, err := collectPDFs(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Printf("No PDF files found under %s\n", args[0])
		return nil
	}

	failed := 0
	for _, path := range paths {
		cmd.Printf("Ingesting %s...\n", path)
		doc, err := ingestService.IngestFile(ctx, path, lang)
		if err != nil {
			failed++
			cmd.Printf("  failed: %v\n", err)
			continue
		}
		cmd.Printf("  %s (%d pages, %d chunks)\n", doc.ID, doc.PageCount, doc.ChunkCount)
	}

	cmd.Printf("\nIngested %d of %d files.\n", len(paths)-failed, len(paths))
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	cmd.Println("Watching incoming directory. Stop with Ctrl-C.")
	return ingestService.Watch(cmd.Context())
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	cmd.Println("Rebuilding sparse index...")
	if err := ingestService.Reindex(context.Background()); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Println("Sparse index rebuilt.")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	return printStatus(context.Background(), cmd)
}

// printStatus renders the ingestion queue summary.
func printStatus(ctx context.Context, cmd *cobra.Command) error {
	status, err := ingestService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	cmd.Println("Ingestion status:")
	cmd.Printf("  Pending:    %d\n", status.Pending)
	cmd.Printf("  Processing: %d\n", status.Processing)
	cmd.Printf("  Completed:  %d\n", status.Completed)
	cmd.Printf("  Failed:     %d\n", status.Failed)
	cmd.Printf("\nCorpus: %d documents, %d chunks\n", status.Documents, status.Chunks)
	return nil
}

// collectPDFs resolves a path to the PDF files it contains. A file
// path is returned as-is; a directory is walked recursively.
func collectPDFs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var paths []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".pdf") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	return paths, nil
}
