package services

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages the ingested corpus.
type DocumentService struct {
	chunks  driven.ChunkStore
	vectors driven.VectorStore
	sparse  driven.SparseIndex
}

// NewDocumentService creates a document service. The vector store is
// optional - if nil, deletion only touches the chunk store and the
// sparse index.
func NewDocumentService(
	chunks driven.ChunkStore,
	vectors driven.VectorStore,
	sparse driven.SparseIndex,
) *DocumentService {
	return &DocumentService{
		chunks:  chunks,
		vectors: vectors,
		sparse:  sparse,
	}
}

// List returns documents, optionally restricted to a language.
func (s *DocumentService) List(ctx context.Context, lang domain.Language) ([]domain.Document, error) {
	return s.chunks.ListDocuments(ctx, lang)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("document ID is empty: %w", domain.ErrInvalidInput)
	}
	return s.chunks.GetDocument(ctx, id)
}

// GetContent returns the concatenated content of all chunks.
func (s *DocumentService) GetContent(ctx context.Context, id string) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}

	chunks, err := s.chunks.GetChunks(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get chunks: %w", err)
	}

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(chunk.Content)
	}
	return builder.String(), nil
}

// Delete removes a document from the vector store, the chunk store and
// the sparse index.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if s.vectors != nil {
		if err := s.vectors.DeleteByDocument(ctx, id); err != nil {
			// Vector cleanup failure leaves orphaned points but the
			// document is still removable; search hydration drops
			// hits whose chunks are gone.
			logger.Warn("Failed to delete vectors for %s: %v", id, err)
		}
	}

	if err := s.chunks.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if err := s.sparse.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild sparse index: %w", err)
	}

	logger.Info("Deleted document %s", id)
	return nil
}

// Open opens the document's source file in the default application.
func (s *DocumentService) Open(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.SourcePath == "" {
		return fmt.Errorf("document %s has no source path: %w", id, domain.ErrNotFound)
	}
	return openPath(doc.SourcePath)
}

// openPath opens a file using the system default handler.
func openPath(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
