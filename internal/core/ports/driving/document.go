package driving

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// DocumentService manages the ingested corpus for external actors.
type DocumentService interface {
	// List returns documents, optionally restricted to a language.
	// Pass the zero Language for all.
	List(ctx context.Context, lang domain.Language) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetContent returns the document text, chunks concatenated in
	// position order.
	GetContent(ctx context.Context, id string) (string, error)

	// Delete removes a document from every index and store.
	Delete(ctx context.Context, id string) error

	// Open opens the document's source file with the system default
	// application.
	Open(ctx context.Context, id string) error
}
