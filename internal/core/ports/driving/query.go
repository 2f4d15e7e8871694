package driving

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// QueryService answers questions over the ingested corpus.
type QueryService interface {
	// Retrieve runs the retrieval stages only: filter extraction,
	// decomposition, hybrid retrieval, fusion and reranking. topK <= 0
	// uses the configured default. An empty result set is a valid
	// outcome, not an error.
	Retrieve(ctx context.Context, question string, topK int) (*domain.FusedResultSet, error)

	// Ask retrieves context for the question and generates a grounded
	// answer within the given chat session. An empty sessionID opens a
	// new session; the returned Answer carries its ID.
	Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error)
}
