package driven

import "context"

// RelevanceScorer judges how relevant passages are to a query.
// Used by the rerank stage. This is an optional service - when nil or
// failing, the fusion ordering stands.
//
// Implementations may include:
//   - LLM-backed scoring (one batched prompt per rerank)
//   - Lexical term overlap (deterministic, offline)
type RelevanceScorer interface {
	// ScoreBatch returns one relevance score in [0, 1] per passage,
	// in passage order. The returned slice has exactly len(passages)
	// entries on success.
	ScoreBatch(ctx context.Context, query string, passages []string) ([]float64, error)

	// Name identifies the scoring backend for logging.
	Name() string
}
