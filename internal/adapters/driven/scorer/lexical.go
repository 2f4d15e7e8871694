package scorer

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/sparse/bm25"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure LexicalScorer implements the interface.
var _ driven.RelevanceScorer = (*LexicalScorer)(nil)

// LexicalScorer scores passages by query term coverage: the fraction
// of distinct query terms that appear in the passage. Deterministic
// and offline; a weaker judge than the LLM but it never fails.
type LexicalScorer struct{}

// NewLexicalScorer creates a lexical overlap scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Name identifies the backend.
func (s *LexicalScorer) Name() string {
	return "lexical"
}

// ScoreBatch returns the term coverage of each passage in [0, 1].
func (s *LexicalScorer) ScoreBatch(_ context.Context, query string, passages []string) ([]float64, error) {
	queryTerms := make(map[string]struct{})
	for _, t := range bm25.Tokenise(query) {
		queryTerms[t] = struct{}{}
	}

	scores := make([]float64, len(passages))
	if len(queryTerms) == 0 {
		return scores, nil
	}

	for i, p := range passages {
		passageTerms := make(map[string]struct{})
		for _, t := range bm25.Tokenise(p) {
			passageTerms[t] = struct{}{}
		}
		matched := 0
		for t := range queryTerms {
			if _, ok := passageTerms[t]; ok {
				matched++
			}
		}
		scores[i] = float64(matched) / float64(len(queryTerms))
	}
	return scores, nil
}
