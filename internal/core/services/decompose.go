package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure Decomposer can take custom prompts.
var _ driven.PromptStoreAware = (*Decomposer)(nil)

const defaultDecomposePrompt = `You are a query decomposition assistant. Break down the following complex query into up to %d simpler sub-queries that together would help answer the original query.

Original Query: %s

Instructions:
1. Identify the key aspects of the original query
2. Create focused, self-contained sub-queries
3. Return ONLY the sub-queries, one per line
4. Do NOT include numbering or explanations

Sub-queries:`

// simpleTokenThreshold is the word count below which a query skips
// decomposition, provided it carries no conjunction markers.
const simpleTokenThreshold = 8

// minSubQueryRunes drops parsed lines too short to be real queries.
const minSubQueryRunes = 10

var (
	numberedPrefix = regexp.MustCompile(`^\d+[\.\)]\s*`)
	bulletPrefix   = regexp.MustCompile(`^[-\*•]\s*`)
)

// conjunctionMarkers signal a query with multiple aspects worth
// decomposing, regardless of length.
var conjunctionMarkers = []string{" and ", " or ", " versus ", " vs ", ",", ";"}

// Decomposer splits complex questions into sub-queries using the LLM.
// Simple questions take a fast path with no LLM call. Every failure
// degrades to the singleton original-query list; decomposition never
// propagates an error.
type Decomposer struct {
	llm      driven.LLMService
	fallback driven.LLMService
	prompts  driven.PromptStore

	enabled       bool
	maxSubQueries int
}

// NewDecomposer creates a new decomposer. Both LLM services are
// optional; with neither, every query passes through undecomposed.
func NewDecomposer(llm, fallback driven.LLMService, cfg domain.RetrievalSettings) *Decomposer {
	return &Decomposer{
		llm:           llm,
		fallback:      fallback,
		enabled:       cfg.EnableDecomposition,
		maxSubQueries: cfg.MaxSubQueries,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (d *Decomposer) SetPromptStore(store driven.PromptStore) {
	d.prompts = store
}

// Decompose returns the retrieval queries for a question, original
// first. The result always has between 1 and maxSubQueries entries.
func (d *Decomposer) Decompose(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{query}
	}

	if !d.enabled || d.maxSubQueries <= 1 {
		return []string{query}
	}

	if isSimpleQuery(query) {
		logger.Debug("Query is simple, skipping decomposition")
		return []string{query}
	}

	subs, err := d.generateSubQueries(ctx, query)
	if err != nil {
		logger.Warn("Decomposition failed: %v (using original query)", err)
		return []string{query}
	}
	if len(subs) == 0 {
		logger.Debug("Decomposition produced no sub-queries")
		return []string{query}
	}

	merged := dedupeQueries(append([]string{query}, subs...))
	if len(merged) > d.maxSubQueries {
		merged = merged[:d.maxSubQueries]
	}

	logger.Info("Decomposed into %d queries", len(merged))
	return merged
}

// isSimpleQuery judges whether a query is below the complexity
// threshold: short and free of conjunction markers.
func isSimpleQuery(query string) bool {
	if len(strings.Fields(query)) >= simpleTokenThreshold {
		return false
	}
	lower := strings.ToLower(query)
	for _, marker := range conjunctionMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	// More than one question mark means more than one question.
	return strings.Count(query, "?") <= 1
}

// generateSubQueries asks the LLM for sub-queries, falling back to the
// secondary service when the primary fails.
func (d *Decomposer) generateSubQueries(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(d.promptTemplate(), d.maxSubQueries-1, query)
	opts := driven.GenerateOptions{
		MaxTokens:   512,
		Temperature: 0.3,
	}

	var firstErr error
	for _, llm := range []driven.LLMService{d.llm, d.fallback} {
		if llm == nil {
			continue
		}
		text, err := llm.Generate(ctx, prompt, opts)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logger.Warn("Decomposition with %s failed: %v", llm.ModelName(), err)
			continue
		}
		return parseSubQueries(text, d.maxSubQueries-1), nil
	}

	if firstErr == nil {
		firstErr = domain.ErrLLMUnavailable
	}
	return nil, firstErr
}

func (d *Decomposer) promptTemplate() string {
	if d.prompts != nil {
		if p, err := d.prompts.Load(driven.PromptDecompose); err == nil && p != "" {
			return p
		}
	}
	return defaultDecomposePrompt
}

// parseSubQueries extracts discrete sub-queries from an LLM response:
// one per line, with numbering, bullets and quotes stripped. Lines too
// short to be real queries are dropped.
func parseSubQueries(text string, limit int) []string {
	var subs []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		line = numberedPrefix.ReplaceAllString(line, "")
		line = bulletPrefix.ReplaceAllString(line, "")
		line = strings.Trim(line, `"'`)
		line = strings.TrimSpace(line)

		if utf8.RuneCountInString(line) <= minSubQueryRunes {
			continue
		}
		subs = append(subs, line)
		if len(subs) == limit {
			break
		}
	}
	return subs
}

// dedupeQueries removes case-insensitive duplicates preserving order.
func dedupeQueries(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}
