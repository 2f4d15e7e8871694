// Package scorer provides relevance scorers for the rerank stage.
// Two backends exist: an LLM judge that scores a whole candidate batch
// in one prompt, and a deterministic lexical scorer for offline runs.
package scorer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure LLMScorer implements the interfaces.
var (
	_ driven.RelevanceScorer  = (*LLMScorer)(nil)
	_ driven.PromptStoreAware = (*LLMScorer)(nil)
)

// defaultRerankPrompt asks for one integer score per passage.
// First %s is the question, second %s the numbered passages.
const defaultRerankPrompt = `Rate how relevant each passage is to the question on a scale of 0 to 10.
0 means completely irrelevant, 10 means directly answers the question.
Respond with one line per passage in the form "N: score" and nothing else.

Question: %s

Passages:
%s

Scores:`

// maxPassageRunes caps how much of each passage enters the prompt.
const maxPassageRunes = 500

// scoreLine matches "3: 7" style output, tolerating list markers.
var scoreLine = regexp.MustCompile(`(\d+)\s*[:.)\-]\s*(\d+(?:\.\d+)?)`)

// LLMScorer asks a language model to judge passage relevance.
// All passages are scored with a single prompt to keep latency at one
// round-trip per rerank.
type LLMScorer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMScorer creates a scorer backed by the given LLM.
func NewLLMScorer(llm driven.LLMService) *LLMScorer {
	return &LLMScorer{llm: llm}
}

// SetPromptStore sets the prompt store for the rerank prompt.
func (s *LLMScorer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Name identifies the backend.
func (s *LLMScorer) Name() string {
	return "llm"
}

// ScoreBatch scores every passage against the query in one LLM call.
// Scores the model omits default to zero.
func (s *LLMScorer) ScoreBatch(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, truncateRunes(p, maxPassageRunes))
	}

	prompt := fmt.Sprintf(s.promptTemplate(), query, sb.String())
	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   16 * len(passages),
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("score passages: %w", err)
	}

	return parseScores(response, len(passages)), nil
}

// promptTemplate returns the customised prompt when a store is set.
func (s *LLMScorer) promptTemplate() string {
	if s.prompts != nil {
		if p, err := s.prompts.Load(driven.PromptRerank); err == nil && p != "" {
			return p
		}
	}
	return defaultRerankPrompt
}

// parseScores extracts "N: score" lines into a [0,1] slice of length n.
// Out-of-range indexes are dropped; raw scores clamp to [0,10] before
// scaling.
func parseScores(response string, n int) []float64 {
	scores := make([]float64, n)
	for _, line := range strings.Split(response, "\n") {
		m := scoreLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > n {
			continue
		}
		raw, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		if raw < 0 {
			raw = 0
		}
		if raw > 10 {
			raw = 10
		}
		scores[idx-1] = raw / 10
	}
	return scores
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
