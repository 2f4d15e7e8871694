package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure Evaluator implements the interface.
var _ driving.EvalService = (*Evaluator)(nil)

// evalScoreTop is how many top results feed the relevance average.
const evalScoreTop = 5

// Evaluator runs a question set through the retrieval pipeline and
// measures result counts, latency and relevance.
type Evaluator struct {
	query  driving.QueryService
	scorer driven.RelevanceScorer
}

// NewEvaluator creates an evaluator. The scorer is optional - if nil,
// relevance stays at zero and only counts and latency are reported.
func NewEvaluator(query driving.QueryService, scorer driven.RelevanceScorer) *Evaluator {
	return &Evaluator{
		query:  query,
		scorer: scorer,
	}
}

// LoadEvalSet reads a question set from a YAML file.
func LoadEvalSet(path string) (*driving.EvalSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read eval set: %w", err)
	}

	var set driving.EvalSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse eval set: %w", err)
	}
	if len(set.Questions) == 0 {
		return nil, fmt.Errorf("eval set has no questions: %w", domain.ErrInvalidInput)
	}
	for i, q := range set.Questions {
		if q.Text == "" {
			return nil, fmt.Errorf("eval set question %d has no text: %w", i+1, domain.ErrInvalidInput)
		}
	}
	return &set, nil
}

// Run evaluates every question in the set and returns the report.
// Per-question failures are recorded in the result, not raised; only
// cancellation aborts the run.
func (e *Evaluator) Run(ctx context.Context, set *driving.EvalSet) (*driving.EvalReport, error) {
	if set == nil || len(set.Questions) == 0 {
		return nil, fmt.Errorf("eval set is empty: %w", domain.ErrInvalidInput)
	}

	start := time.Now()
	report := &driving.EvalReport{Set: set.Name}

	var (
		relevanceSum float64
		succeeded    int
		hits         int
	)

	for i, question := range set.Questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Debug("Evaluating %d/%d: %s", i+1, len(set.Questions), question.Text)
		result := e.evaluate(ctx, question)
		report.Results = append(report.Results, result)

		if result.Error == "" {
			succeeded++
			relevanceSum += result.MeanRelevance
		}
		if result.HitExpected {
			hits++
		}
	}

	if succeeded > 0 {
		report.MeanRelevance = relevanceSum / float64(succeeded)
	}
	report.HitRate = float64(hits) / float64(len(set.Questions))
	report.TotalDuration = time.Since(start)

	logger.Info("Evaluation complete: %d questions, mean relevance %.3f, hit rate %.0f%%",
		len(set.Questions), report.MeanRelevance, report.HitRate*100)
	return report, nil
}

// evaluate runs one question and collects its metrics.
func (e *Evaluator) evaluate(ctx context.Context, question driving.EvalQuestion) driving.EvalResult {
	result := driving.EvalResult{Question: question.Text}

	start := time.Now()
	set, err := e.query.Retrieve(ctx, question.Text, 0)
	result.RetrievalLatency = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Results = len(set.Results)
	result.HitExpected = question.ExpectDocument == "" || containsDocument(set.Results, question.ExpectDocument)
	result.MeanRelevance = e.meanRelevance(ctx, question.Text, set.Results)
	return result
}

// meanRelevance scores the top results and averages them. Scoring
// failures degrade to zero relevance rather than failing the question.
func (e *Evaluator) meanRelevance(ctx context.Context, question string, results []domain.RetrievalResult) float64 {
	if e.scorer == nil || len(results) == 0 {
		return 0
	}

	top := len(results)
	if top > evalScoreTop {
		top = evalScoreTop
	}
	passages := make([]string, top)
	for i := 0; i < top; i++ {
		passages[i] = results[i].Content
	}

	scores, err := e.scorer.ScoreBatch(ctx, question, passages)
	if err != nil {
		logger.Warn("Relevance scoring failed: %v", err)
		return 0
	}
	if len(scores) == 0 {
		return 0
	}

	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

// containsDocument reports whether any result came from the document.
func containsDocument(results []domain.RetrievalResult, documentID string) bool {
	for _, r := range results {
		if r.DocumentID == documentID {
			return true
		}
	}
	return false
}
