package driving

import (
	"context"
	"time"
)

// EvalService runs a question set through the pipeline and reports
// retrieval quality and latency.
type EvalService interface {
	// Run evaluates every question in the set and returns the report.
	Run(ctx context.Context, set *EvalSet) (*EvalReport, error)
}

// EvalSet is a list of evaluation questions, usually loaded from YAML.
type EvalSet struct {
	// Name labels the set in reports.
	Name string `yaml:"name"`

	// Questions are the questions to evaluate.
	Questions []EvalQuestion `yaml:"questions"`
}

// EvalQuestion is a single evaluation case.
type EvalQuestion struct {
	// Text is the question.
	Text string `yaml:"text"`

	// ExpectDocument optionally names a document ID that should
	// appear in the retrieved context.
	ExpectDocument string `yaml:"expect_document,omitempty"`
}

// EvalResult records the outcome for one question.
type EvalResult struct {
	// Question is the evaluated question.
	Question string `json:"question"`

	// Results is the number of retrieval results returned.
	Results int `json:"results"`

	// MeanRelevance is the mean scorer relevance over the top results.
	MeanRelevance float64 `json:"mean_relevance"`

	// HitExpected reports whether the expected document was retrieved.
	// Always true when no expectation was set.
	HitExpected bool `json:"hit_expected"`

	// RetrievalLatency is how long retrieval took.
	RetrievalLatency time.Duration `json:"retrieval_latency"`

	// Error holds a failure description, empty on success.
	Error string `json:"error,omitempty"`
}

// EvalReport aggregates the results of a run.
type EvalReport struct {
	// Set is the evaluated set's name.
	Set string `json:"set"`

	// Results holds one entry per question.
	Results []EvalResult `json:"results"`

	// MeanRelevance averages the per-question means.
	MeanRelevance float64 `json:"mean_relevance"`

	// HitRate is the fraction of questions whose expectation held.
	HitRate float64 `json:"hit_rate"`

	// TotalDuration is the wall time of the whole run.
	TotalDuration time.Duration `json:"total_duration"`
}
