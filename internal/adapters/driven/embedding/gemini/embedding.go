// Package gemini provides an embedding service adapter using the
// Google Generative Language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel      = "text-embedding-004"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // text-embedding-004 output size
)

// Gemini task types. Queries and documents are embedded into the same
// space but benefit from the asymmetric task hint.
const (
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// maxBatchSize is the API limit on requests per batchEmbedContents call.
const maxBatchSize = 100

// maxAttempts bounds 429 retries per logical request. Each attempt
// draws a fresh key from the ring.
const maxAttempts = 3

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// BaseURL is the Generative Language API base URL.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (default: 768).
	Dimensions int
}

// EmbeddingService generates embeddings using the Gemini API.
// API keys come from a KeyRing so free-tier per-key quotas can be
// pooled across several keys.
type EmbeddingService struct {
	client     *http.Client
	keys       driven.KeyRing
	baseURL    string
	model      string
	dimensions int
}

// part is a single text fragment in a content block.
type part struct {
	Text string `json:"text"`
}

// content is the Gemini API content format.
type content struct {
	Parts []part `json:"parts"`
}

// embedContentRequest is the single-text embedding request format.
type embedContentRequest struct {
	Model    string  `json:"model"`
	Content  content `json:"content"`
	TaskType string  `json:"taskType,omitempty"`
}

// embeddingValues carries one embedding vector.
type embeddingValues struct {
	Values []float32 `json:"values"`
}

// embedContentResponse is the single-text embedding response format.
type embedContentResponse struct {
	Embedding embeddingValues `json:"embedding"`
}

// batchEmbedRequest is the batch embedding request format.
type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

// batchEmbedResponse is the batch embedding response format.
type batchEmbedResponse struct {
	Embeddings []embeddingValues `json:"embeddings"`
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(keys driven.KeyRing, cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		keys:       keys,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// EmbedQuery generates an embedding for a search query.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	body, err := s.post(ctx, ":embedContent", embedContentRequest{
		Model:    "models/" + s.model,
		Content:  content{Parts: []part{{Text: text}}},
		TaskType: taskRetrievalQuery,
	})
	if err != nil {
		return nil, err
	}

	var resp embedContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Embedding.Values, nil
}

// EmbedDocuments generates embeddings for document chunks in batches
// of up to 100 texts per API call.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		reqs := make([]embedContentRequest, 0, end-start)
		for _, text := range texts[start:end] {
			reqs = append(reqs, embedContentRequest{
				Model:    "models/" + s.model,
				Content:  content{Parts: []part{{Text: text}}},
				TaskType: taskRetrievalDocument,
			})
		}

		body, err := s.post(ctx, ":batchEmbedContents", batchEmbedRequest{Requests: reqs})
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", start, err)
		}

		var resp batchEmbedResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), end-start)
		}
		for _, e := range resp.Embeddings {
			embeddings = append(embeddings, e.Values)
		}
	}

	return embeddings, nil
}

// post sends a request to the given model method, rotating keys and
// backing off rate-limited ones.
func (s *EmbeddingService) post(ctx context.Context, method string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		key, err := s.keys.Next(ctx)
		if err != nil {
			return nil, err
		}

		url := s.baseURL + "/models/" + s.model + method + "?key=" + key
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			s.keys.ReportRateLimited(key, retryAfter)
			lastErr = fmt.Errorf("%w: gemini key ...%s", domain.ErrRateLimited, tail(key))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	return nil, lastErr
}

// tail returns the last four characters of a key for log-safe display.
func tail(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by embedding a single word.
// The Generative Language API has no cheaper authenticated endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.EmbedQuery(ctx, "ping"); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
