// Package qdrant provides a vector store adapter backed by a Qdrant
// instance over its REST API. The collection uses cosine distance and
// carries payload indexes for the filterable chunk fields.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "glossa_chunks"
	DefaultTimeout    = 30 * time.Second
)

// Payload field names stored alongside each vector.
const (
	payloadChunkID    = "chunk_id"
	payloadDocumentID = "document_id"
	payloadLanguage   = "language"
	payloadPage       = "page"
)

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Collection is the collection name (default: glossa_chunks).
	Collection string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store talks to Qdrant over REST.
type Store struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
}

// NewStore creates a new Qdrant-backed vector store.
func NewStore(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

// collectionInfo is the subset of the collection response we inspect.
type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection if missing and verifies its
// dimensionality against an existing one.
func (s *Store) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	status, body, err := s.do(ctx, http.MethodGet, "/collections/"+s.collection, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}

	switch {
	case status == http.StatusOK:
		var info collectionInfo
		if err := json.Unmarshal(body, &info); err != nil {
			return fmt.Errorf("decode collection info: %w", err)
		}
		if got := info.Result.Config.Params.Vectors.Size; got != dimensions {
			return fmt.Errorf("%w: collection %q has %d dimensions, embedding model produces %d",
				domain.ErrDimensionMismatch, s.collection, got, dimensions)
		}
		return nil

	case status == http.StatusNotFound:
		createBody := map[string]any{
			"vectors": map[string]any{
				"size":     dimensions,
				"distance": "Cosine",
			},
		}
		status, body, err = s.do(ctx, http.MethodPut, "/collections/"+s.collection, createBody)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("qdrant: create collection (status %d): %s", status, body)
		}
		s.createPayloadIndexes(ctx)
		return nil

	default:
		return fmt.Errorf("qdrant: get collection (status %d): %s", status, body)
	}
}

// createPayloadIndexes sets up keyword and integer indexes for the
// filterable fields. Best effort: Qdrant filters work without them,
// just slower.
func (s *Store) createPayloadIndexes(ctx context.Context) {
	fields := map[string]string{
		payloadDocumentID: "keyword",
		payloadLanguage:   "keyword",
		payloadPage:       "integer",
	}
	for field, schema := range fields {
		body := map[string]any{
			"field_name":   field,
			"field_schema": schema,
		}
		status, respBody, err := s.do(ctx, http.MethodPut,
			"/collections/"+s.collection+"/index?wait=true", body)
		if err != nil || status != http.StatusOK {
			logger.Warn("qdrant: create payload index %s failed (status %d, err %v): %s",
				field, status, err, respBody)
		}
	}
}

// pointPayload is the payload stored with each vector.
type pointPayload struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Language   string `json:"language"`
	Page       int    `json:"page"`
}

// point is the Qdrant point representation for upserts.
type point struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

// Upsert inserts or replaces vectors for the given chunks. Point IDs
// are UUIDv5 hashes of the chunk ID, so re-ingesting a document
// replaces its points instead of duplicating them.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]point, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		points = append(points, point{
			ID:     pointID(c.ID),
			Vector: c.Embedding,
			Payload: pointPayload{
				ChunkID:    c.ID,
				DocumentID: c.DocumentID,
				Language:   string(c.Language),
				Page:       c.Page,
			},
		})
	}

	body := map[string]any{"points": points}
	status, respBody, err := s.do(ctx, http.MethodPut,
		"/collections/"+s.collection+"/points?wait=true", body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant: upsert points (status %d): %s", status, respBody)
	}
	return nil
}

// searchResponse is the points/search response shape.
type searchResponse struct {
	Result []struct {
		Score   float64      `json:"score"`
		Payload pointPayload `json:"payload"`
	} `json:"result"`
}

// Search finds the k nearest neighbours, pushing the metadata filter
// down to Qdrant as payload match conditions.
func (s *Store) Search(ctx context.Context, query []float32, filter domain.Filter, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	if cond := filterConditions(filter); cond != nil {
		reqBody["filter"] = map[string]any{"must": cond}
	}

	status, body, err := s.do(ctx, http.MethodPost,
		"/collections/"+s.collection+"/points/search", reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("qdrant: search (status %d): %s", status, body)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		if r.Payload.ChunkID == "" {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    r.Payload.ChunkID,
			Similarity: r.Score,
		})
	}
	return hits, nil
}

// filterConditions converts a domain filter to Qdrant match conditions.
// Returns nil for an empty filter.
func filterConditions(filter domain.Filter) []map[string]any {
	if filter.IsEmpty() {
		return nil
	}
	var must []map[string]any
	if filter.Language != "" {
		must = append(must, map[string]any{
			"key":   payloadLanguage,
			"match": map[string]any{"value": string(filter.Language)},
		})
	}
	if filter.Page != nil {
		must = append(must, map[string]any{
			"key":   payloadPage,
			"match": map[string]any{"value": *filter.Page},
		})
	}
	if filter.DocumentID != "" {
		must = append(must, map[string]any{
			"key":   payloadDocumentID,
			"match": map[string]any{"value": filter.DocumentID},
		})
	}
	return must
}

// countResponse is the points/count response shape.
type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

// Count returns the exact number of stored vectors.
func (s *Store) Count(ctx context.Context) (int, error) {
	status, body, err := s.do(ctx, http.MethodPost,
		"/collections/"+s.collection+"/points/count", map[string]any{"exact": true})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("qdrant: count points (status %d): %s", status, body)
	}

	var resp countResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return resp.Result.Count, nil
}

// DeleteByDocument removes every vector whose payload carries the
// given document ID.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   payloadDocumentID,
					"match": map[string]any{"value": documentID},
				},
			},
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPost,
		"/collections/"+s.collection+"/points/delete?wait=true", body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant: delete points (status %d): %s", status, respBody)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// do sends one JSON request and returns the status code and body.
func (s *Store) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// pointID derives a stable UUID for a chunk. Qdrant only accepts UUIDs
// or unsigned integers as point IDs.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
