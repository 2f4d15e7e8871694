// Package memory provides an in-memory vector store. It exists for
// tests and for offline runs where no Qdrant instance is reachable;
// search is a brute-force cosine scan.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store holds vectors and their filterable metadata in memory.
type Store struct {
	mu     sync.RWMutex
	dims   int
	points map[string]point
}

// point pairs a vector with the chunk metadata needed for filtering.
type point struct {
	meta   domain.Chunk
	vector []float32
	norm   float64
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{points: make(map[string]point)}
}

// EnsureCollection fixes the store's dimensionality on first call and
// verifies it on subsequent calls.
func (s *Store) EnsureCollection(_ context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		s.dims = dimensions
		return nil
	}
	if s.dims != dimensions {
		return fmt.Errorf("%w: collection has %d dimensions, requested %d",
			domain.ErrDimensionMismatch, s.dims, dimensions)
	}
	return nil
}

// Upsert inserts or replaces vectors for the given chunks.
func (s *Store) Upsert(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		if s.dims != 0 && len(c.Embedding) != s.dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), s.dims)
		}
		vec := make([]float32, len(c.Embedding))
		copy(vec, c.Embedding)
		s.points[c.ID] = point{
			meta: domain.Chunk{
				ID:         c.ID,
				DocumentID: c.DocumentID,
				Page:       c.Page,
				Language:   c.Language,
			},
			vector: vec,
			norm:   vectorNorm(vec),
		}
	}
	return nil
}

// Search scans every stored vector, keeps those passing the filter and
// returns the k most similar by cosine similarity.
func (s *Store) Search(_ context.Context, query []float32, filter domain.Filter, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dims != 0 && len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(query), s.dims)
	}

	queryNorm := vectorNorm(query)
	hits := make([]driven.VectorHit, 0, len(s.points))
	for _, p := range s.points {
		if !filter.Matches(p.meta) {
			continue
		}
		sim := cosine(query, queryNorm, p.vector, p.norm)
		hits = append(hits, driven.VectorHit{ChunkID: p.meta.ID, Similarity: sim})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored vectors.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

// DeleteByDocument removes every vector belonging to the document.
func (s *Store) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.points {
		if p.meta.DocumentID == documentID {
			delete(s.points, id)
		}
	}
	return nil
}

// Close clears the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make(map[string]point)
	return nil
}

// vectorNorm returns the Euclidean norm of v.
func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine computes cosine similarity given precomputed norms.
// Zero vectors have similarity zero.
func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
