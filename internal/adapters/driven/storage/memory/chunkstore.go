package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore for testing.
type ChunkStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
	}
}

// SaveDocument stores or updates a document.
func (s *ChunkStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores or updates chunks keyed by chunk ID.
func (s *ChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *ChunkStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// GetChunksByIDs retrieves chunks in the order of the given IDs,
// skipping unknown ones.
func (s *ChunkStore) GetChunksByIDs(_ context.Context, ids []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := s.chunks[id]; ok {
			result = append(result, chunk)
		}
	}
	return result, nil
}

// GetChunks retrieves all chunks for a document in position order.
func (s *ChunkStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			result = append(result, chunk)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// IterChunks streams every stored chunk to fn in chunk ID order.
func (s *ChunkStore) IterChunks(_ context.Context, fn func(domain.Chunk) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := fn(s.chunks[id]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *ChunkStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	for chunkID, chunk := range s.chunks {
		if chunk.DocumentID == id {
			delete(s.chunks, chunkID)
		}
	}
	return nil
}

// ListDocuments returns documents, optionally restricted to a language.
func (s *ChunkStore) ListDocuments(_ context.Context, lang domain.Language) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if lang != "" && doc.Language != lang {
			continue
		}
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CountChunks returns the total number of stored chunks.
func (s *ChunkStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}
