// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorStore which stores and searches vectors.
// EmbeddingService generates vectors; VectorStore stores them.
//
// Implementations may include:
//   - Gemini (text-embedding-004)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// EmbedQuery generates an embedding for a search query.
	// Providers that distinguish query and document embeddings
	// (Gemini task types) use the query variant here.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates embeddings for document chunks.
	// This is more efficient than embedding chunks one at a time.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// This must match the vector store collection configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before committing to dense retrieval.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
