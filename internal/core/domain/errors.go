package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates settings that cannot produce a working
	// pipeline. Raised at startup, never per-query.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLLMUnavailable indicates the LLM service is not configured or
	// not reachable. Decomposition, LLM reranking and generation
	// degrade without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Dense retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector database cannot be
	// reached. Dense retrieval degrades to sparse-only.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrSparseIndexEmpty indicates the BM25 index has not been built.
	// Sparse retrieval returns nothing until the first rebuild.
	ErrSparseIndexEmpty = errors.New("sparse index empty")

	// ErrDimensionMismatch indicates an embedding vector does not match
	// the collection's configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoAPIKeys indicates a cloud provider was selected without any
	// API key configured.
	ErrNoAPIKeys = errors.New("no API keys configured")

	// ErrJobQueueEmpty indicates no pending ingestion job exists.
	ErrJobQueueEmpty = errors.New("job queue empty")
)
