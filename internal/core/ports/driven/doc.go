// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkStore: Document and chunk persistence
//   - VectorStore: Dense vector storage and similarity search (Qdrant)
//   - SparseIndex: BM25 keyword search over the owned in-process index
//   - EmbeddingService: Generates vector embeddings
//   - SessionStore: Chat session persistence
//   - JobStore: Ingestion job queue persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - LLMService: Decomposition, reranking and generation. Without it,
//     questions fall back to retrieval-only behaviour.
//   - RelevanceScorer: Reranking. Without it, fusion order stands.
//   - OCRService: Scanned-page extraction. Without it, only digital
//     text is ingested.
//   - KeyRing: API key rotation. Single-key setups run without one.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
