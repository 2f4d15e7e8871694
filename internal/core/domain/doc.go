// Package domain defines the core business entities for Glossa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested source document
//   - Chunk: A searchable unit within a document
//   - Filter: Metadata constraints extracted from a question
//   - RetrievalResult: A single retrieval hit
//   - FusedResultSet: The merged output of hybrid retrieval
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
