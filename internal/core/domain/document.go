package domain

import "time"

// Document represents an ingested source document.
// One PDF dropped into incoming/<lang>/ becomes one Document.
type Document struct {
	// ID is the unique identifier, derived from language, filename
	// stem and a content hash. Stable across re-ingestion.
	ID string

	// Title is the human-readable title (usually the filename stem).
	Title string

	// Language is the declared language of the document.
	Language Language

	// SourcePath is the original file location.
	SourcePath string

	// PageCount is the number of pages extracted.
	PageCount int

	// ChunkCount is the number of chunks produced.
	ChunkCount int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk represents a searchable unit within a document.
// Documents are split into overlapping chunks for granular retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Page is the 1-based page the chunk starts on.
	Page int

	// Position is the ordinal position within the document.
	Position int

	// Language is inherited from the parent document.
	Language Language

	// Embedding is the vector representation for dense retrieval.
	// Empty until the embedding stage has run.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// PageText is the extracted text of a single page, before chunking.
type PageText struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted content.
	Text string

	// Scanned indicates the page went through OCR rather than
	// direct text extraction.
	Scanned bool
}
