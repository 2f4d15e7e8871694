// Package chunker provides a fixed-size sliding-window text splitter.
// Windows are measured in runes so CJK and Indic scripts chunk at the
// same granularity as Latin text.
package chunker

import (
	"fmt"
	"strings"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 65

// Splitter turns extracted pages into overlapping chunks.
// Pages are split independently so every chunk keeps the page it
// starts on; positions run continuously across the whole document.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split chunks the pages of a document. Whitespace-only pages and
// windows are skipped. Chunk IDs are derived from the document ID and
// the chunk position, so re-ingesting the same document overwrites
// its previous chunks instead of accumulating new ones.
func (s *Splitter) Split(doc *domain.Document, pages []domain.PageText) []domain.Chunk {
	var chunks []domain.Chunk
	position := 0

	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}

		runes := []rune(text)
		step := s.chunkSize - s.overlap

		for start := 0; start < len(runes); start += step {
			end := start + s.chunkSize
			if end > len(runes) {
				end = len(runes)
			}

			content := strings.TrimSpace(string(runes[start:end]))
			if content != "" {
				chunks = append(chunks, domain.Chunk{
					ID:         chunkID(doc.ID, position),
					DocumentID: doc.ID,
					Content:    content,
					Page:       page.Number,
					Position:   position,
					Language:   doc.Language,
					Metadata:   make(map[string]any),
				})
				position++
			}

			if end == len(runes) {
				break
			}
		}
	}

	return chunks
}

// chunkID builds a deterministic chunk identifier.
func chunkID(docID string, position int) string {
	return fmt.Sprintf("%s_c%04d", docID, position)
}
