// Package postprocessors transforms extracted page text before it is
// chunked: whitespace cleanup always, LLM-backed OCR repair optionally.
// The final stage of the pipeline is always the chunker.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/postprocessors/chunker"
)

// Ensure Pipeline satisfies the port.
var _ driven.IngestPipeline = (*Pipeline)(nil)

// Pipeline chains PageProcessors and finishes with the chunker.
// Processors run in the order provided; each receives the previous
// one's output pages.
type Pipeline struct {
	processors []driven.PageProcessor
	splitter   *chunker.Splitter
}

// NewPipeline creates a processing pipeline ending in the given
// splitter. A nil splitter gets the default chunk geometry.
func NewPipeline(splitter *chunker.Splitter, processors ...driven.PageProcessor) *Pipeline {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &Pipeline{
		processors: processors,
		splitter:   splitter,
	}
}

// Process runs the pages through all processors in order, then splits
// the result into chunks. Chunks come back without embeddings.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document, pages []domain.PageText) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var err error
	for _, processor := range p.processors {
		pages, err = processor.Process(ctx, doc, pages)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return p.splitter.Split(doc, pages), nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PageProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline, the chunker
// excluded.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
