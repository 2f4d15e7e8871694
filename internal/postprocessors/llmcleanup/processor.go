// Package llmcleanup repairs OCR artifacts with a language model.
// It only touches pages that went through OCR; digitally extracted
// pages pass straight through.
package llmcleanup

import (
	"context"
	"fmt"
	"strings"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

const defaultCleanupPrompt = `The following text was extracted from a scanned document page and may contain OCR errors, broken words and stray artefacts. Correct obvious recognition mistakes, rejoin words split across line breaks and drop page furniture such as running headers and page numbers. Keep the original language and wording. Return ONLY the corrected text.

Text:
%s

Corrected text:`

// maxPageRunes guards against sending very large pages to the model.
const maxPageRunes = 8000

// Processor repairs scanned pages through an LLM.
// A failed repair keeps the original page text; OCR noise is better
// than a lost page.
type Processor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// New creates an LLM cleanup processor.
func New(llm driven.LLMService) *Processor {
	return &Processor{llm: llm}
}

// SetPromptStore sets the store for the customisable repair prompt.
func (p *Processor) SetPromptStore(store driven.PromptStore) {
	p.prompts = store
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "llm_cleanup"
}

// Process repairs every scanned page. Oversized pages and repair
// failures fall back to the original text.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, pages []domain.PageText) ([]domain.PageText, error) {
	if p.llm == nil {
		return pages, nil
	}

	out := make([]domain.PageText, len(pages))
	for i, page := range pages {
		out[i] = page
		if !page.Scanned || strings.TrimSpace(page.Text) == "" {
			continue
		}
		if len([]rune(page.Text)) > maxPageRunes {
			continue
		}

		repaired, err := p.repair(ctx, page.Text)
		if err != nil {
			logger.Warn("LLM cleanup failed for %s page %d: %v", doc.ID, page.Number, err)
			continue
		}
		if strings.TrimSpace(repaired) != "" {
			out[i].Text = repaired
		}
	}
	return out, nil
}

func (p *Processor) repair(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(p.promptTemplate(), text)
	return p.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   4096,
		Temperature: 0.0,
	})
}

func (p *Processor) promptTemplate() string {
	if p.prompts != nil {
		if custom, err := p.prompts.Load(driven.PromptCleanup); err == nil && custom != "" {
			return custom
		}
	}
	return defaultCleanupPrompt
}
