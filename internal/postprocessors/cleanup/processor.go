// Package cleanup normalises extracted page text before chunking.
// PDF extraction and OCR leave artifacts that hurt both sparse and
// dense retrieval: hyphenated line breaks, stray control characters,
// runs of blank lines from page furniture.
package cleanup

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// DefaultMaxBlankLines is how many consecutive blank lines survive
// cleanup.
const DefaultMaxBlankLines = 1

var (
	// "exam-\nple" from justified PDF text columns.
	hyphenBreak = regexp.MustCompile(`(\p{L})-\n(\p{L})`)
	spaceRun    = regexp.MustCompile(`[ \t]+`)
)

// Processor is the whitespace and artifact normaliser.
type Processor struct {
	maxBlankLines int
}

// Option configures the processor.
type Option func(*Processor)

// WithMaxBlankLines sets how many consecutive blank lines to keep.
func WithMaxBlankLines(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxBlankLines = n
		}
	}
}

// New creates a cleanup processor.
func New(opts ...Option) *Processor {
	p := &Processor{maxBlankLines: DefaultMaxBlankLines}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleanup"
}

// Process normalises each page in place. It never fails.
func (p *Processor) Process(_ context.Context, _ *domain.Document, pages []domain.PageText) ([]domain.PageText, error) {
	out := make([]domain.PageText, len(pages))
	for i, page := range pages {
		page.Text = p.clean(page.Text)
		out[i] = page
	}
	return out, nil
}

func (p *Processor) clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = stripControl(text)
	text = hyphenBreak.ReplaceAllString(text, "$1$2")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0

	for _, line := range lines {
		line = strings.TrimRight(spaceRun.ReplaceAllString(line, " "), " ")
		if line == "" {
			blanks++
			if blanks > p.maxBlankLines {
				continue
			}
		} else {
			blanks = 0
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// stripControl removes non-printing runes, keeping newlines and tabs.
// OCR output on scanned pages is the usual source.
func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == '�' {
			return -1
		}
		return r
	}, text)
}
