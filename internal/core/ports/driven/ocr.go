package driven

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// OCRService extracts page text from PDF files.
// Digital pages are read directly; scanned pages go through OCR in the
// document's language. Extraction quality is the engine's concern, not
// ours.
type OCRService interface {
	// ExtractPages returns the text of every page in order.
	ExtractPages(ctx context.Context, pdfPath string, lang domain.Language) ([]domain.PageText, error)

	// Available reports whether the extraction tooling is installed.
	Available() bool
}
