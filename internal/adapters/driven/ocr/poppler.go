// Package ocr extracts page text from PDFs. Digital pages are read
// with pdftotext; pages with no extractable text are rendered via
// pdftoppm and run through tesseract in the document's language.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.OCRService = (*Service)(nil)

// Default configuration values.
const (
	DefaultDPI = 300

	// scannedRuneThreshold is the minimum extractable text length for
	// a page to count as digital. Below it the page is treated as
	// scanned and OCRed.
	scannedRuneThreshold = 50
)

// Config holds configuration for the OCR service.
type Config struct {
	// DPI is the render resolution for OCR (default: 300).
	DPI int
}

// Service shells out to poppler-utils and tesseract.
type Service struct {
	dpi int
}

// NewService creates a PDF text extraction service.
func NewService(cfg Config) *Service {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	return &Service{dpi: cfg.DPI}
}

// Available reports whether pdftotext is installed. Tesseract is
// checked separately per scanned page so digital-only corpora work
// without it.
func (s *Service) Available() bool {
	_, err := exec.LookPath("pdftotext")
	return err == nil
}

// ExtractPages returns the text of every page in order. Scanned pages
// where tesseract is missing or fails yield empty text with a warning
// rather than failing the whole document.
func (s *Service) ExtractPages(ctx context.Context, pdfPath string, lang domain.Language) ([]domain.PageText, error) {
	if !s.Available() {
		return nil, fmt.Errorf("pdftotext not found: install poppler-utils")
	}

	total, err := s.pageCount(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	pages := make([]domain.PageText, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := s.extractDigital(ctx, pdfPath, n)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", n, err)
		}

		page := domain.PageText{Number: n, Text: text}
		if utf8.RuneCountInString(strings.TrimSpace(text)) < scannedRuneThreshold {
			page.Scanned = true
			ocrText, err := s.ocrPage(ctx, pdfPath, n, lang)
			if err != nil {
				logger.Warn("ocr: page %d of %s: %v", n, filepath.Base(pdfPath), err)
			} else {
				page.Text = ocrText
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// pageCount reads the page total from pdfinfo output.
func (s *Service) pageCount(ctx context.Context, pdfPath string) (int, error) {
	out, err := runCommand(ctx, "pdfinfo", pdfPath)
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "Pages:"); ok {
			return strconv.Atoi(strings.TrimSpace(rest))
		}
	}
	return 0, fmt.Errorf("no page count in pdfinfo output")
}

// extractDigital pulls the embedded text layer of one page.
func (s *Service) extractDigital(ctx context.Context, pdfPath string, page int) (string, error) {
	n := strconv.Itoa(page)
	return runCommand(ctx, "pdftotext", "-f", n, "-l", n, "-layout", pdfPath, "-")
}

// ocrPage renders one page to a temporary PNG and runs tesseract on
// it with the language's traineddata.
func (s *Service) ocrPage(ctx context.Context, pdfPath string, page int, lang domain.Language) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not found: install tesseract-ocr with the %s traineddata", lang.TesseractCode())
	}

	tmpDir, err := os.MkdirTemp("", "glossa-ocr-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	n := strconv.Itoa(page)
	prefix := filepath.Join(tmpDir, "page")
	_, err = runCommand(ctx, "pdftoppm",
		"-f", n, "-l", n, "-singlefile",
		"-r", strconv.Itoa(s.dpi), "-png",
		pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	text, err := runCommand(ctx, "tesseract", prefix+".png", "stdout", "-l", lang.TesseractCode())
	if err != nil {
		return "", fmt.Errorf("run tesseract: %w", err)
	}
	return text, nil
}

// runCommand executes a command and returns its stdout. Stderr is
// folded into the error on failure.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}
