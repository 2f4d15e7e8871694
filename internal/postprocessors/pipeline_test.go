package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/postprocessors/chunker"
)

// mockProcessor is a test processor that returns predefined pages.
type mockProcessor struct {
	name  string
	pages []domain.PageText
	err   error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.Document, pages []domain.PageText) ([]domain.PageText, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.pages != nil {
		return m.pages, nil
	}
	return pages, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline(nil)
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline(nil)
	p.Add(&mockProcessor{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	p := NewPipeline(nil)

	_, err := p.Process(context.Background(), nil, nil)
	if err == nil {
		t.Error("expected error for nil document")
	}
}

func TestPipeline_Process_EmptyPages(t *testing.T) {
	p := NewPipeline(nil)
	doc := &domain.Document{ID: "test-doc"}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected nil chunks for empty pages, got %v", chunks)
	}
}

func TestPipeline_Process_NoProcessors(t *testing.T) {
	p := NewPipeline(chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(0)))
	doc := &domain.Document{ID: "test-doc", Language: domain.LanguageEnglish}
	pages := []domain.PageText{
		{Number: 1, Text: "some page content"},
	}

	chunks, err := p.Process(context.Background(), doc, pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "some page content" {
		t.Errorf("unexpected chunk content: %q", chunks[0].Content)
	}
}

func TestPipeline_Process_ProcessorsRunInOrder(t *testing.T) {
	first := []domain.PageText{{Number: 1, Text: "first"}}
	second := []domain.PageText{{Number: 1, Text: "second"}}

	p := NewPipeline(
		chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(0)),
		&mockProcessor{name: "first", pages: first},
		&mockProcessor{name: "second", pages: second},
	)

	doc := &domain.Document{ID: "test-doc"}
	chunks, err := p.Process(context.Background(), doc, []domain.PageText{{Number: 1, Text: "original"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "second" {
		t.Errorf("expected last processor's output to win, got %q", chunks[0].Content)
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")

	p := NewPipeline(nil, &mockProcessor{
		name: "failing",
		err:  expectedErr,
	})

	doc := &domain.Document{ID: "test-doc"}
	_, err := p.Process(context.Background(), doc, []domain.PageText{{Number: 1, Text: "x"}})
	if err == nil {
		t.Error("expected error from failing processor")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "failing") {
		t.Errorf("expected processor name in error, got: %v", err)
	}
}

func TestPipeline_Process_PassthroughProcessor(t *testing.T) {
	p := NewPipeline(
		chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(0)),
		&mockProcessor{name: "passthrough"}, // Returns received pages unchanged
	)

	doc := &domain.Document{ID: "test-doc"}
	chunks, err := p.Process(context.Background(), doc, []domain.PageText{{Number: 3, Text: "kept as is"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Page != 3 {
		t.Errorf("expected page 3, got %d", chunks[0].Page)
	}
}
