package mcp

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	set    *domain.FusedResultSet
	answer *domain.Answer
	err    error
}

func (m *mockQueryService) Retrieve(
	_ context.Context,
	question string,
	_ int,
) (*domain.FusedResultSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.set != nil {
		return m.set, nil
	}
	return &domain.FusedResultSet{Query: question}, nil
}

func (m *mockQueryService) Ask(
	_ context.Context,
	_ string,
	_ string,
) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	err       error
}

func (m *mockDocumentService) List(_ context.Context, _ domain.Language) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Open(_ context.Context, _ string) error {
	return m.err
}
