package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "glossa://documents/doc-456",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/doc-456",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns documents successfully", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			documents: []domain.Document{
				{ID: "en-constitution-a1b2", Title: "constitution", Language: domain.LanguageEnglish, PageCount: 250, ChunkCount: 1200},
				{ID: "zh-report-c3d4", Title: "report", Language: domain.LanguageChinese, PageCount: 12, ChunkCount: 40},
			},
		}

		ports := &Ports{Query: &mockQueryService{}, Document: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "en-constitution-a1b2")
		assert.Contains(t, result.Contents[0].Text, "constitution")
		assert.Contains(t, result.Contents[0].Text, "zh-report-c3d4")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			err: errors.New("database error"),
		}

		ports := &Ports{Query: &mockQueryService{}, Document: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})

	t.Run("handles empty document list", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			documents: []domain.Document{},
		}

		ports := &Ports{Query: &mockQueryService{}, Document: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns not found", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://documents/doc-123")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		mockDoc := &mockDocumentService{}
		ports := &Ports{Query: &mockQueryService{}, Document: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://invalid/uri")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns content successfully", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			content: "Article 1.\n\nThe Union and its territory.",
		}

		ports := &Ports{Query: &mockQueryService{}, Document: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://documents/doc-123")
		result, err := server.handleDocumentContentResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Article 1.\n\nThe Union and its territory.", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("returns error on get content failure", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			err: errors.New("content not found"),
		}

		ports := &Ports{Query: &mockQueryService{}, Document: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("glossa://documents/doc-123")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting document content")
	})
}
