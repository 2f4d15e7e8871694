package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to search the corpus with"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page"`
	Language   string  `json:"language"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the corpus"`
	SessionID string `json:"session_id,omitempty" jsonschema:"chat session to continue (empty starts a new one)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string               `json:"answer"`
	SessionID string               `json:"session_id"`
	Model     string               `json:"model,omitempty"`
	Sources   []SearchResultOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve relevant document chunks without generating an answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded in the ingested documents",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	set, err := s.ports.Query.Retrieve(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(set.Results)),
		Count:   len(set.Results),
	}

	for i := range set.Results {
		r := set.Results[i]
		output.Results[i] = SearchResultOutput{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Page:       r.Page,
			Language:   r.Language.String(),
			Score:      r.Score,
			Content:    r.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, input.SessionID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Text,
		SessionID: answer.SessionID,
		Model:     answer.Model,
		Sources:   make([]SearchResultOutput, len(answer.Sources)),
	}

	for i := range answer.Sources {
		src := answer.Sources[i]
		output.Sources[i] = SearchResultOutput{
			ChunkID:    src.ChunkID,
			DocumentID: src.DocumentID,
			Page:       src.Page,
			Language:   src.Language.String(),
			Score:      src.Score,
			Content:    src.Content,
		}
	}

	return nil, output, nil
}
