package mcp

import (
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions and retrieves context.
	Query driving.QueryService

	// Document exposes the ingested corpus.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Document is optional; the resources degrade without it
	return nil
}
