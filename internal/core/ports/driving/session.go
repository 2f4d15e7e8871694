package driving

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// SessionService manages chat history for external actors.
type SessionService interface {
	// List returns recent sessions, newest first.
	List(ctx context.Context, limit int) ([]domain.ChatSession, error)

	// Show returns a session's messages in chronological order.
	Show(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)

	// Clear deletes a session and its messages.
	Clear(ctx context.Context, sessionID string) error
}
