package driven

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// SessionStore persists chat sessions and their messages.
type SessionStore interface {
	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session *domain.ChatSession) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// AddMessage appends a message to a session and bumps the
	// session's updated time.
	AddMessage(ctx context.Context, msg *domain.ChatMessage) error

	// Messages returns the most recent messages of a session in
	// chronological order, at most limit entries. Zero means all.
	Messages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)

	// RecentSessions lists sessions by last activity, newest first.
	RecentSessions(ctx context.Context, limit int) ([]domain.ChatSession, error)

	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, id string) error
}
