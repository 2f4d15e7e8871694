package services

import (
	"context"
	"fmt"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// defaultSessionLimit caps List when the caller passes no limit.
const defaultSessionLimit = 20

// SessionService exposes chat history management.
type SessionService struct {
	sessions driven.SessionStore
}

// NewSessionService creates a session service.
func NewSessionService(sessions driven.SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// List returns recent sessions, newest first.
func (s *SessionService) List(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	return s.sessions.RecentSessions(ctx, limit)
}

// Show returns a session's messages in chronological order.
func (s *SessionService) Show(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is empty: %w", domain.ErrInvalidInput)
	}
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.sessions.Messages(ctx, sessionID, 0)
}

// Clear deletes a session and its messages.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is empty: %w", domain.ErrInvalidInput)
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}
