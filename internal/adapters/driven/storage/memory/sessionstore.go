package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore for testing.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ChatSession
	messages map[string][]domain.ChatMessage
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.ChatSession),
		messages: make(map[string][]domain.ChatMessage),
	}
}

// CreateSession stores a new session.
func (s *SessionStore) CreateSession(_ context.Context, session *domain.ChatSession) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	s.sessions[stored.ID] = stored
	return nil
}

// GetSession retrieves a session by ID.
func (s *SessionStore) GetSession(_ context.Context, id string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// AddMessage appends a message and bumps the session's updated time.
func (s *SessionStore) AddMessage(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[msg.SessionID]
	if !ok {
		return domain.ErrNotFound
	}
	stored := *msg
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], stored)
	session.UpdatedAt = stored.CreatedAt
	s.sessions[msg.SessionID] = session
	return nil
}

// Messages returns the most recent messages in chronological order.
func (s *SessionStore) Messages(_ context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[sessionID]
	result := make([]domain.ChatMessage, len(msgs))
	copy(result, msgs)
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

// RecentSessions lists sessions by last activity, newest first.
func (s *SessionStore) RecentSessions(_ context.Context, limit int) ([]domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.ChatSession, 0, len(s.sessions))
	for id := range s.sessions {
		result = append(result, s.sessions[id])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DeleteSession removes a session and its messages.
func (s *SessionStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	delete(s.messages, id)
	return nil
}
