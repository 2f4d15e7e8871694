package domain

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

// Available chat roles.
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r ChatRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// String returns the string representation.
func (r ChatRole) String() string {
	return string(r)
}

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	// ID is the unique session identifier.
	ID string

	// Title is a short label, taken from the first question.
	Title string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	// UpdatedAt is when the last message was added.
	UpdatedAt time.Time
}

// ChatMessage is a single exchange entry within a session.
type ChatMessage struct {
	// ID is the unique message identifier.
	ID string

	// SessionID links to the parent session.
	SessionID string

	// Role is who authored the message.
	Role ChatRole

	// Content is the message text.
	Content string

	// CreatedAt is when the message was recorded.
	CreatedAt time.Time
}
