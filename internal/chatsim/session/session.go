package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
)

// Session represents a conversation thread
type Session struct {
	ID            string `json:"id"`             // UUID v4 (e.g., "550e8400-e29b-41d4-a716-446655440000")
	Title         string `json:"title"`          // "Chat N", fixed at creation
	LastMessage   string `json:"last_message"`   // Text of the newest message
	LastTimestamp string `json:"last_timestamp"` // Display time of the newest message
}

// NewSession creates a session titled after the number of existing sessions.
func NewSession(existing int, now time.Time) Session {
	return Session{
		ID:            uuid.New().String(),
		Title:         fmt.Sprintf("Chat %d", existing+1),
		LastMessage:   "",
		LastTimestamp: clock.DisplayTime(now),
	}
}

// Touch records m as the newest message of the session.
func (s *Session) Touch(m chatsim.Message) {
	s.LastMessage = m.Text
	s.LastTimestamp = m.Timestamp
}

// GetShortID returns the shortened session ID (first 8 characters)
func (s *Session) GetShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}
