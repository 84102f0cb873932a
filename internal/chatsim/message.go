package chatsim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Message represents a single message in a session log
type Message struct {
	ID        string `json:"id"`              // UUID v4
	Sender    Sender `json:"sender"`          // "user" or "assistant"
	Text      string `json:"text"`            // Message content
	Timestamp string `json:"timestamp"`       // Display time, e.g. "09:41"
	Model     string `json:"model,omitempty"` // Set on assistant messages only
}

// NewUserMessage builds a user message stamped at now.
func NewUserMessage(text string, now time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Sender:    SenderUser,
		Text:      text,
		Timestamp: clock.DisplayTime(now),
	}
}

// NewAssistantMessage builds an assistant message produced by model, stamped at now.
func NewAssistantMessage(text, model string, now time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Sender:    SenderAssistant,
		Text:      text,
		Timestamp: clock.DisplayTime(now),
		Model:     model,
	}
}

// Label returns the speaker label used when printing a message.
func (m Message) Label() string {
	if m.Sender == SenderAssistant {
		if m.Model != "" {
			return fmt.Sprintf("Assistant (%s)", m.Model)
		}
		return "Assistant"
	}
	return "You"
}
