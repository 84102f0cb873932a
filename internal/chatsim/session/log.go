package session

import (
	"fmt"

	"github.com/longkey1/chatsim/internal/chatsim"
)

// MessageLog is the ordered, append-only message sequence of one session.
type MessageLog struct {
	messages []chatsim.Message
	ids      map[string]struct{}
}

// NewMessageLog returns an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{ids: make(map[string]struct{})}
}

// Load replaces the log contents with messages. Entries with an empty or
// repeated id or an unknown sender are dropped; it returns how many.
func (l *MessageLog) Load(messages []chatsim.Message) int {
	l.messages = make([]chatsim.Message, 0, len(messages))
	l.ids = make(map[string]struct{}, len(messages))
	dropped := 0
	for _, m := range messages {
		if m.ID == "" || !m.Sender.Valid() {
			dropped++
			continue
		}
		if _, dup := l.ids[m.ID]; dup {
			dropped++
			continue
		}
		l.ids[m.ID] = struct{}{}
		l.messages = append(l.messages, m)
	}
	return dropped
}

// Append adds m to the end of the log.
func (l *MessageLog) Append(m chatsim.Message) error {
	if m.ID == "" {
		return fmt.Errorf("message has no id")
	}
	if !m.Sender.Valid() {
		return fmt.Errorf("unknown sender: %q", m.Sender)
	}
	if _, dup := l.ids[m.ID]; dup {
		return fmt.Errorf("duplicate message id: %s", m.ID)
	}
	l.ids[m.ID] = struct{}{}
	l.messages = append(l.messages, m)
	return nil
}

// Messages returns a copy of the log in append order.
func (l *MessageLog) Messages() []chatsim.Message {
	out := make([]chatsim.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *MessageLog) Len() int {
	return len(l.messages)
}
