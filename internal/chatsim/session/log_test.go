package session

import (
	"testing"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageLog(t *testing.T) {
	l := NewMessageLog()
	assert.Equal(t, 0, l.Len())

	a := chatsim.Message{ID: "a", Sender: chatsim.SenderUser, Text: "one"}
	b := chatsim.Message{ID: "b", Sender: chatsim.SenderAssistant, Text: "two", Model: "gpt-4"}
	require.NoError(t, l.Append(a))
	require.NoError(t, l.Append(b))

	assert.Error(t, l.Append(a), "duplicate id")
	assert.Error(t, l.Append(chatsim.Message{Sender: chatsim.SenderUser, Text: "no id"}))
	assert.Error(t, l.Append(chatsim.Message{ID: "c", Sender: "system", Text: "bad sender"}))

	assert.Equal(t, []chatsim.Message{a, b}, l.Messages())
	assert.Equal(t, 2, l.Len())

	// Messages returns a copy.
	l.Messages()[0].Text = "changed"
	assert.Equal(t, "one", l.Messages()[0].Text)
}

func TestMessageLogLoad(t *testing.T) {
	user := chatsim.SenderUser
	tests := []struct {
		name     string
		messages []chatsim.Message
		wantIDs  []string
		dropped  int
	}{
		{
			name:     "valid",
			messages: []chatsim.Message{{ID: "x", Sender: user}, {ID: "y", Sender: chatsim.SenderAssistant}},
			wantIDs:  []string{"x", "y"},
		},
		{
			name:     "empty and repeated ids",
			messages: []chatsim.Message{{ID: "x", Sender: user}, {ID: "", Sender: user}, {ID: "x", Sender: user}, {ID: "y", Sender: user}},
			wantIDs:  []string{"x", "y"},
			dropped:  2,
		},
		{
			name:     "unknown sender",
			messages: []chatsim.Message{{ID: "x", Sender: "system"}, {ID: "y", Sender: ""}, {ID: "z", Sender: user}},
			wantIDs:  []string{"z"},
			dropped:  2,
		},
		{
			name:    "empty",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewMessageLog()
			require.NoError(t, l.Append(chatsim.Message{ID: "old", Sender: user}))

			assert.Equal(t, tt.dropped, l.Load(tt.messages))

			ids := []string{}
			for _, m := range l.Messages() {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			// Load replaces the id index too.
			assert.NoError(t, l.Append(chatsim.Message{ID: "old", Sender: user}))
		})
	}
}
