package chat

import (
	"testing"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
	"github.com/longkey1/chatsim/internal/chatsim/responder"
	"github.com/longkey1/chatsim/internal/chatsim/session"
	"github.com/longkey1/chatsim/internal/chatsim/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config) (*Service, *clock.Fake, *storage.MemoryBackend) {
	t.Helper()
	fake := clock.NewFake(time.Date(2025, 3, 14, 18, 5, 0, 0, time.UTC))
	backend := storage.NewMemoryBackend()
	reg := session.NewRegistry(storage.NewStore(backend, nil), session.WithClock(fake))
	cfg.Clock = fake
	svc, err := New(reg, cfg)
	require.NoError(t, err)
	return svc, fake, backend
}

func TestFirstMessageScenario(t *testing.T) {
	svc, fake, _ := newTestService(t, Config{})

	id, m, err := svc.Send("hi")
	require.NoError(t, err)

	sessions := svc.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "Chat 1", sessions[0].Title)
	assert.Equal(t, id, svc.ActiveSessionID())
	assert.Equal(t, []chatsim.Message{m}, svc.Messages())
	assert.Equal(t, 1, svc.Pending())

	fake.Advance(svc.ReplyDelay())

	msgs := svc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chatsim.SenderUser, msgs[0].Sender)
	assert.Equal(t, chatsim.SenderAssistant, msgs[1].Sender)
	assert.NotEmpty(t, msgs[1].Text)
	assert.Equal(t, chatsim.DefaultModel, msgs[1].Model)
	assert.Equal(t, "18:05", msgs[1].Timestamp)
	assert.Equal(t, 0, svc.Pending())
}

func TestReplyAfterDeleteIsDropped(t *testing.T) {
	var replies []responder.Reply
	svc, fake, backend := newTestService(t, Config{OnReply: func(r responder.Reply) {
		replies = append(replies, r)
	}})

	id, _, err := svc.Send("hi")
	require.NoError(t, err)
	svc.DeleteSession(id)

	fake.Advance(time.Second)

	assert.Empty(t, svc.Sessions())
	assert.Empty(t, svc.ActiveSessionID())
	assert.Empty(t, svc.Messages())
	_, err = backend.Get(storage.MessagesKey(id))
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	require.Len(t, replies, 1)
	assert.False(t, replies[0].Delivered)
}

func TestReplyFollowsCapturedSession(t *testing.T) {
	svc, fake, _ := newTestService(t, Config{})

	a, _, err := svc.Send("question")
	require.NoError(t, err)
	b := svc.CreateSession()

	fake.Advance(time.Second)

	assert.Equal(t, b.ID, svc.ActiveSessionID())
	assert.Empty(t, svc.Messages(), "active session untouched")

	require.NoError(t, svc.SelectSession(a))
	msgs := svc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chatsim.SenderAssistant, msgs[1].Sender)
}

func TestFastTypedMessagesEachGetAReply(t *testing.T) {
	svc, fake, _ := newTestService(t, Config{ReplyText: "ok"})

	for _, text := range []string{"one", "two", "three"} {
		_, _, err := svc.Send(text)
		require.NoError(t, err)
		fake.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 3, svc.Pending())

	fake.Advance(time.Second)
	msgs := svc.Messages()
	require.Len(t, msgs, 6)
	for _, m := range msgs[3:] {
		assert.Equal(t, "ok", m.Text)
	}
}

func TestSelectModel(t *testing.T) {
	svc, fake, _ := newTestService(t, Config{})

	require.NoError(t, svc.SelectModel("gpt-4"))
	assert.Error(t, svc.SelectModel("llama"))
	assert.Equal(t, "gpt-4", svc.Model())

	_, _, err := svc.Send("hi")
	require.NoError(t, err)
	fake.Advance(time.Second)
	assert.Equal(t, "gpt-4", svc.Messages()[1].Model)

	var defaults []string
	for _, m := range svc.Models() {
		if m.IsDefault {
			defaults = append(defaults, m.ID)
		}
	}
	assert.Equal(t, []string{"gpt-4"}, defaults)
}

func TestNewRejectsUnknownDefaultModel(t *testing.T) {
	reg := session.NewRegistry(storage.NewStore(storage.NewMemoryBackend(), nil))
	_, err := New(reg, Config{Model: "not-a-model"})
	assert.Error(t, err)
}

func TestBlankMessageSchedulesNothing(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})

	_, _, err := svc.Send("   ")
	assert.ErrorIs(t, err, session.ErrEmptyMessage)
	assert.Equal(t, 0, svc.Pending())
	assert.Empty(t, svc.Sessions())
}
