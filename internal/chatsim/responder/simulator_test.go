package responder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type call struct {
	sessionID, text, model string
}

// recordingSink accepts replies for every session in live.
type recordingSink struct {
	mu    sync.Mutex
	live  map[string]bool
	calls []call
}

func newRecordingSink(live ...string) *recordingSink {
	s := &recordingSink{live: make(map[string]bool)}
	for _, id := range live {
		s.live[id] = true
	}
	return s
}

func (s *recordingSink) AppendAssistantMessage(sessionID, text, model string) (chatsim.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{sessionID, text, model})
	if !s.live[sessionID] {
		return chatsim.Message{}, false
	}
	return chatsim.NewAssistantMessage(text, model, time.Time{}), true
}

func (s *recordingSink) kill(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, id)
}

func (s *recordingSink) recorded() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

func TestSubmitRepliesAfterDelay(t *testing.T) {
	fake := clock.NewFake(time.Now())
	sink := newRecordingSink("s1")
	var replies []Reply
	sim := New(sink, Config{Clock: fake, OnReply: func(r Reply) { replies = append(replies, r) }})

	sim.Submit("s1", "hello", "gpt-4")
	assert.Equal(t, 1, sim.Pending())

	fake.Advance(999 * time.Millisecond)
	assert.Empty(t, sink.recorded())

	fake.Advance(time.Millisecond)
	require.Equal(t, []call{{"s1", chatsim.DefaultReplyText, "gpt-4"}}, sink.recorded())
	assert.Equal(t, 0, sim.Pending())
	require.Len(t, replies, 1)
	assert.True(t, replies[0].Delivered)
	assert.Equal(t, "s1", replies[0].SessionID)
	assert.Equal(t, chatsim.SenderAssistant, replies[0].Message.Sender)
}

func TestReplyIgnoresUserText(t *testing.T) {
	fake := clock.NewFake(time.Now())
	sink := newRecordingSink("s1")
	sim := New(sink, Config{Clock: fake, ReplyText: "ack"})

	sim.Submit("s1", "what is the weather", "")
	sim.Submit("s1", "tell me a joke", "")
	fake.Advance(time.Second)

	calls := sink.recorded()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "ack", c.text)
		assert.Equal(t, chatsim.DefaultModel, c.model)
	}
}

func TestOutstandingSubmissionsResolveIndependently(t *testing.T) {
	fake := clock.NewFake(time.Now())
	sink := newRecordingSink("a", "b")
	sim := New(sink, Config{Clock: fake, Delay: 100 * time.Millisecond})

	sim.Submit("a", "1", "gpt-4")
	fake.Advance(40 * time.Millisecond)
	sim.Submit("b", "2", "gpt-4")
	fake.Advance(40 * time.Millisecond)
	sim.Submit("a", "3", "gpt-4")
	assert.Equal(t, 3, sim.Pending())

	fake.Advance(20 * time.Millisecond)
	require.Len(t, sink.recorded(), 1)

	fake.Advance(100 * time.Millisecond)
	calls := sink.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"a", "b", "a"}, []string{calls[0].sessionID, calls[1].sessionID, calls[2].sessionID})
}

func TestReplyForDeletedSessionIsReported(t *testing.T) {
	fake := clock.NewFake(time.Now())
	sink := newRecordingSink("gone")
	var got Reply
	sim := New(sink, Config{Clock: fake, OnReply: func(r Reply) { got = r }})

	sim.Submit("gone", "hi", "gpt-4")
	sink.kill("gone")
	fake.Advance(time.Second)

	assert.False(t, got.Delivered)
	assert.Equal(t, "gone", got.SessionID)
	assert.Equal(t, 0, sim.Pending())
}

func TestWaitWithSystemClock(t *testing.T) {
	sink := newRecordingSink("s1")
	sim := New(sink, Config{Delay: 10 * time.Millisecond})

	sim.Submit("s1", "one", "gpt-4")
	sim.Submit("s1", "two", "gpt-4")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sim.Wait(ctx))
	assert.Len(t, sink.recorded(), 2)
	assert.Equal(t, 0, sim.Pending())
}

func TestWaitHonorsContext(t *testing.T) {
	fake := clock.NewFake(time.Now())
	sim := New(newRecordingSink("s1"), Config{Clock: fake})
	sim.Submit("s1", "hi", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sim.Wait(ctx), context.Canceled)

	fake.Advance(time.Second)
	assert.NoError(t, sim.Wait(context.Background()))
}
