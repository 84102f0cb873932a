package scroll

import (
	"testing"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim/clock"
	"github.com/stretchr/testify/assert"
)

func newTestFollower() (*Follower, *clock.Fake, *int) {
	fake := clock.NewFake(time.Now())
	scrolls := 0
	f := NewFollower(func() { scrolls++ }, Config{Clock: fake})
	return f, fake, &scrolls
}

func TestDistanceFromBottom(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want int
	}{
		{name: "at bottom", pos: Position{ContentHeight: 500, Offset: 400, ViewHeight: 100}, want: 0},
		{name: "just above threshold", pos: Position{ContentHeight: 500, Offset: 360, ViewHeight: 100}, want: 40},
		{name: "at top", pos: Position{ContentHeight: 500, Offset: 0, ViewHeight: 100}, want: 400},
		{name: "content shorter than view", pos: Position{ContentHeight: 50, Offset: 0, ViewHeight: 100}, want: -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.DistanceFromBottom())
		})
	}
}

func TestOnUserScrollThreshold(t *testing.T) {
	f, _, _ := newTestFollower()
	assert.True(t, f.AutoFollow())

	f.OnUserScroll(Position{ContentHeight: 500, Offset: 361, ViewHeight: 100})
	assert.True(t, f.AutoFollow(), "39 units from bottom still follows")

	f.OnUserScroll(Position{ContentHeight: 500, Offset: 360, ViewHeight: 100})
	assert.False(t, f.AutoFollow(), "40 units from bottom stops following")
}

func TestOnLogChangedDebounces(t *testing.T) {
	f, fake, scrolls := newTestFollower()

	f.OnLogChanged()
	fake.Advance(10 * time.Millisecond)
	f.OnLogChanged()
	fake.Advance(10 * time.Millisecond)
	assert.Equal(t, 0, *scrolls, "second change pushes the reveal back")

	fake.Advance(10 * time.Millisecond)
	assert.Equal(t, 1, *scrolls)
	assert.Equal(t, 0, fake.Pending())
}

func TestScrolledAwayViewIsNotMoved(t *testing.T) {
	f, fake, scrolls := newTestFollower()

	f.OnUserScroll(Position{ContentHeight: 1000, Offset: 100, ViewHeight: 300})
	f.OnLogChanged()
	fake.Advance(time.Second)
	assert.Equal(t, 0, *scrolls)

	// Back within 40 units of the bottom: snap again.
	f.OnUserScroll(Position{ContentHeight: 1000, Offset: 680, ViewHeight: 300})
	assert.True(t, f.AutoFollow())
	fake.Advance(DefaultDebounce)
	assert.Equal(t, 1, *scrolls)

	f.OnLogChanged()
	fake.Advance(DefaultDebounce)
	assert.Equal(t, 2, *scrolls)
}

func TestScrollingAwayCancelsPendingReveal(t *testing.T) {
	f, fake, scrolls := newTestFollower()

	f.OnLogChanged()
	f.OnUserScroll(Position{ContentHeight: 1000, Offset: 0, ViewHeight: 300})
	fake.Advance(time.Second)

	assert.Equal(t, 0, *scrolls)
}

func TestScrollWithinBottomDoesNotReschedule(t *testing.T) {
	f, fake, scrolls := newTestFollower()

	f.OnUserScroll(Position{ContentHeight: 1000, Offset: 700, ViewHeight: 300})
	fake.Advance(time.Second)
	assert.Equal(t, 0, *scrolls, "already following, nothing new to reveal")
}

func TestStop(t *testing.T) {
	f, fake, scrolls := newTestFollower()

	f.OnLogChanged()
	f.Stop()
	fake.Advance(time.Second)
	assert.Equal(t, 0, *scrolls)
}

func TestCustomThreshold(t *testing.T) {
	fake := clock.NewFake(time.Now())
	f := NewFollower(nil, Config{Clock: fake, Threshold: 2, Debounce: time.Millisecond})

	f.OnUserScroll(Position{ContentHeight: 30, Offset: 19, ViewHeight: 10})
	assert.True(t, f.AutoFollow())
	f.OnUserScroll(Position{ContentHeight: 30, Offset: 18, ViewHeight: 10})
	assert.False(t, f.AutoFollow())

	// nil callback is tolerated
	f.OnUserScroll(Position{ContentHeight: 30, Offset: 20, ViewHeight: 10})
	fake.Advance(time.Second)
}
