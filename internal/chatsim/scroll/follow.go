// Package scroll decides when a growing message list should be revealed
// automatically. It keeps the view pinned to the newest message until the
// user scrolls away, and stays out of the way until they come back.
package scroll

import (
	"sync"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim/clock"
)

const (
	// DefaultThreshold is the distance from the bottom, in display units,
	// within which the view counts as following.
	DefaultThreshold = 40

	// DefaultDebounce lets layout settle before scrolling.
	DefaultDebounce = 20 * time.Millisecond
)

// Position is a snapshot of the scroll container.
type Position struct {
	ContentHeight int // total height of the content
	Offset        int // distance scrolled from the top
	ViewHeight    int // height of the visible area
}

// DistanceFromBottom returns how far the visible area ends above the content end.
func (p Position) DistanceFromBottom() int {
	return p.ContentHeight - p.Offset - p.ViewHeight
}

// Config configures a Follower. Zero fields take defaults.
type Config struct {
	Threshold int
	Debounce  time.Duration
	Clock     clock.Clock
}

// Follower tracks whether the view follows new content. ScrollToBottom is
// invoked (from the clock's timer goroutine) when new content should be
// revealed.
type Follower struct {
	scrollToBottom func()
	threshold      int
	debounce       time.Duration
	clock          clock.Clock

	mu         sync.Mutex
	autoFollow bool
	pending    clock.Timer
	gen        uint64
}

// NewFollower returns a Follower that starts in auto-follow mode.
func NewFollower(scrollToBottom func(), cfg Config) *Follower {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	return &Follower{
		scrollToBottom: scrollToBottom,
		threshold:      cfg.Threshold,
		debounce:       cfg.Debounce,
		clock:          cfg.Clock,
		autoFollow:     true,
	}
}

// AutoFollow reports whether new content will be revealed.
func (f *Follower) AutoFollow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoFollow
}

// OnUserScroll records a user-initiated scroll. Leaving the bottom cancels a
// pending reveal; returning to it schedules one.
func (f *Follower) OnUserScroll(p Position) {
	f.mu.Lock()
	defer f.mu.Unlock()

	was := f.autoFollow
	f.autoFollow = p.DistanceFromBottom() < f.threshold
	switch {
	case !f.autoFollow:
		f.cancelLocked()
	case !was:
		f.scheduleLocked()
	}
}

// OnLogChanged schedules a reveal after the debounce if the view is
// following. A pending reveal is pushed back rather than duplicated.
func (f *Follower) OnLogChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.autoFollow {
		return
	}
	f.scheduleLocked()
}

// Stop cancels any pending reveal.
func (f *Follower) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked()
}

func (f *Follower) scheduleLocked() {
	f.cancelLocked()
	gen := f.gen
	f.pending = f.clock.AfterFunc(f.debounce, func() {
		f.fire(gen)
	})
}

func (f *Follower) cancelLocked() {
	f.gen++
	if f.pending != nil {
		f.pending.Stop()
		f.pending = nil
	}
}

func (f *Follower) fire(gen uint64) {
	f.mu.Lock()
	// A timer that was cancelled after it started firing carries a stale
	// generation.
	if gen != f.gen || !f.autoFollow {
		f.mu.Unlock()
		return
	}
	f.pending = nil
	f.mu.Unlock()

	if f.scrollToBottom != nil {
		f.scrollToBottom()
	}
}
