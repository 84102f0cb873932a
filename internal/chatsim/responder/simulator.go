// Package responder simulates an assistant backend: every submitted user
// message gets exactly one canned reply after a fixed delay.
package responder

import (
	"context"
	"sync"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
	"go.uber.org/zap"
)

// Sink receives replies. It must ignore replies for sessions that no longer
// exist and report that with ok=false.
type Sink interface {
	AppendAssistantMessage(sessionID, text, model string) (chatsim.Message, bool)
}

// Reply describes the outcome of one submission.
type Reply struct {
	SessionID string
	Message   chatsim.Message
	Delivered bool // false when the target session was gone
}

// Config configures a Simulator.
type Config struct {
	Delay     time.Duration
	ReplyText string
	Clock     clock.Clock
	Logger    *zap.Logger

	// OnReply, if set, is called after every reply is resolved, on the
	// goroutine that fired the timer.
	OnReply func(Reply)
}

// Simulator schedules delayed replies into a Sink.
type Simulator struct {
	sink    Sink
	delay   time.Duration
	text    string
	clock   clock.Clock
	logger  *zap.Logger
	onReply func(Reply)

	mu      sync.Mutex
	pending int
	idle    chan struct{} // closed while pending == 0
}

// New returns a Simulator writing into sink. Zero fields of cfg take defaults.
func New(sink Sink, cfg Config) *Simulator {
	if cfg.Delay <= 0 {
		cfg.Delay = chatsim.DefaultReplyDelay
	}
	if cfg.ReplyText == "" {
		cfg.ReplyText = chatsim.DefaultReplyText
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	idle := make(chan struct{})
	close(idle)
	return &Simulator{
		sink:    sink,
		delay:   cfg.Delay,
		text:    cfg.ReplyText,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		onReply: cfg.OnReply,
		idle:    idle,
	}
}

// Submit schedules one reply for sessionID. The session id is captured now;
// the reply goes there even if another session is active when it fires.
// userText does not influence the reply.
func (s *Simulator) Submit(sessionID, userText, model string) {
	if model == "" {
		model = chatsim.DefaultModel
	}

	s.mu.Lock()
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++
	s.mu.Unlock()

	s.logger.Debug("reply scheduled",
		zap.String("session_id", sessionID),
		zap.String("model", model),
		zap.Int("user_text_len", len(userText)),
		zap.Duration("delay", s.delay))

	s.clock.AfterFunc(s.delay, func() {
		s.deliver(sessionID, model)
	})
}

func (s *Simulator) deliver(sessionID, model string) {
	defer s.done()

	m, ok := s.sink.AppendAssistantMessage(sessionID, s.text, model)
	if !ok {
		s.logger.Debug("reply dropped, session gone", zap.String("session_id", sessionID))
	}
	if s.onReply != nil {
		s.onReply(Reply{SessionID: sessionID, Message: m, Delivered: ok})
	}
}

func (s *Simulator) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
}

// Pending returns the number of replies not yet resolved.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Wait blocks until every outstanding reply has been resolved or ctx is done.
func (s *Simulator) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle := s.idle
		pending := s.pending
		s.mu.Unlock()
		if pending == 0 {
			return nil
		}

		select {
		case <-idle:
			// A Submit may have raced in after idle closed; loop to check.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Delay returns the configured reply delay.
func (s *Simulator) Delay() time.Duration {
	return s.delay
}
