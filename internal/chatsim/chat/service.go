// Package chat is the entry point used by presentation layers. It funnels
// every operation through one session registry and triggers a simulated
// reply for each user message.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
	"github.com/longkey1/chatsim/internal/chatsim/responder"
	"github.com/longkey1/chatsim/internal/chatsim/session"
	"go.uber.org/zap"
)

// Config configures a Service. Zero fields take defaults.
type Config struct {
	Models     []string
	Model      string
	ReplyDelay time.Duration
	ReplyText  string
	Clock      clock.Clock
	Logger     *zap.Logger
	OnReply    func(responder.Reply)
}

// Service combines the session registry and the response simulator.
type Service struct {
	registry  *session.Registry
	simulator *responder.Simulator
	models    []string
	logger    *zap.Logger

	mu    sync.Mutex
	model string
}

// New returns a Service over registry.
func New(registry *session.Registry, cfg Config) (*Service, error) {
	if len(cfg.Models) == 0 {
		cfg.Models = chatsim.DefaultModels
	}
	if cfg.Model == "" {
		cfg.Model = chatsim.DefaultModel
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	model, err := chatsim.ValidateModel(cfg.Model, cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("invalid default model: %w", err)
	}

	sim := responder.New(registry, responder.Config{
		Delay:     cfg.ReplyDelay,
		ReplyText: cfg.ReplyText,
		Clock:     cfg.Clock,
		Logger:    cfg.Logger,
		OnReply:   cfg.OnReply,
	})

	return &Service{
		registry:  registry,
		simulator: sim,
		models:    append([]string(nil), cfg.Models...),
		logger:    cfg.Logger,
		model:     model,
	}, nil
}

// Registry returns the underlying registry for read access.
func (s *Service) Registry() *session.Registry {
	return s.registry
}

// Send appends text to the active session (creating one if needed) and
// schedules the simulated reply for that session. The user message is
// persisted before the reply is scheduled.
func (s *Service) Send(text string) (string, chatsim.Message, error) {
	sessionID, m, err := s.registry.AppendUserMessage(text)
	if err != nil {
		return "", chatsim.Message{}, err
	}
	s.simulator.Submit(sessionID, text, s.Model())
	return sessionID, m, nil
}

// CreateSession starts a new session and makes it active.
func (s *Service) CreateSession() session.Session {
	return s.registry.CreateSession()
}

// SelectSession makes id the active session.
func (s *Service) SelectSession(id string) error {
	return s.registry.SelectSession(id)
}

// DeleteSession removes id. Pending replies for it are dropped on arrival.
func (s *Service) DeleteSession(id string) {
	s.registry.DeleteSession(id)
}

// Sessions returns the sessions, newest first.
func (s *Service) Sessions() []session.Session {
	return s.registry.Sessions()
}

// ActiveSessionID returns the active session id or "".
func (s *Service) ActiveSessionID() string {
	return s.registry.ActiveSessionID()
}

// Messages returns the active session's log.
func (s *Service) Messages() []chatsim.Message {
	return s.registry.Messages()
}

// Model returns the model tagged on new replies.
func (s *Service) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SelectModel changes the model tagged on replies to later messages.
func (s *Service) SelectModel(model string) error {
	model, err := chatsim.ValidateModel(model, s.models)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	s.logger.Debug("model selected", zap.String("model", model))
	return nil
}

// Models lists the selectable models.
func (s *Service) Models() []chatsim.ModelInfo {
	return chatsim.ListModels(s.models, s.Model())
}

// Pending returns the number of replies still in flight.
func (s *Service) Pending() int {
	return s.simulator.Pending()
}

// Wait blocks until every in-flight reply has been resolved.
func (s *Service) Wait(ctx context.Context) error {
	return s.simulator.Wait(ctx)
}

// ReplyDelay returns the simulated reply delay.
func (s *Service) ReplyDelay() time.Duration {
	return s.simulator.Delay()
}
