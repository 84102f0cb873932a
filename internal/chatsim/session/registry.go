// Package session keeps the set of chat sessions, their message logs and the
// active-session pointer, and mirrors every change to a storage.Store.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
	"github.com/longkey1/chatsim/internal/chatsim/storage"
	"go.uber.org/zap"
)

// MinPrefixLength is the shortest id prefix Resolve accepts.
const MinPrefixLength = 4

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// Registry owns the sessions, their logs and the active session.
// All methods are safe for concurrent use; each mutation runs to completion
// under one lock and then persists what it changed.
type Registry struct {
	mu     sync.Mutex
	store  *storage.Store
	clock  clock.Clock
	logger *zap.Logger

	sessions []Session // newest first
	logs     map[string]*MessageLog
	activeID string
	dirty    changes

	// unsaved holds sessions whose last log write failed; their in-memory
	// log is newer than the stored one.
	unsaved map[string]struct{}
}

// changes records what persist must write.
type changes struct {
	sessions    bool
	active      bool
	logs        map[string]struct{}
	deletedLogs map[string]struct{}
}

func (c *changes) reset() {
	c.sessions = false
	c.active = false
	c.logs = make(map[string]struct{})
	c.deletedLogs = make(map[string]struct{})
}

// NewRegistry creates a registry backed by store and loads its persisted state.
func NewRegistry(store *storage.Store, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		clock:   clock.System{},
		logger:  zap.NewNop(),
		logs:    make(map[string]*MessageLog),
		unsaved: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.dirty.reset()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	r.persist()
	return r
}

// load rebuilds in-memory state from the store. Duplicate sessions, missing
// logs and a dangling active id are repaired. The caller holds r.mu.
func (r *Registry) load() {
	var stored []Session
	r.store.GetJSON(storage.KeySessions, &stored)

	seen := make(map[string]bool, len(stored))
	for _, s := range stored {
		if s.ID == "" || seen[s.ID] {
			r.dirty.sessions = true
			continue
		}
		seen[s.ID] = true
		r.sessions = append(r.sessions, s)

		log := NewMessageLog()
		var messages []chatsim.Message
		if r.store.GetJSON(storage.MessagesKey(s.ID), &messages) {
			r.loadLog(s.ID, log, messages)
		} else {
			r.dirty.logs[s.ID] = struct{}{}
		}
		r.logs[s.ID] = log
	}

	var active string
	if r.store.GetJSON(storage.KeyActiveSessionID, &active) {
		if _, ok := r.logs[active]; ok {
			r.activeID = active
		} else {
			r.logger.Warn("dropping unknown active session", zap.String("session_id", active))
			r.dirty.active = true
		}
	}

	r.logger.Debug("registry loaded",
		zap.Int("sessions", len(r.sessions)),
		zap.String("active_session_id", r.activeID))
}

// persist writes every value changed since the last call. Logs are written
// before the session list and deleted after it, so a stored session always
// has a stored log. The caller holds r.mu.
func (r *Registry) persist() {
	for id := range r.dirty.logs {
		log, ok := r.logs[id]
		if !ok {
			continue
		}
		if r.store.SetJSON(storage.MessagesKey(id), log.Messages()) {
			delete(r.unsaved, id)
		} else {
			r.unsaved[id] = struct{}{}
		}
	}
	if r.dirty.sessions {
		r.store.SetJSON(storage.KeySessions, r.sessionsCopy())
	}
	if r.dirty.active {
		if r.activeID == "" {
			r.store.Delete(storage.KeyActiveSessionID)
		} else {
			r.store.SetJSON(storage.KeyActiveSessionID, r.activeID)
		}
	}
	for id := range r.dirty.deletedLogs {
		r.store.Delete(storage.MessagesKey(id))
	}
	r.dirty.reset()
}

// loadLog replaces log with stored messages, reporting dropped records.
func (r *Registry) loadLog(id string, log *MessageLog, stored []chatsim.Message) {
	if dropped := log.Load(stored); dropped > 0 {
		r.logger.Warn("dropped invalid stored messages",
			zap.String("session_id", id),
			zap.Int("dropped", dropped),
			zap.Error(storage.ErrSerialization))
		r.dirty.logs[id] = struct{}{}
	}
}

// CreateSession adds a new empty session at the front and makes it active.
func (r *Registry) CreateSession() Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.createLocked()
	r.persist()
	return s
}

func (r *Registry) createLocked() Session {
	s := NewSession(len(r.sessions), r.clock.Now())
	r.sessions = append([]Session{s}, r.sessions...)
	r.logs[s.ID] = NewMessageLog()
	r.activeID = s.ID

	r.dirty.sessions = true
	r.dirty.active = true
	r.dirty.logs[s.ID] = struct{}{}
	delete(r.dirty.deletedLogs, s.ID)

	r.logger.Debug("session created",
		zap.String("session_id", s.ID),
		zap.String("title", s.Title))
	return s
}

// SelectSession makes id the active session and reloads its log from storage.
func (r *Registry) SelectSession(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log, ok := r.logs[id]
	if !ok {
		return &NotFoundError{Ref: id}
	}

	var stored []chatsim.Message
	_, unsaved := r.unsaved[id]
	if !unsaved && r.store.GetJSON(storage.MessagesKey(id), &stored) {
		r.loadLog(id, log, stored)
	} else {
		// Storage is missing or behind the in-memory copy; keep the copy
		// and try to write it back.
		r.dirty.logs[id] = struct{}{}
	}

	r.activeID = id
	r.dirty.active = true
	r.persist()

	r.logger.Debug("session selected",
		zap.String("session_id", id),
		zap.Int("messages", log.Len()))
	return nil
}

// DeleteSession removes id and its log. Deleting the active session clears
// the active pointer. Unknown ids are ignored.
func (r *Registry) DeleteSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteLocked(id) {
		r.persist()
	}
}

func (r *Registry) deleteLocked(id string) bool {
	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}
	r.sessions = append(r.sessions[:idx], r.sessions[idx+1:]...)
	delete(r.logs, id)
	delete(r.dirty.logs, id)
	delete(r.unsaved, id)
	r.dirty.deletedLogs[id] = struct{}{}
	r.dirty.sessions = true

	if r.activeID == id {
		r.activeID = ""
		r.dirty.active = true
	}

	r.logger.Debug("session deleted", zap.String("session_id", id))
	return true
}

// Clear deletes every session. It returns the number deleted.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		ids = append(ids, s.ID)
	}
	for _, id := range ids {
		r.deleteLocked(id)
	}
	r.persist()
	return len(ids)
}

// AppendUserMessage appends text as a user message to the active session,
// creating one first if none is active. It returns the id of the session the
// message went to, which is where the reply must go too.
func (r *Registry) AppendUserMessage(text string) (string, chatsim.Message, error) {
	if strings.TrimSpace(text) == "" {
		return "", chatsim.Message{}, ErrEmptyMessage
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	target := r.activeID
	if target == "" {
		target = r.createLocked().ID
	}

	m := chatsim.NewUserMessage(text, r.clock.Now())
	if err := r.appendLocked(target, m); err != nil {
		r.persist()
		return "", chatsim.Message{}, err
	}
	r.persist()
	return target, m, nil
}

// AppendAssistantMessage appends a reply to sessionID. It reports false and
// changes nothing when the session no longer exists.
func (r *Registry) AppendAssistantMessage(sessionID, text, model string) (chatsim.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(sessionID) < 0 {
		r.logger.Debug("discarding reply for missing session", zap.String("session_id", sessionID))
		return chatsim.Message{}, false
	}

	m := chatsim.NewAssistantMessage(text, model, r.clock.Now())
	if err := r.appendLocked(sessionID, m); err != nil {
		r.logger.Warn("failed to append reply", zap.String("session_id", sessionID), zap.Error(err))
		return chatsim.Message{}, false
	}
	r.persist()
	return m, true
}

func (r *Registry) appendLocked(id string, m chatsim.Message) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return &NotFoundError{Ref: id}
	}
	log := r.logs[id]
	if err := log.Append(m); err != nil {
		return fmt.Errorf("appending to session %s: %w", id, err)
	}
	r.sessions[idx].Touch(m)
	r.dirty.logs[id] = struct{}{}
	r.dirty.sessions = true
	return nil
}

// Sessions returns the sessions, newest first.
func (r *Registry) Sessions() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionsCopy()
}

// ActiveSessionID returns the active session id, or "" when none is active.
func (r *Registry) ActiveSessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// Active returns the active session.
func (r *Registry) Active() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx := r.indexOf(r.activeID); idx >= 0 {
		return r.sessions[idx], true
	}
	return Session{}, false
}

// Messages returns the log of the active session, empty when none is active.
func (r *Registry) Messages() []chatsim.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log, ok := r.logs[r.activeID]; ok {
		return log.Messages()
	}
	return []chatsim.Message{}
}

// Session returns the session with the given id.
func (r *Registry) Session(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx := r.indexOf(id); idx >= 0 {
		return r.sessions[idx], true
	}
	return Session{}, false
}

// MessagesOf returns the log of any session without selecting it.
func (r *Registry) MessagesOf(id string) ([]chatsim.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[id]
	if !ok {
		return nil, false
	}
	return log.Messages(), true
}

// Resolve finds a session by full id, unique id prefix (at least
// MinPrefixLength characters), "latest" for the newest session or "active"
// for the active one.
func (r *Registry) Resolve(ref string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref = strings.TrimSpace(ref)
	switch ref {
	case "active":
		if idx := r.indexOf(r.activeID); idx >= 0 {
			return r.sessions[idx], nil
		}
		return Session{}, &NotFoundError{Ref: "active"}
	case "latest":
		if len(r.sessions) == 0 {
			return Session{}, &NotFoundError{Ref: "latest"}
		}
		return r.sessions[0], nil
	}

	if idx := r.indexOf(ref); idx >= 0 {
		return r.sessions[idx], nil
	}

	if len(ref) < MinPrefixLength {
		return Session{}, fmt.Errorf("session ID prefix must be at least %d characters (got %d)", MinPrefixLength, len(ref))
	}

	var matches []Session
	for _, s := range r.sessions {
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return Session{}, &NotFoundError{Ref: ref}
	case 1:
		return matches[0], nil
	default:
		return Session{}, &AmbiguousIDError{Prefix: ref, Matches: matches}
	}
}

func (r *Registry) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, s := range r.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) sessionsCopy() []Session {
	out := make([]Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}
