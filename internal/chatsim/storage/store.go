// Package storage persists opaque values by key. Backends report failures as
// errors; Store wraps a backend so that callers never see them.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Persisted key layout.
const (
	KeySessions        = "sessions"
	KeyActiveSessionID = "active_session_id"
	messagesKeyPrefix  = "messages_"
)

// MessagesKey returns the key holding the message log of sessionID.
func MessagesKey(sessionID string) string {
	return messagesKeyPrefix + sessionID
}

var (
	// ErrKeyNotFound is returned by backends when a key has no value.
	ErrKeyNotFound = errors.New("key not found")

	// ErrStorageUnavailable marks a read, write or delete that failed in the backend.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSerialization marks a value that could not be encoded or decoded.
	ErrSerialization = errors.New("serialization error")
)

// Backend is durable key-value storage of whole values.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
	Name() string
}

// Store is a fail-soft view over a Backend. Failures are logged and turned
// into no-ops: Get reports absent, Set and Delete report false.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore wraps backend. A nil logger disables logging.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger.With(zap.String("backend", backend.Name())),
	}
}

// Backend returns the wrapped backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Get returns the value stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	value, err := s.backend.Get(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Warn("read failed",
				zap.String("key", key),
				zap.Error(fmt.Errorf("%w: %w", ErrStorageUnavailable, err)))
		}
		return nil, false
	}
	return value, true
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value []byte) bool {
	if err := s.backend.Set(key, value); err != nil {
		s.logger.Warn("write failed",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %w", ErrStorageUnavailable, err)))
		return false
	}
	return true
}

// Delete removes key. Deleting a missing key succeeds.
func (s *Store) Delete(key string) bool {
	if err := s.backend.Delete(key); err != nil && !errors.Is(err, ErrKeyNotFound) {
		s.logger.Warn("delete failed",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %w", ErrStorageUnavailable, err)))
		return false
	}
	return true
}

// GetJSON decodes the value under key into v. Corrupt payloads are logged and
// reported as absent.
func (s *Store) GetJSON(key string, v any) bool {
	data, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding corrupt value",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %w", ErrSerialization, err)))
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key.
func (s *Store) SetJSON(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("encode failed",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %w", ErrSerialization, err)))
		return false
	}
	return s.Set(key, data)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
