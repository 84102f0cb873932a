package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by errors.Is for every lookup of an unknown session.
	ErrNotFound = errors.New("session not found")

	// ErrEmptyMessage is returned when a message has no text.
	ErrEmptyMessage = errors.New("message is empty")
)

// NotFoundError is returned when a session reference matches nothing
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.Ref)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousIDError is returned when multiple sessions match a prefix
type AmbiguousIDError struct {
	Prefix  string
	Matches []Session
}

func (e *AmbiguousIDError) Error() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Ambiguous session ID %q. Multiple matches found:", e.Prefix))
	for _, match := range e.Matches {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s)",
			match.GetShortID(),
			match.Title,
			match.LastTimestamp))
	}
	lines = append(lines, "")
	lines = append(lines, "Please use a longer prefix or run 'chatsim sessions list'.")
	return strings.Join(lines, "\n")
}
