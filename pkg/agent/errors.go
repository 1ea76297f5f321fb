package agent

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound marks a run rejected because the backend does not
// recognize the session identity. Dispatch treats it as recoverable:
// the session is recreated and the run retried once.
var ErrSessionNotFound = errors.New("session not found")

// SessionError carries the rejected session identity.
type SessionError struct {
	SessionID string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %q not found", e.SessionID)
}

func (e *SessionError) Unwrap() error {
	return ErrSessionNotFound
}

// IsSessionNotFound reports whether err classifies as a rejected
// session identity anywhere in its chain.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
