// Package session owns the process-wide mapping from user identities to
// backend session identities. The mapping is in-memory only and resets
// on restart.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrEmptyUser is returned when a caller passes an empty user identity.
var ErrEmptyUser = errors.New("user identity must not be empty")

// Backend is notified when the registry mints a session, so the engine
// recognizes the identity before the first run.
type Backend interface {
	CreateSession(ctx context.Context, userID, sessionID string) error
}

// Hooks observes registry lifecycle events, one call per mint or
// removal. Implementations must be safe for concurrent use.
type Hooks interface {
	SessionCreated()
	SessionsRemoved(n int)
}

type entry struct {
	sessionID string
	createdAt time.Time
	lastUsed  time.Time
}

// Registry maps each user to their currently valid session identity,
// creating sessions lazily. At most one entry exists per user; a
// recreated session supersedes the old identity, which must not be
// reused.
//
// The map itself is lock-protected, but resolve-then-create is not
// atomic across the backend call: two concurrent dispatches for the same
// user can both mint, and the later write wins. That is an accepted
// limitation — the cost is a duplicate session, not corruption.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	gens    map[string]int

	backend Backend
	hooks   Hooks
	logger  zerolog.Logger
}

// NewRegistry creates an empty registry. backend may be nil when no
// engine needs to learn about minted sessions (tests).
func NewRegistry(backend Backend, logger zerolog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		gens:    make(map[string]int),
		backend: backend,
		logger:  logger.With().Str("module", "session").Logger(),
	}
}

// SetHooks installs lifecycle hooks. Call before the registry is shared
// between goroutines.
func (r *Registry) SetHooks(h Hooks) {
	r.hooks = h
}

// ResolveOrCreate returns the user's current session identity, minting
// and registering a fresh one when none exists. Identities derive
// deterministically from the user identity plus a per-user generation
// counter, so a recreated session is always distinct from the one it
// supersedes.
func (r *Registry) ResolveOrCreate(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyUser
	}

	r.mu.Lock()
	if e, ok := r.entries[userID]; ok {
		e.lastUsed = time.Now()
		id := e.sessionID
		r.mu.Unlock()
		r.logger.Debug().Str("user_id", userID).Str("session_id", id).Msg("using existing session")
		return id, nil
	}
	r.gens[userID]++
	gen := r.gens[userID]
	r.mu.Unlock()

	sessionID := mintSessionID(userID, gen)
	if r.backend != nil {
		if err := r.backend.CreateSession(ctx, userID, sessionID); err != nil {
			return "", fmt.Errorf("create backend session: %w", err)
		}
	}

	now := time.Now()
	r.mu.Lock()
	r.entries[userID] = &entry{sessionID: sessionID, createdAt: now, lastUsed: now}
	r.mu.Unlock()

	if r.hooks != nil {
		r.hooks.SessionCreated()
	}
	r.logger.Info().Str("user_id", userID).Str("session_id", sessionID).Msg("new session created")
	return sessionID, nil
}

// Invalidate removes the user's session mapping. Idempotent; a no-op
// when no mapping exists.
func (r *Registry) Invalidate(userID string) {
	r.mu.Lock()
	_, existed := r.entries[userID]
	delete(r.entries, userID)
	r.mu.Unlock()
	if existed {
		if r.hooks != nil {
			r.hooks.SessionsRemoved(1)
		}
		r.logger.Info().Str("user_id", userID).Msg("session invalidated")
	}
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// SweepIdle invalidates sessions unused for longer than maxIdle and
// returns how many were removed. Used by the optional scheduled sweep;
// never called in the default configuration.
func (r *Registry) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	removed := 0
	for userID, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, userID)
			removed++
		}
	}
	r.mu.Unlock()

	if removed > 0 {
		if r.hooks != nil {
			r.hooks.SessionsRemoved(removed)
		}
		r.logger.Info().Int("removed", removed).Dur("max_idle", maxIdle).Msg("idle sessions swept")
	}
	return removed
}

func mintSessionID(userID string, gen int) string {
	if gen <= 1 {
		return "session_" + userID
	}
	return fmt.Sprintf("session_%s_%d", userID, gen)
}
