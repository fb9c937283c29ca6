// ABOUTME: Per-identity dialogue session state and TTL-based registry
// ABOUTME: Sessions are transient - abandoned dialogues expire in the background

package bot

import (
	"sync"
	"time"
)

// State identifies which question a dialogue is currently waiting on.
type State int

const (
	// Create scenario
	StateAwaitingReady State = iota
	StateAwaitingFirstName
	StateAwaitingLastName
	StateAwaitingEmailConfirm
	StateAwaitingRetryConfirm
	StateAwaitingCollisionRetry

	// Reset scenario
	StateAwaitingResetConfirm
)

// String returns a short name for logging.
func (s State) String() string {
	switch s {
	case StateAwaitingReady:
		return "awaiting_ready"
	case StateAwaitingFirstName:
		return "awaiting_first_name"
	case StateAwaitingLastName:
		return "awaiting_last_name"
	case StateAwaitingEmailConfirm:
		return "awaiting_email_confirm"
	case StateAwaitingRetryConfirm:
		return "awaiting_retry_confirm"
	case StateAwaitingCollisionRetry:
		return "awaiting_collision_retry"
	case StateAwaitingResetConfirm:
		return "awaiting_reset_confirm"
	default:
		return "unknown"
	}
}

// Session is the transient state of one in-flight dialogue. It is created
// when a scenario starts and discarded when the dialogue terminates.
// Nothing in here survives a process restart.
type Session struct {
	UserID string
	State  State

	// Accumulated answers for the create scenario
	FirstName string // normalized
	LastName  string // normalized
	Candidate string // proposed address

	// Email on record, for the reset scenario
	Email string

	// Consecutive unmatched answers at the current question
	Retries int

	LastActive time.Time
}

// SessionRegistry is an explicit per-identity session table. Conversations
// for distinct identities proceed independently; the registry only
// serializes map access, not dialogue processing.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	done     chan struct{}
	closed   bool
}

// NewSessionRegistry creates a registry whose sessions expire after ttl of
// inactivity. A background goroutine sweeps expired sessions.
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go r.cleanup()
	return r
}

// Get returns the active session for an identity, or nil. A returned
// session has its activity timestamp refreshed.
func (r *SessionRegistry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	if time.Since(sess.LastActive) > r.ttl {
		delete(r.sessions, userID)
		return nil
	}
	sess.LastActive = time.Now()
	return sess
}

// Put stores a session, replacing any existing one for the identity.
func (r *SessionRegistry) Put(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess.LastActive = time.Now()
	r.sessions[sess.UserID] = sess
}

// Delete terminates a dialogue by removing its session.
func (r *SessionRegistry) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
}

// Len reports the number of active sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// cleanup runs in a background goroutine, periodically removing expired sessions.
func (r *SessionRegistry) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runCleanup()
		case <-r.done:
			return
		}
	}
}

// runCleanup removes all expired sessions from the registry.
func (r *SessionRegistry) runCleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, sess := range r.sessions {
		if now.Sub(sess.LastActive) > r.ttl {
			delete(r.sessions, id)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		close(r.done)
		r.closed = true
	}
}
