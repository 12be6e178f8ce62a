package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session limits applied when no option overrides them.
const (
	DefaultSessionIdleTTL = 30 * time.Minute
	DefaultMaxSessions    = 1024
)

type session struct {
	builder  *Builder
	lastUsed time.Time
}

// Sessions keeps builder sessions keyed by a random id so transports can
// address them across requests. Idle sessions expire and the oldest one is
// evicted once the cap is reached.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  func() *Builder
	idleTTL  time.Duration
	max      int
	clock    Clock
}

// SessionOption customizes a Sessions registry.
type SessionOption func(*Sessions)

// WithSessionIdleTTL sets how long an untouched session survives. Zero or
// negative disables expiry.
func WithSessionIdleTTL(ttl time.Duration) SessionOption {
	return func(s *Sessions) {
		s.idleTTL = ttl
	}
}

// WithMaxSessions caps the number of open sessions. Zero or negative
// removes the cap.
func WithMaxSessions(n int) SessionOption {
	return func(s *Sessions) {
		s.max = n
	}
}

// WithSessionClock overrides the clock used for idle tracking.
func WithSessionClock(clock Clock) SessionOption {
	return func(s *Sessions) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSessions builds a registry that creates builders with factory.
func NewSessions(factory func() *Builder, opts ...SessionOption) *Sessions {
	s := &Sessions{
		sessions: map[string]*session{},
		factory:  factory,
		idleTTL:  DefaultSessionIdleTTL,
		max:      DefaultMaxSessions,
		clock:    systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session and loads the saved configuration list.
func (s *Sessions) Create(ctx context.Context) (string, *Builder, error) {
	builder := s.factory()
	if err := builder.Refresh(ctx); err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.expireLocked(now)
	for s.max > 0 && len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}
	s.sessions[id] = &session{builder: builder, lastUsed: now}
	return id, builder, nil
}

// Get returns the builder for a session id and marks it as used.
func (s *Sessions) Get(id string) (*Builder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.clock()
	if s.expired(entry, now) {
		delete(s.sessions, id)
		return nil, false
	}
	entry.lastUsed = now
	return entry.builder, true
}

// Close discards a session.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of open sessions, expired ones included until the
// next Create or Get prunes them.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) expired(entry *session, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(entry.lastUsed) >= s.idleTTL
}

func (s *Sessions) expireLocked(now time.Time) {
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *Sessions) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range s.sessions {
		if oldestID == "" || entry.lastUsed.Before(oldest) {
			oldestID, oldest = id, entry.lastUsed
		}
	}
	delete(s.sessions, oldestID)
}
