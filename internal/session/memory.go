package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/tradeops/config"
)

type memorySession struct {
	mu        sync.Mutex
	createdAt time.Time
	expiresAt time.Time
	requests  []time.Time
}

// InMemory is the default store: a mutex-guarded map with lazy expiry.
// The map lock covers structural mutations only; each session carries its
// own lock so one caller's prune-and-count never races with another of
// its requests, and sessions never contend with each other.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession

	ttl    time.Duration
	limit  int
	window time.Duration

	now func() time.Time // swapped out in tests
}

func NewInMemoryStore(cfg config.SessionConfig) *InMemory {
	return &InMemory{
		sessions: make(map[string]*memorySession),
		ttl:      cfg.TTL,
		limit:    cfg.RateLimit,
		window:   cfg.RateWindow,
		now:      time.Now,
	}
}

func (s *InMemory) Create(_ context.Context) (string, error) {
	id := uuid.NewString()
	now := s.now()
	s.mu.Lock()
	s.sessions[id] = &memorySession{
		createdAt: now,
		expiresAt: now.Add(s.ttl),
	}
	s.mu.Unlock()
	return id, nil
}

func (s *InMemory) Validate(_ context.Context, id string) bool {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	// valid through expiresAt inclusive; expired entries vanish on touch
	if s.now().After(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return false
	}
	return true
}

func (s *InMemory) RecordRequest(_ context.Context, id string) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	sess.mu.Lock()
	sess.requests = append(sess.requests, s.now())
	sess.mu.Unlock()
}

func (s *InMemory) IsRateLimited(_ context.Context, id string) bool {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return true
	}

	cutoff := s.now().Add(-s.window)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	pruneLocked(sess, cutoff)
	return len(sess.requests) >= s.limit
}

// Admit holds the session lock across prune, limit check and record, so
// two concurrent requests on one session can never both see budget.
func (s *InMemory) Admit(_ context.Context, id string) bool {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	now := s.now()
	cutoff := now.Add(-s.window)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	pruneLocked(sess, cutoff)
	if len(sess.requests) >= s.limit {
		return false
	}
	sess.requests = append(sess.requests, now)
	return true
}

// pruneLocked drops window entries at or before cutoff in one pass so the
// prune and any following count see the same window. Caller holds sess.mu.
func pruneLocked(sess *memorySession, cutoff time.Time) {
	kept := sess.requests[:0]
	for _, t := range sess.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	sess.requests = kept
}
