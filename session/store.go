// Package session maps visitor session ids to their builder controllers.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/multibuilder/builder"
)

// Factory creates the controller for a new session id.
type Factory func(id string) *builder.Controller

type entry struct {
	ctrl     *builder.Controller
	lastSeen time.Time
}

// Store holds one controller per session and evicts idle ones.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ttl     time.Duration
	factory Factory
	now     func() time.Time
	log     *zap.Logger
}

// NewStore creates an empty store. Sessions idle longer than ttl are dropped
// by Evict.
func NewStore(ttl time.Duration, factory Factory, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.L()
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
		log:      logger.Named("session"),
	}
}

// Get returns the controller for id and marks the session as used.
func (s *Store) Get(id string) (*builder.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctrl, true
}

// Create starts a new session with a fresh id.
func (s *Store) Create() (string, *builder.Controller) {
	id := uuid.NewString()
	ctrl := s.factory(id)

	s.mu.Lock()
	s.sessions[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	s.mu.Unlock()

	s.log.Debug("session created", zap.String("session", id))
	return id, ctrl
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Evict drops every idle session and returns how many were removed.
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.log.Info("evicted idle sessions", zap.Int("count", n), zap.Int("live", s.Len()))
			}
		}
	}
}

func (s *Store) expired(e *entry) bool {
	return s.now().Sub(e.lastSeen) > s.ttl
}
