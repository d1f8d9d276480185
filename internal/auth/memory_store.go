// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory with periodic expiry cleanup.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
	janitor  *janitor
}

// NewMemoryStore creates a store. cleanupInterval <= 0 disables the janitor;
// expired sessions are still rejected by Get.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
	if cleanupInterval > 0 {
		s.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
			done:     make(chan struct{}),
		}
		go s.janitor.run(s)
	}
	return s
}

// Create implements SessionStore.
func (s *MemoryStore) Create(_ context.Context, p *Principal, ttl time.Duration) (Session, error) {
	sess, err := newSession(p, ttl, s.now())
	if err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Get implements SessionStore.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.Expired(s.now()) {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Delete implements SessionStore. Deleting an unknown id is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// deleteExpired removes all expired sessions and returns how many were removed.
func (s *MemoryStore) deleteExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			count++
		}
	}
	return count
}

// Close stops the background cleanup goroutine.
func (s *MemoryStore) Close() error {
	if s.janitor != nil {
		s.janitor.shutdown()
	}
	return nil
}

// janitor performs periodic cleanup of expired sessions.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func (j *janitor) run(s *MemoryStore) {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

func (j *janitor) shutdown() {
	j.once.Do(func() { close(j.stop) })
	<-j.done
}
