package settings

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"studioadmin/models"
)

// ErrTokenInvalid is returned when a rollback token is absent, owned by a
// different admin, already consumed, or past expiry.
var ErrTokenInvalid = errors.New("rollback token invalid")

// rollbackEntry captures the settings document as it was immediately
// before one mutating operation.
type rollbackEntry struct {
	adminID   string
	snapshot  *models.UserSettings
	expiresAt time.Time
}

// RollbackStore holds outstanding undo tokens in process memory. Tokens
// are single-use and expire after the configured TTL; a process restart
// invalidates all of them. The store owns a background sweep goroutine
// started by NewRollbackStore and stopped by Close.
type RollbackStore struct {
	mu     sync.Mutex
	tokens map[string]*rollbackEntry
	ttl    time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRollbackStore creates the token store and starts its sweep loop.
func NewRollbackStore(ttl, sweepInterval time.Duration) *RollbackStore {
	s := &RollbackStore{
		tokens: make(map[string]*rollbackEntry),
		ttl:    ttl,
		stop:   make(chan struct{}),
	}

	go s.sweepLoop(sweepInterval)

	return s
}

// Create stores a snapshot and returns an opaque token for it.
func (s *RollbackStore) Create(adminID string, snapshot *models.UserSettings) string {
	token := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = &rollbackEntry{
		adminID:   adminID,
		snapshot:  snapshot.Clone(),
		expiresAt: time.Now().Add(s.ttl),
	}
	return token
}

// Consume returns the snapshot for a token and deletes it. Expired tokens
// are evicted on lookup using the same comparison the sweep uses, so both
// paths agree at the boundary.
func (s *RollbackStore) Consume(token, adminID string) (*models.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.tokens[token]
	if !exists {
		return nil, ErrTokenInvalid
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return nil, ErrTokenInvalid
	}
	if entry.adminID != adminID {
		return nil, ErrTokenInvalid
	}

	delete(s.tokens, token)
	return entry.snapshot.Clone(), nil
}

// Len returns the number of outstanding tokens.
func (s *RollbackStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// Close stops the sweep goroutine. Outstanding tokens are left in place;
// the store is still usable after Close.
func (s *RollbackStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// sweepLoop periodically evicts expired tokens
func (s *RollbackStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep removes expired tokens
func (s *RollbackStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, token)
		}
	}
}
