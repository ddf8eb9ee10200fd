package revocation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryStore is an in-process revocation set guarded by a read-write
// mutex. Reads take the shared lock, so concurrent Contains calls from
// request goroutines do not serialize against each other. Revocations do
// not survive a process restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	logger  *zap.Logger

	// now is replaceable in tests
	now func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		logger:  logger,
		now:     time.Now,
	}
}

// Add marks a key revoked until expiresAt. Adding an existing key keeps
// the later expiry; the entry count does not grow. Once Add returns the
// key is visible to Contains from any goroutine.
func (s *MemoryStore) Add(key string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.entries[key]; !ok || expiresAt.After(current) {
		s.entries[key] = expiresAt
	}
}

// Contains reports whether a key is revoked. Entries whose underlying
// token has expired on its own no longer count: verification rejects such
// tokens regardless of revocation.
func (s *MemoryStore) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiresAt, ok := s.entries[key]
	if !ok {
		return false
	}
	return !s.now().After(expiresAt)
}

// Len returns the current number of entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes entries whose underlying token has expired. It returns the
// number of entries dropped. Dropping an expired revocation is safe: the
// token it covered is rejected by the lifetime check anyway.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, expiresAt := range s.entries {
		if now.After(expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps the store on the given interval until the context is
// cancelled. Without it the set would grow without bound with logout
// volume over a long-lived process.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug("revocation store swept",
					zap.Int("removed", removed),
					zap.Int("remaining", s.Len()))
			}
		}
	}
}
