package confirmation

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	hash      string
	expiresAt time.Time
}

// MemoryStore is a process-local Store used in tests and when running
// without Redis. Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Issue(_ context.Context, username string) (string, error) {
	code := generateCode()
	hash, err := hashCode(code)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.entries[username] = memoryEntry{hash: hash, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return code, nil
}

func (s *MemoryStore) Verify(_ context.Context, username string, code string) (bool, error) {
	s.mu.Lock()
	entry, ok := s.entries[username]
	if ok && s.now().After(entry.expiresAt) {
		delete(s.entries, username)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	return compareCode(entry.hash, code), nil
}
