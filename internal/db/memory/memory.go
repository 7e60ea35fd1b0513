package memory

import (
	"context"
	"sync"
	"time"

	"github.com/otakulab/anirec/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store is an in-process db.Store used when no cache backend is configured.
// TTLs are honored lazily on read.
type Store struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewStore creates an empty in-process store.
func NewStore() *Store {
	return &Store{items: make(map[string]entry), now: time.Now}
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a value at the given key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.put(key, value, time.Time{})
	return nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.put(key, value, s.now().Add(ttl))
	return nil
}

// Del removes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close drops all entries.
func (s *Store) Close() {
	s.mu.Lock()
	s.items = make(map[string]entry)
	s.mu.Unlock()
}

// WaitForReady is immediate for an in-process store.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

func (s *Store) put(key string, value []byte, expiresAt time.Time) {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.items[key] = entry{value: v, expiresAt: expiresAt}
	s.mu.Unlock()
}
