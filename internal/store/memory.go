package store

import (
	"context"
	"sync"
	"time"
)

// MemoryContextStore is the in-process ContextStore used when redis is
// not configured. Expiry is checked lazily on read; Sweep handles
// bounded memory.
type MemoryContextStore struct {
	mu      sync.RWMutex
	entries map[string]ContextEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryContextStore creates an in-memory context cache with the
// given TTL.
func NewMemoryContextStore(ttl time.Duration) *MemoryContextStore {
	return &MemoryContextStore{
		entries: make(map[string]ContextEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put upserts the entry for its conversation key.
func (s *MemoryContextStore) Put(_ context.Context, entry ContextEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.mu.Lock()
	s.entries[entry.ConversationKey] = entry
	s.mu.Unlock()
	return nil
}

// Get returns the non-expired entry for the key, or nil on a miss.
func (s *MemoryContextStore) Get(_ context.Context, key string) (*ContextEntry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.now().Sub(entry.CreatedAt) >= s.ttl {
		return nil, nil
	}
	e := entry
	return &e, nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *MemoryContextStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, entry := range s.entries {
		if now.Sub(entry.CreatedAt) >= s.ttl {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

// MemoryPendingStore is the in-process PendingStore counterpart.
type MemoryPendingStore struct {
	mu      sync.Mutex
	actions map[string]PendingAction
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryPendingStore creates an in-memory pending-action store with
// the given TTL.
func NewMemoryPendingStore(ttl time.Duration) *MemoryPendingStore {
	return &MemoryPendingStore{
		actions: make(map[string]PendingAction),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Save upserts the pending action for the key and resets its TTL.
func (s *MemoryPendingStore) Save(_ context.Context, key, actionKind, originalMessage string) error {
	s.mu.Lock()
	s.actions[key] = PendingAction{
		ConversationKey: key,
		ActionKind:      actionKind,
		OriginalMessage: originalMessage,
		CreatedAt:       s.now(),
	}
	s.mu.Unlock()
	return nil
}

// Peek returns the non-expired pending action without removing it.
func (s *MemoryPendingStore) Peek(_ context.Context, key string) (*PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.actions[key]
	if !ok {
		return nil, nil
	}
	if s.now().Sub(action.CreatedAt) >= s.ttl {
		delete(s.actions, key)
		return nil, nil
	}
	a := action
	return &a, nil
}

// Consume removes and returns the non-expired pending action.
func (s *MemoryPendingStore) Consume(_ context.Context, key string) (*PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.actions[key]
	if !ok {
		return nil, nil
	}
	delete(s.actions, key)
	if s.now().Sub(action.CreatedAt) >= s.ttl {
		return nil, nil
	}
	a := action
	return &a, nil
}

// Sweep removes expired pending actions and returns how many were dropped.
func (s *MemoryPendingStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, action := range s.actions {
		if now.Sub(action.CreatedAt) >= s.ttl {
			delete(s.actions, key)
			dropped++
		}
	}
	return dropped
}
