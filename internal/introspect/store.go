// Package introspect holds the tokens an operator has inspected this session.
package introspect

import (
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/warden/internal/domain"
)

// keyLength is how much of a token is kept as its key. The full token is never stored.
const keyLength = 12

// Entry is one inspected token
type Entry struct {
	Key         string
	Result      domain.Introspection
	InspectedAt time.Time
}

// Store is the set of inspected tokens. Add, Remove and Clear are its only mutators.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Key returns the truncated form of a token used to index the store
func Key(token string) string {
	r := []rune(token)
	if len(r) <= keyLength {
		return token
	}
	return string(r[:keyLength]) + "…"
}

// Add records an introspection result, replacing any earlier result for the same key
func (s *Store) Add(token string, result *domain.Introspection) Entry {
	e := Entry{Key: Key(token), InspectedAt: s.now()}
	if result != nil {
		e.Result = *result
	}

	s.mu.Lock()
	s.entries[e.Key] = e
	s.mu.Unlock()
	return e
}

// Remove drops one entry; it reports whether the key was present
func (s *Store) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Clear drops every entry
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
}

func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// List returns entries newest first
func (s *Store) List() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].InspectedAt.Equal(out[j].InspectedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].InspectedAt.After(out[j].InspectedAt)
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
