package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps log entries per object in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[objectKey][]LogEntry
}

type objectKey struct {
	class string
	id    uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[objectKey][]LogEntry)}
}

// Append assigns the next version for the object and stores the entry.
func (s *InMemoryStore) Append(_ context.Context, entry *LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := objectKey{class: entry.ObjectClass, id: entry.ObjectID}
	entry.Version = len(s.entries[key]) + 1
	s.entries[key] = append(s.entries[key], *entry)
	return nil
}

// ListByObject returns the entries of one object ordered by version ascending.
func (s *InMemoryStore) ListByObject(_ context.Context, objectClass string, objectID uuid.UUID) ([]LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]LogEntry(nil), s.entries[objectKey{class: objectClass, id: objectID}]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
