package store

import (
	"context"
	"sync"

	"github.com/platinummonkey/lattice/pkg/audit"
	"github.com/platinummonkey/lattice/pkg/hierarchy"
)

// MemoryStore is an in-process edge store. It keeps values in insertion
// order per (kind, context) partition and is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]string
}

// NewMemoryStore creates an empty in-memory edge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]string)}
}

// FetchEdges returns the stored values for a kind and context in insertion
// order. An unknown partition yields an empty slice.
func (s *MemoryStore) FetchEdges(ctx context.Context, kind hierarchy.Kind, contextID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := s.data[partitionKey(kind, contextID)]
	out := make([]string, len(values))
	copy(out, values)
	return out, nil
}

// ApplyMutation applies a batch of value mutations. Adding or replacing a
// value that is already present is a no-op; deleting an absent value is a
// no-op. The audit context is ignored.
func (s *MemoryStore) ApplyMutation(ctx context.Context, kind hierarchy.Kind, contextID string, batch []hierarchy.Mutation, ac *audit.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := partitionKey(kind, contextID)
	for _, m := range batch {
		switch m.Op {
		case hierarchy.MutationAdd, hierarchy.MutationReplace:
			if !contains(s.data[key], m.Value) {
				s.data[key] = append(s.data[key], m.Value)
			}
		case hierarchy.MutationDelete:
			s.data[key] = remove(s.data[key], m.Value)
		}
	}
	return nil
}

func partitionKey(kind hierarchy.Kind, contextID string) string {
	if contextID == "" {
		return kind.String()
	}
	return kind.String() + hierarchy.Separator + contextID
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func remove(values []string, value string) []string {
	out := values[:0]
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
