package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// HistoryStore keeps the audit trail of every proposition.
type HistoryStore struct {
	mu      sync.RWMutex
	entries map[shared.PropositionID][]notification.Entry
}

// NewHistoryStore creates an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{entries: make(map[shared.PropositionID][]notification.Entry)}
}

var _ notification.History = (*HistoryStore)(nil)

// Record implements notification.History.
func (s *HistoryStore) Record(_ context.Context, e notification.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Tags = slices.Clone(e.Tags)
	s.entries[e.PropositionID] = append(s.entries[e.PropositionID], e)
	return nil
}

// List implements notification.History. Entries come in recording order.
func (s *HistoryStore) List(_ context.Context, id shared.PropositionID) ([]notification.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries[id]), nil
}
