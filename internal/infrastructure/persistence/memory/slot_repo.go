package memory

import (
	"context"
	"sync"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// SlotRepository stores document slots in insertion order.
type SlotRepository struct {
	mu    sync.RWMutex
	slots map[document.SlotID]*document.Slot
	order []document.SlotID
}

// NewSlotRepository creates an empty repository.
func NewSlotRepository() *SlotRepository {
	return &SlotRepository{slots: make(map[document.SlotID]*document.Slot)}
}

var _ document.Repository = (*SlotRepository)(nil)

// Get implements document.Repository.
func (r *SlotRepository) Get(_ context.Context, id document.SlotID) (*document.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, document.ErrSlotNotFound
	}
	return s.Clone(), nil
}

// Save implements document.Repository.
func (r *SlotRepository) Save(_ context.Context, s *document.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.slots[s.ID] = s.Clone()
	return nil
}

// Delete implements document.Repository.
func (r *SlotRepository) Delete(_ context.Context, id document.SlotID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return nil
	}
	delete(r.slots, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// SearchByProposition implements document.Repository.
func (r *SlotRepository) SearchByProposition(_ context.Context, id shared.PropositionID) ([]*document.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*document.Slot
	for _, sid := range r.order {
		if sid.PropositionID == id {
			out = append(out, r.slots[sid].Clone())
		}
	}
	return out, nil
}

// SearchOverdue implements document.Repository.
func (r *SlotRepository) SearchOverdue(_ context.Context, now time.Time) ([]*document.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*document.Slot
	for _, sid := range r.order {
		if s := r.slots[sid]; s.IsOverdue(now) {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}
