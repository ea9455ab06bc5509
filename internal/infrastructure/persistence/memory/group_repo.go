package memory

import (
	"context"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// GroupRepository stores supervision groups.
type GroupRepository struct {
	mu     sync.RWMutex
	groups map[shared.PropositionID]*supervision.Group
}

// NewGroupRepository creates an empty repository.
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{groups: make(map[shared.PropositionID]*supervision.Group)}
}

var _ supervision.Repository = (*GroupRepository)(nil)

// Get implements supervision.Repository.
func (r *GroupRepository) Get(_ context.Context, id shared.PropositionID) (*supervision.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, supervision.ErrGroupNotFound
	}
	return g.Clone(), nil
}

// Save implements supervision.Repository.
func (r *GroupRepository) Save(_ context.Context, g *supervision.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.PropositionID] = g.Clone()
	return nil
}

// Delete implements supervision.Repository.
func (r *GroupRepository) Delete(_ context.Context, id shared.PropositionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, id)
	return nil
}

// SearchBySignatory implements supervision.Repository.
func (r *GroupRepository) SearchBySignatory(_ context.Context, person shared.PersonID) ([]*supervision.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*supervision.Group
	for _, g := range r.groups {
		if _, _, err := g.Signature(person); err == nil {
			out = append(out, g.Clone())
		}
	}
	return out, nil
}
