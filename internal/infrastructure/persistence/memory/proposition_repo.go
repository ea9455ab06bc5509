package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// PropositionRepository stores doctoral propositions.
type PropositionRepository struct {
	mu           sync.RWMutex
	propositions map[shared.PropositionID]*proposition.Proposition
	references   *ReferenceSequence
}

// NewPropositionRepository creates an empty repository. A nil sequence
// starts at DefaultReferenceBase.
func NewPropositionRepository(references *ReferenceSequence) *PropositionRepository {
	if references == nil {
		references = NewReferenceSequence(DefaultReferenceBase)
	}
	return &PropositionRepository{
		propositions: make(map[shared.PropositionID]*proposition.Proposition),
		references:   references,
	}
}

var _ proposition.Repository = (*PropositionRepository)(nil)

// Get implements proposition.Repository.
func (r *PropositionRepository) Get(_ context.Context, id shared.PropositionID) (*proposition.Proposition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.propositions[id]
	if !ok {
		return nil, proposition.ErrPropositionNotFound
	}
	return p.Clone(), nil
}

// Save implements proposition.Repository.
func (r *PropositionRepository) Save(_ context.Context, p *proposition.Proposition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.propositions[p.ID] = p.Clone()
	return nil
}

// Delete implements proposition.Repository.
func (r *PropositionRepository) Delete(_ context.Context, id shared.PropositionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.propositions, id)
	return nil
}

// SearchByCandidate implements proposition.Repository. Results are ordered
// by creation date.
func (r *PropositionRepository) SearchByCandidate(_ context.Context, candidate shared.PersonID) ([]*proposition.Proposition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*proposition.Proposition
	for _, p := range r.propositions {
		if p.CandidateID == candidate {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *proposition.Proposition) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// CountActiveByCandidate implements proposition.Repository.
func (r *PropositionRepository) CountActiveByCandidate(_ context.Context, candidate shared.PersonID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.propositions {
		if p.CandidateID == candidate && p.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

// NextReference implements proposition.Repository.
func (r *PropositionRepository) NextReference(ctx context.Context) (int64, error) {
	return r.references.Next(ctx)
}
