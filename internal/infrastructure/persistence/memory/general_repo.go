package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// GeneralRepository stores general and continuing education propositions.
type GeneralRepository struct {
	mu           sync.RWMutex
	propositions map[shared.PropositionID]*general.Proposition
	references   *ReferenceSequence
}

// NewGeneralRepository creates an empty repository. Pass the sequence of
// the doctoral repository to share references across contexts.
func NewGeneralRepository(references *ReferenceSequence) *GeneralRepository {
	if references == nil {
		references = NewReferenceSequence(DefaultReferenceBase)
	}
	return &GeneralRepository{
		propositions: make(map[shared.PropositionID]*general.Proposition),
		references:   references,
	}
}

var _ general.Repository = (*GeneralRepository)(nil)

// Get implements general.Repository.
func (r *GeneralRepository) Get(_ context.Context, id shared.PropositionID) (*general.Proposition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.propositions[id]
	if !ok {
		return nil, general.ErrPropositionNotFound
	}
	return p.Clone(), nil
}

// Save implements general.Repository.
func (r *GeneralRepository) Save(_ context.Context, p *general.Proposition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.propositions[p.ID] = p.Clone()
	return nil
}

// SearchByCandidate implements general.Repository.
func (r *GeneralRepository) SearchByCandidate(_ context.Context, candidate shared.PersonID) ([]*general.Proposition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*general.Proposition
	for _, p := range r.propositions {
		if p.CandidateID == candidate {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *general.Proposition) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// NextReference implements general.Repository.
func (r *GeneralRepository) NextReference(ctx context.Context) (int64, error) {
	return r.references.Next(ctx)
}
