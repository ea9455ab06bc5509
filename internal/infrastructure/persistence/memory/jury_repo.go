package memory

import (
	"context"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// JuryRepository stores defense juries.
type JuryRepository struct {
	mu     sync.RWMutex
	juries map[shared.PropositionID]*jury.Jury
}

// NewJuryRepository creates an empty repository.
func NewJuryRepository() *JuryRepository {
	return &JuryRepository{juries: make(map[shared.PropositionID]*jury.Jury)}
}

var _ jury.Repository = (*JuryRepository)(nil)

// Get implements jury.Repository.
func (r *JuryRepository) Get(_ context.Context, id shared.PropositionID) (*jury.Jury, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.juries[id]
	if !ok {
		return nil, jury.ErrJuryNotFound
	}
	return j.Clone(), nil
}

// Save implements jury.Repository.
func (r *JuryRepository) Save(_ context.Context, j *jury.Jury) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.juries[j.ID] = j.Clone()
	return nil
}
