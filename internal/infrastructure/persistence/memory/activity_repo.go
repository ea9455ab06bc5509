package memory

import (
	"context"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/training"
)

// ActivityRepository stores doctoral training activities.
type ActivityRepository struct {
	mu         sync.RWMutex
	activities map[training.ActivityID]*training.Activity
	order      []training.ActivityID
}

// NewActivityRepository creates an empty repository.
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{activities: make(map[training.ActivityID]*training.Activity)}
}

var _ training.Repository = (*ActivityRepository)(nil)

// Get implements training.Repository.
func (r *ActivityRepository) Get(_ context.Context, id training.ActivityID) (*training.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.activities[id]
	if !ok {
		return nil, training.ErrActivityNotFound
	}
	return a.Clone(), nil
}

// GetMany implements training.Repository.
func (r *ActivityRepository) GetMany(_ context.Context, ids []training.ActivityID) ([]*training.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*training.Activity, 0, len(ids))
	for _, id := range ids {
		a, ok := r.activities[id]
		if !ok {
			return nil, training.ErrActivityNotFound.Withf("%s", id)
		}
		out = append(out, a.Clone())
	}
	return out, nil
}

// Save implements training.Repository.
func (r *ActivityRepository) Save(_ context.Context, a *training.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[a.ID]; !ok {
		r.order = append(r.order, a.ID)
	}
	r.activities[a.ID] = a.Clone()
	return nil
}

// Delete implements training.Repository. Sub-activities go with their parent.
func (r *ActivityRepository) Delete(_ context.Context, id training.ActivityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	for _, o := range r.order {
		a := r.activities[o]
		if o == id || (a.ParentID != nil && *a.ParentID == id) {
			delete(r.activities, o)
			continue
		}
		kept = append(kept, o)
	}
	r.order = kept
	return nil
}

// SearchByParent implements training.Repository.
func (r *ActivityRepository) SearchByParent(_ context.Context, parent training.ActivityID) ([]*training.Activity, error) {
	return r.filter(func(a *training.Activity) bool { return a.ParentID != nil && *a.ParentID == parent }), nil
}

// SearchByDoctorate implements training.Repository.
func (r *ActivityRepository) SearchByDoctorate(_ context.Context, id shared.PropositionID) ([]*training.Activity, error) {
	return r.filter(func(a *training.Activity) bool { return a.DoctorateID == id }), nil
}

func (r *ActivityRepository) filter(keep func(*training.Activity) bool) []*training.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*training.Activity
	for _, id := range r.order {
		if a := r.activities[id]; keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}
