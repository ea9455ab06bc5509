package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ExamRepository stores confirmation exams.
type ExamRepository struct {
	mu    sync.RWMutex
	exams map[confirmation.ExamID]*confirmation.Exam
	order []confirmation.ExamID
}

// NewExamRepository creates an empty repository.
func NewExamRepository() *ExamRepository {
	return &ExamRepository{exams: make(map[confirmation.ExamID]*confirmation.Exam)}
}

var _ confirmation.Repository = (*ExamRepository)(nil)

// Get implements confirmation.Repository.
func (r *ExamRepository) Get(_ context.Context, id confirmation.ExamID) (*confirmation.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exams[id]
	if !ok {
		return nil, confirmation.ErrExamNotFound
	}
	return e.Clone(), nil
}

// Save implements confirmation.Repository.
func (r *ExamRepository) Save(_ context.Context, e *confirmation.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exams[e.ID]; !ok {
		r.order = append(r.order, e.ID)
	}
	r.exams[e.ID] = e.Clone()
	return nil
}

// SearchByDoctorate implements confirmation.Repository. The last planned
// exam comes first.
func (r *ExamRepository) SearchByDoctorate(_ context.Context, id shared.PropositionID) ([]*confirmation.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*confirmation.Exam
	for _, eid := range slices.Backward(r.order) {
		if e := r.exams[eid]; e.DoctorateID == id {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}
