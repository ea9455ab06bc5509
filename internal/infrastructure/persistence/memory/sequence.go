package memory

import (
	"context"
	"sync/atomic"

	"github.com/uclouvain/admission-core/internal/domain/proposition"
)

// DefaultReferenceBase is the first reference handed out.
const DefaultReferenceBase = proposition.ReferenceBase

// ReferenceSequence hands out strictly increasing submission references.
// One sequence is shared by every admission context.
type ReferenceSequence struct {
	next atomic.Int64
}

// NewReferenceSequence creates a sequence whose first value is base.
func NewReferenceSequence(base int64) *ReferenceSequence {
	s := &ReferenceSequence{}
	s.next.Store(base)
	return s
}

// Next returns the next reference.
func (s *ReferenceSequence) Next(_ context.Context) (int64, error) {
	return s.next.Add(1) - 1, nil
}
