package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// TechnicalTasks records the jobs requested by checklist transitions. The
// payment system consumes them out of band.
type TechnicalTasks struct {
	mu        sync.Mutex
	cancelled []shared.PropositionID
	logger    *slog.Logger
}

// NewTechnicalTasks creates a new TechnicalTasks.
func NewTechnicalTasks(logger *slog.Logger) *TechnicalTasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &TechnicalTasks{logger: logger.With("component", "technical_tasks")}
}

// CancelInitialApplicationFeePayment implements checklist.TechnicalTasks.
func (t *TechnicalTasks) CancelInitialApplicationFeePayment(ctx context.Context, propositionID shared.PropositionID) error {
	t.mu.Lock()
	t.cancelled = append(t.cancelled, propositionID)
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "application fee payment cancellation queued",
		"proposition_id", propositionID.String())
	return nil
}

// CancelledPayments lists the propositions whose payment was cancelled.
func (t *TechnicalTasks) CancelledPayments() []shared.PropositionID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]shared.PropositionID(nil), t.cancelled...)
}
