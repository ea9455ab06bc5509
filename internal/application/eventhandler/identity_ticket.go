// Package eventhandler reacts to domain events by issuing further commands.
// Events are published after the aggregate is saved and may be delivered
// more than once, so every handler is idempotent.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uclouvain/admission-core/internal/application/bus"
	"github.com/uclouvain/admission-core/internal/application/command"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/pkg/retry"
)

// Dispatcher sends a command through the command bus.
type Dispatcher interface {
	Send(ctx context.Context, cmd bus.Command) (any, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY TICKET HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// IdentityTicketHandler asks for an identity ticket when a proposition of
// any context is submitted and when a manager refuses to merge a candidate
// with an existing person.
type IdentityTicketHandler struct {
	dispatcher Dispatcher
	retrier    *retry.Retrier
	logger     *slog.Logger
	timeout    time.Duration
}

// NewIdentityTicketHandler creates a new handler. retrier may be nil.
func NewIdentityTicketHandler(dispatcher Dispatcher, retrier *retry.Retrier, logger *slog.Logger) *IdentityTicketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if retrier == nil {
		retrier = retry.New(retry.Tickets)
	}
	return &IdentityTicketHandler{
		dispatcher: dispatcher,
		retrier:    retrier,
		logger:     logger.With("handler", "identity_ticket"),
		timeout:    30 * time.Second,
	}
}

// EventTypes lists the events the handler subscribes to.
func (h *IdentityTicketHandler) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventDoctoralPropositionSubmitted,
		shared.EventGeneralPropositionSubmitted,
		shared.EventContinuingPropositionSubmitted,
		shared.EventMergeRefused,
	}
}

// Subscribe registers the handler on every event it reacts to.
func (h *IdentityTicketHandler) Subscribe(sub shared.EventSubscriber) error {
	for _, t := range h.EventTypes() {
		if err := sub.Subscribe(t, h.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}
	return nil
}

// Handle processes one event.
func (h *IdentityTicketHandler) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	candidate := candidateOf(event)
	if candidate == "" {
		h.logger.Warn("event without candidate",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
		)
		return nil
	}

	h.logger.Info("requesting identity ticket",
		"event_type", event.EventType(),
		"proposition_id", event.AggregateID(),
		"candidate_id", candidate,
	)

	var created bool
	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		res, err := h.dispatcher.Send(ctx, command.RequestIdentityTicketCommand{
			CandidateID: shared.PersonID(candidate),
		})
		if err != nil {
			if shared.IsRetryable(err) {
				return retry.Retryable(err)
			}
			return err
		}
		if r, ok := res.(*command.RequestIdentityTicketResult); ok {
			created = r.Created
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to request identity ticket",
			"candidate_id", candidate,
			"error", err,
		)
		return fmt.Errorf("identity ticket for %s: %w", candidate, err)
	}

	h.logger.Debug("identity ticket handled",
		"candidate_id", candidate,
		"created", created,
	)
	return nil
}

// candidateOf reads the candidate from the payload so events decoded from a
// remote bus are handled like local ones.
func candidateOf(event shared.Event) string {
	return shared.PayloadString(event, "candidate_id")
}
