package service

import (
	"context"
	"log/slog"

	"github.com/uclouvain/admission-core/internal/domain/identity"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CIRCUIT-BROKEN ADAPTERS
// ══════════════════════════════════════════════════════════════════════════════

// LogStateChanges returns an OnStateChange callback that logs transitions.
func LogStateChanges(logger *slog.Logger) func(name string, from, to circuitbreaker.State) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	}
}

// BreakingNotifier stops calling a notifier that keeps failing.
type BreakingNotifier struct {
	next    notification.Notifier
	breaker *circuitbreaker.Breaker
}

// NewBreakingNotifier wraps next. A nil breaker uses the notifier preset.
func NewBreakingNotifier(next notification.Notifier, breaker *circuitbreaker.Breaker) *BreakingNotifier {
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.NotifierSettings(nil))
	}
	return &BreakingNotifier{next: next, breaker: breaker}
}

// Notify implements notification.Notifier.
func (n *BreakingNotifier) Notify(ctx context.Context, msg notification.Message) error {
	return n.breaker.Execute(ctx, func(ctx context.Context) error {
		return n.next.Notify(ctx, msg)
	})
}

// BreakingTicketService guards calls to the identity system.
type BreakingTicketService struct {
	next    identity.TicketService
	breaker *circuitbreaker.Breaker
}

var _ identity.TicketService = (*BreakingTicketService)(nil)

// NewBreakingTicketService wraps next. A nil breaker uses the identity preset.
func NewBreakingTicketService(next identity.TicketService, breaker *circuitbreaker.Breaker) *BreakingTicketService {
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.IdentitySettings(nil))
	}
	return &BreakingTicketService{next: next, breaker: breaker}
}

// HasTicket implements identity.TicketService.
func (s *BreakingTicketService) HasTicket(ctx context.Context, candidate shared.PersonID) (bool, error) {
	var has bool
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		has, err = s.next.HasTicket(ctx, candidate)
		return err
	})
	return has, err
}

// RequestTicket implements identity.TicketService.
func (s *BreakingTicketService) RequestTicket(ctx context.Context, candidate shared.PersonID) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.next.RequestTicket(ctx, candidate)
	})
}
