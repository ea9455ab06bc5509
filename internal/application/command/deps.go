// Package command contains write operations (CQRS - Commands). Every
// handler loads its aggregates, runs the domain operation, saves, and only
// then publishes events, records history and sends notifications.
package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Effects groups the side effects run after a successful save.
type Effects struct {
	Notifier  notification.Notifier
	History   notification.History
	Publisher shared.EventPublisher
	Clock     shared.Clock
	Logger    *slog.Logger
}

func (e *Effects) now() time.Time {
	return shared.ClockOrSystem(e.Clock).Now()
}

func (e *Effects) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// notify sends a message. Delivery failures are logged and never returned.
func (e *Effects) notify(ctx context.Context, msg notification.Message) {
	if e.Notifier == nil || len(msg.Recipients) == 0 {
		return
	}
	if err := e.Notifier.Notify(ctx, msg); err != nil {
		e.logger().Warn("notification not sent",
			"kind", msg.Kind,
			"proposition_id", msg.PropositionID.String(),
			"error", err,
		)
	}
}

// record appends an audit entry. The aggregate is already saved, so a
// failure is logged and never returned.
func (e *Effects) record(ctx context.Context, entry notification.Entry) {
	if e.History == nil {
		return
	}
	if err := e.History.Record(ctx, entry); err != nil {
		e.logger().Warn("history entry not recorded",
			"proposition_id", entry.PropositionID.String(),
			"error", err,
		)
	}
}

// publish sends an event once the aggregate is saved.
func (e *Effects) publish(event shared.Event) {
	if e.Publisher == nil {
		return
	}
	if err := e.Publisher.Publish(event); err != nil {
		e.logger().Error("event not published",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
	}
}

// DoctorateDeps groups the collaborators of the doctoral handlers.
type DoctorateDeps struct {
	Propositions    proposition.Repository
	Groups          supervision.Repository
	Promoters       supervision.PromoterTranslator
	Doctorates      proposition.DoctorateTranslator
	Scholarships    proposition.ScholarshipTranslator
	Checklist       *checklist.Configuration
	Limits          supervision.Limits
	MaxPropositions int
	Effects
}

// load returns the proposition and its supervision group.
func (d *DoctorateDeps) load(ctx context.Context, id shared.PropositionID) (*proposition.Proposition, *supervision.Group, error) {
	p, err := d.Propositions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	g, err := d.Groups.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, g, nil
}

// lookups resolves through the translators what the validators need.
func (d *DoctorateDeps) lookups(ctx context.Context, p *proposition.Proposition, g *supervision.Group) (proposition.Lookups, error) {
	return proposition.ResolveLookups(ctx, d.Promoters, d.Scholarships, p, g, d.Limits)
}

// PropositionResult is returned by the handlers that change a doctoral
// proposition.
type PropositionResult struct {
	PropositionID shared.PropositionID
	Status        proposition.Status
}

func resultOf(p *proposition.Proposition) *PropositionResult {
	return &PropositionResult{PropositionID: p.ID, Status: p.Status}
}

func requireID(op string, id shared.PropositionID) error {
	if id.IsZero() {
		return shared.NewDomainError("command", op, shared.ErrInvalidInput, "proposition_id is required")
	}
	return nil
}

func requireField(op, field, value string) error {
	if value == "" {
		return shared.NewDomainError("command", op, shared.ErrInvalidInput, field+" is required")
	}
	return nil
}
