package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are published after the aggregate is saved and
// carry identifiers and primitive fields only.
const (
	// Doctoral proposition events
	EventDoctoralPropositionSubmitted EventType = "proposition.doctorate.submitted"
	EventSignaturesRequested          EventType = "proposition.doctorate.signatures_requested"
	EventSignatoryRefused             EventType = "proposition.doctorate.signatory_refused"
	EventMergeRefused                 EventType = "proposition.merge_refused"

	// General and continuing education events
	EventGeneralPropositionSubmitted    EventType = "proposition.general.submitted"
	EventContinuingPropositionSubmitted EventType = "proposition.continuing.submitted"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Doctoral Proposition Events
// ═══════════════════════════════════════════════════════════════════════════

// DoctoralPropositionSubmittedEvent is emitted once a doctoral proposition
// has been submitted and saved.
type DoctoralPropositionSubmittedEvent struct {
	BaseEvent
	CandidateID  string `json:"candidate_id"`
	Reference    int64  `json:"reference"`
	PreAdmission bool   `json:"pre_admission"`
}

// Payload implements Event interface.
func (e DoctoralPropositionSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"candidate_id":  e.CandidateID,
		"reference":     e.Reference,
		"pre_admission": e.PreAdmission,
	}
}

// NewDoctoralPropositionSubmittedEvent creates a new DoctoralPropositionSubmittedEvent.
func NewDoctoralPropositionSubmittedEvent(propositionID, candidateID string, reference int64, preAdmission bool, at time.Time) DoctoralPropositionSubmittedEvent {
	return DoctoralPropositionSubmittedEvent{
		BaseEvent:    NewBaseEvent(EventDoctoralPropositionSubmitted, propositionID, at),
		CandidateID:  candidateID,
		Reference:    reference,
		PreAdmission: preAdmission,
	}
}

// SignaturesRequestedEvent is emitted when signatories have been invited.
type SignaturesRequestedEvent struct {
	BaseEvent
	Invited []string `json:"invited"`
}

// Payload implements Event interface.
func (e SignaturesRequestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"invited": e.Invited,
	}
}

// NewSignaturesRequestedEvent creates a new SignaturesRequestedEvent.
func NewSignaturesRequestedEvent(propositionID string, invited []string, at time.Time) SignaturesRequestedEvent {
	return SignaturesRequestedEvent{
		BaseEvent: NewBaseEvent(EventSignaturesRequested, propositionID, at),
		Invited:   invited,
	}
}

// SignatoryRefusedEvent is emitted when a promoter or CA member refuses.
type SignatoryRefusedEvent struct {
	BaseEvent
	SignatoryID string `json:"signatory_id"`
	IsPromoter  bool   `json:"is_promoter"`
	Reason      string `json:"reason"`
}

// Payload implements Event interface.
func (e SignatoryRefusedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"signatory_id": e.SignatoryID,
		"is_promoter":  e.IsPromoter,
		"reason":       e.Reason,
	}
}

// NewSignatoryRefusedEvent creates a new SignatoryRefusedEvent.
func NewSignatoryRefusedEvent(propositionID, signatoryID string, isPromoter bool, reason string, at time.Time) SignatoryRefusedEvent {
	return SignatoryRefusedEvent{
		BaseEvent:   NewBaseEvent(EventSignatoryRefused, propositionID, at),
		SignatoryID: signatoryID,
		IsPromoter:  isPromoter,
		Reason:      reason,
	}
}

// MergeRefusedEvent is emitted when a manager refuses to merge the
// candidate's identity with an existing person record.
type MergeRefusedEvent struct {
	BaseEvent
	CandidateID string `json:"candidate_id"`
}

// Payload implements Event interface.
func (e MergeRefusedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"candidate_id": e.CandidateID,
	}
}

// NewMergeRefusedEvent creates a new MergeRefusedEvent.
func NewMergeRefusedEvent(propositionID, candidateID string, at time.Time) MergeRefusedEvent {
	return MergeRefusedEvent{
		BaseEvent:   NewBaseEvent(EventMergeRefused, propositionID, at),
		CandidateID: candidateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// General / Continuing Education Events
// ═══════════════════════════════════════════════════════════════════════════

// PropositionSubmittedEvent is emitted for general and continuing education
// propositions. Type tells which context produced it.
type PropositionSubmittedEvent struct {
	BaseEvent
	CandidateID string `json:"candidate_id"`
	Reference   int64  `json:"reference"`
}

// Payload implements Event interface.
func (e PropositionSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"candidate_id": e.CandidateID,
		"reference":    e.Reference,
	}
}

// NewPropositionSubmittedEvent creates a new PropositionSubmittedEvent.
func NewPropositionSubmittedEvent(eventType EventType, propositionID, candidateID string, reference int64, at time.Time) PropositionSubmittedEvent {
	return PropositionSubmittedEvent{
		BaseEvent:   NewBaseEvent(eventType, propositionID, at),
		CandidateID: candidateID,
		Reference:   reference,
	}
}

// PayloadString reads a string field from an event payload. Events received
// from a remote bus only expose their payload map.
func PayloadString(e Event, key string) string {
	v, _ := e.Payload()[key].(string)
	return v
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
