package shared

import (
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// PropositionID identifies a proposition in every admission context. It is
// the key shared by the proposition, its supervision group, its documents
// and its checklist.
type PropositionID struct {
	uuid uuid.UUID
}

// NewPropositionID generates a fresh identity.
func NewPropositionID() PropositionID {
	return PropositionID{uuid: uuid.New()}
}

// ParsePropositionID parses the canonical textual form.
func ParsePropositionID(s string) (PropositionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PropositionID{}, WrapError("shared", "ParsePropositionID", ErrInvalidID, "invalid proposition ID", err)
	}
	return PropositionID{uuid: id}, nil
}

// MustParsePropositionID is ParsePropositionID for literals in tests and fixtures.
func MustParsePropositionID(s string) PropositionID {
	id, err := ParsePropositionID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// PropositionIDFromUUID wraps an existing UUID.
func PropositionIDFromUUID(u uuid.UUID) PropositionID {
	return PropositionID{uuid: u}
}

// UUID returns the underlying UUID.
func (p PropositionID) UUID() uuid.UUID {
	return p.uuid
}

// String returns the string representation.
func (p PropositionID) String() string {
	return p.uuid.String()
}

// IsZero reports whether the identity was never set.
func (p PropositionID) IsZero() bool {
	return p.uuid == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler.
func (p PropositionID) MarshalText() ([]byte, error) {
	return []byte(p.uuid.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PropositionID) UnmarshalText(data []byte) error {
	id, err := ParsePropositionID(string(data))
	if err != nil {
		return err
	}
	*p = id
	return nil
}

// PersonID is the global identifier of a person (candidate, promoter,
// CA member, manager). It is opaque to the admission core.
type PersonID string

// String returns the string representation.
func (p PersonID) String() string {
	return string(p)
}

// IsEmpty checks if the ID is empty.
func (p PersonID) IsEmpty() bool {
	return p == ""
}

// TrainingID identifies a training offer by acronym and academic year.
type TrainingID struct {
	Acronym string `json:"sigle"`
	Year    int    `json:"annee"`
}

// IsZero reports whether the training was never set.
func (t TrainingID) IsZero() bool {
	return t.Acronym == "" && t.Year == 0
}

// ═══════════════════════════════════════════════════════════════════════════
// Clock
// ═══════════════════════════════════════════════════════════════════════════

// Clock abstracts the current time so use cases stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time {
	return c.At
}

// ClockOrSystem returns c, or the system clock when c is nil.
func ClockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}
