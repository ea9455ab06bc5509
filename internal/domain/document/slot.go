// Package document tracks the document slots of a proposition: the files a
// candidate uploaded and the ones a manager requests.
package document

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// Type is the kind of slot.
type Type string

const (
	NonFree            Type = "NON_LIBRE"
	FreeRequestableSIC Type = "LIBRE_RECLAMABLE_SIC"
	FreeRequestableFAC Type = "LIBRE_RECLAMABLE_FAC"
	FreeInternalSIC    Type = "LIBRE_INTERNE_SIC"
	FreeInternalFAC    Type = "LIBRE_INTERNE_FAC"
	System             Type = "SYSTEME"
)

// IsFreeRequestable reports whether a manager created the slot to ask the
// candidate for a document.
func (t Type) IsFreeRequestable() bool {
	return t == FreeRequestableSIC || t == FreeRequestableFAC
}

// IsFreeInternal reports whether the slot only holds manager uploads.
func (t Type) IsFreeInternal() bool {
	return t == FreeInternalSIC || t == FreeInternalFAC
}

// Status is the status of a slot.
type Status string

const (
	ToRequest               Status = "A_RECLAMER"
	Requested               Status = "RECLAME"
	NotAnalysed             Status = "NON_ANALYSE"
	Validated               Status = "VALIDE"
	CompletedAfterRequested Status = "COMPLETE_APRES_RECLAMATION"
)

// StatusLabels is the label table of Status.
var StatusLabels = shared.LabelTable{
	language.French: {
		string(ToRequest):               "À réclamer",
		string(Requested):               "Réclamé",
		string(NotAnalysed):             "Non analysé",
		string(Validated):               "Validé",
		string(CompletedAfterRequested): "Complété après réclamation",
	},
	language.English: {
		string(ToRequest):               "To be requested",
		string(Requested):               "Requested",
		string(NotAnalysed):             "Not analyzed",
		string(Validated):               "Validated",
		string(CompletedAfterRequested): "Completed after the request",
	},
}

// RequestStatus tells when the candidate must provide a requested document.
type RequestStatus string

const (
	NoRequestStatus  RequestStatus = ""
	Immediately      RequestStatus = "IMMEDIATEMENT"
	LaterBlocking    RequestStatus = "ULTERIEUREMENT_BLOQUANT"
	LaterNonBlocking RequestStatus = "ULTERIEUREMENT_NON_BLOQUANT"
)

// Tab is the tab of the application form a slot belongs to.
type Tab string

const (
	Identification         Tab = "IDENTIFICATION"
	Coordinates            Tab = "COORDONNEES"
	TrainingChoice         Tab = "CHOIX_FORMATION"
	SecondaryStudies       Tab = "ETUDES_SECONDAIRES"
	Curriculum             Tab = "CURRICULUM"
	Languages              Tab = "LANGUES"
	Accounting             Tab = "COMPTABILITE"
	Project                Tab = "PROJET"
	Cotutelle              Tab = "COTUTELLE"
	Supervision            Tab = "SUPERVISION"
	AdditionalInformation  Tab = "INFORMATIONS_ADDITIONNELLES"
	Confirmation           Tab = "CONFIRMATION"
	FollowingAuthorization Tab = "SUITE_AUTORISATION"
)

// ═══════════════════════════════════════════════════════════════════════════
// Identity
// ═══════════════════════════════════════════════════════════════════════════

// Base identifiers of slots not bound to a known document key.
const (
	specificQuestion = "QUESTION_SPECIFIQUE"
	freeCandidate    = "LIBRE_CANDIDAT"
	freeManager      = "LIBRE_GESTIONNAIRE"
)

// SlotID identifies a slot within a proposition.
type SlotID struct {
	PropositionID shared.PropositionID `json:"proposition_id"`
	Identifier    string               `json:"identifier"`
}

// String returns "<proposition>/<identifier>".
func (id SlotID) String() string {
	return id.PropositionID.String() + "/" + id.Identifier
}

// IdentityBuilder composes every slot identifier so call sites never build
// the strings by hand.
type IdentityBuilder struct {
	propositionID shared.PropositionID
	newToken      func() string
}

// NewIdentityBuilder returns a builder for one proposition.
func NewIdentityBuilder(propositionID shared.PropositionID) IdentityBuilder {
	return IdentityBuilder{
		propositionID: propositionID,
		newToken:      func() string { return uuid.NewString() },
	}
}

// Key identifies a known document of a tab: "TAB.KEY".
func (b IdentityBuilder) Key(tab Tab, key string) SlotID {
	return b.build(string(tab), key)
}

// Question identifies the answer to a specific question:
// "TAB.QUESTION_SPECIFIQUE.<question>".
func (b IdentityBuilder) Question(tab Tab, questionID string) SlotID {
	return b.build(string(tab), specificQuestion, questionID)
}

// Free identifies a new free slot: "LIBRE_CANDIDAT.<token>" for requestable
// slots, "LIBRE_GESTIONNAIRE.<token>" for internal ones.
func (b IdentityBuilder) Free(t Type) (SlotID, error) {
	switch {
	case t.IsFreeRequestable():
		return b.build(freeCandidate, b.newToken()), nil
	case t.IsFreeInternal():
		return b.build(freeManager, b.newToken()), nil
	default:
		return SlotID{}, ErrTypeNotAllowed.Withf("%s is not a free slot", t)
	}
}

func (b IdentityBuilder) build(parts ...string) SlotID {
	return SlotID{PropositionID: b.propositionID, Identifier: strings.Join(parts, ".")}
}

// ═══════════════════════════════════════════════════════════════════════════
// Slot
// ═══════════════════════════════════════════════════════════════════════════

// Slot is a requested or submitted document slot of a proposition.
type Slot struct {
	ID            SlotID
	Type          Type
	Status        Status
	RequestStatus RequestStatus
	Files         []string
	Label         string
	ManagerReason string
	AutoRequired  bool
	RequestedAt   *time.Time
	DueAt         *time.Time
	LastActionAt  *time.Time
	LastActor     string
	SubmittedBy   string
}

// InitializeToRequest creates a slot for a known document the candidate
// must provide.
func InitializeToRequest(id SlotID, reason string, requestStatus RequestStatus, actor string, now time.Time) *Slot {
	s := &Slot{
		ID:            id,
		Type:          NonFree,
		Status:        ToRequest,
		RequestStatus: requestStatus,
		ManagerReason: reason,
		Files:         []string{},
	}
	s.touch(actor, now)
	return s
}

// InitializeFreeToRequest creates a manager-defined slot the candidate must
// fill.
func InitializeFreeToRequest(b IdentityBuilder, t Type, label, reason string, requestStatus RequestStatus, actor string, now time.Time) (*Slot, error) {
	if err := validator.Check(t.IsFreeRequestable(), ErrTypeNotAllowed).Validate(); err != nil {
		return nil, err
	}
	id, err := b.Free(t)
	if err != nil {
		return nil, err
	}
	s := InitializeToRequest(id, reason, requestStatus, actor, now)
	s.Type = t
	s.Label = label
	return s, nil
}

// InitializeFreeInternal creates a slot holding a manager upload.
func InitializeFreeInternal(b IdentityBuilder, t Type, label, file, actor string, now time.Time) (*Slot, error) {
	if err := validator.Check(t.IsFreeInternal(), ErrTypeNotAllowed).Validate(); err != nil {
		return nil, err
	}
	id, err := b.Free(t)
	if err != nil {
		return nil, err
	}
	s := &Slot{ID: id, Type: t, Status: Validated, Label: label, Files: []string{file}, SubmittedBy: actor}
	s.touch(actor, now)
	return s, nil
}

// DefineToRequest marks an existing slot as to be requested.
func (s *Slot) DefineToRequest(reason string, requestStatus RequestStatus, actor string, now time.Time) error {
	if err := validator.Check(s.Status != Validated, ErrAlreadyValidated).Validate(); err != nil {
		return err
	}
	s.Status = ToRequest
	s.ManagerReason = reason
	s.RequestStatus = requestStatus
	s.touch(actor, now)
	return nil
}

// SpecifyRequest updates the request. Moving to Requested records when the
// candidate was asked and until when they may answer.
func (s *Slot) SpecifyRequest(reason string, status Status, requestStatus RequestStatus, due *time.Time, actor string, now time.Time) error {
	err := validator.List{
		DataContract: []validator.Validator{
			validator.Check(s.Status != Validated, ErrAlreadyValidated),
			validator.StatusIn(status, ErrStatusNotAllowed, ToRequest, Requested),
		},
	}.Validate()
	if err != nil {
		return err
	}
	s.Status = status
	s.ManagerReason = reason
	s.RequestStatus = requestStatus
	if status == Requested {
		requested := now
		s.RequestedAt = &requested
		s.DueAt = due
	}
	s.touch(actor, now)
	return nil
}

// CancelRequest withdraws the request. It reports whether the slot must be
// deleted, which is the case of a free requestable slot without any file.
// Other slots keep their files and wait for analysis.
func (s *Slot) CancelRequest(actor string, now time.Time) (bool, error) {
	if err := validator.StatusIn(s.Status, ErrStatusNotAllowed, ToRequest, Requested).Validate(); err != nil {
		return false, err
	}
	if s.Type.IsFreeRequestable() && len(s.Files) == 0 {
		return true, nil
	}
	s.Status = NotAnalysed
	s.RequestStatus = NoRequestStatus
	s.ManagerReason = ""
	s.RequestedAt = nil
	s.DueAt = nil
	s.touch(actor, now)
	return false, nil
}

// FillByCandidate stores the files the candidate sent after a request.
func (s *Slot) FillByCandidate(files []string, actor string, now time.Time) error {
	err := validator.RunStrict(
		validator.StatusIn(s.Status, ErrStatusNotAllowed, Requested, ToRequest),
		validator.Check(len(files) > 0, ErrNoFile),
	)
	if err != nil {
		return err
	}
	s.Files = slices.Clone(files)
	s.Status = CompletedAfterRequested
	s.SubmittedBy = actor
	s.touch(actor, now)
	return nil
}

// FillByManager stores files uploaded by a manager, which are validated.
func (s *Slot) FillByManager(files []string, actor string, now time.Time) {
	s.Files = slices.Clone(files)
	s.Status = Validated
	s.SubmittedBy = actor
	s.touch(actor, now)
}

func (s *Slot) touch(actor string, now time.Time) {
	at := now
	s.LastActionAt = &at
	s.LastActor = actor
}

// IsOverdue reports whether the candidate was asked for the slot and let
// its deadline pass.
func (s *Slot) IsOverdue(now time.Time) bool {
	return s.Status == Requested && s.DueAt != nil && s.DueAt.Before(now)
}

// Clone returns a deep copy.
func (s *Slot) Clone() *Slot {
	c := *s
	c.Files = slices.Clone(s.Files)
	return &c
}

// Repository loads and saves document slots.
type Repository interface {
	// Get returns ErrSlotNotFound when absent.
	Get(ctx context.Context, id SlotID) (*Slot, error)
	Save(ctx context.Context, s *Slot) error
	Delete(ctx context.Context, id SlotID) error
	SearchByProposition(ctx context.Context, propositionID shared.PropositionID) ([]*Slot, error)
	// SearchOverdue returns the slots for which IsOverdue(now) holds.
	SearchOverdue(ctx context.Context, now time.Time) ([]*Slot, error)
}
