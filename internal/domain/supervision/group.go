// Package supervision holds the supervision group of a doctoral proposition:
// its promoters, its CA members, their signatures and the cotutelle.
package supervision

import (
	"context"
	"slices"
	"time"

	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// SignatureState is the state of one signatory's signature.
type SignatureState string

const (
	NotInvited SignatureState = "NOT_INVITED"
	Invited    SignatureState = "INVITED"
	Approved   SignatureState = "APPROVED"
	Refused    SignatureState = "REFUSED"
)

// SignatureStateLabels is the label table of SignatureState.
var SignatureStateLabels = shared.LabelTable{
	language.French: {
		string(NotInvited): "Pas invité",
		string(Invited):    "Invité",
		string(Approved):   "Approuvé",
		string(Refused):    "Refusé",
	},
	language.English: {
		string(NotInvited): "Not invited",
		string(Invited):    "Invited",
		string(Approved):   "Approved",
		string(Refused):    "Refused",
	},
}

// Signature is the signature of a promoter or of a CA member.
type Signature struct {
	Person          shared.PersonID `json:"person"`
	State           SignatureState  `json:"state"`
	InternalComment string          `json:"internal_comment,omitempty"`
	ExternalComment string          `json:"external_comment,omitempty"`
	RefusalReason   string          `json:"refusal_reason,omitempty"`
	PDF             []string        `json:"pdf,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Cotutelle describes a joint supervision with a partner institution.
type Cotutelle struct {
	Active                  bool     `json:"active"`
	Motivation              string   `json:"motivation"`
	FWBInstitution          *bool    `json:"fwb_institution,omitempty"`
	Institution             string   `json:"institution"`
	OtherInstitutionName    string   `json:"other_institution_name"`
	OtherInstitutionAddress string   `json:"other_institution_address"`
	OpeningRequest          []string `json:"opening_request"`
	Convention              []string `json:"convention"`
	OtherDocuments          []string `json:"other_documents"`
}

func (c *Cotutelle) institutionName() string {
	if c.Institution != "" {
		return c.Institution
	}
	return c.OtherInstitutionName
}

// Limits bounds the composition of a group.
type Limits struct {
	MaxPromoters int
	MaxCAMembers int
	MinCAMembers int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxPromoters: 2, MaxCAMembers: 3, MinCAMembers: 0}
}

// Group is the supervision group of one doctoral proposition. It references
// the proposition by identity only.
type Group struct {
	PropositionID     shared.PropositionID
	Promoters         []Signature
	CAMembers         []Signature
	Cotutelle         *Cotutelle
	ReferencePromoter shared.PersonID
}

// NewGroup creates an empty group for a proposition.
func NewGroup(propositionID shared.PropositionID) *Group {
	return &Group{
		PropositionID: propositionID,
		Promoters:     []Signature{},
		CAMembers:     []Signature{},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Composition
// ─────────────────────────────────────────────────────────────────────────────

// IdentifyPromoter adds a promoter. The first promoter becomes the
// reference promoter.
func (g *Group) IdentifyPromoter(person shared.PersonID, limits Limits) error {
	err := validator.List{
		Invariants: []validator.Validator{
			shouldGroupNotBeFull(len(g.Promoters), limits.MaxPromoters, ErrGroupFullForPromoters),
			shouldNotAlreadyBeMember(g, person),
		},
	}.Validate()
	if err != nil {
		return err
	}
	g.Promoters = append(g.Promoters, Signature{Person: person, State: NotInvited})
	if g.ReferencePromoter.IsEmpty() {
		g.ReferencePromoter = person
	}
	return nil
}

// IdentifyCAMember adds a CA member.
func (g *Group) IdentifyCAMember(person shared.PersonID, limits Limits) error {
	err := validator.List{
		Invariants: []validator.Validator{
			shouldGroupNotBeFull(len(g.CAMembers), limits.MaxCAMembers, ErrGroupFullForCAMembers),
			shouldNotAlreadyBeMember(g, person),
		},
	}.Validate()
	if err != nil {
		return err
	}
	g.CAMembers = append(g.CAMembers, Signature{Person: person, State: NotInvited})
	return nil
}

// RemovePromoter removes a promoter and clears the reference if needed.
func (g *Group) RemovePromoter(person shared.PersonID) error {
	if err := validator.RunStrict(shouldBePromoter(g, person)); err != nil {
		return err
	}
	g.Promoters = removeSignature(g.Promoters, person)
	if g.ReferencePromoter == person {
		g.ReferencePromoter = ""
	}
	return nil
}

// RemoveCAMember removes a CA member.
func (g *Group) RemoveCAMember(person shared.PersonID) error {
	if err := validator.RunStrict(shouldBeCAMember(g, person)); err != nil {
		return err
	}
	g.CAMembers = removeSignature(g.CAMembers, person)
	return nil
}

// RemoveSignatory removes a promoter or a CA member.
func (g *Group) RemoveSignatory(person shared.PersonID) error {
	switch {
	case g.isPromoter(person):
		return g.RemovePromoter(person)
	case g.isCAMember(person):
		return g.RemoveCAMember(person)
	default:
		return ErrSignatoryNotFound
	}
}

// DesignateReferencePromoter sets the contact promoter.
func (g *Group) DesignateReferencePromoter(person shared.PersonID) error {
	if err := validator.RunStrict(shouldBePromoter(g, person)); err != nil {
		return err
	}
	g.ReferencePromoter = person
	return nil
}

// DefineCotutelle replaces the cotutelle details.
func (g *Group) DefineCotutelle(c Cotutelle) error {
	if err := shouldCotutelleBeComplete(&c).Validate(); err != nil {
		return err
	}
	if !c.Active {
		g.Cotutelle = &Cotutelle{Active: false}
		return nil
	}
	g.Cotutelle = &c
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Signatures
// ─────────────────────────────────────────────────────────────────────────────

// Signature returns the signature of a signatory and whether it is a promoter.
func (g *Group) Signature(person shared.PersonID) (Signature, bool, error) {
	if s := g.find(person); s != nil {
		return *s, g.isPromoter(person), nil
	}
	return Signature{}, false, ErrSignatoryNotFound
}

// Invite invites one signatory. A signatory is never invited twice.
func (g *Group) Invite(person shared.PersonID, now time.Time) error {
	sig := g.find(person)
	err := validator.List{
		DataContract: []validator.Validator{shouldBeSignatory(g, person)},
		Invariants:   []validator.Validator{shouldNotAlreadyBeInvited(sig)},
	}.Validate()
	if err != nil {
		return err
	}
	sig.State = Invited
	sig.UpdatedAt = now
	return nil
}

// InviteAll invites every signatory that was not invited yet and returns
// them. Signatories already invited, approved or refused are untouched.
func (g *Group) InviteAll(now time.Time) ([]shared.PersonID, error) {
	var invited []shared.PersonID
	for _, s := range g.all() {
		if s.State != NotInvited {
			continue
		}
		if err := g.Invite(s.Person, now); err != nil {
			return nil, err
		}
		invited = append(invited, s.Person)
	}
	return invited, nil
}

// Approve records the approval of an invited signatory.
func (g *Group) Approve(person shared.PersonID, internalComment, externalComment string, now time.Time) error {
	sig, err := g.answerable(person)
	if err != nil {
		return err
	}
	*sig = Signature{
		Person:          person,
		State:           Approved,
		InternalComment: internalComment,
		ExternalComment: externalComment,
		UpdatedAt:       now,
	}
	return nil
}

// ApproveByPDF records an approval evidenced by an uploaded signed document.
func (g *Group) ApproveByPDF(person shared.PersonID, pdf []string, now time.Time) error {
	sig, err := g.answerable(person)
	if err != nil {
		return err
	}
	*sig = Signature{
		Person:    person,
		State:     Approved,
		PDF:       slices.Clone(pdf),
		UpdatedAt: now,
	}
	return nil
}

// Refuse records the refusal of an invited signatory. Only that signature
// changes. It reports whether the refusing party is a promoter.
func (g *Group) Refuse(person shared.PersonID, internalComment, externalComment, reason string, now time.Time) (bool, error) {
	sig, err := g.answerable(person)
	if err != nil {
		return false, err
	}
	*sig = Signature{
		Person:          person,
		State:           Refused,
		InternalComment: internalComment,
		ExternalComment: externalComment,
		RefusalReason:   reason,
		UpdatedAt:       now,
	}
	return g.isPromoter(person), nil
}

func (g *Group) answerable(person shared.PersonID) (*Signature, error) {
	sig := g.find(person)
	err := validator.List{
		DataContract: []validator.Validator{shouldBeSignatory(g, person)},
		Invariants:   []validator.Validator{shouldBeInvited(sig)},
	}.Validate()
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Verifications
// ─────────────────────────────────────────────────────────────────────────────

// VerifySignatories checks the group can be sent for signature. external
// tells which promoters are external to the institution.
func (g *Group) VerifySignatories(external map[shared.PersonID]bool, limits Limits) error {
	return validator.List{
		DataContract: []validator.Validator{
			shouldHaveInternalPromoter(g.Promoters, external),
		},
		Invariants: []validator.Validator{
			shouldHaveEnoughCAMembers(g.CAMembers, limits.MinCAMembers),
			shouldHaveReferencePromoter(g),
		},
	}.Validate()
}

// VerifyCotutelle checks the cotutelle details and, when active, the
// presence of an external promoter.
func (g *Group) VerifyCotutelle(external map[shared.PersonID]bool) error {
	return validator.List{
		DataContract: []validator.Validator{
			shouldCotutelleHaveExternalPromoter(g.Cotutelle, g.Promoters, external),
		},
		Invariants: []validator.Validator{
			shouldCotutelleBeComplete(g.Cotutelle),
		},
	}.Validate()
}

// VerifyEveryoneApproved checks every promoter and CA member approved.
func (g *Group) VerifyEveryoneApproved() error {
	return validator.RunCollect(
		shouldAllHaveApproved(g.Promoters, ErrNotApprovedByPromoters),
		shouldAllHaveApproved(g.CAMembers, ErrNotApprovedByCAMembers),
	)
}

// PromoterIDs lists the promoters in insertion order.
func (g *Group) PromoterIDs() []shared.PersonID {
	ids := make([]shared.PersonID, 0, len(g.Promoters))
	for _, p := range g.Promoters {
		ids = append(ids, p.Person)
	}
	return ids
}

// CotutelleActive reports whether a cotutelle is in place.
func (g *Group) CotutelleActive() bool {
	return g.Cotutelle != nil && g.Cotutelle.Active
}

func (g *Group) isPromoter(person shared.PersonID) bool {
	return indexOf(g.Promoters, person) >= 0
}

func (g *Group) isCAMember(person shared.PersonID) bool {
	return indexOf(g.CAMembers, person) >= 0
}

func (g *Group) find(person shared.PersonID) *Signature {
	if i := indexOf(g.Promoters, person); i >= 0 {
		return &g.Promoters[i]
	}
	if i := indexOf(g.CAMembers, person); i >= 0 {
		return &g.CAMembers[i]
	}
	return nil
}

func (g *Group) all() []Signature {
	return append(slices.Clone(g.Promoters), g.CAMembers...)
}

func indexOf(signatures []Signature, person shared.PersonID) int {
	return slices.IndexFunc(signatures, func(s Signature) bool { return s.Person == person })
}

func removeSignature(signatures []Signature, person shared.PersonID) []Signature {
	return slices.DeleteFunc(slices.Clone(signatures), func(s Signature) bool { return s.Person == person })
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// Repository loads and saves supervision groups.
type Repository interface {
	// Get returns ErrGroupNotFound when the proposition has no group.
	Get(ctx context.Context, propositionID shared.PropositionID) (*Group, error)
	Save(ctx context.Context, group *Group) error
	Delete(ctx context.Context, propositionID shared.PropositionID) error
	// SearchBySignatory lists groups where person is a promoter or CA member.
	SearchBySignatory(ctx context.Context, person shared.PersonID) ([]*Group, error)
}

// PromoterTranslator resolves promoters from the people directory.
type PromoterTranslator interface {
	// IsExternal reports whether the promoter belongs to another institution.
	IsExternal(ctx context.Context, person shared.PersonID) (bool, error)
}

// ResolveExternal asks the translator about every promoter of the group.
// Validators receive the resulting map and never call the translator.
func ResolveExternal(ctx context.Context, t PromoterTranslator, g *Group) (map[shared.PersonID]bool, error) {
	external := make(map[shared.PersonID]bool, len(g.Promoters))
	for _, p := range g.Promoters {
		ext, err := t.IsExternal(ctx, p.Person)
		if err != nil {
			return nil, err
		}
		external[p.Person] = ext
	}
	return external, nil
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	c := &Group{
		PropositionID:     g.PropositionID,
		Promoters:         cloneSignatures(g.Promoters),
		CAMembers:         cloneSignatures(g.CAMembers),
		ReferencePromoter: g.ReferencePromoter,
	}
	if g.Cotutelle != nil {
		ct := *g.Cotutelle
		ct.OpeningRequest = slices.Clone(ct.OpeningRequest)
		ct.Convention = slices.Clone(ct.Convention)
		ct.OtherDocuments = slices.Clone(ct.OtherDocuments)
		c.Cotutelle = &ct
	}
	return c
}

func cloneSignatures(in []Signature) []Signature {
	out := make([]Signature, len(in))
	for i, s := range in {
		s.PDF = slices.Clone(s.PDF)
		out[i] = s
	}
	return out
}
