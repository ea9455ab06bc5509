// Package general holds the general and continuing education propositions,
// two smaller machines than the doctoral one.
package general

import (
	"context"
	"slices"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// Proposition is a general or continuing education proposition.
type Proposition struct {
	ID             shared.PropositionID
	Kind           Kind
	CandidateID    shared.PersonID
	Training       shared.TrainingID
	Status         Status
	Reference      int64
	Comment        string
	FacRefusal     string
	Checklist      checklist.Checklist
	LastModifiedBy string
	CreatedAt      time.Time
	ModifiedAt     time.Time
	SubmittedAt    *time.Time
}

// New creates a draft. Only general propositions carry a checklist.
func New(kind Kind, candidate shared.PersonID, training shared.TrainingID, cfg *checklist.Configuration, now time.Time) *Proposition {
	p := &Proposition{
		ID:          shared.NewPropositionID(),
		Kind:        kind,
		CandidateID: candidate,
		Training:    training,
		Status:      InProgress,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	if kind == General {
		p.Checklist = checklist.New(cfg, checklist.General)
	}
	return p
}

func (p *Proposition) machine() (map[Action]rule, *shared.BusinessError) {
	if p.Kind == Continuing {
		return continuingMachine, ErrContinuingUnexpectedStatus
	}
	return generalMachine, ErrUnexpectedStatus
}

// CanApply reports whether the action is legal from the current status.
func (p *Proposition) CanApply(a Action) bool {
	m, _ := p.machine()
	r, ok := m[a]
	return ok && slices.Contains(r.from, p.Status)
}

// Apply runs a transition that only changes the status. Submission and the
// actions touching the checklist of a general proposition have their own
// method.
func (p *Proposition) Apply(a Action, author string, now time.Time) error {
	switch a {
	case Submit:
		return shared.NewDomainError("general", "Apply", shared.ErrInvalidInput, "submission needs a reference")
	case RequirePayment, WaivePayment, PayFees, SendToFac, ApproveByFac, RefuseByFac,
		ApproveBySIC, ValidateEnrolment, RefuseEnrolment, Close:
		if p.Kind == General {
			return shared.NewDomainError("general", "Apply", shared.ErrInvalidInput, "action "+string(a)+" updates the checklist")
		}
	}
	return p.apply(a, nil, author, now)
}

// checklistChange is the checklist entry an action applies along with its
// status transition.
type checklistChange struct {
	cfg *checklist.Configuration
	tab checklist.Tab
	id  string
}

// onChecklist returns the change to apply, nil for kinds without a
// checklist.
func (p *Proposition) onChecklist(cfg *checklist.Configuration, tab checklist.Tab, id string) *checklistChange {
	if p.Kind != General {
		return nil
	}
	return &checklistChange{cfg: cfg, tab: tab, id: id}
}

// apply runs a transition. When change is set, its entry must exist before
// anything is modified.
func (p *Proposition) apply(a Action, change *checklistChange, author string, now time.Time, extra ...validator.Validator) error {
	m, unexpected := p.machine()
	r, ok := m[a]
	if !ok {
		return unexpected.Withf("%s is not an action of %s", a, p.Kind)
	}
	contract := []validator.Validator{validator.StatusIn(p.Status, unexpected, r.from...)}
	if change != nil {
		contract = append(contract, p.Checklist.CanChangeStatusTo(change.cfg, change.tab, change.id))
	}
	err := validator.List{
		DataContract: contract,
		Invariants:   extra,
	}.Validate()
	if err != nil {
		return err
	}
	if change != nil {
		if err := p.Checklist.ChangeStatusTo(change.cfg, change.tab, change.id); err != nil {
			return err
		}
	}
	p.Status = r.to
	if author != "" {
		p.LastModifiedBy = author
	}
	p.ModifiedAt = now
	return nil
}

// Submit confirms the draft with its reference number.
func (p *Proposition) Submit(reference int64, author string, now time.Time) error {
	if err := p.apply(Submit, nil, author, now); err != nil {
		return err
	}
	p.Reference = reference
	submitted := now
	p.SubmittedAt = &submitted
	if p.Kind == General {
		p.Checklist.CaptureInitial()
	}
	return nil
}

// RequirePayment asks the candidate to pay the application fees.
func (p *Proposition) RequirePayment(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(RequirePayment, p.onChecklist(cfg, checklist.ApplicationFees, checklist.PaymentRequiredID), author, now)
}

// WaivePayment drops the fees requirement. A proposition waiting for the
// payment goes back to confirmed.
func (p *Proposition) WaivePayment(cfg *checklist.Configuration, status checklist.Status, author string, now time.Time) error {
	waived := p.Checklist.Clone()
	if err := waived.WaivePayment(cfg, status); err != nil {
		return err
	}
	if err := p.apply(WaivePayment, nil, author, now); err != nil {
		return err
	}
	p.Checklist = waived
	return nil
}

// PayFees records the payment of the application fees.
func (p *Proposition) PayFees(cfg *checklist.Configuration, now time.Time) error {
	return p.apply(PayFees, p.onChecklist(cfg, checklist.ApplicationFees, "PAYES"), "", now)
}

// SendToFac hands the proposition to the faculty.
func (p *Proposition) SendToFac(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(SendToFac, p.onChecklist(cfg, checklist.FacultyDecision, "PRIS_EN_CHARGE"), author, now)
}

// ApproveByFac records the faculty approval.
func (p *Proposition) ApproveByFac(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(ApproveByFac, p.onChecklist(cfg, checklist.FacultyDecision, "APPROUVE"), author, now)
}

// RefuseByFac records the faculty refusal.
func (p *Proposition) RefuseByFac(cfg *checklist.Configuration, reason, author string, now time.Time) error {
	if err := p.apply(RefuseByFac, p.onChecklist(cfg, checklist.FacultyDecision, "REFUS"), author, now); err != nil {
		return err
	}
	p.FacRefusal = reason
	return nil
}

// ApproveBySIC submits the enrolment office approval to the direction.
func (p *Proposition) ApproveBySIC(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(ApproveBySIC, p.onChecklist(cfg, checklist.SICDecision, "AUTORISATION_A_VALIDER"), author, now)
}

// ValidateEnrolment authorises the enrolment.
func (p *Proposition) ValidateEnrolment(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(ValidateEnrolment, p.onChecklist(cfg, checklist.SICDecision, "AUTORISE"), author, now)
}

// RefuseEnrolment refuses the enrolment.
func (p *Proposition) RefuseEnrolment(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(RefuseEnrolment, p.onChecklist(cfg, checklist.SICDecision, "REFUSE"), author, now)
}

// Close ends the processing.
func (p *Proposition) Close(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(Close, p.onChecklist(cfg, checklist.SICDecision, "CLOTURE"), author, now)
}

// Clone returns a deep copy.
func (p *Proposition) Clone() *Proposition {
	c := *p
	c.Checklist = p.Checklist.Clone()
	if p.SubmittedAt != nil {
		at := *p.SubmittedAt
		c.SubmittedAt = &at
	}
	return &c
}

// Repository loads and saves general and continuing propositions.
type Repository interface {
	// Get returns ErrPropositionNotFound when absent.
	Get(ctx context.Context, id shared.PropositionID) (*Proposition, error)
	Save(ctx context.Context, p *Proposition) error
	SearchByCandidate(ctx context.Context, candidate shared.PersonID) ([]*Proposition, error)
	NextReference(ctx context.Context) (int64, error)
}
