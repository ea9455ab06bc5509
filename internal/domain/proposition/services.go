package proposition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// Lookups carries what the use case resolved through translators before
// calling a domain service.
type Lookups struct {
	// ExternalPromoters tells, per promoter, whether they are external.
	ExternalPromoters map[shared.PersonID]bool
	ScholarshipKnown  bool
	Limits            supervision.Limits
}

// ProjectVerifier checks that a doctoral project and its supervision are
// ready to be sent to the signatories.
type ProjectVerifier struct{}

// Verify runs every project rule and reports all failures at once.
func (ProjectVerifier) Verify(p *Proposition, g *supervision.Group, l Lookups) error {
	return validator.RunCollect(projectRules(p, g, l)...)
}

func projectRules(p *Proposition, g *supervision.Group, l Lookups) []validator.Validator {
	rules := []validator.Validator{
		validator.Func(func() error { return g.VerifySignatories(l.ExternalPromoters, l.Limits) }),
		validator.Func(func() error { return g.VerifyCotutelle(l.ExternalPromoters) }),
		shouldJustifyPreAdmission(p.AdmissionType, p.Justification),
	}
	if p.IsPreAdmission() {
		return rules
	}
	return append(rules,
		shouldProjectBeComplete(p.Project),
		shouldFinancingBeComplete(p.Financing),
		shouldWorkContractMatchFinancing(p.Financing),
		shouldScholarshipExist(p.Financing, l.ScholarshipKnown),
		shouldInstitutionMatchPriorResearch(p.PriorResearch),
		shouldThesisDomainMatchPriorResearch(p.PriorResearch),
	)
}

// RequestSignatures verifies the project, invites every signatory not yet
// invited and locks the proposition. Calling it again only invites the
// signatories added in between.
func RequestSignatures(p *Proposition, g *supervision.Group, l Lookups, now time.Time) ([]shared.PersonID, error) {
	err := validator.List{
		DataContract: []validator.Validator{p.canRequestSignatures()},
		Invariants:   projectRules(p, g, l),
	}.Validate()
	if err != nil {
		return nil, err
	}
	invited, err := g.InviteAll(now)
	if err != nil {
		return nil, err
	}
	p.lockForSignature(now)
	return invited, nil
}

// Opinion is the answer of a signatory.
type Opinion struct {
	Approve         bool
	InternalComment string
	ExternalComment string
	RefusalReason   string
	// PDF, when set, is the signed evidence uploaded by a manager.
	PDF []string
	// Institute is the thesis institute chosen by the reference promoter.
	Institute string
}

func shouldReferencePromoterSetInstitute(p *Proposition, g *supervision.Group, person shared.PersonID, o Opinion) validator.Validator {
	return validator.Check(
		!o.Approve || len(o.PDF) > 0 || person != g.ReferencePromoter ||
			p.Project.ThesisInstitute != "" || o.Institute != "",
		ErrThesisInstituteRequired)
}

// ReceiveSignatoryOpinion records an opinion on the targeted signature. A
// refusal from a promoter unlocks the project; a refusal from a CA member
// leaves it locked. The reference promoter approving a project without a
// thesis institute must provide one. It reports whether the proposition was
// unlocked.
func ReceiveSignatoryOpinion(p *Proposition, g *supervision.Group, person shared.PersonID, o Opinion, now time.Time) (bool, error) {
	err := validator.RunStrict(
		validator.StatusIn(p.Status, ErrSignatureRequestNotStarted, SigningInProgress),
		shouldReferencePromoterSetInstitute(p, g, person, o),
	)
	if err != nil {
		return false, err
	}
	switch {
	case o.Approve && len(o.PDF) > 0:
		return false, g.ApproveByPDF(person, o.PDF, now)
	case o.Approve:
		if err := g.Approve(person, o.InternalComment, o.ExternalComment, now); err != nil {
			return false, err
		}
		if o.Institute != "" && person == g.ReferencePromoter {
			p.Project.ThesisInstitute = o.Institute
		}
		return false, nil
	}
	byPromoter, err := g.Refuse(person, o.InternalComment, o.ExternalComment, o.RefusalReason, now)
	if err != nil {
		return false, err
	}
	if byPromoter {
		p.Unlock(now)
	}
	return byPromoter, nil
}

// VerifySubmission checks that the proposition may be submitted. A regular
// admission needs every signature approved; a pre-admission may be
// submitted without a complete supervision.
func VerifySubmission(p *Proposition, g *supervision.Group, l Lookups) error {
	if p.IsPreAdmission() {
		return validator.List{
			DataContract: []validator.Validator{
				validator.StatusIn(p.Status, ErrNotDraft, InProgress, SigningInProgress),
			},
			Invariants: []validator.Validator{
				shouldJustifyPreAdmission(p.AdmissionType, p.Justification),
			},
		}.Validate()
	}
	return validator.List{
		DataContract: []validator.Validator{
			validator.StatusIn(p.Status, ErrNotAwaitingSignatures, SigningInProgress),
		},
		Invariants: append(projectRules(p, g, l),
			validator.Func(g.VerifyEveryoneApproved),
		),
	}.Validate()
}

// ResolveLookups asks the translators everything the project rules need.
// An unknown scholarship is reported through Lookups, not as an error.
func ResolveLookups(ctx context.Context, promoters supervision.PromoterTranslator, scholarships ScholarshipTranslator, p *Proposition, g *supervision.Group, limits supervision.Limits) (Lookups, error) {
	external, err := supervision.ResolveExternal(ctx, promoters, g)
	if err != nil {
		return Lookups{}, fmt.Errorf("resolve promoters: %w", err)
	}
	known := true
	if p.Financing.Type == SearchScholarship && p.Financing.Scholarship != "" {
		_, err := scholarships.Get(ctx, p.Financing.Scholarship)
		switch {
		case errors.Is(err, ErrScholarshipNotFound):
			known = false
		case err != nil:
			return Lookups{}, fmt.Errorf("resolve scholarship: %w", err)
		}
	}
	return Lookups{ExternalPromoters: external, ScholarshipKnown: known, Limits: limits}, nil
}
