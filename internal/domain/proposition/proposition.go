// Package proposition holds the doctoral admission proposition: its
// lifecycle, the rules guarding each transition and the domain services
// spanning the proposition and its supervision group.
package proposition

import (
	"encoding/hex"
	"encoding/json"
	"slices"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// ReferenceBase is the first reference number handed out.
const ReferenceBase int64 = 300000

// AdmissionType distinguishes a full admission from a pre-admission.
type AdmissionType string

const (
	Admission    AdmissionType = "ADMISSION"
	PreAdmission AdmissionType = "PRE_ADMISSION"
)

// FinancingType is how the doctorate is funded.
type FinancingType string

const (
	NoFinancing       FinancingType = ""
	WorkContract      FinancingType = "WORK_CONTRACT"
	SearchScholarship FinancingType = "SEARCH_SCHOLARSHIP"
	SelfFunding       FinancingType = "SELF_FUNDING"
)

// DoctorateAlreadyDone records whether the candidate already holds a PhD.
type DoctorateAlreadyDone string

const (
	NoDoctorate      DoctorateAlreadyDone = "NO"
	YesDoctorate     DoctorateAlreadyDone = "YES"
	PartialDoctorate DoctorateAlreadyDone = "PARTIAL"
)

// Project is the research project of the proposition.
type Project struct {
	Title                     string     `json:"titre"`
	Summary                   string     `json:"resume"`
	ThesisLanguage            string     `json:"langue_redaction_these"`
	ThesisInstitute           string     `json:"institut_these"`
	ThesisLocation            string     `json:"lieu_these"`
	Documents                 []string   `json:"documents"`
	Gantt                     []string   `json:"graphe_gantt"`
	DoctoralProgram           []string   `json:"proposition_programme_doctoral"`
	ComplementaryTraining     []string   `json:"projet_formation_complementaire"`
	RecommendationLetters     []string   `json:"lettres_recommandation"`
	AlreadyStarted            *bool      `json:"deja_commence,omitempty"`
	AlreadyStartedInstitution string     `json:"deja_commence_institution"`
	StartDate                 *time.Time `json:"date_debut,omitempty"`
}

// Financing is the funding of the doctorate.
type Financing struct {
	Type             FinancingType `json:"type"`
	WorkContractType string        `json:"type_contrat_travail"`
	FTE              *int          `json:"eft,omitempty"`
	Scholarship      string        `json:"bourse_recherche"`
	OtherScholarship string        `json:"autre_bourse_recherche"`
	ScholarshipStart *time.Time    `json:"bourse_date_debut,omitempty"`
	ScholarshipEnd   *time.Time    `json:"bourse_date_fin,omitempty"`
	ScholarshipProof []string      `json:"bourse_preuve"`
	PlannedDuration  *int          `json:"duree_prevue,omitempty"`
	TimeDedicated    *int          `json:"temps_consacre,omitempty"`
	LinkedToFNRS     *bool         `json:"est_lie_fnrs_fria_fresh_csc,omitempty"`
	Comment          string        `json:"commentaire"`
}

// PriorResearch describes a doctorate the candidate already did.
type PriorResearch struct {
	DoctorateAlreadyDone DoctorateAlreadyDone `json:"doctorat_deja_realise"`
	Institution          string               `json:"institution"`
	ThesisDomain         string               `json:"domaine_these"`
	DefenseDate          *time.Time           `json:"date_soutenance,omitempty"`
	NotDefendedReason    string               `json:"raison_non_soutenue"`
}

// Proposition is the doctoral proposition aggregate root. The supervision
// group, documents and jury are separate aggregates keyed by ID.
type Proposition struct {
	ID             shared.PropositionID
	CandidateID    shared.PersonID
	Training       shared.TrainingID
	AdmissionType  AdmissionType
	Justification  string
	Status         Status
	Reference      int64
	Project        Project
	Financing      Financing
	PriorResearch  PriorResearch
	Comment        string
	Checklist      checklist.Checklist
	CDDRefusal     string
	SICRefusal     string
	ArchiveDigest  string
	LastModifiedBy string
	CreatedAt      time.Time
	ModifiedAt     time.Time
	SubmittedAt    *time.Time
}

// InitiateParams carries the data of a new proposition.
type InitiateParams struct {
	CandidateID   shared.PersonID
	Training      shared.TrainingID
	AdmissionType AdmissionType
	Justification string
	Project       Project
	Financing     Financing
	PriorResearch PriorResearch
	// ActivePropositions is the number of propositions the candidate
	// already has in progress.
	ActivePropositions int
	MaxPropositions    int
}

// Initiate creates a draft proposition.
func Initiate(params InitiateParams, cfg *checklist.Configuration, now time.Time) (*Proposition, error) {
	err := validator.List{
		Invariants: []validator.Validator{
			shouldNotExceedActivePropositions(params.ActivePropositions, params.MaxPropositions),
			shouldJustifyPreAdmission(params.AdmissionType, params.Justification),
			shouldWorkContractMatchFinancing(params.Financing),
			shouldInstitutionMatchPriorResearch(params.PriorResearch),
			shouldThesisDomainMatchPriorResearch(params.PriorResearch),
		},
	}.Validate()
	if err != nil {
		return nil, err
	}
	return &Proposition{
		ID:            shared.NewPropositionID(),
		CandidateID:   params.CandidateID,
		Training:      params.Training,
		AdmissionType: params.AdmissionType,
		Justification: params.Justification,
		Status:        InProgress,
		Project:       params.Project,
		Financing:     params.Financing,
		PriorResearch: params.PriorResearch,
		Checklist:     checklist.New(cfg, checklist.Doctorate),
		CreatedAt:     now,
		ModifiedAt:    now,
	}, nil
}

// IsPreAdmission reports whether this is a pre-admission.
func (p *Proposition) IsPreAdmission() bool {
	return p.AdmissionType == PreAdmission
}

// IsLockedForSignature reports whether signatures are being collected.
func (p *Proposition) IsLockedForSignature() bool {
	return p.Status == SigningInProgress
}

// CompletionParams carries the editable part of a draft.
type CompletionParams struct {
	AdmissionType AdmissionType
	Justification string
	Project       Project
	Financing     Financing
	PriorResearch PriorResearch
	Comment       string
	Author        string
}

// Complete updates the draft. It is refused while signatures are collected.
func (p *Proposition) Complete(params CompletionParams, now time.Time) error {
	err := validator.List{
		DataContract: []validator.Validator{
			validator.Check(p.Status != SigningInProgress, ErrSignatureRequestInProgress),
			validator.StatusIn(p.Status, ErrNotDraft, InProgress),
		},
		Invariants: []validator.Validator{
			shouldJustifyPreAdmission(params.AdmissionType, params.Justification),
			shouldWorkContractMatchFinancing(params.Financing),
			shouldInstitutionMatchPriorResearch(params.PriorResearch),
			shouldThesisDomainMatchPriorResearch(params.PriorResearch),
		},
	}.Validate()
	if err != nil {
		return err
	}
	p.AdmissionType = params.AdmissionType
	p.Justification = params.Justification
	p.Project = params.Project
	p.Financing = params.Financing
	if params.PriorResearch.DoctorateAlreadyDone == NoDoctorate || params.PriorResearch.DoctorateAlreadyDone == "" {
		p.PriorResearch = PriorResearch{DoctorateAlreadyDone: NoDoctorate}
	} else {
		p.PriorResearch = params.PriorResearch
	}
	p.Comment = params.Comment
	p.touch(params.Author, now)
	return nil
}

// ModifyAdmissionType switches between admission and pre-admission.
func (p *Proposition) ModifyAdmissionType(t AdmissionType, justification, author string, now time.Time) error {
	err := validator.List{
		DataContract: []validator.Validator{validator.StatusIn(p.Status, ErrNotDraft, InProgress)},
		Invariants:   []validator.Validator{shouldJustifyPreAdmission(t, justification)},
	}.Validate()
	if err != nil {
		return err
	}
	p.AdmissionType = t
	p.Justification = justification
	p.touch(author, now)
	return nil
}

// Cancel moves the proposition to the absorbing cancelled state.
func (p *Proposition) Cancel(author string, now time.Time) error {
	if err := validator.Check(p.Status != Cancelled, ErrCancelled).Validate(); err != nil {
		return err
	}
	p.Status = Cancelled
	p.touch(author, now)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Signature lifecycle
// ─────────────────────────────────────────────────────────────────────────────

func (p *Proposition) canRequestSignatures() validator.Validator {
	return validator.StatusIn(p.Status, ErrNotDraft, InProgress, SigningInProgress)
}

// lockForSignature freezes the project and fingerprints what was sent.
func (p *Proposition) lockForSignature(now time.Time) {
	p.Status = SigningInProgress
	p.ArchiveDigest = p.projectDigest()
	p.ModifiedAt = now
}

// GroupChange classifies the changes made to the supervision group.
type GroupChange int

const (
	// GroupComposition adds or removes a signatory.
	GroupComposition GroupChange = iota
	// GroupSettings designates the reference promoter or defines the
	// cotutelle.
	GroupSettings
)

// CanChangeGroup checks that the supervision group may still be changed.
// The group is frozen once submitted. While signatures are collected only
// its composition may change, so the settings the signatories approved
// stay as sent.
func (p *Proposition) CanChangeGroup(change GroupChange) error {
	return validator.RunStrict(
		validator.StatusIn(p.Status, ErrGroupLocked, InProgress, SigningInProgress),
		validator.Check(p.Status == InProgress || change == GroupComposition, ErrSignatureRequestInProgress),
	)
}

// Unlock returns a proposition being signed to draft and drops the
// fingerprint of the archive sent to the signatories.
func (p *Proposition) Unlock(now time.Time) {
	if p.Status != SigningInProgress {
		return
	}
	p.Status = InProgress
	p.ArchiveDigest = ""
	p.ModifiedAt = now
}

// Submit records the submission. reference must come from the repository
// sequence and is only requested once every check passed.
func (p *Proposition) Submit(reference int64, now time.Time) {
	p.Status = Submitted
	p.Reference = reference
	submitted := now
	p.SubmittedAt = &submitted
	p.Checklist.CaptureInitial()
	p.ModifiedAt = now
}

func (p *Proposition) projectDigest() string {
	payload, _ := json.Marshal(struct {
		Project   Project
		Financing Financing
		Prior     PriorResearch
	}{p.Project, p.Financing, p.PriorResearch})
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// ─────────────────────────────────────────────────────────────────────────────
// Decision workflow
// ─────────────────────────────────────────────────────────────────────────────

// checklistChange is the checklist entry a decision applies along with
// its status transition.
type checklistChange struct {
	cfg *checklist.Configuration
	tab checklist.Tab
	id  string
}

// apply runs a decision transition with its extra validators. When change
// is set, its entry must exist before anything is modified.
func (p *Proposition) apply(t Transition, change *checklistChange, author string, now time.Time, extra ...validator.Validator) error {
	rule, ok := transitions[t]
	if !ok {
		return shared.NewDomainError("proposition", "Apply", shared.ErrInvalidInput, "unknown transition "+string(t))
	}
	contract := []validator.Validator{validator.StatusIn(p.Status, rule.err, rule.from...)}
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
	p.Status = rule.to
	p.touch(author, now)
	return nil
}

// CanApply reports whether the transition is legal from the current state.
func (p *Proposition) CanApply(t Transition) bool {
	return slices.Contains(transitions[t].from, p.Status)
}

// ConfirmSubmission acknowledges a submitted proposition.
func (p *Proposition) ConfirmSubmission(author string, now time.Time) error {
	return p.apply(Confirm, nil, author, now)
}

// RequestDocuments asks the candidate for documents. byFac selects the
// faculty or the enrolment office as requester.
func (p *Proposition) RequestDocuments(byFac bool, author string, now time.Time) error {
	if byFac {
		return p.apply(RequestDocumentsByFac, nil, author, now)
	}
	return p.apply(RequestDocumentsBySIC, nil, author, now)
}

// CancelDocumentsRequest withdraws a pending request for documents.
func (p *Proposition) CancelDocumentsRequest(author string, now time.Time) error {
	if p.Status == ToCompleteForFac {
		return p.apply(CancelDocumentsRequestFac, nil, author, now)
	}
	return p.apply(CancelDocumentsRequestSIC, nil, author, now)
}

// CompleteDocuments records that the candidate sent the requested documents.
func (p *Proposition) CompleteDocuments(author string, now time.Time) error {
	if p.Status == ToCompleteForFac {
		return p.apply(CompleteDocumentsForFac, nil, author, now)
	}
	return p.apply(CompleteDocumentsForSIC, nil, author, now)
}

// SendToFac hands the proposition to the faculty.
func (p *Proposition) SendToFac(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(SendToFac, &checklistChange{cfg, checklist.CDDDecision, "PRIS_EN_CHARGE"}, author, now)
}

// ApproveByCDD records the approval of the doctoral committee.
func (p *Proposition) ApproveByCDD(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(ApproveByCDD, &checklistChange{cfg, checklist.CDDDecision, "ACCORD"}, author, now,
		shouldCDDDecisionNotBeClosed(p.Checklist))
}

// RefuseByCDD records the refusal of the doctoral committee.
func (p *Proposition) RefuseByCDD(cfg *checklist.Configuration, reason, author string, now time.Time) error {
	err := p.apply(RefuseByCDD, &checklistChange{cfg, checklist.CDDDecision, "REFUS"}, author, now,
		validator.NotBlank(reason, ErrCDDRefusalReasonMissing),
		shouldCDDDecisionNotBeClosed(p.Checklist),
	)
	if err != nil {
		return err
	}
	p.CDDRefusal = reason
	return nil
}

// ApproveBySIC submits the enrolment office approval to the direction.
func (p *Proposition) ApproveBySIC(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(ApproveBySIC, &checklistChange{cfg, checklist.SICDecision, "AUTORISATION_A_VALIDER"}, author, now)
}

// ValidateEnrolment is the direction authorising the enrolment.
func (p *Proposition) ValidateEnrolment(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(ValidateEnrolment, &checklistChange{cfg, checklist.SICDecision, "AUTORISE"}, author, now)
}

// RefuseEnrolment is the direction refusing the enrolment.
func (p *Proposition) RefuseEnrolment(cfg *checklist.Configuration, reason, author string, now time.Time) error {
	if err := p.apply(RefuseEnrolment, &checklistChange{cfg, checklist.SICDecision, "REFUSE"}, author, now); err != nil {
		return err
	}
	p.SICRefusal = reason
	return nil
}

// Close ends the processing without a decision.
func (p *Proposition) Close(cfg *checklist.Configuration, author string, now time.Time) error {
	return p.apply(Close, &checklistChange{cfg, checklist.SICDecision, "CLOTURE"}, author, now)
}

func (p *Proposition) touch(author string, now time.Time) {
	if author != "" {
		p.LastModifiedBy = author
	}
	p.ModifiedAt = now
}

// Clone returns a deep copy.
func (p *Proposition) Clone() *Proposition {
	c := *p
	c.Checklist = p.Checklist.Clone()
	c.Project.Documents = slices.Clone(p.Project.Documents)
	c.Project.Gantt = slices.Clone(p.Project.Gantt)
	c.Project.DoctoralProgram = slices.Clone(p.Project.DoctoralProgram)
	c.Project.ComplementaryTraining = slices.Clone(p.Project.ComplementaryTraining)
	c.Project.RecommendationLetters = slices.Clone(p.Project.RecommendationLetters)
	c.Financing.ScholarshipProof = slices.Clone(p.Financing.ScholarshipProof)
	if p.SubmittedAt != nil {
		at := *p.SubmittedAt
		c.SubmittedAt = &at
	}
	return &c
}
