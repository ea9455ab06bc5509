// Package confirmation holds the doctoral confirmation exam.
package confirmation

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
	"github.com/uclouvain/admission-core/pkg/timeutil"
)

// DefaultDeadlineMonths is the delay granted to pass the exam when no
// deadline is given.
const DefaultDeadlineMonths = 24

var (
	ErrExamNotFound = shared.NewBusinessError("EPREUVE-CONFIRMATION-1", shared.ErrNotFound,
		"confirmation exam not found")
	ErrExtensionIncomplete = shared.NewBusinessError("EPREUVE-CONFIRMATION-2", shared.ErrValidation,
		"the extension request needs a new deadline and a justification")
	ErrDateAfterDeadline = shared.NewBusinessError("EPREUVE-CONFIRMATION-3", shared.ErrValidation,
		"the date of the confirmation exam must not be later than the deadline")
	ErrExtensionAlreadyPending = shared.NewBusinessError("EPREUVE-CONFIRMATION-4", shared.ErrInvalidState,
		"an extension request is already awaiting the opinion of the CDD")
	ErrNoExtensionRequest = shared.NewBusinessError("EPREUVE-CONFIRMATION-5", shared.ErrInvalidState,
		"there is no extension request to give an opinion on")
	ErrOpinionRequired = shared.NewBusinessError("EPREUVE-CONFIRMATION-6", shared.ErrValidation,
		"the opinion of the CDD must be specified")
)

// ExamID identifies a confirmation exam.
type ExamID uuid.UUID

// NewExamID generates a fresh identity.
func NewExamID() ExamID {
	return ExamID(uuid.New())
}

// String returns the string representation.
func (id ExamID) String() string {
	return uuid.UUID(id).String()
}

// ExtensionRequest asks to push back the deadline.
type ExtensionRequest struct {
	NewDeadline         time.Time
	Justification       string
	JustificationLetter []string
	CDDOpinion          string
}

// Pending reports whether the CDD has not answered yet.
func (r *ExtensionRequest) Pending() bool {
	return r != nil && r.CDDOpinion == ""
}

// Exam is the confirmation exam of a doctorate.
type Exam struct {
	ID                    ExamID
	DoctorateID           shared.PropositionID
	Deadline              time.Time
	Date                  *time.Time
	ResearchReport        []string
	CAReport              []string
	CAReportCanvas        []string
	MandateRenewalOpinion []string
	SuccessCertificate    []string
	FailureCertificate    []string
	Extension             *ExtensionRequest
}

// Initiate creates the exam of a doctorate. Without deadline, the exam
// must take place within months calendar months from now.
func Initiate(doctorateID shared.PropositionID, deadline *time.Time, months int, now time.Time) *Exam {
	e := &Exam{ID: NewExamID(), DoctorateID: doctorateID}
	if deadline != nil {
		e.Deadline = *deadline
	} else {
		if months <= 0 {
			months = DefaultDeadlineMonths
		}
		e.Deadline = timeutil.AddMonths(now, months)
	}
	return e
}

// CompletionParams carries the data of a completed exam.
type CompletionParams struct {
	Date                  time.Time
	Deadline              time.Time
	ResearchReport        []string
	CAReport              []string
	MandateRenewalOpinion []string
}

// Complete records the exam date and its reports.
func (e *Exam) Complete(p CompletionParams) error {
	if err := validator.Check(!p.Date.After(p.Deadline), ErrDateAfterDeadline).Validate(); err != nil {
		return err
	}
	date := p.Date
	e.Date = &date
	e.Deadline = p.Deadline
	e.ResearchReport = slices.Clone(p.ResearchReport)
	e.CAReport = slices.Clone(p.CAReport)
	e.MandateRenewalOpinion = slices.Clone(p.MandateRenewalOpinion)
	return nil
}

// RequestExtension files an extension request. Only one request may await
// the CDD opinion at a time.
func (e *Exam) RequestExtension(r ExtensionRequest) error {
	err := validator.List{
		DataContract: []validator.Validator{
			validator.Check(!e.Extension.Pending(), ErrExtensionAlreadyPending),
		},
		Invariants: []validator.Validator{
			validator.Check(!r.NewDeadline.IsZero() && r.Justification != "", ErrExtensionIncomplete),
		},
	}.Validate()
	if err != nil {
		return err
	}
	e.Extension = &ExtensionRequest{
		NewDeadline:         r.NewDeadline,
		Justification:       r.Justification,
		JustificationLetter: slices.Clone(r.JustificationLetter),
	}
	return nil
}

// SubmitCDDOpinion answers the pending extension request. An answered
// request cannot be answered again.
func (e *Exam) SubmitCDDOpinion(opinion string) error {
	err := validator.List{
		DataContract: []validator.Validator{
			validator.Check(e.Extension.Pending(), ErrNoExtensionRequest),
		},
		Invariants: []validator.Validator{
			validator.NotBlank(opinion, ErrOpinionRequired),
		},
	}.Validate()
	if err != nil {
		return err
	}
	e.Extension.CDDOpinion = opinion
	return nil
}

// Clone returns a deep copy.
func (e *Exam) Clone() *Exam {
	c := *e
	if e.Date != nil {
		d := *e.Date
		c.Date = &d
	}
	c.ResearchReport = slices.Clone(e.ResearchReport)
	c.CAReport = slices.Clone(e.CAReport)
	c.CAReportCanvas = slices.Clone(e.CAReportCanvas)
	c.MandateRenewalOpinion = slices.Clone(e.MandateRenewalOpinion)
	c.SuccessCertificate = slices.Clone(e.SuccessCertificate)
	c.FailureCertificate = slices.Clone(e.FailureCertificate)
	if e.Extension != nil {
		ext := *e.Extension
		ext.JustificationLetter = slices.Clone(e.Extension.JustificationLetter)
		c.Extension = &ext
	}
	return &c
}

// ─────────────────────────────────────────────────────────────────────────────
// Read model
// ─────────────────────────────────────────────────────────────────────────────

// ExtensionRequestDTO is the read model of an extension request.
type ExtensionRequestDTO struct {
	NewDeadline         time.Time `json:"nouvelle_echeance"`
	Justification       string    `json:"justification_succincte"`
	JustificationLetter []string  `json:"lettre_justification"`
	CDDOpinion          string    `json:"avis_cdd"`
}

// ExamDTO is the read model of an exam.
type ExamDTO struct {
	ID                    string               `json:"uuid"`
	Deadline              time.Time            `json:"date_limite"`
	Date                  *time.Time           `json:"date"`
	ResearchReport        []string             `json:"rapport_recherche"`
	CAReport              []string             `json:"proces_verbal_ca"`
	MandateRenewalOpinion []string             `json:"avis_renouvellement_mandat_recherche"`
	Extension             *ExtensionRequestDTO `json:"demande_prolongation"`
}

// DTO builds the read model.
func (e *Exam) DTO() ExamDTO {
	c := e.Clone()
	dto := ExamDTO{
		ID:                    c.ID.String(),
		Deadline:              c.Deadline,
		Date:                  c.Date,
		ResearchReport:        c.ResearchReport,
		CAReport:              c.CAReport,
		MandateRenewalOpinion: c.MandateRenewalOpinion,
	}
	if c.Extension != nil {
		dto.Extension = &ExtensionRequestDTO{
			NewDeadline:         c.Extension.NewDeadline,
			Justification:       c.Extension.Justification,
			JustificationLetter: c.Extension.JustificationLetter,
			CDDOpinion:          c.Extension.CDDOpinion,
		}
	}
	return dto
}

// Repository loads and saves confirmation exams.
type Repository interface {
	// Get returns ErrExamNotFound when absent.
	Get(ctx context.Context, id ExamID) (*Exam, error)
	Save(ctx context.Context, e *Exam) error
	// SearchByDoctorate lists the exams of a doctorate, most recent first.
	SearchByDoctorate(ctx context.Context, doctorateID shared.PropositionID) ([]*Exam, error)
}
