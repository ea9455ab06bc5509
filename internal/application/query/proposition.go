// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROPOSITION QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetPropositionQuery reads one doctoral proposition.
type GetPropositionQuery struct {
	PropositionID shared.PropositionID

	// Language selects the labels, French when empty.
	Language string
}

// Validate checks the query and applies defaults.
func (q *GetPropositionQuery) Validate() error {
	if q.PropositionID.IsZero() {
		return errors.New("proposition_id is required")
	}
	if q.Language == "" {
		q.Language = language.French.String()
	}
	return nil
}

// PropositionDTO is the read model of a doctoral proposition.
type PropositionDTO struct {
	UUID          string            `json:"uuid"`
	Reference     int64             `json:"reference,omitempty"`
	CandidateID   string            `json:"matricule_candidat"`
	Training      shared.TrainingID `json:"doctorat"`
	AdmissionType string            `json:"type_admission"`
	Justification string            `json:"justification,omitempty"`
	Status        string            `json:"statut"`
	StatusLabel   string            `json:"statut_libelle"`

	// ─────────────────────────────────────────────────────────────────────────
	// Project and financing
	// ─────────────────────────────────────────────────────────────────────────

	Project       proposition.Project       `json:"projet"`
	FinancingType string                    `json:"type_financement"`
	Scholarship   string                    `json:"bourse_recherche,omitempty"`
	PriorResearch proposition.PriorResearch `json:"experience_precedente_recherche"`
	Comment       string                    `json:"commentaire,omitempty"`
	CDDRefusal    string                    `json:"motif_refus_cdd,omitempty"`
	SICRefusal    string                    `json:"motif_refus_sic,omitempty"`

	LastModifiedBy string     `json:"modifiee_par,omitempty"`
	CreatedAt      time.Time  `json:"creee_le"`
	ModifiedAt     time.Time  `json:"modifiee_le"`
	SubmittedAt    *time.Time `json:"soumise_le,omitempty"`
}

// PropositionCache caches PropositionDTO per language. Command results
// invalidate the entry of the proposition they touched. GetProposition
// returns a nil DTO on a miss.
type PropositionCache interface {
	GetProposition(ctx context.Context, id shared.PropositionID, lang string) (*PropositionDTO, error)
	SetProposition(ctx context.Context, dto *PropositionDTO, lang string) error
	Invalidate(ctx context.Context, id shared.PropositionID) error
}

// GetPropositionHandler handles GetPropositionQuery.
type GetPropositionHandler struct {
	propositions proposition.Repository
	cache        PropositionCache
	logger       *slog.Logger
}

// NewGetPropositionHandler creates a new handler. cache may be nil.
func NewGetPropositionHandler(propositions proposition.Repository, cache PropositionCache, logger *slog.Logger) *GetPropositionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetPropositionHandler{propositions: propositions, cache: cache, logger: logger}
}

// Handle executes the query.
func (h *GetPropositionHandler) Handle(ctx context.Context, query GetPropositionQuery) (*PropositionDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetProposition", shared.ErrValidation, err.Error(), err)
	}

	if dto, err := h.tryGetFromCache(ctx, query); err == nil && dto != nil {
		return dto, nil
	}

	p, err := h.propositions.Get(ctx, query.PropositionID)
	if err != nil {
		return nil, err
	}
	dto := newPropositionDTO(p, shared.ParseLanguage(query.Language))

	if h.cache != nil {
		if err := h.cache.SetProposition(ctx, dto, query.Language); err != nil {
			h.logger.WarnContext(ctx, "failed to cache proposition",
				"proposition_id", query.PropositionID.String(),
				"error", err)
		}
	}
	return dto, nil
}

// tryGetFromCache reads the cached DTO when a cache is configured.
func (h *GetPropositionHandler) tryGetFromCache(ctx context.Context, query GetPropositionQuery) (*PropositionDTO, error) {
	if h.cache == nil {
		return nil, errors.New("cache not available")
	}
	return h.cache.GetProposition(ctx, query.PropositionID, query.Language)
}

func newPropositionDTO(p *proposition.Proposition, tag language.Tag) *PropositionDTO {
	return &PropositionDTO{
		UUID:           p.ID.String(),
		Reference:      p.Reference,
		CandidateID:    p.CandidateID.String(),
		Training:       p.Training,
		AdmissionType:  string(p.AdmissionType),
		Justification:  p.Justification,
		Status:         string(p.Status),
		StatusLabel:    proposition.StatusLabels.Label(string(p.Status), tag),
		Project:        p.Project,
		FinancingType:  string(p.Financing.Type),
		Scholarship:    p.Financing.Scholarship,
		PriorResearch:  p.PriorResearch,
		Comment:        p.Comment,
		CDDRefusal:     p.CDDRefusal,
		SICRefusal:     p.SICRefusal,
		LastModifiedBy: p.LastModifiedBy,
		CreatedAt:      p.CreatedAt,
		ModifiedAt:     p.ModifiedAt,
		SubmittedAt:    p.SubmittedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST CANDIDATE PROPOSITIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListCandidatePropositionsQuery lists every proposition of a candidate,
// doctoral ones first.
type ListCandidatePropositionsQuery struct {
	CandidateID shared.PersonID
	Language    string
}

// Validate checks the query.
func (q *ListCandidatePropositionsQuery) Validate() error {
	if q.CandidateID.IsEmpty() {
		return errors.New("candidate_id is required")
	}
	return nil
}

// PropositionSummaryDTO is one line of the candidate dashboard.
type PropositionSummaryDTO struct {
	UUID        string            `json:"uuid"`
	Context     string            `json:"contexte"`
	Training    shared.TrainingID `json:"formation"`
	Reference   int64             `json:"reference,omitempty"`
	Status      string            `json:"statut"`
	StatusLabel string            `json:"statut_libelle"`
	CreatedAt   time.Time         `json:"creee_le"`
}

// ListCandidatePropositionsHandler handles ListCandidatePropositionsQuery.
type ListCandidatePropositionsHandler struct {
	doctorates proposition.Repository
	generals   general.Repository
}

// NewListCandidatePropositionsHandler creates a new handler.
func NewListCandidatePropositionsHandler(doctorates proposition.Repository, generals general.Repository) *ListCandidatePropositionsHandler {
	return &ListCandidatePropositionsHandler{doctorates: doctorates, generals: generals}
}

// Handle executes the query.
func (h *ListCandidatePropositionsHandler) Handle(ctx context.Context, query ListCandidatePropositionsQuery) ([]PropositionSummaryDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListCandidatePropositions", shared.ErrValidation, err.Error(), err)
	}
	tag := shared.ParseLanguage(query.Language)

	doctorates, err := h.doctorates.SearchByCandidate(ctx, query.CandidateID)
	if err != nil {
		return nil, shared.WrapError("query", "ListCandidatePropositions", shared.ErrExternalService, "failed to list doctoral propositions", err)
	}
	others, err := h.generals.SearchByCandidate(ctx, query.CandidateID)
	if err != nil {
		return nil, shared.WrapError("query", "ListCandidatePropositions", shared.ErrExternalService, "failed to list general propositions", err)
	}

	result := make([]PropositionSummaryDTO, 0, len(doctorates)+len(others))
	for _, p := range doctorates {
		result = append(result, PropositionSummaryDTO{
			UUID:        p.ID.String(),
			Context:     "DOCTORAT",
			Training:    p.Training,
			Reference:   p.Reference,
			Status:      string(p.Status),
			StatusLabel: proposition.StatusLabels.Label(string(p.Status), tag),
			CreatedAt:   p.CreatedAt,
		})
	}
	for _, p := range others {
		result = append(result, PropositionSummaryDTO{
			UUID:        p.ID.String(),
			Context:     string(p.Kind),
			Training:    p.Training,
			Reference:   p.Reference,
			Status:      string(p.Status),
			StatusLabel: general.StatusLabels.Label(string(p.Status), tag),
			CreatedAt:   p.CreatedAt,
		})
	}
	return result, nil
}
