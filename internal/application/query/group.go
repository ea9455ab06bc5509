package query

import (
	"context"
	"errors"
	"time"

	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SUPERVISION GROUP QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetGroupQuery reads the supervision group of a proposition.
type GetGroupQuery struct {
	PropositionID shared.PropositionID
	Language      string
}

// Validate checks the query.
func (q *GetGroupQuery) Validate() error {
	if q.PropositionID.IsZero() {
		return errors.New("proposition_id is required")
	}
	return nil
}

// SignatureDTO is the signature of one promoter or CA member.
type SignatureDTO struct {
	Person          string    `json:"matricule"`
	State           string    `json:"statut"`
	StateLabel      string    `json:"statut_libelle"`
	IsReference     bool      `json:"est_reference,omitempty"`
	ExternalComment string    `json:"commentaire_externe,omitempty"`
	InternalComment string    `json:"commentaire_interne,omitempty"`
	RefusalReason   string    `json:"motif_refus,omitempty"`
	PDF             []string  `json:"pdf,omitempty"`
	UpdatedAt       time.Time `json:"date"`
}

// GroupDTO is the read model of a supervision group.
type GroupDTO struct {
	PropositionID string                 `json:"uuid_proposition"`
	Promoters     []SignatureDTO         `json:"signatures_promoteurs"`
	CAMembers     []SignatureDTO         `json:"signatures_membres_ca"`
	Cotutelle     *supervision.Cotutelle `json:"cotutelle,omitempty"`
}

// GetGroupHandler handles GetGroupQuery.
type GetGroupHandler struct {
	groups supervision.Repository
}

// NewGetGroupHandler creates a new handler.
func NewGetGroupHandler(groups supervision.Repository) *GetGroupHandler {
	return &GetGroupHandler{groups: groups}
}

// Handle executes the query. Internal comments are included; the boundary
// strips them for the candidate.
func (h *GetGroupHandler) Handle(ctx context.Context, query GetGroupQuery) (*GroupDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetGroup", shared.ErrValidation, err.Error(), err)
	}
	g, err := h.groups.Get(ctx, query.PropositionID)
	if err != nil {
		return nil, err
	}
	tag := shared.ParseLanguage(query.Language)

	dto := &GroupDTO{
		PropositionID: g.PropositionID.String(),
		Promoters:     make([]SignatureDTO, 0, len(g.Promoters)),
		CAMembers:     make([]SignatureDTO, 0, len(g.CAMembers)),
		Cotutelle:     g.Cotutelle,
	}
	for _, s := range g.Promoters {
		sig := newSignatureDTO(s, tag)
		sig.IsReference = s.Person == g.ReferencePromoter
		dto.Promoters = append(dto.Promoters, sig)
	}
	for _, s := range g.CAMembers {
		dto.CAMembers = append(dto.CAMembers, newSignatureDTO(s, tag))
	}
	return dto, nil
}

func newSignatureDTO(s supervision.Signature, tag language.Tag) SignatureDTO {
	return SignatureDTO{
		Person:          s.Person.String(),
		State:           string(s.State),
		StateLabel:      supervision.SignatureStateLabels.Label(string(s.State), tag),
		ExternalComment: s.ExternalComment,
		InternalComment: s.InternalComment,
		RefusalReason:   s.RefusalReason,
		PDF:             s.PDF,
		UpdatedAt:       s.UpdatedAt,
	}
}
