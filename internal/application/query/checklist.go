package query

import (
	"context"
	"errors"

	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CHECKLIST QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetChecklistQuery reads the current checklist of a proposition of any
// context.
type GetChecklistQuery struct {
	PropositionID shared.PropositionID
	Language      string
}

// Validate checks the query.
func (q *GetChecklistQuery) Validate() error {
	if q.PropositionID.IsZero() {
		return errors.New("proposition_id is required")
	}
	return nil
}

// ChecklistNodeDTO is a tab or a nested item.
type ChecklistNodeDTO struct {
	Tab         string             `json:"onglet,omitempty"`
	Label       string             `json:"libelle"`
	Status      string             `json:"statut"`
	StatusLabel string             `json:"statut_libelle"`
	Extra       map[string]string  `json:"extra,omitempty"`
	Children    []ChecklistNodeDTO `json:"enfants,omitempty"`
}

// ChecklistDTO lists the tabs in display order.
type ChecklistDTO struct {
	PropositionID string             `json:"uuid_proposition"`
	Context       string             `json:"contexte"`
	Tabs          []ChecklistNodeDTO `json:"onglets"`
}

// GetChecklistHandler handles GetChecklistQuery.
type GetChecklistHandler struct {
	doctorates proposition.Repository
	generals   general.Repository
	config     *checklist.Configuration
}

// NewGetChecklistHandler creates a new handler.
func NewGetChecklistHandler(doctorates proposition.Repository, generals general.Repository, config *checklist.Configuration) *GetChecklistHandler {
	return &GetChecklistHandler{doctorates: doctorates, generals: generals, config: config}
}

// Handle executes the query.
func (h *GetChecklistHandler) Handle(ctx context.Context, query GetChecklistQuery) (*ChecklistDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetChecklist", shared.ErrValidation, err.Error(), err)
	}
	cl, err := h.load(ctx, query.PropositionID)
	if err != nil {
		return nil, err
	}
	tag := shared.ParseLanguage(query.Language)

	dto := &ChecklistDTO{
		PropositionID: query.PropositionID.String(),
		Context:       string(cl.Context),
	}
	for _, tab := range h.config.Tabs(cl.Context) {
		node, ok := cl.Current[tab]
		if !ok {
			continue
		}
		n := newChecklistNodeDTO(node, tag)
		n.Tab = string(tab)
		dto.Tabs = append(dto.Tabs, n)
	}
	return dto, nil
}

// load finds the checklist among doctoral then general propositions.
func (h *GetChecklistHandler) load(ctx context.Context, id shared.PropositionID) (checklist.Checklist, error) {
	p, err := h.doctorates.Get(ctx, id)
	if err == nil {
		return p.Checklist, nil
	}
	if !errors.Is(err, proposition.ErrPropositionNotFound) {
		return checklist.Checklist{}, err
	}
	g, err := h.generals.Get(ctx, id)
	if err != nil {
		return checklist.Checklist{}, err
	}
	return g.Checklist, nil
}

func newChecklistNodeDTO(n checklist.Node, tag language.Tag) ChecklistNodeDTO {
	dto := ChecklistNodeDTO{
		Label:       n.Label,
		Status:      string(n.Status),
		StatusLabel: checklist.StatusLabels.Label(string(n.Status), tag),
		Extra:       n.Extra,
	}
	for _, child := range n.Children {
		dto.Children = append(dto.Children, newChecklistNodeDTO(child, tag))
	}
	return dto
}
