package query

import (
	"context"
	"errors"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST DOCUMENTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListDocumentsQuery lists the document slots of a proposition.
type ListDocumentsQuery struct {
	PropositionID shared.PropositionID
	Language      string

	// OnlyRequested keeps the slots awaiting the candidate.
	OnlyRequested bool
}

// Validate checks the query.
func (q *ListDocumentsQuery) Validate() error {
	if q.PropositionID.IsZero() {
		return errors.New("proposition_id is required")
	}
	return nil
}

// DocumentDTO is one document slot.
type DocumentDTO struct {
	Identifier    string     `json:"identifiant"`
	Label         string     `json:"libelle"`
	Type          string     `json:"type"`
	Status        string     `json:"statut"`
	StatusLabel   string     `json:"statut_libelle"`
	RequestStatus string     `json:"statut_reclamation,omitempty"`
	Files         []string   `json:"documents_soumis"`
	ManagerReason string     `json:"justification_gestionnaire,omitempty"`
	RequestedAt   *time.Time `json:"reclame_le,omitempty"`
	DueAt         *time.Time `json:"a_echeance_le,omitempty"`
	LastActionAt  *time.Time `json:"derniere_action_le,omitempty"`
	LastActor     string     `json:"dernier_acteur,omitempty"`
}

// ListDocumentsHandler handles ListDocumentsQuery.
type ListDocumentsHandler struct {
	slots document.Repository
}

// NewListDocumentsHandler creates a new handler.
func NewListDocumentsHandler(slots document.Repository) *ListDocumentsHandler {
	return &ListDocumentsHandler{slots: slots}
}

// Handle executes the query.
func (h *ListDocumentsHandler) Handle(ctx context.Context, query ListDocumentsQuery) ([]DocumentDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListDocuments", shared.ErrValidation, err.Error(), err)
	}
	slots, err := h.slots.SearchByProposition(ctx, query.PropositionID)
	if err != nil {
		return nil, shared.WrapError("query", "ListDocuments", shared.ErrExternalService, "failed to list documents", err)
	}
	tag := shared.ParseLanguage(query.Language)

	result := make([]DocumentDTO, 0, len(slots))
	for _, s := range slots {
		if query.OnlyRequested && s.Status != document.Requested {
			continue
		}
		result = append(result, DocumentDTO{
			Identifier:    s.ID.Identifier,
			Label:         s.Label,
			Type:          string(s.Type),
			Status:        string(s.Status),
			StatusLabel:   document.StatusLabels.Label(string(s.Status), tag),
			RequestStatus: string(s.RequestStatus),
			Files:         s.Files,
			ManagerReason: s.ManagerReason,
			RequestedAt:   s.RequestedAt,
			DueAt:         s.DueAt,
			LastActionAt:  s.LastActionAt,
			LastActor:     s.LastActor,
		})
	}
	return result, nil
}
