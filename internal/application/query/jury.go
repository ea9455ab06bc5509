package query

import (
	"context"
	"errors"

	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// GetJuryQuery reads the jury of a doctorate.
type GetJuryQuery struct {
	DoctorateID shared.PropositionID
}

// Validate checks the query.
func (q *GetJuryQuery) Validate() error {
	if q.DoctorateID.IsZero() {
		return errors.New("doctorate_id is required")
	}
	return nil
}

// JuryMemberDTO is one jury member. External members carry their
// identity; internal ones only their registration.
type JuryMemberDTO struct {
	UUID         string `json:"uuid"`
	Role         string `json:"role"`
	IsPromoter   bool   `json:"est_promoteur"`
	Registration string `json:"matricule,omitempty"`
	Institution  string `json:"institution,omitempty"`
	Country      string `json:"pays,omitempty"`
	LastName     string `json:"nom,omitempty"`
	FirstName    string `json:"prenom,omitempty"`
	Title        string `json:"titre,omitempty"`
	Email        string `json:"email,omitempty"`
}

// JuryDTO is the read model of a jury.
type JuryDTO struct {
	UUID    string          `json:"uuid"`
	Title   string          `json:"titre_propose"`
	Members []JuryMemberDTO `json:"membres"`
}

// GetJuryHandler handles GetJuryQuery.
type GetJuryHandler struct {
	juries jury.Repository
}

// NewGetJuryHandler creates a new handler.
func NewGetJuryHandler(juries jury.Repository) *GetJuryHandler {
	return &GetJuryHandler{juries: juries}
}

// Handle executes the query.
func (h *GetJuryHandler) Handle(ctx context.Context, query GetJuryQuery) (*JuryDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetJury", shared.ErrValidation, err.Error(), err)
	}
	j, err := h.juries.Get(ctx, query.DoctorateID)
	if err != nil {
		return nil, err
	}
	dto := &JuryDTO{
		UUID:    j.ID.String(),
		Title:   j.Title,
		Members: make([]JuryMemberDTO, 0, len(j.Members)),
	}
	for _, m := range j.Members {
		institution := m.Institution
		if institution == "" {
			institution = m.OtherInstitution
		}
		dto.Members = append(dto.Members, JuryMemberDTO{
			UUID:         m.ID.String(),
			Role:         string(m.Role),
			IsPromoter:   m.IsPromoter,
			Registration: m.Registration,
			Institution:  institution,
			Country:      m.Country,
			LastName:     m.LastName,
			FirstName:    m.FirstName,
			Title:        string(m.Title),
			Email:        m.Email,
		})
	}
	return dto, nil
}
