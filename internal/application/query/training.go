package query

import (
	"context"
	"errors"

	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/training"
)

// ListActivitiesQuery lists the doctoral training activities of a doctorate.
type ListActivitiesQuery struct {
	DoctorateID shared.PropositionID
	Language    string
}

// Validate checks the query.
func (q *ListActivitiesQuery) Validate() error {
	if q.DoctorateID.IsZero() {
		return errors.New("doctorate_id is required")
	}
	return nil
}

// ActivityDTO is one activity, sub-activities nested under their parent.
type ActivityDTO struct {
	UUID          string        `json:"uuid"`
	Category      string        `json:"categorie"`
	Title         string        `json:"titre"`
	Status        string        `json:"statut"`
	StatusLabel   string        `json:"statut_libelle"`
	ECTS          float64       `json:"ects"`
	RefusalReason string        `json:"motif_refus,omitempty"`
	SubActivities []ActivityDTO `json:"sous_activites,omitempty"`
}

// ActivitiesDTO lists top-level activities with the accepted credit total.
type ActivitiesDTO struct {
	Activities []ActivityDTO `json:"activites"`
	TotalECTS  float64       `json:"total_ects"`
}

// ListActivitiesHandler handles ListActivitiesQuery.
type ListActivitiesHandler struct {
	activities training.Repository
}

// NewListActivitiesHandler creates a new handler.
func NewListActivitiesHandler(activities training.Repository) *ListActivitiesHandler {
	return &ListActivitiesHandler{activities: activities}
}

// Handle executes the query.
func (h *ListActivitiesHandler) Handle(ctx context.Context, query ListActivitiesQuery) (*ActivitiesDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListActivities", shared.ErrValidation, err.Error(), err)
	}
	all, err := h.activities.SearchByDoctorate(ctx, query.DoctorateID)
	if err != nil {
		return nil, shared.WrapError("query", "ListActivities", shared.ErrExternalService, "failed to list activities", err)
	}
	tag := shared.ParseLanguage(query.Language)

	dto := &ActivitiesDTO{TotalECTS: training.Total(all)}
	for _, a := range all {
		if a.ParentID != nil {
			continue
		}
		item := newActivityDTO(a, tag)
		for _, child := range training.ChildrenOf(all, a.ID) {
			item.SubActivities = append(item.SubActivities, newActivityDTO(child, tag))
		}
		dto.Activities = append(dto.Activities, item)
	}
	return dto, nil
}

func newActivityDTO(a *training.Activity, tag language.Tag) ActivityDTO {
	return ActivityDTO{
		UUID:          a.ID.String(),
		Category:      string(a.Category),
		Title:         a.Title,
		Status:        string(a.Status),
		StatusLabel:   training.StatusLabels.Label(string(a.Status), tag),
		ECTS:          a.ECTS,
		RefusalReason: a.RefusalReason,
	}
}
