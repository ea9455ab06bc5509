package query

import (
	"context"
	"errors"

	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// GetConfirmationExamsQuery lists the confirmation exams of a doctorate,
// the current one first.
type GetConfirmationExamsQuery struct {
	DoctorateID shared.PropositionID
}

// Validate checks the query.
func (q *GetConfirmationExamsQuery) Validate() error {
	if q.DoctorateID.IsZero() {
		return errors.New("doctorate_id is required")
	}
	return nil
}

// GetConfirmationExamsHandler handles GetConfirmationExamsQuery.
type GetConfirmationExamsHandler struct {
	exams confirmation.Repository
}

// NewGetConfirmationExamsHandler creates a new handler.
func NewGetConfirmationExamsHandler(exams confirmation.Repository) *GetConfirmationExamsHandler {
	return &GetConfirmationExamsHandler{exams: exams}
}

// Handle executes the query.
func (h *GetConfirmationExamsHandler) Handle(ctx context.Context, query GetConfirmationExamsQuery) ([]confirmation.ExamDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetConfirmationExams", shared.ErrValidation, err.Error(), err)
	}
	exams, err := h.exams.SearchByDoctorate(ctx, query.DoctorateID)
	if err != nil {
		return nil, shared.WrapError("query", "GetConfirmationExams", shared.ErrExternalService, "failed to list exams", err)
	}
	result := make([]confirmation.ExamDTO, 0, len(exams))
	for _, e := range exams {
		result = append(result, e.DTO())
	}
	return result, nil
}
