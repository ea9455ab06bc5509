package query

import (
	"context"
	"errors"

	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERIFY PROJECT QUERY
// Runs the project validators without changing anything, so the candidate
// sees every missing piece before requesting signatures.
// ══════════════════════════════════════════════════════════════════════════════

// VerifyProjectQuery checks a doctoral proposition and its group.
type VerifyProjectQuery struct {
	PropositionID shared.PropositionID
}

// Validate checks the query.
func (q *VerifyProjectQuery) Validate() error {
	if q.PropositionID.IsZero() {
		return errors.New("proposition_id is required")
	}
	return nil
}

// ViolationDTO is one failed business rule.
type ViolationDTO struct {
	Code    string `json:"status_code"`
	Message string `json:"detail"`
}

// VerificationDTO lists every violation, empty when the project is complete.
type VerificationDTO struct {
	Complete   bool           `json:"complet"`
	Violations []ViolationDTO `json:"erreurs"`
}

// VerifyProjectHandler handles VerifyProjectQuery.
type VerifyProjectHandler struct {
	propositions proposition.Repository
	groups       supervision.Repository
	promoters    supervision.PromoterTranslator
	scholarships proposition.ScholarshipTranslator
	limits       supervision.Limits
}

// NewVerifyProjectHandler creates a new handler.
func NewVerifyProjectHandler(
	propositions proposition.Repository,
	groups supervision.Repository,
	promoters supervision.PromoterTranslator,
	scholarships proposition.ScholarshipTranslator,
	limits supervision.Limits,
) *VerifyProjectHandler {
	return &VerifyProjectHandler{
		propositions: propositions,
		groups:       groups,
		promoters:    promoters,
		scholarships: scholarships,
		limits:       limits,
	}
}

// Handle executes the query. Business violations are part of the result;
// only technical failures are returned as errors.
func (h *VerifyProjectHandler) Handle(ctx context.Context, query VerifyProjectQuery) (*VerificationDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "VerifyProject", shared.ErrValidation, err.Error(), err)
	}
	p, err := h.propositions.Get(ctx, query.PropositionID)
	if err != nil {
		return nil, err
	}
	g, err := h.groups.Get(ctx, query.PropositionID)
	if err != nil {
		return nil, err
	}
	lookups, err := proposition.ResolveLookups(ctx, h.promoters, h.scholarships, p, g, h.limits)
	if err != nil {
		return nil, shared.WrapError("query", "VerifyProject", shared.ErrExternalService, "failed to resolve lookups", err)
	}

	verr := proposition.ProjectVerifier{}.Verify(p, g, lookups)
	if verr != nil && !shared.IsBusiness(verr) {
		return nil, verr
	}
	violations := shared.BusinessErrors(verr)
	dto := &VerificationDTO{
		Complete:   len(violations) == 0,
		Violations: make([]ViolationDTO, 0, len(violations)),
	}
	for _, v := range violations {
		dto.Violations = append(dto.Violations, ViolationDTO{Code: v.Code, Message: v.Message})
	}
	return dto, nil
}
