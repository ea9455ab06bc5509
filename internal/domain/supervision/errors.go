package supervision

import "github.com/uclouvain/admission-core/internal/domain/shared"

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrGroupNotFound = shared.NewBusinessError("PROPOSITION-4", shared.ErrNotFound,
		"supervision group not found")
	ErrPromoterNotFound = shared.NewBusinessError("PROPOSITION-9", shared.ErrNotFound,
		"supervisor not found")
	ErrCAMemberNotFound = shared.NewBusinessError("PROPOSITION-10", shared.ErrNotFound,
		"CA member not found")
	ErrSignatoryNotFound = shared.NewBusinessError("PROPOSITION-11", shared.ErrNotFound,
		"member of supervision group not found")
	ErrSignatoryAlreadyInvited = shared.NewBusinessError("PROPOSITION-12", shared.ErrInvalidState,
		"member of supervision group already invited")
	ErrSignatoryNotInvited = shared.NewBusinessError("PROPOSITION-13", shared.ErrInvalidState,
		"member of supervision group not invited")
	ErrAlreadyMember = shared.NewBusinessError("PROPOSITION-15", shared.ErrAlreadyExists,
		"already a member")
	ErrCotutelleIncomplete = shared.NewBusinessError("PROPOSITION-18", shared.ErrValidation,
		"mandatory fields are missing in the cotutelle")
	ErrMissingPromoter = shared.NewBusinessError("PROPOSITION-19", shared.ErrValidation,
		"at least one internal supervisor is required to request signatures")
	ErrMissingCAMember = shared.NewBusinessError("PROPOSITION-20", shared.ErrValidation,
		"not enough CA members to request signatures")
	ErrCotutelleWithoutExternalPromoter = shared.NewBusinessError("PROPOSITION-21", shared.ErrValidation,
		"a cotutelle requires at least one external supervisor")
	ErrGroupFullForPromoters = shared.NewBusinessError("PROPOSITION-22", shared.ErrLimitReached,
		"there can be no more supervisors in the supervision group")
	ErrGroupFullForCAMembers = shared.NewBusinessError("PROPOSITION-23", shared.ErrLimitReached,
		"there can be no more CA members in the supervision group")
	ErrNotApprovedByPromoters = shared.NewBusinessError("PROPOSITION-37", shared.ErrInvalidState,
		"all supervisors must have approved the proposition")
	ErrNotApprovedByCAMembers = shared.NewBusinessError("PROPOSITION-38", shared.ErrInvalidState,
		"all CA members must have approved the proposition")
	ErrMissingReferencePromoter = shared.NewBusinessError("PROPOSITION-42", shared.ErrValidation,
		"a contact supervisor must be set")
)
