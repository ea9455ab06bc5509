package proposition

import "github.com/uclouvain/admission-core/internal/domain/shared"

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrMaximumPropositionsReached = shared.NewBusinessError("PROPOSITION-1", shared.ErrLimitReached,
		"too many applications in progress at the same time")
	ErrDoctorateNotFound = shared.NewBusinessError("PROPOSITION-2", shared.ErrNotFound,
		"no PhD found")
	ErrPropositionNotFound = shared.NewBusinessError("PROPOSITION-3", shared.ErrNotFound,
		"proposition not found")
	ErrWorkContractInconsistent = shared.NewBusinessError("PROPOSITION-6", shared.ErrValidation,
		"work contract should be set when funding type is set to work contract")
	ErrInstitutionInconsistent = shared.NewBusinessError("PROPOSITION-7", shared.ErrValidation,
		"institution should be set when PhD has been set to yes or partial")
	ErrThesisDomainInconsistent = shared.NewBusinessError("PROPOSITION-8", shared.ErrValidation,
		"thesis field should be set when PhD has been set to yes or partial")
	ErrJustificationRequired = shared.NewBusinessError("PROPOSITION-16", shared.ErrValidation,
		"a justification is needed when creating a pre-admission")
	ErrProjectIncomplete = shared.NewBusinessError("PROPOSITION-17", shared.ErrValidation,
		"mandatory fields are missing in the project details of the proposition")
	ErrThesisInstituteRequired = shared.NewBusinessError("PROPOSITION-39", shared.ErrValidation,
		"thesis institute must be set")
	ErrSignatureRequestNotStarted = shared.NewBusinessError("PROPOSITION-36", shared.ErrInvalidState,
		"the signature request procedure isn't in progress")
	ErrSignatureRequestInProgress = shared.NewBusinessError("PROPOSITION-52", shared.ErrInvalidState,
		"the signature request procedure is already in progress")
	ErrNotManagedBySIC = shared.NewBusinessError("PROPOSITION-67", shared.ErrStateTransition,
		"the proposition must be managed by SIC to perform this action")
	ErrNotManagedByCDD = shared.NewBusinessError("PROPOSITION-68", shared.ErrStateTransition,
		"the proposition must be managed by the CDD to perform this action")
	ErrCDDRefusalReasonMissing = shared.NewBusinessError("PROPOSITION-70", shared.ErrValidation,
		"when refusing a proposition, the reason must be specified")
	ErrCDDDecisionClosed = shared.NewBusinessError("PROPOSITION-71", shared.ErrStateTransition,
		"it is not possible to go from the closed status to this status")
	ErrGroupLocked = shared.NewBusinessError("PROPOSITION-76", shared.ErrInvalidState,
		"the supervision group can no longer be changed once the proposition is submitted")
	ErrNotAwaitingSignatures = shared.NewBusinessError("DOCTORAT-8", shared.ErrInvalidState,
		"the proposition must be in the signing status")
	ErrNotDraft = shared.NewBusinessError("DOCTORAT-10", shared.ErrInvalidState,
		"the proposition must be in the draft status")
	ErrCancelled = shared.NewBusinessError("DOCTORAT-12", shared.ErrStateTransition,
		"the proposition is cancelled")
	ErrScholarshipNotFound = shared.NewBusinessError("BOURSE-1", shared.ErrNotFound,
		"scholarship not found")
)
