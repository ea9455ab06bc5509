package document

import "github.com/uclouvain/admission-core/internal/domain/shared"

var (
	ErrSlotNotFound = shared.NewBusinessError("DOCUMENT-1", shared.ErrNotFound,
		"document slot not found")
	ErrAlreadyValidated = shared.NewBusinessError("DOCUMENT-2", shared.ErrInvalidState,
		"a validated document cannot be requested")
	ErrTypeNotAllowed = shared.NewBusinessError("DOCUMENT-3", shared.ErrValidation,
		"this operation is not allowed for this type of document slot")
	ErrStatusNotAllowed = shared.NewBusinessError("DOCUMENT-4", shared.ErrStateTransition,
		"this operation is not allowed for the current status of the document slot")
	ErrNoFile = shared.NewBusinessError("DOCUMENT-5", shared.ErrValidation,
		"at least one file is required")
)
