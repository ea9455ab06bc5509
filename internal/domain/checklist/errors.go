package checklist

import "github.com/uclouvain/admission-core/internal/domain/shared"

var (
	ErrUnknownStatus = shared.NewBusinessError("CHECKLIST-1", shared.ErrValidation,
		"status not allowed for this checklist tab")
	ErrPaymentNotCancellable = shared.NewBusinessError("CHECKLIST-2", shared.ErrInvalidState,
		"application fees were already paid")
	ErrUnknownTab = shared.NewBusinessError("CHECKLIST-3", shared.ErrNotFound,
		"unknown checklist tab")
	ErrChildNotFound = shared.NewBusinessError("CHECKLIST-4", shared.ErrNotFound,
		"checklist item not found")
	ErrChildAlreadyExists = shared.NewBusinessError("CHECKLIST-5", shared.ErrAlreadyExists,
		"checklist item already exists")
)
