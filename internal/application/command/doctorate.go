package command

import (
	"context"
	"fmt"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// ══════════════════════════════════════════════════════════════════════════════
// INITIATE PROPOSITION
// ══════════════════════════════════════════════════════════════════════════════

// InitiatePropositionCommand creates a doctoral proposition for a candidate.
type InitiatePropositionCommand struct {
	CandidateID   shared.PersonID
	Training      shared.TrainingID
	AdmissionType proposition.AdmissionType
	Justification string
	Project       proposition.Project
	Financing     proposition.Financing
	PriorResearch proposition.PriorResearch
}

// CommandName implements bus.Command.
func (InitiatePropositionCommand) CommandName() string { return "doctorate.initiate" }

// Validate validates the command.
func (c InitiatePropositionCommand) Validate() error {
	if err := requireField("InitiateProposition", "candidate_id", c.CandidateID.String()); err != nil {
		return err
	}
	if c.Training.IsZero() {
		return shared.NewDomainError("command", "InitiateProposition", shared.ErrInvalidInput, "training is required")
	}
	return nil
}

// InitiatePropositionHandler handles InitiatePropositionCommand.
type InitiatePropositionHandler struct {
	deps *DoctorateDeps
}

// NewInitiatePropositionHandler creates a new InitiatePropositionHandler.
func NewInitiatePropositionHandler(deps *DoctorateDeps) *InitiatePropositionHandler {
	return &InitiatePropositionHandler{deps: deps}
}

// Handle creates the proposition and its empty supervision group.
func (h *InitiatePropositionHandler) Handle(ctx context.Context, cmd InitiatePropositionCommand) (*PropositionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, err := h.deps.Doctorates.Get(ctx, cmd.Training); err != nil {
		return nil, err
	}
	active, err := h.deps.Propositions.CountActiveByCandidate(ctx, cmd.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("initiate_proposition: count active: %w", err)
	}

	now := h.deps.now()
	p, err := proposition.Initiate(proposition.InitiateParams{
		CandidateID:        cmd.CandidateID,
		Training:           cmd.Training,
		AdmissionType:      cmd.AdmissionType,
		Justification:      cmd.Justification,
		Project:            cmd.Project,
		Financing:          cmd.Financing,
		PriorResearch:      cmd.PriorResearch,
		ActivePropositions: active,
		MaxPropositions:    h.deps.MaxPropositions,
	}, h.deps.Checklist, now)
	if err != nil {
		return nil, err
	}

	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("initiate_proposition: save proposition: %w", err)
	}
	if err := h.deps.Groups.Save(ctx, supervision.NewGroup(p.ID)); err != nil {
		return nil, fmt.Errorf("initiate_proposition: save group: %w", err)
	}

	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.CandidateID.String(),
		"La proposition a été initiée.", "The proposition has been initiated.", now, "proposition", "status-changed"))
	return resultOf(p), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE PROPOSITION
// ══════════════════════════════════════════════════════════════════════════════

// CompletePropositionCommand updates the project, financing and prior
// research of a draft.
type CompletePropositionCommand struct {
	PropositionID shared.PropositionID
	AdmissionType proposition.AdmissionType
	Justification string
	Project       proposition.Project
	Financing     proposition.Financing
	PriorResearch proposition.PriorResearch
	Comment       string
	Author        string
}

// CommandName implements bus.Command.
func (CompletePropositionCommand) CommandName() string { return "doctorate.complete" }

// CompletePropositionHandler handles CompletePropositionCommand.
type CompletePropositionHandler struct {
	deps *DoctorateDeps
}

// NewCompletePropositionHandler creates a new CompletePropositionHandler.
func NewCompletePropositionHandler(deps *DoctorateDeps) *CompletePropositionHandler {
	return &CompletePropositionHandler{deps: deps}
}

// Handle executes the command.
func (h *CompletePropositionHandler) Handle(ctx context.Context, cmd CompletePropositionCommand) (*PropositionResult, error) {
	if err := requireID("CompleteProposition", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, err := h.deps.Propositions.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	if cmd.Financing.Type == proposition.SearchScholarship && cmd.Financing.Scholarship != "" {
		if _, err := h.deps.Scholarships.Get(ctx, cmd.Financing.Scholarship); err != nil {
			return nil, err
		}
	}

	err = p.Complete(proposition.CompletionParams{
		AdmissionType: cmd.AdmissionType,
		Justification: cmd.Justification,
		Project:       cmd.Project,
		Financing:     cmd.Financing,
		PriorResearch: cmd.PriorResearch,
		Comment:       cmd.Comment,
		Author:        cmd.Author,
	}, h.deps.now())
	if err != nil {
		return nil, err
	}
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("complete_proposition: save: %w", err)
	}
	return resultOf(p), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MODIFY ADMISSION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// ModifyAdmissionTypeCommand switches a draft between admission and
// pre-admission.
type ModifyAdmissionTypeCommand struct {
	PropositionID shared.PropositionID
	AdmissionType proposition.AdmissionType
	Justification string
	Author        string
}

// CommandName implements bus.Command.
func (ModifyAdmissionTypeCommand) CommandName() string { return "doctorate.modify_admission_type" }

// ModifyAdmissionTypeHandler handles ModifyAdmissionTypeCommand.
type ModifyAdmissionTypeHandler struct {
	deps *DoctorateDeps
}

// NewModifyAdmissionTypeHandler creates a new ModifyAdmissionTypeHandler.
func NewModifyAdmissionTypeHandler(deps *DoctorateDeps) *ModifyAdmissionTypeHandler {
	return &ModifyAdmissionTypeHandler{deps: deps}
}

// Handle executes the command.
func (h *ModifyAdmissionTypeHandler) Handle(ctx context.Context, cmd ModifyAdmissionTypeCommand) (*PropositionResult, error) {
	if err := requireID("ModifyAdmissionType", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, err := h.deps.Propositions.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	if err := p.ModifyAdmissionType(cmd.AdmissionType, cmd.Justification, cmd.Author, h.deps.now()); err != nil {
		return nil, err
	}
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("modify_admission_type: save: %w", err)
	}
	return resultOf(p), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CANCEL PROPOSITION
// ══════════════════════════════════════════════════════════════════════════════

// CancelPropositionCommand cancels a proposition.
type CancelPropositionCommand struct {
	PropositionID shared.PropositionID
	Author        string
}

// CommandName implements bus.Command.
func (CancelPropositionCommand) CommandName() string { return "doctorate.cancel" }

// CancelPropositionHandler handles CancelPropositionCommand.
type CancelPropositionHandler struct {
	deps *DoctorateDeps
}

// NewCancelPropositionHandler creates a new CancelPropositionHandler.
func NewCancelPropositionHandler(deps *DoctorateDeps) *CancelPropositionHandler {
	return &CancelPropositionHandler{deps: deps}
}

// Handle executes the command.
func (h *CancelPropositionHandler) Handle(ctx context.Context, cmd CancelPropositionCommand) (*PropositionResult, error) {
	if err := requireID("CancelProposition", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, err := h.deps.Propositions.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	now := h.deps.now()
	if err := p.Cancel(cmd.Author, now); err != nil {
		return nil, err
	}
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("cancel_proposition: save: %w", err)
	}
	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		"La proposition a été annulée.", "The proposition has been cancelled.", now, "proposition", "status-changed"))
	return resultOf(p), nil
}
