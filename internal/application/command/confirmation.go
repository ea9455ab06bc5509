package command

import (
	"context"
	"fmt"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIRMATION EXAM
// ══════════════════════════════════════════════════════════════════════════════

// ConfirmationDeps groups the collaborators of the confirmation handlers.
type ConfirmationDeps struct {
	Exams confirmation.Repository
	// DeadlineMonths is the delay granted when no deadline is given.
	DeadlineMonths int
	Effects
}

// ExamResult is returned by the confirmation handlers.
type ExamResult struct {
	ExamID   confirmation.ExamID
	Deadline time.Time
}

// PlanConfirmationExamCommand creates the confirmation exam of a doctorate.
type PlanConfirmationExamCommand struct {
	DoctorateID shared.PropositionID
	Deadline    *time.Time
}

// CommandName implements bus.Command.
func (PlanConfirmationExamCommand) CommandName() string { return "confirmation.plan" }

// PlanConfirmationExamHandler handles PlanConfirmationExamCommand.
type PlanConfirmationExamHandler struct {
	deps *ConfirmationDeps
}

// NewPlanConfirmationExamHandler creates a new PlanConfirmationExamHandler.
func NewPlanConfirmationExamHandler(deps *ConfirmationDeps) *PlanConfirmationExamHandler {
	return &PlanConfirmationExamHandler{deps: deps}
}

// Handle executes the command.
func (h *PlanConfirmationExamHandler) Handle(ctx context.Context, cmd PlanConfirmationExamCommand) (*ExamResult, error) {
	if err := requireID("PlanConfirmationExam", cmd.DoctorateID); err != nil {
		return nil, err
	}
	exam := confirmation.Initiate(cmd.DoctorateID, cmd.Deadline, h.deps.DeadlineMonths, h.deps.now())
	if err := h.deps.Exams.Save(ctx, exam); err != nil {
		return nil, fmt.Errorf("plan_confirmation_exam: save: %w", err)
	}
	return &ExamResult{ExamID: exam.ID, Deadline: exam.Deadline}, nil
}

// CompleteConfirmationExamCommand records the date and reports of an exam.
type CompleteConfirmationExamCommand struct {
	ExamID                confirmation.ExamID
	Date                  time.Time
	Deadline              time.Time
	ResearchReport        []string
	CAReport              []string
	MandateRenewalOpinion []string
}

// CommandName implements bus.Command.
func (CompleteConfirmationExamCommand) CommandName() string { return "confirmation.complete" }

// CompleteConfirmationExamHandler handles CompleteConfirmationExamCommand.
type CompleteConfirmationExamHandler struct {
	deps *ConfirmationDeps
}

// NewCompleteConfirmationExamHandler creates a new CompleteConfirmationExamHandler.
func NewCompleteConfirmationExamHandler(deps *ConfirmationDeps) *CompleteConfirmationExamHandler {
	return &CompleteConfirmationExamHandler{deps: deps}
}

// Handle executes the command.
func (h *CompleteConfirmationExamHandler) Handle(ctx context.Context, cmd CompleteConfirmationExamCommand) (*ExamResult, error) {
	exam, err := h.deps.Exams.Get(ctx, cmd.ExamID)
	if err != nil {
		return nil, err
	}
	err = exam.Complete(confirmation.CompletionParams{
		Date:                  cmd.Date,
		Deadline:              cmd.Deadline,
		ResearchReport:        cmd.ResearchReport,
		CAReport:              cmd.CAReport,
		MandateRenewalOpinion: cmd.MandateRenewalOpinion,
	})
	if err != nil {
		return nil, err
	}
	if err := h.deps.Exams.Save(ctx, exam); err != nil {
		return nil, fmt.Errorf("complete_confirmation_exam: save: %w", err)
	}
	h.deps.record(ctx, notification.NewEntry(exam.DoctorateID, "",
		"L'épreuve de confirmation a été complétée.", "The confirmation exam has been completed.", h.deps.now(),
		"doctorate", "confirmation"))
	return &ExamResult{ExamID: exam.ID, Deadline: exam.Deadline}, nil
}

// RequestExtensionCommand asks for a later deadline.
type RequestExtensionCommand struct {
	ExamID              confirmation.ExamID
	NewDeadline         time.Time
	Justification       string
	JustificationLetter []string
}

// CommandName implements bus.Command.
func (RequestExtensionCommand) CommandName() string { return "confirmation.request_extension" }

// RequestExtensionHandler handles RequestExtensionCommand.
type RequestExtensionHandler struct {
	deps *ConfirmationDeps
}

// NewRequestExtensionHandler creates a new RequestExtensionHandler.
func NewRequestExtensionHandler(deps *ConfirmationDeps) *RequestExtensionHandler {
	return &RequestExtensionHandler{deps: deps}
}

// Handle executes the command.
func (h *RequestExtensionHandler) Handle(ctx context.Context, cmd RequestExtensionCommand) (*ExamResult, error) {
	exam, err := h.deps.Exams.Get(ctx, cmd.ExamID)
	if err != nil {
		return nil, err
	}
	err = exam.RequestExtension(confirmation.ExtensionRequest{
		NewDeadline:         cmd.NewDeadline,
		Justification:       cmd.Justification,
		JustificationLetter: cmd.JustificationLetter,
	})
	if err != nil {
		return nil, err
	}
	if err := h.deps.Exams.Save(ctx, exam); err != nil {
		return nil, fmt.Errorf("request_extension: save: %w", err)
	}
	return &ExamResult{ExamID: exam.ID, Deadline: exam.Deadline}, nil
}

// SubmitExtensionOpinionCommand records the CDD opinion on an extension.
type SubmitExtensionOpinionCommand struct {
	ExamID  confirmation.ExamID
	Opinion string
	Author  string
}

// CommandName implements bus.Command.
func (SubmitExtensionOpinionCommand) CommandName() string { return "confirmation.submit_extension_opinion" }

// SubmitExtensionOpinionHandler handles SubmitExtensionOpinionCommand.
type SubmitExtensionOpinionHandler struct {
	deps *ConfirmationDeps
}

// NewSubmitExtensionOpinionHandler creates a new SubmitExtensionOpinionHandler.
func NewSubmitExtensionOpinionHandler(deps *ConfirmationDeps) *SubmitExtensionOpinionHandler {
	return &SubmitExtensionOpinionHandler{deps: deps}
}

// Handle executes the command.
func (h *SubmitExtensionOpinionHandler) Handle(ctx context.Context, cmd SubmitExtensionOpinionCommand) (*ExamResult, error) {
	if err := requireField("SubmitExtensionOpinion", "opinion", cmd.Opinion); err != nil {
		return nil, err
	}
	exam, err := h.deps.Exams.Get(ctx, cmd.ExamID)
	if err != nil {
		return nil, err
	}
	if err := exam.SubmitCDDOpinion(cmd.Opinion); err != nil {
		return nil, err
	}
	if err := h.deps.Exams.Save(ctx, exam); err != nil {
		return nil, fmt.Errorf("submit_extension_opinion: save: %w", err)
	}
	h.deps.record(ctx, notification.NewEntry(exam.DoctorateID, cmd.Author,
		"La CDD a donné son avis sur la demande de prolongation.", "The CDD gave its opinion on the extension request.",
		h.deps.now(), "doctorate", "confirmation"))
	return &ExamResult{ExamID: exam.ID, Deadline: exam.Deadline}, nil
}
