package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT PROPOSITION
// ══════════════════════════════════════════════════════════════════════════════

// SubmitPropositionCommand submits a doctoral proposition.
type SubmitPropositionCommand struct {
	PropositionID shared.PropositionID
	Author        string
}

// CommandName implements bus.Command.
func (SubmitPropositionCommand) CommandName() string { return "doctorate.submit" }

// SubmitPropositionResult carries the allocated reference.
type SubmitPropositionResult struct {
	PropositionID shared.PropositionID
	Reference     int64
}

// SubmitPropositionHandler handles SubmitPropositionCommand.
type SubmitPropositionHandler struct {
	deps *DoctorateDeps
}

// NewSubmitPropositionHandler creates a new SubmitPropositionHandler.
func NewSubmitPropositionHandler(deps *DoctorateDeps) *SubmitPropositionHandler {
	return &SubmitPropositionHandler{deps: deps}
}

// Handle verifies the proposition, allocates its reference and submits it.
// The reference is only allocated once every verification passed.
func (h *SubmitPropositionHandler) Handle(ctx context.Context, cmd SubmitPropositionCommand) (*SubmitPropositionResult, error) {
	if err := requireID("SubmitProposition", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, g, err := h.deps.load(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	lookups, err := h.deps.lookups(ctx, p, g)
	if err != nil {
		return nil, fmt.Errorf("submit_proposition: %w", err)
	}
	if err := proposition.VerifySubmission(p, g, lookups); err != nil {
		return nil, err
	}

	reference, err := h.deps.Propositions.NextReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit_proposition: allocate reference: %w", err)
	}
	now := h.deps.now()
	p.Submit(reference, now)
	p.LastModifiedBy = cmd.Author

	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("submit_proposition: save: %w", err)
	}

	h.deps.publish(shared.NewDoctoralPropositionSubmittedEvent(
		p.ID.String(), p.CandidateID.String(), reference, p.IsPreAdmission(), now))
	h.deps.notify(ctx, notification.Submitted(p.ID, p.CandidateID, g.PromoterIDs(), strconv.FormatInt(reference, 10), now))
	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		"La proposition a été soumise.", "The proposition has been submitted.", now, "proposition", "status-changed"))

	return &SubmitPropositionResult{PropositionID: p.ID, Reference: reference}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REFUSE MERGE
// ══════════════════════════════════════════════════════════════════════════════

// RefuseMergeCommand records that a manager refused to merge the candidate
// with an existing person record.
type RefuseMergeCommand struct {
	PropositionID shared.PropositionID
	Author        string
}

// CommandName implements bus.Command.
func (RefuseMergeCommand) CommandName() string { return "doctorate.refuse_merge" }

// RefuseMergeHandler handles RefuseMergeCommand.
type RefuseMergeHandler struct {
	deps *DoctorateDeps
}

// NewRefuseMergeHandler creates a new RefuseMergeHandler.
func NewRefuseMergeHandler(deps *DoctorateDeps) *RefuseMergeHandler {
	return &RefuseMergeHandler{deps: deps}
}

// Handle publishes the refusal so that the identity ticket gets created.
func (h *RefuseMergeHandler) Handle(ctx context.Context, cmd RefuseMergeCommand) (*PropositionResult, error) {
	if err := requireID("RefuseMerge", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, err := h.deps.Propositions.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	now := h.deps.now()
	h.deps.publish(shared.NewMergeRefusedEvent(p.ID.String(), p.CandidateID.String(), now))
	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		"La fusion des données personnelles a été refusée.", "The personal data merge has been refused.", now,
		"proposition", "identity"))
	return resultOf(p), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DECISIONS
// ══════════════════════════════════════════════════════════════════════════════

// Decision is an administrative decision on a submitted proposition.
type Decision string

const (
	DecisionConfirm                Decision = "CONFIRM"
	DecisionRequestDocumentsBySIC  Decision = "REQUEST_DOCUMENTS_SIC"
	DecisionRequestDocumentsByFac  Decision = "REQUEST_DOCUMENTS_FAC"
	DecisionCancelDocumentsRequest Decision = "CANCEL_DOCUMENTS_REQUEST"
	DecisionCompleteDocuments      Decision = "COMPLETE_DOCUMENTS"
	DecisionSendToFac              Decision = "SEND_TO_FAC"
	DecisionApproveByCDD           Decision = "APPROVE_BY_CDD"
	DecisionRefuseByCDD            Decision = "REFUSE_BY_CDD"
	DecisionApproveBySIC           Decision = "APPROVE_BY_SIC"
	DecisionValidateEnrolment      Decision = "VALIDATE_ENROLMENT"
	DecisionRefuseEnrolment        Decision = "REFUSE_ENROLMENT"
	DecisionClose                  Decision = "CLOSE"
)

// DecideCommand applies an administrative decision.
type DecideCommand struct {
	PropositionID shared.PropositionID
	Decision      Decision
	// Reason is required when the CDD refuses.
	Reason string
	Author string
}

// CommandName implements bus.Command.
func (DecideCommand) CommandName() string { return "doctorate.decide" }

// DecideHandler handles DecideCommand.
type DecideHandler struct {
	deps *DoctorateDeps
}

// NewDecideHandler creates a new DecideHandler.
func NewDecideHandler(deps *DoctorateDeps) *DecideHandler {
	return &DecideHandler{deps: deps}
}

// Handle executes the command.
func (h *DecideHandler) Handle(ctx context.Context, cmd DecideCommand) (*PropositionResult, error) {
	if err := requireID("Decide", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, err := h.deps.Propositions.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}

	now := h.deps.now()
	from := p.Status
	if err := h.apply(p, cmd, now); err != nil {
		return nil, err
	}
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("decide: save: %w", err)
	}

	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		fmt.Sprintf("Statut modifié de %s à %s.", from, p.Status),
		fmt.Sprintf("Status changed from %s to %s.", from, p.Status), now,
		"proposition", "status-changed", string(cmd.Decision)))
	switch cmd.Decision {
	case DecisionValidateEnrolment, DecisionRefuseEnrolment:
		label := proposition.StatusLabels.Label(string(p.Status), shared.ParseLanguage("en"))
		h.deps.notify(ctx, notification.Decision(p.ID, p.CandidateID,
			"Decision on your admission proposition", "Your proposition status is now: "+label, now))
	}
	return resultOf(p), nil
}

func (h *DecideHandler) apply(p *proposition.Proposition, cmd DecideCommand, now time.Time) error {
	cfg := h.deps.Checklist
	switch cmd.Decision {
	case DecisionConfirm:
		return p.ConfirmSubmission(cmd.Author, now)
	case DecisionRequestDocumentsBySIC:
		return p.RequestDocuments(false, cmd.Author, now)
	case DecisionRequestDocumentsByFac:
		return p.RequestDocuments(true, cmd.Author, now)
	case DecisionCancelDocumentsRequest:
		return p.CancelDocumentsRequest(cmd.Author, now)
	case DecisionCompleteDocuments:
		return p.CompleteDocuments(cmd.Author, now)
	case DecisionSendToFac:
		return p.SendToFac(cfg, cmd.Author, now)
	case DecisionApproveByCDD:
		return p.ApproveByCDD(cfg, cmd.Author, now)
	case DecisionRefuseByCDD:
		return p.RefuseByCDD(cfg, cmd.Reason, cmd.Author, now)
	case DecisionApproveBySIC:
		return p.ApproveBySIC(cfg, cmd.Author, now)
	case DecisionValidateEnrolment:
		return p.ValidateEnrolment(cfg, cmd.Author, now)
	case DecisionRefuseEnrolment:
		return p.RefuseEnrolment(cfg, cmd.Reason, cmd.Author, now)
	case DecisionClose:
		return p.Close(cfg, cmd.Author, now)
	default:
		return shared.NewDomainError("command", "Decide", shared.ErrInvalidInput, "unknown decision "+string(cmd.Decision))
	}
}
