package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERAL AND CONTINUING EDUCATION
// ══════════════════════════════════════════════════════════════════════════════

// GeneralDeps groups the collaborators of the general and continuing
// education handlers.
type GeneralDeps struct {
	Propositions   general.Repository
	Checklist      *checklist.Configuration
	TechnicalTasks checklist.TechnicalTasks
	Effects
}

// GeneralResult is returned by the general handlers.
type GeneralResult struct {
	PropositionID shared.PropositionID
	Kind          general.Kind
	Status        general.Status
	Reference     int64
}

func generalResultOf(p *general.Proposition) *GeneralResult {
	return &GeneralResult{PropositionID: p.ID, Kind: p.Kind, Status: p.Status, Reference: p.Reference}
}

// InitiateGeneralPropositionCommand creates a general or continuing
// education proposition.
type InitiateGeneralPropositionCommand struct {
	Kind        general.Kind
	CandidateID shared.PersonID
	Training    shared.TrainingID
}

// CommandName implements bus.Command.
func (InitiateGeneralPropositionCommand) CommandName() string { return "general.initiate" }

// InitiateGeneralPropositionHandler handles InitiateGeneralPropositionCommand.
type InitiateGeneralPropositionHandler struct {
	deps *GeneralDeps
}

// NewInitiateGeneralPropositionHandler creates a new InitiateGeneralPropositionHandler.
func NewInitiateGeneralPropositionHandler(deps *GeneralDeps) *InitiateGeneralPropositionHandler {
	return &InitiateGeneralPropositionHandler{deps: deps}
}

// Handle executes the command.
func (h *InitiateGeneralPropositionHandler) Handle(ctx context.Context, cmd InitiateGeneralPropositionCommand) (*GeneralResult, error) {
	if cmd.Kind != general.General && cmd.Kind != general.Continuing {
		return nil, shared.NewDomainError("command", "InitiateGeneralProposition", shared.ErrInvalidInput, "unknown kind "+string(cmd.Kind))
	}
	if err := requireField("InitiateGeneralProposition", "candidate_id", cmd.CandidateID.String()); err != nil {
		return nil, err
	}
	p := general.New(cmd.Kind, cmd.CandidateID, cmd.Training, h.deps.Checklist, h.deps.now())
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("initiate_general_proposition: save: %w", err)
	}
	return generalResultOf(p), nil
}

// SubmitGeneralPropositionCommand submits a general or continuing
// education proposition.
type SubmitGeneralPropositionCommand struct {
	PropositionID shared.PropositionID
	Author        string
}

// CommandName implements bus.Command.
func (SubmitGeneralPropositionCommand) CommandName() string { return "general.submit" }

// SubmitGeneralPropositionHandler handles SubmitGeneralPropositionCommand.
type SubmitGeneralPropositionHandler struct {
	deps *GeneralDeps
}

// NewSubmitGeneralPropositionHandler creates a new SubmitGeneralPropositionHandler.
func NewSubmitGeneralPropositionHandler(deps *GeneralDeps) *SubmitGeneralPropositionHandler {
	return &SubmitGeneralPropositionHandler{deps: deps}
}

// Handle verifies the submission on a copy before allocating the
// reference, so a refused submission never consumes a number.
func (h *SubmitGeneralPropositionHandler) Handle(ctx context.Context, cmd SubmitGeneralPropositionCommand) (*GeneralResult, error) {
	if err := requireID("SubmitGeneralProposition", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, err := h.deps.Propositions.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	now := h.deps.now()
	if err := p.Clone().Submit(0, cmd.Author, now); err != nil {
		return nil, err
	}

	reference, err := h.deps.Propositions.NextReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit_general_proposition: allocate reference: %w", err)
	}
	if err := p.Submit(reference, cmd.Author, now); err != nil {
		return nil, err
	}
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("submit_general_proposition: save: %w", err)
	}

	eventType := shared.EventGeneralPropositionSubmitted
	if p.Kind == general.Continuing {
		eventType = shared.EventContinuingPropositionSubmitted
	}
	h.deps.publish(shared.NewPropositionSubmittedEvent(eventType, p.ID.String(), p.CandidateID.String(), reference, now))
	h.deps.notify(ctx, notification.Submitted(p.ID, p.CandidateID, nil, strconv.FormatInt(reference, 10), now))
	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		"La proposition a été soumise.", "The proposition has been submitted.", now, "proposition", "status-changed"))
	return generalResultOf(p), nil
}

// GeneralActionCommand runs one action of the general or continuing
// machine.
type GeneralActionCommand struct {
	PropositionID shared.PropositionID
	Action        general.Action
	// Reason is kept when the faculty refuses.
	Reason string
	// Waiver is the fees tab status set by WaivePayment. It defaults to a
	// manager dispensation.
	Waiver checklist.Status
	Author string
}

// CommandName implements bus.Command.
func (GeneralActionCommand) CommandName() string { return "general.action" }

// GeneralActionHandler handles GeneralActionCommand.
type GeneralActionHandler struct {
	deps *GeneralDeps
}

// NewGeneralActionHandler creates a new GeneralActionHandler.
func NewGeneralActionHandler(deps *GeneralDeps) *GeneralActionHandler {
	return &GeneralActionHandler{deps: deps}
}

// Handle executes the command.
func (h *GeneralActionHandler) Handle(ctx context.Context, cmd GeneralActionCommand) (*GeneralResult, error) {
	if err := requireID("GeneralAction", cmd.PropositionID); err != nil {
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
		return nil, fmt.Errorf("general_action: save: %w", err)
	}

	if cmd.Action == general.WaivePayment && h.deps.TechnicalTasks != nil {
		if err := h.deps.TechnicalTasks.CancelInitialApplicationFeePayment(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("general_action: cancel fee payment: %w", err)
		}
	}
	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		fmt.Sprintf("Statut modifié de %s à %s.", from, p.Status),
		fmt.Sprintf("Status changed from %s to %s.", from, p.Status), now,
		"proposition", "status-changed", string(cmd.Action)))
	return generalResultOf(p), nil
}

func (h *GeneralActionHandler) apply(p *general.Proposition, cmd GeneralActionCommand, now time.Time) error {
	cfg := h.deps.Checklist
	if p.Kind == general.Continuing {
		return p.Apply(cmd.Action, cmd.Author, now)
	}
	switch cmd.Action {
	case general.RequirePayment:
		return p.RequirePayment(cfg, cmd.Author, now)
	case general.WaivePayment:
		waiver := cmd.Waiver
		if waiver == "" {
			waiver = checklist.ManagerSuccess
		}
		return p.WaivePayment(cfg, waiver, cmd.Author, now)
	case general.PayFees:
		return p.PayFees(cfg, now)
	case general.SendToFac:
		return p.SendToFac(cfg, cmd.Author, now)
	case general.ApproveByFac:
		return p.ApproveByFac(cfg, cmd.Author, now)
	case general.RefuseByFac:
		return p.RefuseByFac(cfg, cmd.Reason, cmd.Author, now)
	case general.ApproveBySIC:
		return p.ApproveBySIC(cfg, cmd.Author, now)
	case general.ValidateEnrolment:
		return p.ValidateEnrolment(cfg, cmd.Author, now)
	case general.RefuseEnrolment:
		return p.RefuseEnrolment(cfg, cmd.Author, now)
	case general.Close:
		return p.Close(cfg, cmd.Author, now)
	default:
		return p.Apply(cmd.Action, cmd.Author, now)
	}
}
