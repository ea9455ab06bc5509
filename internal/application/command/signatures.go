package command

import (
	"context"
	"fmt"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST SIGNATURES
// ══════════════════════════════════════════════════════════════════════════════

// RequestSignaturesCommand sends the proposition to its signatories.
type RequestSignaturesCommand struct {
	PropositionID shared.PropositionID
	Author        string
}

// CommandName implements bus.Command.
func (RequestSignaturesCommand) CommandName() string { return "doctorate.request_signatures" }

// RequestSignaturesResult lists the signatories invited by this call.
type RequestSignaturesResult struct {
	PropositionID shared.PropositionID
	Invited       []shared.PersonID
}

// RequestSignaturesHandler handles RequestSignaturesCommand.
type RequestSignaturesHandler struct {
	deps *DoctorateDeps
}

// NewRequestSignaturesHandler creates a new RequestSignaturesHandler.
func NewRequestSignaturesHandler(deps *DoctorateDeps) *RequestSignaturesHandler {
	return &RequestSignaturesHandler{deps: deps}
}

// Handle verifies the project, invites the signatories and locks the
// proposition.
func (h *RequestSignaturesHandler) Handle(ctx context.Context, cmd RequestSignaturesCommand) (*RequestSignaturesResult, error) {
	if err := requireID("RequestSignatures", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, g, err := h.deps.load(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	lookups, err := h.deps.lookups(ctx, p, g)
	if err != nil {
		return nil, fmt.Errorf("request_signatures: %w", err)
	}

	now := h.deps.now()
	invited, err := proposition.RequestSignatures(p, g, lookups, now)
	if err != nil {
		return nil, err
	}

	if err := h.deps.Groups.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("request_signatures: save group: %w", err)
	}
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("request_signatures: save proposition: %w", err)
	}

	if len(invited) > 0 {
		ids := make([]string, 0, len(invited))
		for _, person := range invited {
			ids = append(ids, person.String())
		}
		h.deps.publish(shared.NewSignaturesRequestedEvent(p.ID.String(), ids, now))
		h.deps.notify(ctx, notification.SignaturesRequested(p.ID, p.CandidateID, invited, now))
	}
	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		"Les demandes de signatures ont été envoyées.", "Signature requests have been sent.", now,
		"proposition", "supervision", "status-changed"))

	return &RequestSignaturesResult{PropositionID: p.ID, Invited: invited}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGNATORY OPINIONS
// ══════════════════════════════════════════════════════════════════════════════

// ApprovePropositionCommand records the approval of a signatory.
type ApprovePropositionCommand struct {
	PropositionID   shared.PropositionID
	Signatory       shared.PersonID
	InternalComment string
	ExternalComment string
	// Institute is required from the reference promoter while the project
	// has no thesis institute.
	Institute string
}

// CommandName implements bus.Command.
func (ApprovePropositionCommand) CommandName() string { return "supervision.approve" }

// RefusePropositionCommand records the refusal of a signatory.
type RefusePropositionCommand struct {
	PropositionID   shared.PropositionID
	Signatory       shared.PersonID
	Reason          string
	InternalComment string
	ExternalComment string
}

// CommandName implements bus.Command.
func (RefusePropositionCommand) CommandName() string { return "supervision.refuse" }

// ApproveByPDFCommand records an approval evidenced by a signed document
// uploaded by a manager.
type ApproveByPDFCommand struct {
	PropositionID shared.PropositionID
	Signatory     shared.PersonID
	PDF           []string
	Author        string
}

// CommandName implements bus.Command.
func (ApproveByPDFCommand) CommandName() string { return "supervision.approve_by_pdf" }

// OpinionResult is returned once an opinion has been recorded.
type OpinionResult struct {
	PropositionID shared.PropositionID
	Status        proposition.Status
	// Unlocked is true when a promoter refusal gave the proposition back
	// to the candidate.
	Unlocked bool
}

// OpinionHandler handles the three opinion commands.
type OpinionHandler struct {
	deps *DoctorateDeps
}

// NewOpinionHandler creates a new OpinionHandler.
func NewOpinionHandler(deps *DoctorateDeps) *OpinionHandler {
	return &OpinionHandler{deps: deps}
}

// Approve handles ApprovePropositionCommand.
func (h *OpinionHandler) Approve(ctx context.Context, cmd ApprovePropositionCommand) (*OpinionResult, error) {
	return h.receive(ctx, cmd.PropositionID, cmd.Signatory, cmd.Signatory.String(), proposition.Opinion{
		Approve:         true,
		InternalComment: cmd.InternalComment,
		ExternalComment: cmd.ExternalComment,
		Institute:       cmd.Institute,
	})
}

// Refuse handles RefusePropositionCommand.
func (h *OpinionHandler) Refuse(ctx context.Context, cmd RefusePropositionCommand) (*OpinionResult, error) {
	return h.receive(ctx, cmd.PropositionID, cmd.Signatory, cmd.Signatory.String(), proposition.Opinion{
		InternalComment: cmd.InternalComment,
		ExternalComment: cmd.ExternalComment,
		RefusalReason:   cmd.Reason,
	})
}

// ApproveByPDF handles ApproveByPDFCommand.
func (h *OpinionHandler) ApproveByPDF(ctx context.Context, cmd ApproveByPDFCommand) (*OpinionResult, error) {
	if len(cmd.PDF) == 0 {
		return nil, shared.NewDomainError("command", "ApproveByPDF", shared.ErrInvalidInput, "pdf is required")
	}
	return h.receive(ctx, cmd.PropositionID, cmd.Signatory, cmd.Author, proposition.Opinion{
		Approve: true,
		PDF:     cmd.PDF,
	})
}

func (h *OpinionHandler) receive(ctx context.Context, id shared.PropositionID, signatory shared.PersonID, author string, o proposition.Opinion) (*OpinionResult, error) {
	if err := requireID("ReceiveOpinion", id); err != nil {
		return nil, err
	}
	p, g, err := h.deps.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := h.deps.now()
	institute := p.Project.ThesisInstitute
	unlocked, err := proposition.ReceiveSignatoryOpinion(p, g, signatory, o, now)
	if err != nil {
		return nil, err
	}
	_, isPromoter, _ := g.Signature(signatory)

	if err := h.deps.Groups.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("receive_opinion: save group: %w", err)
	}
	if unlocked || p.Project.ThesisInstitute != institute {
		if err := h.deps.Propositions.Save(ctx, p); err != nil {
			return nil, fmt.Errorf("receive_opinion: save proposition: %w", err)
		}
	}

	if o.Approve {
		h.deps.record(ctx, notification.NewEntry(p.ID, author,
			fmt.Sprintf("%s a approuvé la proposition.", signatory),
			fmt.Sprintf("%s approved the proposition.", signatory), now, "proposition", "supervision"))
	} else {
		h.deps.publish(shared.NewSignatoryRefusedEvent(p.ID.String(), signatory.String(), isPromoter, o.RefusalReason, now))
		h.deps.record(ctx, notification.NewEntry(p.ID, author,
			fmt.Sprintf("%s a refusé la proposition.", signatory),
			fmt.Sprintf("%s refused the proposition.", signatory), now, "proposition", "supervision"))
	}
	h.deps.notify(ctx, notification.SignatoryAnswered(p.ID, p.CandidateID, signatory, o.Approve, o.RefusalReason, now))

	return &OpinionResult{PropositionID: p.ID, Status: p.Status, Unlocked: unlocked}, nil
}

// ApproveHandler adapts OpinionHandler.Approve to the bus.
type ApproveHandler struct{ *OpinionHandler }

// Handle executes the command.
func (h ApproveHandler) Handle(ctx context.Context, cmd ApprovePropositionCommand) (*OpinionResult, error) {
	return h.Approve(ctx, cmd)
}

// RefuseHandler adapts OpinionHandler.Refuse to the bus.
type RefuseHandler struct{ *OpinionHandler }

// Handle executes the command.
func (h RefuseHandler) Handle(ctx context.Context, cmd RefusePropositionCommand) (*OpinionResult, error) {
	return h.Refuse(ctx, cmd)
}

// ApproveByPDFHandler adapts OpinionHandler.ApproveByPDF to the bus.
type ApproveByPDFHandler struct{ *OpinionHandler }

// Handle executes the command.
func (h ApproveByPDFHandler) Handle(ctx context.Context, cmd ApproveByPDFCommand) (*OpinionResult, error) {
	return h.ApproveByPDF(ctx, cmd)
}
