package command

import (
	"context"
	"fmt"

	"github.com/uclouvain/admission-core/internal/domain/identity"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY TICKET
// ══════════════════════════════════════════════════════════════════════════════

// RequestIdentityTicketCommand asks the identity system to create or merge
// the person record of a candidate.
type RequestIdentityTicketCommand struct {
	CandidateID shared.PersonID
}

// CommandName implements bus.Command.
func (RequestIdentityTicketCommand) CommandName() string { return "identity.request_ticket" }

// RequestIdentityTicketResult tells whether a ticket was opened.
type RequestIdentityTicketResult struct {
	CandidateID shared.PersonID
	Created     bool
}

// RequestIdentityTicketHandler handles RequestIdentityTicketCommand. It is
// idempotent: a candidate with an open ticket is left alone.
type RequestIdentityTicketHandler struct {
	tickets identity.TicketService
}

// NewRequestIdentityTicketHandler creates a new RequestIdentityTicketHandler.
func NewRequestIdentityTicketHandler(tickets identity.TicketService) *RequestIdentityTicketHandler {
	return &RequestIdentityTicketHandler{tickets: tickets}
}

// Handle executes the command.
func (h *RequestIdentityTicketHandler) Handle(ctx context.Context, cmd RequestIdentityTicketCommand) (*RequestIdentityTicketResult, error) {
	if err := requireField("RequestIdentityTicket", "candidate_id", cmd.CandidateID.String()); err != nil {
		return nil, err
	}
	exists, err := h.tickets.HasTicket(ctx, cmd.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("request_identity_ticket: lookup: %w", err)
	}
	if exists {
		return &RequestIdentityTicketResult{CandidateID: cmd.CandidateID}, nil
	}
	if err := h.tickets.RequestTicket(ctx, cmd.CandidateID); err != nil {
		return nil, fmt.Errorf("request_identity_ticket: request: %w", err)
	}
	return &RequestIdentityTicketResult{CandidateID: cmd.CandidateID, Created: true}, nil
}
