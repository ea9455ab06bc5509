// Package identity is the contract with the identity system that creates
// or merges the person records of candidates.
package identity

import (
	"context"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// TicketService opens tickets in the identity system.
type TicketService interface {
	// HasTicket reports whether a ticket is already open for the candidate.
	HasTicket(ctx context.Context, candidate shared.PersonID) (bool, error)
	// RequestTicket opens a ticket for the candidate.
	RequestTicket(ctx context.Context, candidate shared.PersonID) error
}
