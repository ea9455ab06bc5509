package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// Ticket is an identity ticket opened for a candidate.
type Ticket struct {
	Candidate shared.PersonID
	OpenedAt  time.Time
}

// MemoryTicketService keeps identity tickets in memory. It stands in for the
// identity system outside production.
type MemoryTicketService struct {
	mu      sync.RWMutex
	tickets map[shared.PersonID]Ticket
	clock   shared.Clock
	logger  *slog.Logger
}

// NewMemoryTicketService creates an empty ticket service.
func NewMemoryTicketService(clock shared.Clock, logger *slog.Logger) *MemoryTicketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryTicketService{
		tickets: make(map[shared.PersonID]Ticket),
		clock:   shared.ClockOrSystem(clock),
		logger:  logger.With("component", "identity_tickets"),
	}
}

// HasTicket implements identity.TicketService.
func (s *MemoryTicketService) HasTicket(_ context.Context, candidate shared.PersonID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tickets[candidate]
	return ok, nil
}

// RequestTicket implements identity.TicketService.
func (s *MemoryTicketService) RequestTicket(ctx context.Context, candidate shared.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[candidate]; ok {
		return nil
	}
	s.tickets[candidate] = Ticket{Candidate: candidate, OpenedAt: s.clock.Now()}
	s.logger.InfoContext(ctx, "identity ticket opened", "candidate_id", candidate.String())
	return nil
}

// Tickets lists the open tickets.
func (s *MemoryTicketService) Tickets() []Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	return out
}
