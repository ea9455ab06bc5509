package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// SlotRepository implements document.Repository.
type SlotRepository struct {
	conn *Connection
}

// NewSlotRepository creates a new SlotRepository.
func NewSlotRepository(conn *Connection) *SlotRepository {
	return &SlotRepository{conn: conn}
}

var _ document.Repository = (*SlotRepository)(nil)

// Get implements document.Repository.
func (r *SlotRepository) Get(ctx context.Context, id document.SlotID) (*document.Slot, error) {
	s, err := scanDocument[document.Slot](r.conn.QueryRow(ctx,
		"SELECT data FROM document_slots WHERE proposition_id = $1 AND identifier = $2",
		id.PropositionID.UUID(), id.Identifier))
	if err != nil {
		if IsNoRows(err) {
			return nil, document.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return s, nil
}

// Save implements document.Repository.
func (r *SlotRepository) Save(ctx context.Context, s *document.Slot) error {
	data, err := encodeDocument(s)
	if err != nil {
		return err
	}
	_, err = r.conn.Exec(ctx, `
		INSERT INTO document_slots (proposition_id, identifier, data) VALUES ($1, $2, $3)
		ON CONFLICT (proposition_id, identifier) DO UPDATE SET data = EXCLUDED.data
	`, s.ID.PropositionID.UUID(), s.ID.Identifier, data)
	if err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

// Delete implements document.Repository.
func (r *SlotRepository) Delete(ctx context.Context, id document.SlotID) error {
	_, err := r.conn.Exec(ctx, "DELETE FROM document_slots WHERE proposition_id = $1 AND identifier = $2",
		id.PropositionID.UUID(), id.Identifier)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// SearchByProposition implements document.Repository. Slots come in
// creation order.
func (r *SlotRepository) SearchByProposition(ctx context.Context, id shared.PropositionID) ([]*document.Slot, error) {
	out, err := collectDocuments[document.Slot](r.conn.Query(ctx,
		"SELECT data FROM document_slots WHERE proposition_id = $1 ORDER BY seq", id.UUID()))
	if err != nil {
		return nil, fmt.Errorf("failed to search slots: %w", err)
	}
	return out, nil
}

// SearchOverdue implements document.Repository. The status and deadline
// are read from the stored document.
func (r *SlotRepository) SearchOverdue(ctx context.Context, now time.Time) ([]*document.Slot, error) {
	out, err := collectDocuments[document.Slot](r.conn.Query(ctx, `
		SELECT data FROM document_slots
		WHERE data->>'Status' = $1
		  AND data->>'DueAt' IS NOT NULL
		  AND (data->>'DueAt')::timestamptz < $2
		ORDER BY proposition_id, seq
	`, string(document.Requested), now))
	if err != nil {
		return nil, fmt.Errorf("failed to search overdue slots: %w", err)
	}
	return out, nil
}
