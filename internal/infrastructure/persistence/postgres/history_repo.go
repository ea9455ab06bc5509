package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// HistoryRepository implements notification.History.
type HistoryRepository struct {
	conn *Connection
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(conn *Connection) *HistoryRepository {
	return &HistoryRepository{conn: conn}
}

var _ notification.History = (*HistoryRepository)(nil)

// Record implements notification.History.
func (r *HistoryRepository) Record(ctx context.Context, e notification.Entry) error {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.conn.Exec(ctx, `
		INSERT INTO proposition_history (proposition_id, author, message_fr, message_en, tags, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.PropositionID.UUID(), e.Author, e.MessageFR, e.MessageEN, tags, e.At)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// List implements notification.History. Entries come in recording order.
func (r *HistoryRepository) List(ctx context.Context, id shared.PropositionID) ([]notification.Entry, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT author, message_fr, message_en, tags, recorded_at
		FROM proposition_history
		WHERE proposition_id = $1
		ORDER BY id
	`, id.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.Entry, error) {
		e := notification.Entry{PropositionID: id}
		err := row.Scan(&e.Author, &e.MessageFR, &e.MessageEN, &e.Tags, &e.At)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return entries, nil
}
