package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// GroupRepository implements supervision.Repository. Signatories are
// mirrored in group_signatories for SearchBySignatory.
type GroupRepository struct {
	conn *Connection
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(conn *Connection) *GroupRepository {
	return &GroupRepository{conn: conn}
}

var _ supervision.Repository = (*GroupRepository)(nil)

// Get implements supervision.Repository.
func (r *GroupRepository) Get(ctx context.Context, id shared.PropositionID) (*supervision.Group, error) {
	g, err := scanDocument[supervision.Group](r.conn.QueryRow(ctx,
		"SELECT data FROM supervision_groups WHERE proposition_id = $1", id.UUID()))
	if err != nil {
		if IsNoRows(err) {
			return nil, supervision.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// Save implements supervision.Repository.
func (r *GroupRepository) Save(ctx context.Context, g *supervision.Group) error {
	data, err := encodeDocument(g)
	if err != nil {
		return err
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO supervision_groups (proposition_id, data) VALUES ($1, $2)
			ON CONFLICT (proposition_id) DO UPDATE SET data = EXCLUDED.data
		`, g.PropositionID.UUID(), data)
		if err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM group_signatories WHERE proposition_id = $1", g.PropositionID.UUID()); err != nil {
			return fmt.Errorf("failed to clear signatories: %w", err)
		}

		batch := &pgx.Batch{}
		for _, sigs := range [][]supervision.Signature{g.Promoters, g.CAMembers} {
			for _, s := range sigs {
				batch.Queue(`
					INSERT INTO group_signatories (proposition_id, person_id) VALUES ($1, $2)
					ON CONFLICT DO NOTHING
				`, g.PropositionID.UUID(), s.Person.String())
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save signatories: %w", err)
		}
		return nil
	})
}

// Delete implements supervision.Repository.
func (r *GroupRepository) Delete(ctx context.Context, id shared.PropositionID) error {
	if _, err := r.conn.Exec(ctx, "DELETE FROM supervision_groups WHERE proposition_id = $1", id.UUID()); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// SearchBySignatory implements supervision.Repository.
func (r *GroupRepository) SearchBySignatory(ctx context.Context, person shared.PersonID) ([]*supervision.Group, error) {
	out, err := collectDocuments[supervision.Group](r.conn.Query(ctx, `
		SELECT g.data
		FROM supervision_groups g
		JOIN group_signatories s ON s.proposition_id = g.proposition_id
		WHERE s.person_id = $1
	`, person.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to search groups: %w", err)
	}
	return out, nil
}
