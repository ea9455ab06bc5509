package postgres

import (
	"context"
	"fmt"

	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCES
// ══════════════════════════════════════════════════════════════════════════════

func nextReference(ctx context.Context, conn *Connection) (int64, error) {
	var ref int64
	if err := conn.QueryRow(ctx, "SELECT nextval('proposition_reference_seq')").Scan(&ref); err != nil {
		return 0, fmt.Errorf("failed to allocate reference: %w", err)
	}
	return ref, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOCTORAL PROPOSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// PropositionRepository implements proposition.Repository.
type PropositionRepository struct {
	conn *Connection
}

// NewPropositionRepository creates a new PropositionRepository.
func NewPropositionRepository(conn *Connection) *PropositionRepository {
	return &PropositionRepository{conn: conn}
}

var _ proposition.Repository = (*PropositionRepository)(nil)

// Get implements proposition.Repository.
func (r *PropositionRepository) Get(ctx context.Context, id shared.PropositionID) (*proposition.Proposition, error) {
	p, err := scanDocument[proposition.Proposition](r.conn.QueryRow(ctx,
		"SELECT data FROM doctoral_propositions WHERE id = $1", id.UUID()))
	if err != nil {
		if IsNoRows(err) {
			return nil, proposition.ErrPropositionNotFound
		}
		return nil, fmt.Errorf("failed to get proposition: %w", err)
	}
	return p, nil
}

// Save implements proposition.Repository.
func (r *PropositionRepository) Save(ctx context.Context, p *proposition.Proposition) error {
	data, err := encodeDocument(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO doctoral_propositions (id, candidate_id, status, reference, data, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			candidate_id = EXCLUDED.candidate_id,
			status = EXCLUDED.status,
			reference = EXCLUDED.reference,
			data = EXCLUDED.data,
			modified_at = EXCLUDED.modified_at
	`
	_, err = r.conn.Exec(ctx, query,
		p.ID.UUID(),
		p.CandidateID.String(),
		string(p.Status),
		nullableReference(p.Reference),
		data,
		p.CreatedAt,
		p.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save proposition: %w", err)
	}
	return nil
}

// Delete implements proposition.Repository.
func (r *PropositionRepository) Delete(ctx context.Context, id shared.PropositionID) error {
	if _, err := r.conn.Exec(ctx, "DELETE FROM doctoral_propositions WHERE id = $1", id.UUID()); err != nil {
		return fmt.Errorf("failed to delete proposition: %w", err)
	}
	return nil
}

// SearchByCandidate implements proposition.Repository.
func (r *PropositionRepository) SearchByCandidate(ctx context.Context, candidate shared.PersonID) ([]*proposition.Proposition, error) {
	out, err := collectDocuments[proposition.Proposition](r.conn.Query(ctx,
		"SELECT data FROM doctoral_propositions WHERE candidate_id = $1 ORDER BY created_at", candidate.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to search propositions: %w", err)
	}
	return out, nil
}

// CountActiveByCandidate implements proposition.Repository.
func (r *PropositionRepository) CountActiveByCandidate(ctx context.Context, candidate shared.PersonID) (int, error) {
	all, err := r.SearchByCandidate(ctx, candidate)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range all {
		if p.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

// NextReference implements proposition.Repository.
func (r *PropositionRepository) NextReference(ctx context.Context) (int64, error) {
	return nextReference(ctx, r.conn)
}

// ══════════════════════════════════════════════════════════════════════════════
// GENERAL AND CONTINUING EDUCATION PROPOSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// GeneralRepository implements general.Repository.
type GeneralRepository struct {
	conn *Connection
}

// NewGeneralRepository creates a new GeneralRepository.
func NewGeneralRepository(conn *Connection) *GeneralRepository {
	return &GeneralRepository{conn: conn}
}

var _ general.Repository = (*GeneralRepository)(nil)

// Get implements general.Repository.
func (r *GeneralRepository) Get(ctx context.Context, id shared.PropositionID) (*general.Proposition, error) {
	p, err := scanDocument[general.Proposition](r.conn.QueryRow(ctx,
		"SELECT data FROM general_propositions WHERE id = $1", id.UUID()))
	if err != nil {
		if IsNoRows(err) {
			return nil, general.ErrPropositionNotFound
		}
		return nil, fmt.Errorf("failed to get general proposition: %w", err)
	}
	return p, nil
}

// Save implements general.Repository.
func (r *GeneralRepository) Save(ctx context.Context, p *general.Proposition) error {
	data, err := encodeDocument(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO general_propositions (id, kind, candidate_id, status, reference, data, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			reference = EXCLUDED.reference,
			data = EXCLUDED.data,
			modified_at = EXCLUDED.modified_at
	`
	_, err = r.conn.Exec(ctx, query,
		p.ID.UUID(),
		string(p.Kind),
		p.CandidateID.String(),
		string(p.Status),
		nullableReference(p.Reference),
		data,
		p.CreatedAt,
		p.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save general proposition: %w", err)
	}
	return nil
}

// SearchByCandidate implements general.Repository.
func (r *GeneralRepository) SearchByCandidate(ctx context.Context, candidate shared.PersonID) ([]*general.Proposition, error) {
	out, err := collectDocuments[general.Proposition](r.conn.Query(ctx,
		"SELECT data FROM general_propositions WHERE candidate_id = $1 ORDER BY created_at", candidate.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to search general propositions: %w", err)
	}
	return out, nil
}

// NextReference implements general.Repository.
func (r *GeneralRepository) NextReference(ctx context.Context) (int64, error) {
	return nextReference(ctx, r.conn)
}
