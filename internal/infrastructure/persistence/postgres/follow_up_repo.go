package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/training"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIRMATION EXAMS
// ══════════════════════════════════════════════════════════════════════════════

// ExamRepository implements confirmation.Repository.
type ExamRepository struct {
	conn *Connection
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(conn *Connection) *ExamRepository {
	return &ExamRepository{conn: conn}
}

var _ confirmation.Repository = (*ExamRepository)(nil)

// Get implements confirmation.Repository.
func (r *ExamRepository) Get(ctx context.Context, id confirmation.ExamID) (*confirmation.Exam, error) {
	e, err := scanDocument[confirmation.Exam](r.conn.QueryRow(ctx,
		"SELECT data FROM confirmation_exams WHERE id = $1", uuid.UUID(id)))
	if err != nil {
		if IsNoRows(err) {
			return nil, confirmation.ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return e, nil
}

// Save implements confirmation.Repository.
func (r *ExamRepository) Save(ctx context.Context, e *confirmation.Exam) error {
	data, err := encodeDocument(e)
	if err != nil {
		return err
	}
	_, err = r.conn.Exec(ctx, `
		INSERT INTO confirmation_exams (id, doctorate_id, data) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, uuid.UUID(e.ID), e.DoctorateID.UUID(), data)
	if err != nil {
		return fmt.Errorf("failed to save exam: %w", err)
	}
	return nil
}

// SearchByDoctorate implements confirmation.Repository.
func (r *ExamRepository) SearchByDoctorate(ctx context.Context, id shared.PropositionID) ([]*confirmation.Exam, error) {
	out, err := collectDocuments[confirmation.Exam](r.conn.Query(ctx,
		"SELECT data FROM confirmation_exams WHERE doctorate_id = $1 ORDER BY seq DESC", id.UUID()))
	if err != nil {
		return nil, fmt.Errorf("failed to search exams: %w", err)
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRAINING ACTIVITIES
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRepository implements training.Repository.
type ActivityRepository struct {
	conn *Connection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(conn *Connection) *ActivityRepository {
	return &ActivityRepository{conn: conn}
}

var _ training.Repository = (*ActivityRepository)(nil)

// Get implements training.Repository.
func (r *ActivityRepository) Get(ctx context.Context, id training.ActivityID) (*training.Activity, error) {
	a, err := scanDocument[training.Activity](r.conn.QueryRow(ctx,
		"SELECT data FROM training_activities WHERE id = $1", uuid.UUID(id)))
	if err != nil {
		if IsNoRows(err) {
			return nil, training.ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// GetMany implements training.Repository. Activities come back in the
// order of ids.
func (r *ActivityRepository) GetMany(ctx context.Context, ids []training.ActivityID) ([]*training.Activity, error) {
	keys := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, uuid.UUID(id))
	}
	found, err := collectDocuments[training.Activity](r.conn.Query(ctx,
		"SELECT data FROM training_activities WHERE id = ANY($1)", keys))
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}

	byID := make(map[training.ActivityID]*training.Activity, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	out := make([]*training.Activity, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, training.ErrActivityNotFound.Withf("%s", id)
		}
		out = append(out, a)
	}
	return out, nil
}

// Save implements training.Repository.
func (r *ActivityRepository) Save(ctx context.Context, a *training.Activity) error {
	data, err := encodeDocument(a)
	if err != nil {
		return err
	}
	var parent *uuid.UUID
	if a.ParentID != nil {
		p := uuid.UUID(*a.ParentID)
		parent = &p
	}
	_, err = r.conn.Exec(ctx, `
		INSERT INTO training_activities (id, doctorate_id, parent_id, data) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, uuid.UUID(a.ID), a.DoctorateID.UUID(), parent, data)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

// Delete implements training.Repository. Sub-activities go with their parent.
func (r *ActivityRepository) Delete(ctx context.Context, id training.ActivityID) error {
	_, err := r.conn.Exec(ctx, "DELETE FROM training_activities WHERE id = $1 OR parent_id = $1", uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

// SearchByParent implements training.Repository.
func (r *ActivityRepository) SearchByParent(ctx context.Context, parent training.ActivityID) ([]*training.Activity, error) {
	out, err := collectDocuments[training.Activity](r.conn.Query(ctx,
		"SELECT data FROM training_activities WHERE parent_id = $1 ORDER BY seq", uuid.UUID(parent)))
	if err != nil {
		return nil, fmt.Errorf("failed to search sub-activities: %w", err)
	}
	return out, nil
}

// SearchByDoctorate implements training.Repository.
func (r *ActivityRepository) SearchByDoctorate(ctx context.Context, id shared.PropositionID) ([]*training.Activity, error) {
	out, err := collectDocuments[training.Activity](r.conn.Query(ctx,
		"SELECT data FROM training_activities WHERE doctorate_id = $1 ORDER BY seq", id.UUID()))
	if err != nil {
		return nil, fmt.Errorf("failed to search activities: %w", err)
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// JURIES
// ══════════════════════════════════════════════════════════════════════════════

// JuryRepository implements jury.Repository.
type JuryRepository struct {
	conn *Connection
}

// NewJuryRepository creates a new JuryRepository.
func NewJuryRepository(conn *Connection) *JuryRepository {
	return &JuryRepository{conn: conn}
}

var _ jury.Repository = (*JuryRepository)(nil)

// Get implements jury.Repository.
func (r *JuryRepository) Get(ctx context.Context, id shared.PropositionID) (*jury.Jury, error) {
	j, err := scanDocument[jury.Jury](r.conn.QueryRow(ctx, "SELECT data FROM juries WHERE id = $1", id.UUID()))
	if err != nil {
		if IsNoRows(err) {
			return nil, jury.ErrJuryNotFound
		}
		return nil, fmt.Errorf("failed to get jury: %w", err)
	}
	return j, nil
}

// Save implements jury.Repository.
func (r *JuryRepository) Save(ctx context.Context, j *jury.Jury) error {
	data, err := encodeDocument(j)
	if err != nil {
		return err
	}
	_, err = r.conn.Exec(ctx, `
		INSERT INTO juries (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, j.ID.UUID(), data)
	if err != nil {
		return fmt.Errorf("failed to save jury: %w", err)
	}
	return nil
}
