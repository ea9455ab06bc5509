//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
	"github.com/uclouvain/admission-core/internal/domain/training"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestConnection(t *testing.T) *Connection {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("admission"),
		tcpostgres.WithUsername("admission"),
		tcpostgres.WithPassword("admission"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := NewConnectionFromURL(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	require.NoError(t, NewMigrator(conn).Migrate(ctx))
	return conn
}

func TestMigrator(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)
	m := NewMigrator(conn)

	require.NoError(t, m.Migrate(ctx))
	status, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 3)
	for _, mig := range status {
		assert.True(t, mig.IsApplied, mig.Name)
	}

	require.NoError(t, m.Rollback(ctx))
	status, err = m.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status[1].IsApplied)
	assert.False(t, status[2].IsApplied)
	require.NoError(t, m.Migrate(ctx))
}

func TestPropositionRepository(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)
	repo := NewPropositionRepository(conn)

	p := &proposition.Proposition{
		ID:          shared.NewPropositionID(),
		CandidateID: "0123456",
		Training:    shared.TrainingID{Acronym: "SC3DP", Year: 2024},
		Status:      proposition.InProgress,
		Project:     proposition.Project{Title: "Graph rewriting"},
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Graph rewriting", got.Project.Title)

	n, err := repo.CountActiveByCandidate(ctx, "0123456")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	first, err := repo.NextReference(ctx)
	require.NoError(t, err)
	second, err := NewGeneralRepository(conn).NextReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, proposition.ReferenceBase, first)
	assert.Equal(t, first+1, second)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.Get(ctx, p.ID)
	assert.ErrorIs(t, err, proposition.ErrPropositionNotFound)
}

func TestGroupRepository_SearchBySignatory(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupRepository(newTestConnection(t))

	g := &supervision.Group{
		PropositionID: shared.NewPropositionID(),
		Promoters:     []supervision.Signature{{Person: "promoter-1"}},
		CAMembers:     []supervision.Signature{{Person: "member-1"}},
	}
	require.NoError(t, repo.Save(ctx, g))

	g.CAMembers = nil
	require.NoError(t, repo.Save(ctx, g))

	found, err := repo.SearchBySignatory(ctx, "promoter-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, g.PropositionID, found[0].PropositionID)

	found, err = repo.SearchBySignatory(ctx, "member-1")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSlotRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(newTestConnection(t))
	id := shared.NewPropositionID()

	for _, identifier := range []string{"CURRICULUM.CV", "IDENTIFICATION.PASSPORT"} {
		require.NoError(t, repo.Save(ctx, &document.Slot{
			ID:    document.SlotID{PropositionID: id, Identifier: identifier},
			Label: identifier,
		}))
	}

	slots, err := repo.SearchByProposition(ctx, id)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "CURRICULUM.CV", slots[0].ID.Identifier)

	require.NoError(t, repo.Delete(ctx, slots[0].ID))
	_, err = repo.Get(ctx, slots[0].ID)
	assert.ErrorIs(t, err, document.ErrSlotNotFound)
}

func TestSlotRepository_SearchOverdue(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(newTestConnection(t))
	id := shared.NewPropositionID()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	save := func(identifier string, status document.Status, due *time.Time) {
		require.NoError(t, repo.Save(ctx, &document.Slot{
			ID:     document.SlotID{PropositionID: id, Identifier: identifier},
			Status: status,
			DueAt:  due,
		}))
	}
	save("CURRICULUM.CV", document.Requested, &past)
	save("LANGUES.CERT", document.Requested, &future)
	save("PROJET.PLAN", document.CompletedAfterRequested, &past)

	slots, err := repo.SearchOverdue(ctx, now)
	require.NoError(t, err)
	var mine []string
	for _, s := range slots {
		if s.ID.PropositionID == id {
			mine = append(mine, s.ID.Identifier)
		}
	}
	assert.Equal(t, []string{"CURRICULUM.CV"}, mine)
}

func TestFollowUpRepositories(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)
	doctorate := shared.NewPropositionID()

	exams := NewExamRepository(conn)
	older := &confirmation.Exam{ID: confirmation.NewExamID(), DoctorateID: doctorate, Deadline: now}
	newer := &confirmation.Exam{ID: confirmation.NewExamID(), DoctorateID: doctorate, Deadline: now.AddDate(0, 6, 0)}
	require.NoError(t, exams.Save(ctx, older))
	require.NoError(t, exams.Save(ctx, newer))
	listed, err := exams.SearchByDoctorate(ctx, doctorate)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)

	activities := NewActivityRepository(conn)
	parent := &training.Activity{ID: training.NewActivityID(), DoctorateID: doctorate, Title: "Conference"}
	parentID := parent.ID
	child := &training.Activity{ID: training.NewActivityID(), DoctorateID: doctorate, ParentID: &parentID, Title: "Talk"}
	require.NoError(t, activities.Save(ctx, parent))
	require.NoError(t, activities.Save(ctx, child))

	children, err := activities.SearchByParent(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)

	_, err = activities.GetMany(ctx, []training.ActivityID{parent.ID, training.NewActivityID()})
	assert.ErrorIs(t, err, training.ErrActivityNotFound)

	require.NoError(t, activities.Delete(ctx, parent.ID))
	remaining, err := activities.SearchByDoctorate(ctx, doctorate)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	juries := NewJuryRepository(conn)
	_, err = juries.Get(ctx, doctorate)
	assert.ErrorIs(t, err, jury.ErrJuryNotFound)
	require.NoError(t, juries.Save(ctx, &jury.Jury{ID: doctorate, Title: "Thesis"}))
	j, err := juries.Get(ctx, doctorate)
	require.NoError(t, err)
	assert.Equal(t, "Thesis", j.Title)
}

func TestHistoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(newTestConnection(t))
	id := shared.NewPropositionID()

	require.NoError(t, repo.Record(ctx, notification.NewEntry(id, "0123456", "Créée.", "Created.", now, "proposition")))
	require.NoError(t, repo.Record(ctx, notification.NewEntry(id, "0123456", "Soumise.", "Submitted.", now.Add(time.Hour), "proposition", "status")))

	entries, err := repo.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Created.", entries[0].MessageEN)
	assert.Equal(t, []string{"proposition", "status"}, entries[1].Tags)
	assert.True(t, entries[1].At.Equal(now.Add(time.Hour)))
}
