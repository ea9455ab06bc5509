package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

func submittedFamily(t *testing.T, category Category) (*Activity, []*Activity) {
	t.Helper()
	parent := NewActivity(shared.NewPropositionID(), category, "parent", 2)
	require.NoError(t, parent.Submit())
	children := []*Activity{
		NewSubActivity(parent, Communication, "talk", 1),
		NewSubActivity(parent, Publication, "paper", 1),
	}
	for _, c := range children {
		require.NoError(t, c.Submit())
	}
	return parent, children
}

func TestRefuse_CascadesForCompositeCategories(t *testing.T) {
	for _, category := range []Category{Conference, Residency, Seminar} {
		t.Run(string(category), func(t *testing.T) {
			parent, children := submittedFamily(t, category)

			changed, err := Refuse(parent, children, "not relevant")

			require.NoError(t, err)
			assert.Equal(t, Refused, parent.Status)
			assert.Len(t, changed, 2)
			for _, c := range children {
				assert.Equal(t, Refused, c.Status)
				assert.Equal(t, "not relevant", c.RefusalReason)
			}
		})
	}
}

func TestRefuse_DoesNotCascadeForPublication(t *testing.T) {
	parent, children := submittedFamily(t, Publication)

	changed, err := Refuse(parent, children, "not relevant")

	require.NoError(t, err)
	assert.Empty(t, changed)
	for _, c := range children {
		assert.Equal(t, Submitted, c.Status)
	}
}

func TestRefuse_RequiresSubmission(t *testing.T) {
	parent := NewActivity(shared.NewPropositionID(), Conference, "parent", 2)
	child := NewSubActivity(parent, Communication, "talk", 1)

	_, err := Refuse(parent, []*Activity{child}, "no")

	assert.ErrorIs(t, err, ErrNotAwaitingDecision)
	assert.Equal(t, NotSubmitted, parent.Status)
	assert.Equal(t, NotSubmitted, child.Status)
}

func TestRevert_SeminarIsIdempotent(t *testing.T) {
	parent, children := submittedFamily(t, Seminar)
	_, err := Refuse(parent, children, "no")
	require.NoError(t, err)

	_, err = Revert(parent, children)
	require.NoError(t, err)
	_, err = Revert(parent, children)
	require.NoError(t, err)

	assert.Equal(t, Submitted, parent.Status)
	for _, c := range children {
		assert.Equal(t, Submitted, c.Status)
		assert.Empty(t, c.RefusalReason)
	}
}

func TestRevert_OnlySeminarCascades(t *testing.T) {
	parent, children := submittedFamily(t, Conference)
	_, err := Refuse(parent, children, "no")
	require.NoError(t, err)

	changed, err := Revert(parent, children)

	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, Submitted, parent.Status)
	for _, c := range children {
		assert.Equal(t, Refused, c.Status)
	}
}

func TestRevert_RejectsUnsubmitted(t *testing.T) {
	a := NewActivity(shared.NewPropositionID(), Seminar, "seminar", 1)

	_, err := Revert(a, nil)

	assert.ErrorIs(t, err, ErrNotSubmitted)
}

func TestActivity_Lifecycle(t *testing.T) {
	a := NewActivity(shared.NewPropositionID(), Course, "course", 3)

	assert.ErrorIs(t, a.Accept(), ErrNotAwaitingDecision)
	require.NoError(t, a.Submit())
	assert.ErrorIs(t, a.Submit(), ErrAlreadySubmitted)
	require.NoError(t, a.Accept())

	other := NewActivity(a.DoctorateID, Paper, "paper", 5)
	assert.Equal(t, 3.0, Total([]*Activity{a, other}))
}

func TestChildrenOf(t *testing.T) {
	parent, children := submittedFamily(t, Seminar)
	stranger := NewActivity(parent.DoctorateID, Course, "course", 1)

	got := ChildrenOf(append([]*Activity{parent, stranger}, children...), parent.ID)

	assert.Equal(t, children, got)
}
