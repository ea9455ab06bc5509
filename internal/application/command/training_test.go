package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/training"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/memory"
)

func seminarWithTalk(t *testing.T, f *fixture) (*TrainingDeps, *training.Activity, *training.Activity) {
	t.Helper()
	deps := &TrainingDeps{Activities: memory.NewActivityRepository(), Effects: f.effects}
	seminar := training.NewActivity(shared.NewPropositionID(), training.Seminar, "Seminar", 2)
	talk := training.NewSubActivity(seminar, training.Communication, "Talk", 1)
	require.NoError(t, deps.Activities.Save(f.ctx, seminar))
	require.NoError(t, deps.Activities.Save(f.ctx, talk))

	_, err := NewSubmitActivitiesHandler(deps).Handle(f.ctx, SubmitActivitiesCommand{
		ActivityIDs: []training.ActivityID{seminar.ID, talk.ID},
	})
	require.NoError(t, err)
	return deps, seminar, talk
}

func TestRefuseActivity_Cascades(t *testing.T) {
	f := newFixture(t)
	deps, seminar, talk := seminarWithTalk(t, f)

	res, err := NewRefuseActivityHandler(deps).Handle(f.ctx, RefuseActivityCommand{ActivityID: seminar.ID, Reason: "off topic"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []training.ActivityID{seminar.ID, talk.ID}, res.Changed)
	child, err := deps.Activities.Get(f.ctx, talk.ID)
	require.NoError(t, err)
	assert.Equal(t, training.Refused, child.Status)
	assert.Equal(t, "off topic", child.RefusalReason)

	_, err = NewRevertActivityHandler(deps).Handle(f.ctx, RevertActivityCommand{ActivityID: seminar.ID})
	require.NoError(t, err)
	child, err = deps.Activities.Get(f.ctx, talk.ID)
	require.NoError(t, err)
	assert.Equal(t, training.Submitted, child.Status)
}

func TestSubmitActivities_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	deps, seminar, _ := seminarWithTalk(t, f)
	missing := training.NewActivityID()

	_, err := NewAcceptActivitiesHandler(deps).Handle(f.ctx, AcceptActivitiesCommand{
		ActivityIDs: []training.ActivityID{seminar.ID, missing},
	})

	assert.ErrorIs(t, err, training.ErrActivityNotFound)
	stored, err := deps.Activities.Get(f.ctx, seminar.ID)
	require.NoError(t, err)
	assert.Equal(t, training.Submitted, stored.Status)
}
