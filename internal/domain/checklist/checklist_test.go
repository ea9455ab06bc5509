package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDefaultConfiguration_DoctoralTabs(t *testing.T) {
	cfg := DefaultConfiguration()

	assert.Equal(t, []Tab{
		PersonalData, Assimilation, PreviousExperience, Financeability,
		TrainingChoice, ResearchProject, CDDDecision, SICDecision,
	}, cfg.Tabs(Doctorate))
	assert.Contains(t, cfg.Tabs(General), ApplicationFees)
}

func TestNew_SeedsInitialStatuses(t *testing.T) {
	c := New(DefaultConfiguration(), Doctorate)

	assert.Equal(t, InitialCandidate, c.Status(PersonalData).Status)
	assert.Equal(t, "To be processed", c.Status(PersonalData).Label)
	assert.Len(t, c.Current, 8)
	assert.False(t, c.IsCaptured())
}

func TestChecklist_CaptureInitialIsFrozen(t *testing.T) {
	cfg := DefaultConfiguration()
	c := New(cfg, Doctorate)

	c.CaptureInitial()
	require.NoError(t, c.ChangeStatus(cfg, PersonalData, ManagerSuccess, nil))
	c.CaptureInitial()

	assert.Equal(t, InitialCandidate, c.Initial[PersonalData].Status)
	assert.Equal(t, ManagerSuccess, c.Current[PersonalData].Status)
	assert.Equal(t, "Validated", c.Current[PersonalData].Label)
}

func TestChecklist_ChangeStatusMatchesExtra(t *testing.T) {
	cfg := DefaultConfiguration()
	c := New(cfg, Doctorate)

	require.NoError(t, c.ChangeStatus(cfg, PersonalData, ManagerBlocking, map[string]string{"fraud": "1"}))
	assert.Equal(t, "Fraudster", c.Status(PersonalData).Label)

	err := c.ChangeStatus(cfg, PersonalData, ManagerBlocking, map[string]string{"fraud": "2"})
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, "Fraudster", c.Status(PersonalData).Label)

	assert.ErrorIs(t, c.ChangeStatus(cfg, PersonalData, SystemSuccess, nil), ErrUnknownStatus)
	assert.ErrorIs(t, c.ChangeStatus(cfg, ApplicationFees, SystemSuccess, nil), ErrUnknownTab)
}

func TestChecklist_CanChangeStatusTo(t *testing.T) {
	cfg := DefaultConfiguration()
	c := New(cfg, Doctorate)

	assert.NoError(t, c.CanChangeStatusTo(cfg, CDDDecision, "ACCORD").Validate())
	assert.ErrorIs(t, c.CanChangeStatusTo(cfg, CDDDecision, "UNKNOWN").Validate(), ErrUnknownStatus)
	assert.ErrorIs(t, c.CanChangeStatusTo(cfg, ApplicationFees, "PAYE").Validate(), ErrUnknownTab)
	assert.Equal(t, InitialCandidate, c.Status(CDDDecision).Status)
}

func TestChecklist_Children(t *testing.T) {
	cfg := DefaultConfiguration()
	c := New(cfg, Doctorate)

	require.NoError(t, c.AddChild(cfg, PreviousExperience, "exp-1", "Bachelor"))
	assert.ErrorIs(t, c.AddChild(cfg, PreviousExperience, "exp-1", ""), ErrChildAlreadyExists)

	err := c.ChangeChildStatus(cfg, PreviousExperience, "exp-1", ManagerInProgress, map[string]string{"authentification": "1"})
	require.NoError(t, err)

	child, err := c.Child(PreviousExperience, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, ManagerInProgress, child.Status)
	assert.Equal(t, "exp-1", child.ChildID())

	assert.ErrorIs(t, c.ChangeChildStatus(cfg, PreviousExperience, "exp-2", ManagerSuccess, nil), ErrChildNotFound)
	assert.ErrorIs(t, c.AddChild(cfg, PersonalData, "x", ""), ErrUnknownTab)
}

func TestChecklist_WaivePayment(t *testing.T) {
	cfg := DefaultConfiguration()

	t.Run("dispensed by a manager", func(t *testing.T) {
		c := New(cfg, General)
		c.CaptureInitial()
		require.NoError(t, c.RequirePayment(cfg))

		require.NoError(t, c.WaivePayment(cfg, ManagerSuccess))
		assert.Equal(t, "Dispensed", c.Status(ApplicationFees).Label)

		require.NoError(t, c.WaivePayment(cfg, InitialNotConcerned))
		assert.Equal(t, "Not concerned", c.Status(ApplicationFees).Label)
	})

	t.Run("already paid at submission", func(t *testing.T) {
		c := New(cfg, General)
		require.NoError(t, c.ChangeStatus(cfg, ApplicationFees, SystemSuccess, nil))
		c.CaptureInitial()

		assert.ErrorIs(t, c.WaivePayment(cfg, ManagerSuccess), ErrPaymentNotCancellable)
	})

	t.Run("paid after a manager request", func(t *testing.T) {
		c := New(cfg, General)
		c.CaptureInitial()
		require.NoError(t, c.ChangeStatus(cfg, ApplicationFees, SystemSuccess, nil))

		assert.ErrorIs(t, c.WaivePayment(cfg, InitialNotConcerned), ErrPaymentNotCancellable)
	})

	t.Run("target status must be a waiver", func(t *testing.T) {
		c := New(cfg, General)

		assert.ErrorIs(t, c.WaivePayment(cfg, ManagerBlocking), ErrUnknownStatus)
	})
}

func TestParseConfiguration_RejectsEmptyTab(t *testing.T) {
	_, err := ParseConfiguration([]byte("doctorat:\n  - tab: x\n"))

	assert.Error(t, err)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "In progress", StatusLabels.Label(string(ManagerInProgress), language.BritishEnglish))
	assert.Equal(t, "En cours", StatusLabels.Label(string(ManagerInProgress), language.German))
}
