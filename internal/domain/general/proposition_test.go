package general

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

var now = time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)

func confirmed(t *testing.T, kind Kind) *Proposition {
	t.Helper()
	p := New(kind, "candidate-1", shared.TrainingID{Acronym: "SINF1BA", Year: 2024}, checklist.DefaultConfiguration(), now)
	require.NoError(t, p.Submit(300001, "candidate-1", now))
	return p
}

func TestGeneral_SubmitCapturesChecklist(t *testing.T) {
	p := confirmed(t, General)

	assert.Equal(t, Confirmed, p.Status)
	assert.Equal(t, int64(300001), p.Reference)
	assert.True(t, p.Checklist.IsCaptured())
	assert.ErrorIs(t, p.Submit(300002, "candidate-1", now), ErrUnexpectedStatus)
}

func TestGeneral_WaivePaymentReturnsToConfirmed(t *testing.T) {
	cfg := checklist.DefaultConfiguration()
	p := confirmed(t, General)
	require.NoError(t, p.RequirePayment(cfg, "sic", now))
	require.Equal(t, FeesPending, p.Status)

	require.NoError(t, p.WaivePayment(cfg, checklist.ManagerSuccess, "sic", now))

	assert.Equal(t, Confirmed, p.Status)
	fees := p.Checklist.Status(checklist.ApplicationFees)
	assert.Equal(t, checklist.ManagerSuccess, fees.Status)
	assert.Equal(t, "Dispensed", fees.Label)
}

func TestGeneral_WaivePaymentRefusedOncePaid(t *testing.T) {
	cfg := checklist.DefaultConfiguration()
	p := confirmed(t, General)
	require.NoError(t, p.RequirePayment(cfg, "sic", now))
	require.NoError(t, p.PayFees(cfg, now))

	err := p.WaivePayment(cfg, checklist.InitialNotConcerned, "sic", now)

	assert.ErrorIs(t, err, checklist.ErrPaymentNotCancellable)
	assert.Equal(t, checklist.SystemSuccess, p.Checklist.Status(checklist.ApplicationFees).Status)
}

func TestGeneral_DecisionFlow(t *testing.T) {
	cfg := checklist.DefaultConfiguration()
	p := confirmed(t, General)

	require.NoError(t, p.SendToFac(cfg, "sic", now))
	require.NoError(t, p.Apply(RequestDocumentsByFac, "fac", now))
	require.NoError(t, p.Apply(CompleteDocumentsFac, "candidate-1", now))
	require.NoError(t, p.RefuseByFac(cfg, "prerequisites", "fac", now))
	assert.Equal(t, ReturnedFromFac, p.Status)
	assert.Equal(t, "Refusal", p.Checklist.Status(checklist.FacultyDecision).Label)

	require.NoError(t, p.ApproveBySIC(cfg, "sic", now))
	require.NoError(t, p.RefuseEnrolment(cfg, "direction", now))
	assert.Equal(t, EnrolmentRefused, p.Status)
	assert.Equal(t, "Refused", p.Checklist.Status(checklist.SICDecision).Label)
}

func TestGeneral_MissingChecklistEntryChangesNothing(t *testing.T) {
	cfg, err := checklist.ParseConfiguration([]byte(`
generale:
  - tab: decision_facultaire
    statuses:
      - {id: A_TRAITER, label: To be processed, status: INITIAL_CANDIDAT, initial: true}
`))
	require.NoError(t, err)
	p := confirmed(t, General)

	err = p.SendToFac(cfg, "sic", now)

	assert.ErrorIs(t, err, checklist.ErrUnknownStatus)
	assert.Equal(t, Confirmed, p.Status)
	assert.Equal(t, "To be processed", p.Checklist.Status(checklist.FacultyDecision).Label)
}

func TestGeneral_ApplyRejectsChecklistActions(t *testing.T) {
	p := confirmed(t, General)

	err := p.Apply(SendToFac, "sic", now)

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, Confirmed, p.Status)
}

func TestContinuing_Machine(t *testing.T) {
	p := confirmed(t, Continuing)
	assert.False(t, p.Checklist.IsCaptured())

	assert.ErrorIs(t, p.Apply(ValidateEnrolment, "manager", now), ErrContinuingUnexpectedStatus)
	require.NoError(t, p.Apply(PutOnHold, "manager", now))
	require.NoError(t, p.Apply(SendToValidation, "manager", now))
	require.NoError(t, p.Apply(ValidateEnrolment, "manager", now))
	assert.Equal(t, EnrolmentAuthorized, p.Status)

	err := p.Apply(SendToFac, "manager", now)
	assert.ErrorIs(t, err, ErrContinuingUnexpectedStatus)
}

func TestContinuing_Close(t *testing.T) {
	p := confirmed(t, Continuing)

	require.NoError(t, p.Close(checklist.DefaultConfiguration(), "manager", now))

	assert.Equal(t, Closed, p.Status)
	assert.False(t, p.CanApply(Close))
}

func TestCancelOnlyFromDraft(t *testing.T) {
	draft := New(General, "candidate-1", shared.TrainingID{}, checklist.DefaultConfiguration(), now)
	require.NoError(t, draft.Apply(Cancel, "candidate-1", now))
	assert.Equal(t, Cancelled, draft.Status)

	p := confirmed(t, General)
	assert.ErrorIs(t, p.Apply(Cancel, "candidate-1", now), ErrUnexpectedStatus)
}
