package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/memory"
)

func newDocumentDeps(f *fixture) *DocumentDeps {
	return &DocumentDeps{
		Slots:        memory.NewSlotRepository(),
		Propositions: f.propositions,
		Effects:      f.effects,
	}
}

func TestSendDocumentsRequest(t *testing.T) {
	f := newFixture(t)
	id := f.submitted(t)
	_, err := NewDecideHandler(f.doctorate).Handle(f.ctx, DecideCommand{PropositionID: id, Decision: DecisionConfirm})
	require.NoError(t, err)
	deps := newDocumentDeps(f)
	define := NewDefineDocumentToRequestHandler(deps)

	known, err := define.Handle(f.ctx, DefineDocumentToRequestCommand{
		PropositionID: id,
		Tab:           document.Curriculum,
		Key:           "CV",
		Reason:        "missing",
		RequestStatus: document.Immediately,
		Author:        "sic",
	})
	require.NoError(t, err)
	free, err := define.Handle(f.ctx, DefineDocumentToRequestCommand{
		PropositionID: id,
		Type:          document.FreeRequestableSIC,
		Label:         "Birth certificate",
		RequestStatus: document.Immediately,
		Author:        "sic",
	})
	require.NoError(t, err)
	assert.Equal(t, document.ToRequest, free.Status)

	res, err := NewSendDocumentsRequestHandler(deps).Handle(f.ctx, SendDocumentsRequestCommand{PropositionID: id, Author: "sic"})
	require.NoError(t, err)

	assert.Equal(t, proposition.ToCompleteForSIC, res.Status)
	assert.ElementsMatch(t, []document.SlotID{known.ID, free.ID}, res.Requested)
	slot, err := deps.Slots.Get(f.ctx, known.ID)
	require.NoError(t, err)
	assert.Equal(t, document.Requested, slot.Status)
	assert.NotNil(t, slot.RequestedAt)
	kinds := f.notifier.kinds()
	assert.Equal(t, notification.KindDocumentsRequested, kinds[len(kinds)-1])

	cancelled, err := NewCancelDocumentRequestHandler(deps).Handle(f.ctx, CancelDocumentRequestCommand{SlotID: free.ID, Author: "sic"})
	require.NoError(t, err)
	assert.True(t, cancelled.Deleted)
	_, err = deps.Slots.Get(f.ctx, free.ID)
	assert.ErrorIs(t, err, document.ErrSlotNotFound)
}

func TestSendDocumentsRequest_NothingToRequest(t *testing.T) {
	f := newFixture(t)
	id := f.submitted(t)
	deps := newDocumentDeps(f)

	_, err := NewSendDocumentsRequestHandler(deps).Handle(f.ctx, SendDocumentsRequestCommand{PropositionID: id})

	assert.ErrorIs(t, err, document.ErrStatusNotAllowed)
	assert.Equal(t, proposition.Submitted, f.proposition(t, id).Status)
}

func TestFillDocument_ByCandidate(t *testing.T) {
	f := newFixture(t)
	id := f.submitted(t)
	deps := newDocumentDeps(f)
	slot, err := NewDefineDocumentToRequestHandler(deps).Handle(f.ctx, DefineDocumentToRequestCommand{
		PropositionID: id,
		Tab:           document.Languages,
		Key:           "CERT",
	})
	require.NoError(t, err)

	res, err := NewFillDocumentHandler(deps).Handle(f.ctx, FillDocumentCommand{
		SlotID: slot.ID,
		Files:  []string{"token-1"},
		Author: "candidate-1",
	})

	require.NoError(t, err)
	assert.Equal(t, document.CompletedAfterRequested, res.Status)
}
