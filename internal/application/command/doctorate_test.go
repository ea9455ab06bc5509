package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

func TestInitiate_CreatesPropositionAndGroup(t *testing.T) {
	f := newFixture(t)

	id := f.initiate(t, proposition.Admission)

	p := f.proposition(t, id)
	assert.Equal(t, proposition.InProgress, p.Status)
	_, err := f.groups.Get(f.ctx, id)
	assert.NoError(t, err)
	entries, err := f.history.List(f.ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInitiate_UnknownDoctorate(t *testing.T) {
	f := newFixture(t)

	_, err := NewInitiatePropositionHandler(f.doctorate).Handle(f.ctx, InitiatePropositionCommand{
		CandidateID: "candidate-1",
		Training:    shared.TrainingID{Acronym: "UNKNOWN", Year: 2024},
	})

	assert.ErrorIs(t, err, proposition.ErrDoctorateNotFound)
}

func TestInitiate_RequiresCandidate(t *testing.T) {
	f := newFixture(t)

	_, err := NewInitiatePropositionHandler(f.doctorate).Handle(f.ctx, InitiatePropositionCommand{
		Training: shared.TrainingID{Acronym: "SC3DP", Year: 2024},
	})

	assert.True(t, shared.IsValidation(err))
}

func TestComplete_UnknownScholarship(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)

	_, err := NewCompletePropositionHandler(f.doctorate).Handle(f.ctx, CompletePropositionCommand{
		PropositionID: id,
		AdmissionType: proposition.Admission,
		Project:       completeProject(),
		Financing:     proposition.Financing{Type: proposition.SearchScholarship, Scholarship: "NOPE"},
		PriorResearch: proposition.PriorResearch{DoctorateAlreadyDone: proposition.NoDoctorate},
	})

	assert.ErrorIs(t, err, proposition.ErrScholarshipNotFound)
}

func TestSignatureAndSubmissionFlow(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)

	_, err := NewIdentifyPromoterHandler(f.doctorate).Handle(f.ctx, IdentifyPromoterCommand{PropositionID: id, Person: "promoter-1"})
	require.NoError(t, err)

	requested, err := NewRequestSignaturesHandler(f.doctorate).Handle(f.ctx, RequestSignaturesCommand{PropositionID: id, Author: "candidate-1"})
	require.NoError(t, err)
	assert.Equal(t, []shared.PersonID{"promoter-1"}, requested.Invited)
	assert.Equal(t, proposition.SigningInProgress, f.proposition(t, id).Status)

	approve := NewOpinionHandler(f.doctorate)
	_, err = approve.Approve(f.ctx, ApprovePropositionCommand{PropositionID: id, Signatory: "promoter-1"})
	require.ErrorIs(t, err, proposition.ErrThesisInstituteRequired)

	opinion, err := approve.Approve(f.ctx, ApprovePropositionCommand{PropositionID: id, Signatory: "promoter-1", Institute: "INST-1"})
	require.NoError(t, err)
	assert.False(t, opinion.Unlocked)
	assert.Equal(t, "INST-1", f.proposition(t, id).Project.ThesisInstitute)

	submitted, err := NewSubmitPropositionHandler(f.doctorate).Handle(f.ctx, SubmitPropositionCommand{PropositionID: id, Author: "candidate-1"})
	require.NoError(t, err)

	assert.Equal(t, proposition.ReferenceBase, submitted.Reference)
	p := f.proposition(t, id)
	assert.Equal(t, proposition.Submitted, p.Status)
	assert.Equal(t, "candidate-1", p.LastModifiedBy)
	assert.Equal(t, []shared.EventType{
		shared.EventSignaturesRequested,
		shared.EventDoctoralPropositionSubmitted,
	}, f.events.types())
	assert.Equal(t, []notification.Kind{
		notification.KindSignaturesRequested,
		notification.KindSignatoryApproved,
		notification.KindSubmitted,
	}, f.notifier.kinds())

	entries, err := f.history.List(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "The proposition has been submitted.", entries[len(entries)-1].MessageEN)
}

func TestSubmit_RefusedSubmissionKeepsReference(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)
	_, err := NewIdentifyPromoterHandler(f.doctorate).Handle(f.ctx, IdentifyPromoterCommand{PropositionID: id, Person: "promoter-1"})
	require.NoError(t, err)

	_, err = NewSubmitPropositionHandler(f.doctorate).Handle(f.ctx, SubmitPropositionCommand{PropositionID: id})

	assert.ErrorIs(t, err, proposition.ErrNotAwaitingSignatures)
	next, err := f.propositions.NextReference(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, proposition.ReferenceBase, next)
	assert.Empty(t, f.events.types())
}

func TestRefuseByPromoter_UnlocksProposition(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)
	_, err := NewIdentifyPromoterHandler(f.doctorate).Handle(f.ctx, IdentifyPromoterCommand{PropositionID: id, Person: "promoter-1"})
	require.NoError(t, err)
	_, err = NewIdentifyCAMemberHandler(f.doctorate).Handle(f.ctx, IdentifyCAMemberCommand{PropositionID: id, Person: "member-1"})
	require.NoError(t, err)
	_, err = NewRequestSignaturesHandler(f.doctorate).Handle(f.ctx, RequestSignaturesCommand{PropositionID: id})
	require.NoError(t, err)

	res, err := RefuseHandler{NewOpinionHandler(f.doctorate)}.Handle(f.ctx, RefusePropositionCommand{
		PropositionID: id,
		Signatory:     "promoter-1",
		Reason:        "scope",
	})
	require.NoError(t, err)

	assert.True(t, res.Unlocked)
	assert.Equal(t, proposition.InProgress, f.proposition(t, id).Status)
	g, err := f.groups.Get(f.ctx, id)
	require.NoError(t, err)
	sig, _, err := g.Signature("member-1")
	require.NoError(t, err)
	assert.Equal(t, supervision.Invited, sig.State)

	last := f.events.events[len(f.events.events)-1]
	refused, ok := last.(shared.SignatoryRefusedEvent)
	require.True(t, ok)
	assert.True(t, refused.IsPromoter)
	assert.Equal(t, "scope", refused.Reason)
}

func TestApproveByPDF_RequiresDocument(t *testing.T) {
	f := newFixture(t)

	_, err := ApproveByPDFHandler{NewOpinionHandler(f.doctorate)}.Handle(f.ctx, ApproveByPDFCommand{
		PropositionID: shared.NewPropositionID(),
		Signatory:     "promoter-1",
	})

	assert.True(t, shared.IsValidation(err))
}

func TestNotificationFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture(t)
	failing := &notifierMock{}
	failing.On("Notify", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	f.doctorate.Notifier = failing
	id := f.initiate(t, proposition.Admission)
	_, err := NewIdentifyPromoterHandler(f.doctorate).Handle(f.ctx, IdentifyPromoterCommand{PropositionID: id, Person: "promoter-1"})
	require.NoError(t, err)

	_, err = NewRequestSignaturesHandler(f.doctorate).Handle(f.ctx, RequestSignaturesCommand{PropositionID: id})

	require.NoError(t, err)
	failing.AssertNumberOfCalls(t, "Notify", 1)
	assert.Equal(t, proposition.SigningInProgress, f.proposition(t, id).Status)
}

func TestRemoveInvitedSignatory_NotifiesThem(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)
	_, err := NewIdentifyPromoterHandler(f.doctorate).Handle(f.ctx, IdentifyPromoterCommand{PropositionID: id, Person: "promoter-1"})
	require.NoError(t, err)
	_, err = NewIdentifyCAMemberHandler(f.doctorate).Handle(f.ctx, IdentifyCAMemberCommand{PropositionID: id, Person: "member-1"})
	require.NoError(t, err)
	_, err = NewRequestSignaturesHandler(f.doctorate).Handle(f.ctx, RequestSignaturesCommand{PropositionID: id})
	require.NoError(t, err)

	res, err := NewRemoveCAMemberHandler(f.doctorate).Handle(f.ctx, RemoveCAMemberCommand{PropositionID: id, Person: "member-1"})
	require.NoError(t, err)

	assert.Equal(t, 0, res.CAMembers)
	kinds := f.notifier.kinds()
	assert.Equal(t, notification.KindSignatoryRemoved, kinds[len(kinds)-1])
}

func TestSupervisionGroup_FrozenOnceSubmitted(t *testing.T) {
	f := newFixture(t)
	id := f.submitted(t)

	_, err := NewRemovePromoterHandler(f.doctorate).Handle(f.ctx, RemovePromoterCommand{PropositionID: id, Person: "promoter-1"})
	assert.ErrorIs(t, err, proposition.ErrGroupLocked)

	_, err = NewIdentifyCAMemberHandler(f.doctorate).Handle(f.ctx, IdentifyCAMemberCommand{PropositionID: id, Person: "member-1"})
	assert.ErrorIs(t, err, proposition.ErrGroupLocked)

	_, err = NewDefineCotutelleHandler(f.doctorate).Handle(f.ctx, DefineCotutelleCommand{PropositionID: id})
	assert.ErrorIs(t, err, proposition.ErrGroupLocked)

	g, err := f.groups.Get(f.ctx, id)
	require.NoError(t, err)
	assert.Empty(t, g.CAMembers)
}

func TestSupervisionGroup_SettingsFrozenWhileSigning(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)
	_, err := NewIdentifyPromoterHandler(f.doctorate).Handle(f.ctx, IdentifyPromoterCommand{PropositionID: id, Person: "promoter-1"})
	require.NoError(t, err)
	_, err = NewIdentifyCAMemberHandler(f.doctorate).Handle(f.ctx, IdentifyCAMemberCommand{PropositionID: id, Person: "member-1"})
	require.NoError(t, err)
	_, err = NewRequestSignaturesHandler(f.doctorate).Handle(f.ctx, RequestSignaturesCommand{PropositionID: id})
	require.NoError(t, err)

	_, err = NewDesignateReferencePromoterHandler(f.doctorate).Handle(f.ctx, DesignateReferencePromoterCommand{PropositionID: id, Person: "promoter-1"})
	assert.ErrorIs(t, err, proposition.ErrSignatureRequestInProgress)

	_, err = NewDefineCotutelleHandler(f.doctorate).Handle(f.ctx, DefineCotutelleCommand{
		PropositionID: id,
		Cotutelle:     supervision.Cotutelle{Active: true, Motivation: "joint", Institution: "inst-1"},
	})
	assert.ErrorIs(t, err, proposition.ErrSignatureRequestInProgress)

	_, err = NewIdentifyCAMemberHandler(f.doctorate).Handle(f.ctx, IdentifyCAMemberCommand{PropositionID: id, Person: "member-2"})
	assert.NoError(t, err)
}

func TestDecide_FullDecisionFlow(t *testing.T) {
	f := newFixture(t)
	id := f.submitted(t)
	decide := NewDecideHandler(f.doctorate)

	for _, d := range []Decision{
		DecisionConfirm,
		DecisionSendToFac,
		DecisionApproveByCDD,
		DecisionApproveBySIC,
		DecisionValidateEnrolment,
	} {
		_, err := decide.Handle(f.ctx, DecideCommand{PropositionID: id, Decision: d, Author: "manager"})
		require.NoError(t, err, d)
	}

	assert.Equal(t, proposition.EnrolmentAuthorized, f.proposition(t, id).Status)
	kinds := f.notifier.kinds()
	assert.Equal(t, notification.KindDecision, kinds[len(kinds)-1])
}

func TestDecide_RejectsIllegalSource(t *testing.T) {
	f := newFixture(t)
	id := f.submitted(t)
	decide := NewDecideHandler(f.doctorate)

	_, err := decide.Handle(f.ctx, DecideCommand{PropositionID: id, Decision: DecisionApproveByCDD})
	assert.ErrorIs(t, err, proposition.ErrNotManagedByCDD)
	assert.Equal(t, proposition.Submitted, f.proposition(t, id).Status)

	_, err = decide.Handle(f.ctx, DecideCommand{PropositionID: id, Decision: "SHRUG"})
	assert.True(t, shared.IsValidation(err))
}

func TestRefuseMerge_PublishesEvent(t *testing.T) {
	f := newFixture(t)
	id := f.submitted(t)

	_, err := NewRefuseMergeHandler(f.doctorate).Handle(f.ctx, RefuseMergeCommand{PropositionID: id, Author: "manager"})

	require.NoError(t, err)
	types := f.events.types()
	assert.Equal(t, shared.EventMergeRefused, types[len(types)-1])
}

func TestCancel_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)

	res, err := NewCancelPropositionHandler(f.doctorate).Handle(f.ctx, CancelPropositionCommand{PropositionID: id, Author: "candidate-1"})

	require.NoError(t, err)
	assert.Equal(t, proposition.Cancelled, res.Status)
	entries, err := f.history.List(f.ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
