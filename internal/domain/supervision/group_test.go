package supervision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestGroup(t *testing.T) *Group {
	t.Helper()
	g := NewGroup(shared.NewPropositionID())
	require.NoError(t, g.IdentifyPromoter("promoter-1", DefaultLimits()))
	require.NoError(t, g.IdentifyCAMember("ca-1", DefaultLimits()))
	return g
}

func TestGroup_CAMembersAreCappedAtThree(t *testing.T) {
	g := NewGroup(shared.NewPropositionID())
	limits := DefaultLimits()

	for _, id := range []shared.PersonID{"ca-1", "ca-2", "ca-3"} {
		require.NoError(t, g.IdentifyCAMember(id, limits))
	}
	err := g.IdentifyCAMember("ca-4", limits)

	assert.ErrorIs(t, err, ErrGroupFullForCAMembers)
	assert.Len(t, g.CAMembers, 3)
}

func TestGroup_IdentifyRejectsExistingMember(t *testing.T) {
	g := newTestGroup(t)

	assert.ErrorIs(t, g.IdentifyCAMember("promoter-1", DefaultLimits()), ErrAlreadyMember)
	assert.ErrorIs(t, g.IdentifyPromoter("ca-1", DefaultLimits()), ErrAlreadyMember)
}

func TestGroup_FirstPromoterIsReference(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.IdentifyPromoter("promoter-2", DefaultLimits()))

	assert.Equal(t, shared.PersonID("promoter-1"), g.ReferencePromoter)

	require.NoError(t, g.DesignateReferencePromoter("promoter-2"))
	require.NoError(t, g.RemovePromoter("promoter-2"))
	assert.True(t, g.ReferencePromoter.IsEmpty())
}

func TestGroup_RemoveUnknownMembers(t *testing.T) {
	g := newTestGroup(t)

	assert.ErrorIs(t, g.RemovePromoter("nobody"), ErrPromoterNotFound)
	assert.ErrorIs(t, g.RemoveCAMember("promoter-1"), ErrCAMemberNotFound)
	assert.ErrorIs(t, g.RemoveSignatory("nobody"), ErrSignatoryNotFound)
	assert.ErrorIs(t, g.DesignateReferencePromoter("ca-1"), ErrPromoterNotFound)
}

func TestGroup_InviteAllIsIdempotent(t *testing.T) {
	g := newTestGroup(t)

	invited, err := g.InviteAll(now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []shared.PersonID{"promoter-1", "ca-1"}, invited)

	require.NoError(t, g.Approve("promoter-1", "", "ok", now))

	invited, err = g.InviteAll(now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, invited)

	sig, isPromoter, err := g.Signature("promoter-1")
	require.NoError(t, err)
	assert.True(t, isPromoter)
	assert.Equal(t, Approved, sig.State)

	sig, _, err = g.Signature("ca-1")
	require.NoError(t, err)
	assert.Equal(t, Invited, sig.State)
	assert.Equal(t, now, sig.UpdatedAt)
}

func TestGroup_InviteTwiceFails(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.Invite("ca-1", now))

	assert.ErrorIs(t, g.Invite("ca-1", now), ErrSignatoryAlreadyInvited)
	assert.ErrorIs(t, g.Invite("nobody", now), ErrSignatoryNotFound)
}

func TestGroup_ApproveRequiresInvitation(t *testing.T) {
	g := newTestGroup(t)

	assert.ErrorIs(t, g.Approve("promoter-1", "", "", now), ErrSignatoryNotInvited)
	assert.ErrorIs(t, g.Approve("nobody", "", "", now), ErrSignatoryNotFound)
}

func TestGroup_RefuseOnlyTouchesTarget(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.IdentifyPromoter("promoter-2", DefaultLimits()))
	_, err := g.InviteAll(now)
	require.NoError(t, err)
	require.NoError(t, g.Approve("promoter-2", "", "", now))

	isPromoter, err := g.Refuse("promoter-1", "internal", "external", "not ready", now)
	require.NoError(t, err)
	assert.True(t, isPromoter)

	refused, _, _ := g.Signature("promoter-1")
	other, _, _ := g.Signature("promoter-2")
	ca, _, _ := g.Signature("ca-1")
	assert.Equal(t, Refused, refused.State)
	assert.Equal(t, "not ready", refused.RefusalReason)
	assert.Equal(t, Approved, other.State)
	assert.Equal(t, Invited, ca.State)
}

func TestGroup_RefusedPromoterInvitedAgainOnlyOnceReadded(t *testing.T) {
	g := newTestGroup(t)
	_, err := g.InviteAll(now)
	require.NoError(t, err)
	_, err = g.Refuse("promoter-1", "", "", "not ready", now)
	require.NoError(t, err)

	invited, err := g.InviteAll(now)
	require.NoError(t, err)
	assert.Empty(t, invited)

	require.NoError(t, g.RemovePromoter("promoter-1"))
	require.NoError(t, g.IdentifyPromoter("promoter-1", DefaultLimits()))
	invited, err = g.InviteAll(now)
	require.NoError(t, err)
	assert.Equal(t, []shared.PersonID{"promoter-1"}, invited)
	sig, _, _ := g.Signature("promoter-1")
	assert.Equal(t, Invited, sig.State)
	assert.Empty(t, sig.RefusalReason)
}

func TestGroup_RefuseByCAMember(t *testing.T) {
	g := newTestGroup(t)
	_, err := g.InviteAll(now)
	require.NoError(t, err)

	isPromoter, err := g.Refuse("ca-1", "", "", "", now)

	require.NoError(t, err)
	assert.False(t, isPromoter)
}

func TestGroup_ApproveByPDF(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.Invite("ca-1", now))

	require.NoError(t, g.ApproveByPDF("ca-1", []string{"token-1"}, now))

	sig, _, _ := g.Signature("ca-1")
	assert.Equal(t, Approved, sig.State)
	assert.Equal(t, []string{"token-1"}, sig.PDF)
}

func TestGroup_VerifySignatories(t *testing.T) {
	t.Run("missing internal promoter fails fast", func(t *testing.T) {
		g := NewGroup(shared.NewPropositionID())
		require.NoError(t, g.IdentifyPromoter("external-1", DefaultLimits()))

		err := g.VerifySignatories(map[shared.PersonID]bool{"external-1": true}, Limits{MinCAMembers: 2})

		assert.ErrorIs(t, err, ErrMissingPromoter)
		assert.NotErrorIs(t, err, ErrMissingCAMember)
	})

	t.Run("invariants are collected", func(t *testing.T) {
		g := newTestGroup(t)
		g.ReferencePromoter = ""

		err := g.VerifySignatories(nil, Limits{MinCAMembers: 2})

		var multi *shared.MultipleBusinessErrors
		require.ErrorAs(t, err, &multi)
		assert.Equal(t, []string{"PROPOSITION-20", "PROPOSITION-42"}, multi.Codes())
	})

	t.Run("complete group", func(t *testing.T) {
		assert.NoError(t, newTestGroup(t).VerifySignatories(nil, DefaultLimits()))
	})
}

func TestGroup_VerifyCotutelle(t *testing.T) {
	g := newTestGroup(t)
	cotutelle := Cotutelle{
		Active:         true,
		Motivation:     "joint lab",
		Institution:    "inst-1",
		OpeningRequest: []string{"file"},
	}
	require.NoError(t, g.DefineCotutelle(cotutelle))

	assert.ErrorIs(t, g.VerifyCotutelle(map[shared.PersonID]bool{}), ErrCotutelleWithoutExternalPromoter)

	require.NoError(t, g.IdentifyPromoter("external-1", DefaultLimits()))
	assert.NoError(t, g.VerifyCotutelle(map[shared.PersonID]bool{"external-1": true}))
}

func TestGroup_DefineCotutelleRequiresDetails(t *testing.T) {
	g := newTestGroup(t)

	err := g.DefineCotutelle(Cotutelle{Active: true, Motivation: "x"})

	assert.ErrorIs(t, err, ErrCotutelleIncomplete)
	assert.Nil(t, g.Cotutelle)
	assert.NoError(t, g.DefineCotutelle(Cotutelle{Active: false}))
	assert.False(t, g.CotutelleActive())
}

func TestGroup_VerifyEveryoneApproved(t *testing.T) {
	g := newTestGroup(t)
	_, err := g.InviteAll(now)
	require.NoError(t, err)

	err = g.VerifyEveryoneApproved()
	assert.ErrorIs(t, err, ErrNotApprovedByPromoters)
	assert.ErrorIs(t, err, ErrNotApprovedByCAMembers)

	require.NoError(t, g.Approve("promoter-1", "", "", now))
	require.NoError(t, g.Approve("ca-1", "", "", now))
	assert.NoError(t, g.VerifyEveryoneApproved())
}

func TestGroup_CloneIsDeep(t *testing.T) {
	g := newTestGroup(t)
	c := g.Clone()

	c.Promoters[0].State = Approved

	assert.Equal(t, NotInvited, g.Promoters[0].State)
}
