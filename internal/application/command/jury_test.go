package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/memory"
)

func TestJury_CreatedFromPromoters(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)
	_, err := NewIdentifyPromoterHandler(f.doctorate).Handle(f.ctx, IdentifyPromoterCommand{PropositionID: id, Person: "promoter-1"})
	require.NoError(t, err)
	deps := &JuryDeps{Juries: memory.NewJuryRepository(), Groups: f.groups, Effects: f.effects}

	added, err := NewAddJuryMemberHandler(deps).Handle(f.ctx, AddJuryMemberCommand{
		PropositionID: id,
		Member:        jury.JuryMember{Registration: "member-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added.Members)

	_, err = NewModifyJuryRoleHandler(deps).Handle(f.ctx, ModifyJuryRoleCommand{
		PropositionID: id,
		MemberID:      added.MemberID,
		Role:          jury.President,
	})
	require.NoError(t, err)
	j, err := deps.Juries.Get(f.ctx, id)
	require.NoError(t, err)
	member, err := j.Member(added.MemberID)
	require.NoError(t, err)
	assert.Equal(t, jury.President, member.Role)

	removed, err := NewRemoveJuryMemberHandler(deps).Handle(f.ctx, RemoveJuryMemberCommand{PropositionID: id, MemberID: added.MemberID})
	require.NoError(t, err)
	assert.Equal(t, 1, removed.Members)
}

func TestJury_ExternalMemberNeedsDetails(t *testing.T) {
	f := newFixture(t)
	id := f.initiate(t, proposition.Admission)
	deps := &JuryDeps{Juries: memory.NewJuryRepository(), Groups: f.groups, Effects: f.effects}

	_, err := NewAddJuryMemberHandler(deps).Handle(f.ctx, AddJuryMemberCommand{
		PropositionID: id,
		Member:        jury.JuryMember{LastName: "Doe"},
	})

	assert.ErrorIs(t, err, jury.ErrExternalWithoutInstitution)
	assert.ErrorIs(t, err, jury.ErrExternalWithoutEmail)
	_, err = deps.Juries.Get(f.ctx, id)
	assert.ErrorIs(t, err, jury.ErrJuryNotFound)
}
