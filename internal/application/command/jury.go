package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// ══════════════════════════════════════════════════════════════════════════════
// JURY
// ══════════════════════════════════════════════════════════════════════════════

// JuryDeps groups the collaborators of the jury handlers.
type JuryDeps struct {
	Juries jury.Repository
	Groups supervision.Repository
	Effects
}

// JuryResult is returned by the jury handlers.
type JuryResult struct {
	PropositionID shared.PropositionID
	MemberID      jury.MemberID
	Members       int
}

// loadOrCreate returns the jury of a doctorate, creating it from the
// promoters of the supervision group on first use.
func (d *JuryDeps) loadOrCreate(ctx context.Context, id shared.PropositionID) (*jury.Jury, error) {
	j, err := d.Juries.Get(ctx, id)
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, jury.ErrJuryNotFound) {
		return nil, err
	}
	g, err := d.Groups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return jury.New(id, g.PromoterIDs()), nil
}

// AddJuryMemberCommand adds a member to the jury.
type AddJuryMemberCommand struct {
	PropositionID shared.PropositionID
	Member        jury.JuryMember
}

// CommandName implements bus.Command.
func (AddJuryMemberCommand) CommandName() string { return "jury.add_member" }

// AddJuryMemberHandler handles AddJuryMemberCommand.
type AddJuryMemberHandler struct {
	deps *JuryDeps
}

// NewAddJuryMemberHandler creates a new AddJuryMemberHandler.
func NewAddJuryMemberHandler(deps *JuryDeps) *AddJuryMemberHandler {
	return &AddJuryMemberHandler{deps: deps}
}

// Handle executes the command.
func (h *AddJuryMemberHandler) Handle(ctx context.Context, cmd AddJuryMemberCommand) (*JuryResult, error) {
	if err := requireID("AddJuryMember", cmd.PropositionID); err != nil {
		return nil, err
	}
	j, err := h.deps.loadOrCreate(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	id, err := j.AddMember(cmd.Member)
	if err != nil {
		return nil, err
	}
	if err := h.deps.Juries.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("add_jury_member: save: %w", err)
	}
	return &JuryResult{PropositionID: j.ID, MemberID: id, Members: len(j.Members)}, nil
}

// ModifyJuryRoleCommand assigns a role to a member.
type ModifyJuryRoleCommand struct {
	PropositionID shared.PropositionID
	MemberID      jury.MemberID
	Role          jury.Role
}

// CommandName implements bus.Command.
func (ModifyJuryRoleCommand) CommandName() string { return "jury.modify_role" }

// ModifyJuryRoleHandler handles ModifyJuryRoleCommand.
type ModifyJuryRoleHandler struct {
	deps *JuryDeps
}

// NewModifyJuryRoleHandler creates a new ModifyJuryRoleHandler.
func NewModifyJuryRoleHandler(deps *JuryDeps) *ModifyJuryRoleHandler {
	return &ModifyJuryRoleHandler{deps: deps}
}

// Handle executes the command.
func (h *ModifyJuryRoleHandler) Handle(ctx context.Context, cmd ModifyJuryRoleCommand) (*JuryResult, error) {
	j, err := h.deps.Juries.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	if err := j.ModifyRole(cmd.MemberID, cmd.Role); err != nil {
		return nil, err
	}
	if err := h.deps.Juries.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("modify_jury_role: save: %w", err)
	}
	return &JuryResult{PropositionID: j.ID, MemberID: cmd.MemberID, Members: len(j.Members)}, nil
}

// RemoveJuryMemberCommand removes a member from the jury.
type RemoveJuryMemberCommand struct {
	PropositionID shared.PropositionID
	MemberID      jury.MemberID
}

// CommandName implements bus.Command.
func (RemoveJuryMemberCommand) CommandName() string { return "jury.remove_member" }

// RemoveJuryMemberHandler handles RemoveJuryMemberCommand.
type RemoveJuryMemberHandler struct {
	deps *JuryDeps
}

// NewRemoveJuryMemberHandler creates a new RemoveJuryMemberHandler.
func NewRemoveJuryMemberHandler(deps *JuryDeps) *RemoveJuryMemberHandler {
	return &RemoveJuryMemberHandler{deps: deps}
}

// Handle executes the command.
func (h *RemoveJuryMemberHandler) Handle(ctx context.Context, cmd RemoveJuryMemberCommand) (*JuryResult, error) {
	j, err := h.deps.Juries.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	if err := j.RemoveMember(cmd.MemberID); err != nil {
		return nil, err
	}
	if err := h.deps.Juries.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("remove_jury_member: save: %w", err)
	}
	return &JuryResult{PropositionID: j.ID, MemberID: cmd.MemberID, Members: len(j.Members)}, nil
}
