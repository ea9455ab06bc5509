package command

import (
	"context"
	"fmt"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUPERVISION GROUP COMPOSITION
// ══════════════════════════════════════════════════════════════════════════════

// GroupResult is returned by the handlers that change a supervision group.
type GroupResult struct {
	PropositionID shared.PropositionID
	Promoters     int
	CAMembers     int
}

func groupResultOf(g *supervision.Group) *GroupResult {
	return &GroupResult{PropositionID: g.PropositionID, Promoters: len(g.Promoters), CAMembers: len(g.CAMembers)}
}

// changeGroup loads the group, applies change and saves it. The
// proposition status decides whether the group may still change.
func changeGroup(ctx context.Context, deps *DoctorateDeps, op string, id shared.PropositionID, kind proposition.GroupChange, change func(g *supervision.Group) error) (*supervision.Group, error) {
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	p, g, err := deps.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.CanChangeGroup(kind); err != nil {
		return nil, err
	}
	if err := change(g); err != nil {
		return nil, err
	}
	if err := deps.Groups.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("%s: save group: %w", op, err)
	}
	return g, nil
}

// IdentifyPromoterCommand adds a promoter to the group.
type IdentifyPromoterCommand struct {
	PropositionID shared.PropositionID
	Person        shared.PersonID
}

// CommandName implements bus.Command.
func (IdentifyPromoterCommand) CommandName() string { return "supervision.identify_promoter" }

// IdentifyPromoterHandler handles IdentifyPromoterCommand.
type IdentifyPromoterHandler struct {
	deps *DoctorateDeps
}

// NewIdentifyPromoterHandler creates a new IdentifyPromoterHandler.
func NewIdentifyPromoterHandler(deps *DoctorateDeps) *IdentifyPromoterHandler {
	return &IdentifyPromoterHandler{deps: deps}
}

// Handle executes the command.
func (h *IdentifyPromoterHandler) Handle(ctx context.Context, cmd IdentifyPromoterCommand) (*GroupResult, error) {
	g, err := changeGroup(ctx, h.deps, "identify_promoter", cmd.PropositionID, proposition.GroupComposition, func(g *supervision.Group) error {
		return g.IdentifyPromoter(cmd.Person, h.deps.Limits)
	})
	if err != nil {
		return nil, err
	}
	return groupResultOf(g), nil
}

// IdentifyCAMemberCommand adds a CA member to the group.
type IdentifyCAMemberCommand struct {
	PropositionID shared.PropositionID
	Person        shared.PersonID
}

// CommandName implements bus.Command.
func (IdentifyCAMemberCommand) CommandName() string { return "supervision.identify_ca_member" }

// IdentifyCAMemberHandler handles IdentifyCAMemberCommand.
type IdentifyCAMemberHandler struct {
	deps *DoctorateDeps
}

// NewIdentifyCAMemberHandler creates a new IdentifyCAMemberHandler.
func NewIdentifyCAMemberHandler(deps *DoctorateDeps) *IdentifyCAMemberHandler {
	return &IdentifyCAMemberHandler{deps: deps}
}

// Handle executes the command.
func (h *IdentifyCAMemberHandler) Handle(ctx context.Context, cmd IdentifyCAMemberCommand) (*GroupResult, error) {
	g, err := changeGroup(ctx, h.deps, "identify_ca_member", cmd.PropositionID, proposition.GroupComposition, func(g *supervision.Group) error {
		return g.IdentifyCAMember(cmd.Person, h.deps.Limits)
	})
	if err != nil {
		return nil, err
	}
	return groupResultOf(g), nil
}

// RemovePromoterCommand removes a promoter from the group.
type RemovePromoterCommand struct {
	PropositionID shared.PropositionID
	Person        shared.PersonID
}

// CommandName implements bus.Command.
func (RemovePromoterCommand) CommandName() string { return "supervision.remove_promoter" }

// RemoveCAMemberCommand removes a CA member from the group.
type RemoveCAMemberCommand struct {
	PropositionID shared.PropositionID
	Person        shared.PersonID
}

// CommandName implements bus.Command.
func (RemoveCAMemberCommand) CommandName() string { return "supervision.remove_ca_member" }

// RemovePromoterHandler handles RemovePromoterCommand.
type RemovePromoterHandler struct {
	deps *DoctorateDeps
}

// NewRemovePromoterHandler creates a new RemovePromoterHandler.
func NewRemovePromoterHandler(deps *DoctorateDeps) *RemovePromoterHandler {
	return &RemovePromoterHandler{deps: deps}
}

// Handle executes the command.
func (h *RemovePromoterHandler) Handle(ctx context.Context, cmd RemovePromoterCommand) (*GroupResult, error) {
	return removeSignatory(ctx, h.deps, "remove_promoter", cmd.PropositionID, cmd.Person, (*supervision.Group).RemovePromoter)
}

// RemoveCAMemberHandler handles RemoveCAMemberCommand.
type RemoveCAMemberHandler struct {
	deps *DoctorateDeps
}

// NewRemoveCAMemberHandler creates a new RemoveCAMemberHandler.
func NewRemoveCAMemberHandler(deps *DoctorateDeps) *RemoveCAMemberHandler {
	return &RemoveCAMemberHandler{deps: deps}
}

// Handle executes the command.
func (h *RemoveCAMemberHandler) Handle(ctx context.Context, cmd RemoveCAMemberCommand) (*GroupResult, error) {
	return removeSignatory(ctx, h.deps, "remove_ca_member", cmd.PropositionID, cmd.Person, (*supervision.Group).RemoveCAMember)
}

// removeSignatory removes a member and tells them when they had already
// been invited to sign.
func removeSignatory(ctx context.Context, deps *DoctorateDeps, op string, id shared.PropositionID, person shared.PersonID, removeFn func(*supervision.Group, shared.PersonID) error) (*GroupResult, error) {
	wasInvited := false
	g, err := changeGroup(ctx, deps, op, id, proposition.GroupComposition, func(g *supervision.Group) error {
		if sig, _, err := g.Signature(person); err == nil {
			wasInvited = sig.State != supervision.NotInvited
		}
		return removeFn(g, person)
	})
	if err != nil {
		return nil, err
	}
	if wasInvited {
		deps.notify(ctx, notification.SignatoryRemoved(id, person, deps.now()))
	}
	return groupResultOf(g), nil
}

// DesignateReferencePromoterCommand sets the contact promoter.
type DesignateReferencePromoterCommand struct {
	PropositionID shared.PropositionID
	Person        shared.PersonID
}

// CommandName implements bus.Command.
func (DesignateReferencePromoterCommand) CommandName() string {
	return "supervision.designate_reference_promoter"
}

// DesignateReferencePromoterHandler handles DesignateReferencePromoterCommand.
type DesignateReferencePromoterHandler struct {
	deps *DoctorateDeps
}

// NewDesignateReferencePromoterHandler creates a new DesignateReferencePromoterHandler.
func NewDesignateReferencePromoterHandler(deps *DoctorateDeps) *DesignateReferencePromoterHandler {
	return &DesignateReferencePromoterHandler{deps: deps}
}

// Handle executes the command.
func (h *DesignateReferencePromoterHandler) Handle(ctx context.Context, cmd DesignateReferencePromoterCommand) (*GroupResult, error) {
	g, err := changeGroup(ctx, h.deps, "designate_reference_promoter", cmd.PropositionID, proposition.GroupSettings, func(g *supervision.Group) error {
		return g.DesignateReferencePromoter(cmd.Person)
	})
	if err != nil {
		return nil, err
	}
	return groupResultOf(g), nil
}

// DefineCotutelleCommand replaces the cotutelle details.
type DefineCotutelleCommand struct {
	PropositionID shared.PropositionID
	Cotutelle     supervision.Cotutelle
}

// CommandName implements bus.Command.
func (DefineCotutelleCommand) CommandName() string { return "supervision.define_cotutelle" }

// DefineCotutelleHandler handles DefineCotutelleCommand.
type DefineCotutelleHandler struct {
	deps *DoctorateDeps
}

// NewDefineCotutelleHandler creates a new DefineCotutelleHandler.
func NewDefineCotutelleHandler(deps *DoctorateDeps) *DefineCotutelleHandler {
	return &DefineCotutelleHandler{deps: deps}
}

// Handle executes the command.
func (h *DefineCotutelleHandler) Handle(ctx context.Context, cmd DefineCotutelleCommand) (*GroupResult, error) {
	g, err := changeGroup(ctx, h.deps, "define_cotutelle", cmd.PropositionID, proposition.GroupSettings, func(g *supervision.Group) error {
		return g.DefineCotutelle(cmd.Cotutelle)
	})
	if err != nil {
		return nil, err
	}
	return groupResultOf(g), nil
}
