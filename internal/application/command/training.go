package command

import (
	"context"
	"fmt"

	"github.com/uclouvain/admission-core/internal/domain/training"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCTORAL TRAINING
// ══════════════════════════════════════════════════════════════════════════════

// TrainingDeps groups the collaborators of the training handlers.
type TrainingDeps struct {
	Activities training.Repository
	Effects
}

// ActivitiesResult lists every activity changed by a command.
type ActivitiesResult struct {
	Changed []training.ActivityID
}

func (d *TrainingDeps) saveAll(ctx context.Context, op string, activities ...*training.Activity) (*ActivitiesResult, error) {
	res := &ActivitiesResult{Changed: make([]training.ActivityID, 0, len(activities))}
	for _, a := range activities {
		if err := d.Activities.Save(ctx, a); err != nil {
			return nil, fmt.Errorf("%s: save %s: %w", op, a.ID, err)
		}
		res.Changed = append(res.Changed, a.ID)
	}
	return res, nil
}

// SubmitActivitiesCommand submits activities for approval.
type SubmitActivitiesCommand struct {
	ActivityIDs []training.ActivityID
}

// CommandName implements bus.Command.
func (SubmitActivitiesCommand) CommandName() string { return "training.submit" }

// SubmitActivitiesHandler handles SubmitActivitiesCommand.
type SubmitActivitiesHandler struct {
	deps *TrainingDeps
}

// NewSubmitActivitiesHandler creates a new SubmitActivitiesHandler.
func NewSubmitActivitiesHandler(deps *TrainingDeps) *SubmitActivitiesHandler {
	return &SubmitActivitiesHandler{deps: deps}
}

// Handle submits every activity or none.
func (h *SubmitActivitiesHandler) Handle(ctx context.Context, cmd SubmitActivitiesCommand) (*ActivitiesResult, error) {
	activities, err := h.deps.Activities.GetMany(ctx, cmd.ActivityIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		if err := a.Submit(); err != nil {
			return nil, err
		}
	}
	return h.deps.saveAll(ctx, "submit_activities", activities...)
}

// AcceptActivitiesCommand accepts submitted activities.
type AcceptActivitiesCommand struct {
	ActivityIDs []training.ActivityID
}

// CommandName implements bus.Command.
func (AcceptActivitiesCommand) CommandName() string { return "training.accept" }

// AcceptActivitiesHandler handles AcceptActivitiesCommand.
type AcceptActivitiesHandler struct {
	deps *TrainingDeps
}

// NewAcceptActivitiesHandler creates a new AcceptActivitiesHandler.
func NewAcceptActivitiesHandler(deps *TrainingDeps) *AcceptActivitiesHandler {
	return &AcceptActivitiesHandler{deps: deps}
}

// Handle accepts every activity or none.
func (h *AcceptActivitiesHandler) Handle(ctx context.Context, cmd AcceptActivitiesCommand) (*ActivitiesResult, error) {
	activities, err := h.deps.Activities.GetMany(ctx, cmd.ActivityIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		if err := a.Accept(); err != nil {
			return nil, err
		}
	}
	return h.deps.saveAll(ctx, "accept_activities", activities...)
}

// RefuseActivityCommand refuses an activity and, when its category
// cascades, its sub-activities.
type RefuseActivityCommand struct {
	ActivityID training.ActivityID
	Reason     string
}

// CommandName implements bus.Command.
func (RefuseActivityCommand) CommandName() string { return "training.refuse" }

// RefuseActivityHandler handles RefuseActivityCommand.
type RefuseActivityHandler struct {
	deps *TrainingDeps
}

// NewRefuseActivityHandler creates a new RefuseActivityHandler.
func NewRefuseActivityHandler(deps *TrainingDeps) *RefuseActivityHandler {
	return &RefuseActivityHandler{deps: deps}
}

// Handle executes the command.
func (h *RefuseActivityHandler) Handle(ctx context.Context, cmd RefuseActivityCommand) (*ActivitiesResult, error) {
	parent, err := h.deps.Activities.Get(ctx, cmd.ActivityID)
	if err != nil {
		return nil, err
	}
	children, err := h.deps.Activities.SearchByParent(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("refuse_activity: search children: %w", err)
	}
	changed, err := training.Refuse(parent, children, cmd.Reason)
	if err != nil {
		return nil, err
	}
	return h.deps.saveAll(ctx, "refuse_activity", append([]*training.Activity{parent}, changed...)...)
}

// RevertActivityCommand puts an activity back to submitted.
type RevertActivityCommand struct {
	ActivityID training.ActivityID
}

// CommandName implements bus.Command.
func (RevertActivityCommand) CommandName() string { return "training.revert" }

// RevertActivityHandler handles RevertActivityCommand.
type RevertActivityHandler struct {
	deps *TrainingDeps
}

// NewRevertActivityHandler creates a new RevertActivityHandler.
func NewRevertActivityHandler(deps *TrainingDeps) *RevertActivityHandler {
	return &RevertActivityHandler{deps: deps}
}

// Handle executes the command.
func (h *RevertActivityHandler) Handle(ctx context.Context, cmd RevertActivityCommand) (*ActivitiesResult, error) {
	parent, err := h.deps.Activities.Get(ctx, cmd.ActivityID)
	if err != nil {
		return nil, err
	}
	children, err := h.deps.Activities.SearchByParent(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("revert_activity: search children: %w", err)
	}
	changed, err := training.Revert(parent, children)
	if err != nil {
		return nil, err
	}
	return h.deps.saveAll(ctx, "revert_activity", append([]*training.Activity{parent}, changed...)...)
}
