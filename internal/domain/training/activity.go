// Package training holds the doctoral training activities and their
// approval by the CDD.
package training

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

var (
	ErrActivityNotFound = shared.NewBusinessError("FORMATION-1", shared.ErrNotFound,
		"activity not found")
	ErrNotAwaitingDecision = shared.NewBusinessError("FORMATION-2", shared.ErrStateTransition,
		"the activity is not awaiting a decision")
	ErrNotSubmitted = shared.NewBusinessError("FORMATION-3", shared.ErrStateTransition,
		"the activity has not been submitted")
	ErrAlreadySubmitted = shared.NewBusinessError("FORMATION-4", shared.ErrStateTransition,
		"the activity has already been submitted")
)

// Category is the kind of activity.
type Category string

const (
	Conference    Category = "CONFERENCE"
	Communication Category = "COMMUNICATION"
	Seminar       Category = "SEMINAR"
	Publication   Category = "PUBLICATION"
	Service       Category = "SERVICE"
	Residency     Category = "RESIDENCY"
	Valorisation  Category = "VAE"
	Course        Category = "COURSE"
	Paper         Category = "PAPER"
)

// CascadesRefusal reports whether refusing an activity of this category
// refuses its sub-activities.
func (c Category) CascadesRefusal() bool {
	return c == Conference || c == Residency || c == Seminar
}

// CascadesReversion reports whether reverting an activity of this category
// reverts its sub-activities. Only seminars do.
func (c Category) CascadesReversion() bool {
	return c == Seminar
}

// Status is the approval status of an activity.
type Status string

const (
	NotSubmitted Status = "NON_SOUMISE"
	Submitted    Status = "SOUMISE"
	Accepted     Status = "ACCEPTEE"
	Refused      Status = "REFUSEE"
)

// StatusLabels is the label table of Status.
var StatusLabels = shared.LabelTable{
	language.French: {
		string(NotSubmitted): "Non soumise",
		string(Submitted):    "Soumise",
		string(Accepted):     "Acceptée",
		string(Refused):      "Refusée",
	},
	language.English: {
		string(NotSubmitted): "Not submitted",
		string(Submitted):    "Submitted",
		string(Accepted):     "Accepted",
		string(Refused):      "Refused",
	},
}

// ActivityID identifies an activity.
type ActivityID uuid.UUID

// NewActivityID generates a fresh identity.
func NewActivityID() ActivityID {
	return ActivityID(uuid.New())
}

// String returns the string representation.
func (id ActivityID) String() string {
	return uuid.UUID(id).String()
}

// Activity is a doctoral training activity. Communications and publications
// of a conference, residency or seminar point to it through ParentID.
type Activity struct {
	ID             ActivityID
	DoctorateID    shared.PropositionID
	Category       Category
	Status         Status
	ECTS           float64
	Title          string
	ParentID       *ActivityID
	ParentCategory Category
	RefusalReason  string
}

// NewActivity creates an unsubmitted activity.
func NewActivity(doctorateID shared.PropositionID, category Category, title string, ects float64) *Activity {
	return &Activity{
		ID:          NewActivityID(),
		DoctorateID: doctorateID,
		Category:    category,
		Status:      NotSubmitted,
		Title:       title,
		ECTS:        ects,
	}
}

// NewSubActivity creates an activity nested under parent.
func NewSubActivity(parent *Activity, category Category, title string, ects float64) *Activity {
	a := NewActivity(parent.DoctorateID, category, title, ects)
	id := parent.ID
	a.ParentID = &id
	a.ParentCategory = parent.Category
	return a
}

// Submit sends the activity to the CDD.
func (a *Activity) Submit() error {
	if err := validator.StatusIn(a.Status, ErrAlreadySubmitted, NotSubmitted).Validate(); err != nil {
		return err
	}
	a.Status = Submitted
	return nil
}

// Accept approves a submitted activity.
func (a *Activity) Accept() error {
	if err := validator.StatusIn(a.Status, ErrNotAwaitingDecision, Submitted).Validate(); err != nil {
		return err
	}
	a.Status = Accepted
	return nil
}

func (a *Activity) canRefuse() validator.Validator {
	return validator.StatusIn(a.Status, ErrNotAwaitingDecision, Submitted)
}

func (a *Activity) refuse(reason string) {
	a.Status = Refused
	a.RefusalReason = reason
}

func (a *Activity) canRevert() validator.Validator {
	return validator.StatusIn(a.Status, ErrNotSubmitted, Submitted, Accepted, Refused)
}

func (a *Activity) revert() {
	a.Status = Submitted
	a.RefusalReason = ""
}

// Clone returns a copy.
func (a *Activity) Clone() *Activity {
	c := *a
	if a.ParentID != nil {
		id := *a.ParentID
		c.ParentID = &id
	}
	return &c
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain services
// ─────────────────────────────────────────────────────────────────────────────

// Refuse refuses parent and, for the categories that cascade, every child.
// children must be the sub-activities of parent. Nothing changes when the
// parent cannot be refused.
func Refuse(parent *Activity, children []*Activity, reason string) ([]*Activity, error) {
	if err := parent.canRefuse().Validate(); err != nil {
		return nil, err
	}
	parent.refuse(reason)
	if !parent.Category.CascadesRefusal() {
		return nil, nil
	}
	for _, c := range children {
		c.refuse(reason)
	}
	return children, nil
}

// Revert puts parent back to submitted and, for seminars only, every child.
// Reverting twice has the same outcome as reverting once.
func Revert(parent *Activity, children []*Activity) ([]*Activity, error) {
	if err := parent.canRevert().Validate(); err != nil {
		return nil, err
	}
	parent.revert()
	if !parent.Category.CascadesReversion() {
		return nil, nil
	}
	for _, c := range children {
		c.revert()
	}
	return children, nil
}

// Total sums the ECTS of accepted activities.
func Total(activities []*Activity) float64 {
	var total float64
	for _, a := range activities {
		if a.Status == Accepted {
			total += a.ECTS
		}
	}
	return total
}

// ChildrenOf keeps the activities whose parent is id.
func ChildrenOf(activities []*Activity, id ActivityID) []*Activity {
	return slices.DeleteFunc(slices.Clone(activities), func(a *Activity) bool {
		return a.ParentID == nil || *a.ParentID != id
	})
}

// Repository loads and saves activities.
type Repository interface {
	// Get returns ErrActivityNotFound when absent.
	Get(ctx context.Context, id ActivityID) (*Activity, error)
	// GetMany fails with ErrActivityNotFound unless every activity exists.
	GetMany(ctx context.Context, ids []ActivityID) ([]*Activity, error)
	Save(ctx context.Context, a *Activity) error
	Delete(ctx context.Context, id ActivityID) error
	// SearchByParent lists the sub-activities of an activity.
	SearchByParent(ctx context.Context, parent ActivityID) ([]*Activity, error)
	// SearchByDoctorate lists the activities of a doctorate.
	SearchByDoctorate(ctx context.Context, doctorateID shared.PropositionID) ([]*Activity, error)
}
