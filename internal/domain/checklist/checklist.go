// Package checklist models the administrative review state of a proposition:
// one status per tab, kept twice (the snapshot frozen at submission and the
// live tree edited by managers).
package checklist

import (
	"context"
	"maps"
	"slices"

	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// Status is the closed set of checklist statuses.
type Status string

const (
	InitialNotConcerned Status = "INITIAL_NON_CONCERNE"
	InitialCandidate    Status = "INITIAL_CANDIDAT"
	ManagerInProgress   Status = "GEST_EN_COURS"
	ManagerBlocking     Status = "GEST_BLOCAGE"
	ManagerBlockingLate Status = "GEST_BLOCAGE_ULTERIEUR"
	ManagerSuccess      Status = "GEST_REUSSITE"
	SystemSuccess       Status = "SYST_REUSSITE"
)

// StatusLabels is the label table of Status.
var StatusLabels = shared.LabelTable{
	language.French: {
		string(InitialNotConcerned): "Non concerné",
		string(InitialCandidate):    "Déclaré par le candidat",
		string(ManagerInProgress):   "En cours",
		string(ManagerBlocking):     "Bloqué",
		string(ManagerBlockingLate): "Bloqué ultérieurement",
		string(ManagerSuccess):      "Réussi",
		string(SystemSuccess):       "Réussi (système)",
	},
	language.English: {
		string(InitialNotConcerned): "Not concerned",
		string(InitialCandidate):    "Declared by the candidate",
		string(ManagerInProgress):   "In progress",
		string(ManagerBlocking):     "Blocked",
		string(ManagerBlockingLate): "Blocked later",
		string(ManagerSuccess):      "Success",
		string(SystemSuccess):       "Success (system)",
	},
}

// Tab names a checklist tab.
type Tab string

const (
	PersonalData        Tab = "donnees_personnelles"
	Assimilation        Tab = "assimilation"
	PreviousExperience  Tab = "parcours_anterieur"
	ExperienceItems     Tab = "experiences_parcours_anterieur"
	Financeability      Tab = "financabilite"
	TrainingChoice      Tab = "choix_formation"
	ResearchProject     Tab = "projet_recherche"
	CDDDecision         Tab = "decision_cdd"
	FacultyDecision     Tab = "decision_facultaire"
	SICDecision         Tab = "decision_sic"
	ApplicationFees     Tab = "frais_dossier"
)

// childIdentifierKey is the extra key identifying a nested item.
const childIdentifierKey = "identifiant"

// Context selects the tab family.
type Context string

const (
	Doctorate Context = "doctorat"
	General   Context = "generale"
)

// Node is one status of the tree: a tab or an item nested under a tab.
type Node struct {
	Label    string            `json:"libelle"`
	Status   Status            `json:"statut,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
	Children []Node            `json:"enfants,omitempty"`
}

// ChildID returns the identifier of a nested item.
func (n Node) ChildID() string {
	return n.Extra[childIdentifierKey]
}

func (n Node) clone() Node {
	c := Node{Label: n.Label, Status: n.Status, Extra: maps.Clone(n.Extra)}
	if n.Children != nil {
		c.Children = make([]Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.clone()
		}
	}
	return c
}

// Tree maps each tab to its node.
type Tree map[Tab]Node

// Clone returns a deep copy.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	c := make(Tree, len(t))
	for tab, node := range t {
		c[tab] = node.clone()
	}
	return c
}

// Checklist is the pair of trees kept for one proposition.
type Checklist struct {
	Context Context `json:"context"`
	Initial Tree    `json:"checklist_initiale,omitempty"`
	Current Tree    `json:"checklist_actuelle"`
}

// New builds a checklist whose current tree holds the initial status of
// every tab.
func New(cfg *Configuration, ctx Context) Checklist {
	current := make(Tree)
	for _, tab := range cfg.Tabs(ctx) {
		tc, _ := cfg.Tab(ctx, tab)
		initial := tc.InitialStatus()
		current[tab] = Node{Label: initial.Label, Status: initial.Status, Extra: maps.Clone(initial.Extra)}
	}
	return Checklist{Context: ctx, Current: current}
}

// Clone returns a deep copy.
func (c Checklist) Clone() Checklist {
	return Checklist{Context: c.Context, Initial: c.Initial.Clone(), Current: c.Current.Clone()}
}

// CaptureInitial freezes the current tree as the initial snapshot. Later
// calls keep the first snapshot.
func (c *Checklist) CaptureInitial() {
	if c.Initial != nil {
		return
	}
	c.Initial = c.Current.Clone()
}

// IsCaptured reports whether the initial snapshot exists.
func (c *Checklist) IsCaptured() bool {
	return c.Initial != nil
}

// ChangeStatus sets the status of a tab. The pair (status, extra) must
// match a legal entry of the tab, whose label is then applied.
func (c *Checklist) ChangeStatus(cfg *Configuration, tab Tab, status Status, extra map[string]string) error {
	tc, err := cfg.Tab(c.Context, tab)
	if err != nil {
		return err
	}
	entry, ok := tc.Find(status, extra)
	if !ok {
		return ErrUnknownStatus.Withf("%s: %s", tab, status)
	}
	node := c.Current[tab]
	node.Label = entry.Label
	node.Status = status
	node.Extra = maps.Clone(extra)
	c.Current[tab] = node
	return nil
}

// ChangeStatusTo applies the configuration entry with the given identifier.
func (c *Checklist) ChangeStatusTo(cfg *Configuration, tab Tab, id string) error {
	tc, err := cfg.Tab(c.Context, tab)
	if err != nil {
		return err
	}
	entry, ok := tc.ByID(id)
	if !ok {
		return ErrUnknownStatus.Withf("%s: %s", tab, id)
	}
	return c.ChangeStatus(cfg, tab, entry.Status, entry.Extra)
}

// CanChangeStatusTo checks that the configuration holds the entry
// ChangeStatusTo would apply, without touching the checklist.
func (c *Checklist) CanChangeStatusTo(cfg *Configuration, tab Tab, id string) validator.Validator {
	return validator.Func(func() error {
		tc, err := cfg.Tab(c.Context, tab)
		if err != nil {
			return err
		}
		if _, ok := tc.ByID(id); !ok {
			return ErrUnknownStatus.Withf("%s: %s", tab, id)
		}
		return nil
	})
}

// Status returns the current status of a tab.
func (c *Checklist) Status(tab Tab) Node {
	return c.Current[tab]
}

// AddChild nests a new item under a tab, starting from the initial status
// of the tab's children configuration.
func (c *Checklist) AddChild(cfg *Configuration, tab Tab, childID, label string) error {
	childTab, err := childConfig(cfg, c.Context, tab)
	if err != nil {
		return err
	}
	node := c.Current[tab]
	if slices.ContainsFunc(node.Children, func(n Node) bool { return n.ChildID() == childID }) {
		return ErrChildAlreadyExists.Withf("%s", childID)
	}
	initial := childTab.InitialStatus()
	extra := maps.Clone(initial.Extra)
	if extra == nil {
		extra = map[string]string{}
	}
	extra[childIdentifierKey] = childID
	if label == "" {
		label = initial.Label
	}
	node.Children = append(node.Children, Node{Label: label, Status: initial.Status, Extra: extra})
	c.Current[tab] = node
	return nil
}

// ChangeChildStatus sets the status of a nested item.
func (c *Checklist) ChangeChildStatus(cfg *Configuration, tab Tab, childID string, status Status, extra map[string]string) error {
	childTab, err := childConfig(cfg, c.Context, tab)
	if err != nil {
		return err
	}
	node := c.Current[tab]
	idx := slices.IndexFunc(node.Children, func(n Node) bool { return n.ChildID() == childID })
	err = validator.RunStrict(
		validator.Check(idx >= 0, ErrChildNotFound.Withf("%s", childID)),
		validator.Func(func() error {
			if _, ok := childTab.Find(status, extra); !ok {
				return ErrUnknownStatus.Withf("%s[%s]: %s", tab, childID, status)
			}
			return nil
		}),
	)
	if err != nil {
		return err
	}
	merged := maps.Clone(extra)
	if merged == nil {
		merged = map[string]string{}
	}
	merged[childIdentifierKey] = childID
	node.Children[idx].Status = status
	node.Children[idx].Extra = merged
	c.Current[tab] = node
	return nil
}

// Child returns a nested item.
func (c *Checklist) Child(tab Tab, childID string) (Node, error) {
	for _, n := range c.Current[tab].Children {
		if n.ChildID() == childID {
			return n, nil
		}
	}
	return Node{}, ErrChildNotFound.Withf("%s", childID)
}

func childConfig(cfg *Configuration, ctx Context, tab Tab) (TabConfig, error) {
	tc, err := cfg.Tab(ctx, tab)
	if err != nil {
		return TabConfig{}, err
	}
	if tc.Children == "" {
		return TabConfig{}, ErrUnknownTab.Withf("%s has no items", tab)
	}
	return cfg.Tab(ctx, tc.Children)
}

// ─────────────────────────────────────────────────────────────────────────────
// Application fees
// ─────────────────────────────────────────────────────────────────────────────

func shouldPaymentBeCancellable(initial, current Node) validator.Validator {
	return validator.Check(initial.Status != SystemSuccess && current.Status != SystemSuccess, ErrPaymentNotCancellable)
}

// PaymentRequiredID is the application fees entry of a candidate who must
// pay.
const PaymentRequiredID = "DOIT_PAYER"

// RequirePayment marks the application fees as due.
func (c *Checklist) RequirePayment(cfg *Configuration) error {
	return c.ChangeStatusTo(cfg, ApplicationFees, PaymentRequiredID)
}

// WaivePayment records that the fees are no longer required. status is
// either InitialNotConcerned (decided by the system) or ManagerSuccess
// (dispensed by a manager). Fees already paid cannot be waived.
func (c *Checklist) WaivePayment(cfg *Configuration, status Status) error {
	err := validator.List{
		DataContract: []validator.Validator{
			validator.StatusIn(status, ErrUnknownStatus.Withf("%s: %s", ApplicationFees, status),
				InitialNotConcerned, ManagerSuccess),
		},
		Invariants: []validator.Validator{
			shouldPaymentBeCancellable(c.Initial[ApplicationFees], c.Current[ApplicationFees]),
		},
	}.Validate()
	if err != nil {
		return err
	}
	return c.ChangeStatus(cfg, ApplicationFees, status, nil)
}

// TechnicalTasks performs the infrastructure side effects of checklist
// changes (document merges, payment cancellation jobs).
type TechnicalTasks interface {
	CancelInitialApplicationFeePayment(ctx context.Context, propositionID shared.PropositionID) error
}
