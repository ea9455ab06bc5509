package command

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/memory"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// ─────────────────────────────────────────────────────────────────────────────
// Doubles
// ─────────────────────────────────────────────────────────────────────────────

type directory map[shared.PersonID]bool

func (d directory) IsExternal(_ context.Context, person shared.PersonID) (bool, error) {
	return d[person], nil
}

type catalogue struct{}

func (catalogue) Get(_ context.Context, training shared.TrainingID) (proposition.Doctorate, error) {
	if training.Acronym == "UNKNOWN" {
		return proposition.Doctorate{}, proposition.ErrDoctorateNotFound
	}
	return proposition.Doctorate{Training: training, Title: "Doctorate in sciences"}, nil
}

type scholarships map[string]proposition.Scholarship

func (s scholarships) Get(_ context.Context, id string) (proposition.Scholarship, error) {
	sc, ok := s[id]
	if !ok {
		return proposition.Scholarship{}, proposition.ErrScholarshipNotFound
	}
	return sc, nil
}

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *notifierMock) kinds() []notification.Kind {
	var out []notification.Kind
	for _, c := range m.Calls {
		out = append(out, c.Arguments.Get(1).(notification.Message).Kind)
	}
	return out
}

type publisherStub struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *publisherStub) Publish(e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *publisherStub) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	ctx          context.Context
	sequence     *memory.ReferenceSequence
	propositions *memory.PropositionRepository
	groups       *memory.GroupRepository
	history      *memory.HistoryStore
	notifier     *notifierMock
	events       *publisherStub
	effects      Effects
	doctorate    *DoctorateDeps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		sequence: memory.NewReferenceSequence(memory.DefaultReferenceBase),
		groups:   memory.NewGroupRepository(),
		history:  memory.NewHistoryStore(),
		notifier: &notifierMock{},
		events:   &publisherStub{},
	}
	f.propositions = memory.NewPropositionRepository(f.sequence)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.effects = Effects{
		Notifier:  f.notifier,
		History:   f.history,
		Publisher: f.events,
		Clock:     shared.FixedClock{At: now},
		Logger:    quietLogger(),
	}
	f.doctorate = &DoctorateDeps{
		Propositions:    f.propositions,
		Groups:          f.groups,
		Promoters:       directory{"external-1": true},
		Doctorates:      catalogue{},
		Scholarships:    scholarships{"ARES": {ID: "ARES", Short: "ARES"}},
		Checklist:       checklist.DefaultConfiguration(),
		Limits:          supervision.DefaultLimits(),
		MaxPropositions: 5,
		Effects:         f.effects,
	}
	return f
}

func completeProject() proposition.Project {
	return proposition.Project{
		Title:          "Graph rewriting",
		Summary:        "A study of confluence",
		ThesisLanguage: "EN",
		Documents:      []string{"file-token-1"},
	}
}

func (f *fixture) initiate(t *testing.T, admission proposition.AdmissionType) shared.PropositionID {
	t.Helper()
	res, err := NewInitiatePropositionHandler(f.doctorate).Handle(f.ctx, InitiatePropositionCommand{
		CandidateID:   "candidate-1",
		Training:      shared.TrainingID{Acronym: "SC3DP", Year: 2024},
		AdmissionType: admission,
		Justification: "justified",
		Project:       completeProject(),
		Financing:     proposition.Financing{Type: proposition.SelfFunding},
		PriorResearch: proposition.PriorResearch{DoctorateAlreadyDone: proposition.NoDoctorate},
	})
	require.NoError(t, err)
	return res.PropositionID
}

// submitted returns a submitted pre-admission, which needs no signature.
func (f *fixture) submitted(t *testing.T) shared.PropositionID {
	t.Helper()
	id := f.initiate(t, proposition.PreAdmission)
	_, err := NewSubmitPropositionHandler(f.doctorate).Handle(f.ctx, SubmitPropositionCommand{PropositionID: id, Author: "candidate-1"})
	require.NoError(t, err)
	return id
}

func (f *fixture) proposition(t *testing.T, id shared.PropositionID) *proposition.Proposition {
	t.Helper()
	p, err := f.propositions.Get(f.ctx, id)
	require.NoError(t, err)
	return p
}
