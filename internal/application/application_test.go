package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/application/bus"
	"github.com/uclouvain/admission-core/internal/application/command"
	"github.com/uclouvain/admission-core/internal/application/query"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/infrastructure/messaging"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/memory"
	"github.com/uclouvain/admission-core/internal/infrastructure/service"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type cacheStub struct {
	mu          sync.Mutex
	entries     map[string]*query.PropositionDTO
	invalidated []shared.PropositionID
}

func (c *cacheStub) GetProposition(_ context.Context, id shared.PropositionID, lang string) (*query.PropositionDTO, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id.String()+"/"+lang], nil
}

func (c *cacheStub) SetProposition(_ context.Context, dto *query.PropositionDTO, lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dto.UUID+"/"+lang] = dto
	return nil
}

func (c *cacheStub) Invalidate(_ context.Context, id shared.PropositionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	for key := range c.entries {
		if len(key) > 36 && key[:36] == id.String() {
			delete(c.entries, key)
		}
	}
	return nil
}

type recorderStub struct {
	mu       sync.Mutex
	outcomes map[string]string
}

func (r *recorderStub) ObserveCommand(name, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[name] = outcome
}

type harness struct {
	app      *Application
	tickets  *service.MemoryTicketService
	cache    *cacheStub
	recorder *recorderStub
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := shared.FixedClock{At: now}
	references := memory.NewReferenceSequence(memory.DefaultReferenceBase)
	catalogue := service.DefaultCatalogue()
	events := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{Logger: logger})
	t.Cleanup(func() { _ = events.Close() })

	h := &harness{
		tickets:  service.NewMemoryTicketService(clock, logger),
		cache:    &cacheStub{entries: make(map[string]*query.PropositionDTO)},
		recorder: &recorderStub{outcomes: make(map[string]string)},
	}
	app, err := New(Dependencies{
		Propositions:   memory.NewPropositionRepository(references),
		Generals:       memory.NewGeneralRepository(references),
		Groups:         memory.NewGroupRepository(),
		Slots:          memory.NewSlotRepository(),
		Exams:          memory.NewExamRepository(),
		Activities:     memory.NewActivityRepository(),
		Juries:         memory.NewJuryRepository(),
		History:        memory.NewHistoryStore(),
		Promoters:      catalogue,
		Doctorates:     catalogue.Doctorates(),
		Scholarships:   catalogue.Scholarships(),
		Tickets:        h.tickets,
		TechnicalTasks: service.NewTechnicalTasks(logger),
		Notifier:       service.NewLogNotifier(logger),
		Publisher:      events,
		Cache:          h.cache,
		Recorder:       h.recorder,
		Clock:          clock,
		Logger:         logger,
	})
	require.NoError(t, err)
	require.NoError(t, app.Subscribe(events))
	h.app = app
	return h
}

func (h *harness) initiate(t *testing.T) shared.PropositionID {
	t.Helper()
	res, err := bus.Dispatch[*command.PropositionResult](context.Background(), h.app.Bus, command.InitiatePropositionCommand{
		CandidateID:   "0123456",
		Training:      shared.TrainingID{Acronym: "SC3DP", Year: 2024},
		AdmissionType: proposition.PreAdmission,
		Justification: "justified",
		Project: proposition.Project{
			Title:          "Graph rewriting",
			Summary:        "A study of confluence",
			ThesisLanguage: "EN",
			Documents:      []string{"file-token-1"},
		},
		Financing:     proposition.Financing{Type: proposition.SelfFunding},
		PriorResearch: proposition.PriorResearch{DoctorateAlreadyDone: proposition.NoDoctorate},
	})
	require.NoError(t, err)
	return res.PropositionID
}

func TestNew_ReportsMissingDependencies(t *testing.T) {
	_, err := New(Dependencies{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "propositions repository is required")
	assert.Contains(t, err.Error(), "event publisher is required")
}

func TestNew_RegistersEveryCommand(t *testing.T) {
	h := newHarness(t)

	names := h.app.Bus.Registered()
	assert.Len(t, names, 38)
	assert.Contains(t, names, "identity.request_ticket")
	assert.Contains(t, names, "supervision.approve_by_pdf")
}

func TestSubmission_OpensIdentityTicketAndRefreshesReadModel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.initiate(t)

	before, err := h.app.Queries.Proposition.Handle(ctx, query.GetPropositionQuery{PropositionID: id})
	require.NoError(t, err)
	assert.Equal(t, string(proposition.InProgress), before.Status)

	submitted, err := bus.Dispatch[*command.SubmitPropositionResult](ctx, h.app.Bus, command.SubmitPropositionCommand{
		PropositionID: id,
		Author:        "0123456",
	})
	require.NoError(t, err)
	assert.Equal(t, proposition.ReferenceBase, submitted.Reference)

	after, err := h.app.Queries.Proposition.Handle(ctx, query.GetPropositionQuery{PropositionID: id})
	require.NoError(t, err)
	assert.Equal(t, string(proposition.Submitted), after.Status)
	assert.Contains(t, h.cache.invalidated, id)

	hasTicket, err := h.tickets.HasTicket(ctx, "0123456")
	require.NoError(t, err)
	assert.True(t, hasTicket)

	assert.Equal(t, bus.Outcome(nil), h.recorder.outcomes["identity.request_ticket"])
}

func TestFailedCommand_KeepsCacheAndRecordsOutcome(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := bus.Dispatch[*command.SubmitPropositionResult](ctx, h.app.Bus, command.SubmitPropositionCommand{
		PropositionID: shared.NewPropositionID(),
	})

	require.Error(t, err)
	assert.Empty(t, h.cache.invalidated)
	assert.NotEqual(t, bus.Outcome(nil), h.recorder.outcomes["doctorate.submit"])
}

func TestTouchedProposition(t *testing.T) {
	id := shared.NewPropositionID()

	got, ok := touchedProposition(&command.OpinionResult{PropositionID: id})
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = touchedProposition((*command.PropositionResult)(nil))
	assert.False(t, ok)
	_, ok = touchedProposition(&command.GeneralResult{PropositionID: id})
	assert.False(t, ok)
}
