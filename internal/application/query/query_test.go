package query

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
	"github.com/uclouvain/admission-core/internal/domain/training"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/memory"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

var candidate = shared.PersonID("00321234")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func draft(t *testing.T, repo proposition.Repository) *proposition.Proposition {
	t.Helper()
	p, err := proposition.Initiate(proposition.InitiateParams{
		CandidateID:   candidate,
		Training:      shared.TrainingID{Acronym: "SC3DP", Year: 2024},
		AdmissionType: proposition.Admission,
	}, checklist.DefaultConfiguration(), now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

// mapCache is an in-process PropositionCache.
type mapCache struct {
	entries map[string]*PropositionDTO
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*PropositionDTO)}
}

func (c *mapCache) GetProposition(_ context.Context, id shared.PropositionID, lang string) (*PropositionDTO, error) {
	dto, ok := c.entries[id.String()+"/"+lang]
	if ok {
		c.hits++
	}
	return dto, nil
}

func (c *mapCache) SetProposition(_ context.Context, dto *PropositionDTO, lang string) error {
	c.entries[dto.UUID+"/"+lang] = dto
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id shared.PropositionID) error {
	for _, lang := range []string{"fr", "en"} {
		delete(c.entries, id.String()+"/"+lang)
	}
	return nil
}

type directory map[shared.PersonID]bool

func (d directory) IsExternal(_ context.Context, person shared.PersonID) (bool, error) {
	return d[person], nil
}

type noScholarships struct{}

func (noScholarships) Get(context.Context, string) (proposition.Scholarship, error) {
	return proposition.Scholarship{}, proposition.ErrScholarshipNotFound
}

// ─────────────────────────────────────────────────────────────────────────────
// Propositions
// ─────────────────────────────────────────────────────────────────────────────

func TestGetProposition_LabelsFollowLanguage(t *testing.T) {
	repo := memory.NewPropositionRepository(nil)
	p := draft(t, repo)
	h := NewGetPropositionHandler(repo, nil, quietLogger())

	fr, err := h.Handle(context.Background(), GetPropositionQuery{PropositionID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "En brouillon", fr.StatusLabel)
	assert.Equal(t, string(proposition.InProgress), fr.Status)

	en, err := h.Handle(context.Background(), GetPropositionQuery{PropositionID: p.ID, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "In draft form", en.StatusLabel)
}

func TestGetProposition_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPropositionRepository(nil)
	p := draft(t, repo)
	cache := newMapCache()
	h := NewGetPropositionHandler(repo, cache, quietLogger())

	_, err := h.Handle(ctx, GetPropositionQuery{PropositionID: p.ID})
	require.NoError(t, err)

	p.Comment = "changed behind the cache"
	require.NoError(t, repo.Save(ctx, p))

	cached, err := h.Handle(ctx, GetPropositionQuery{PropositionID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Empty(t, cached.Comment)

	require.NoError(t, cache.Invalidate(ctx, p.ID))
	fresh, err := h.Handle(ctx, GetPropositionQuery{PropositionID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "changed behind the cache", fresh.Comment)
}

func TestGetProposition_Errors(t *testing.T) {
	h := NewGetPropositionHandler(memory.NewPropositionRepository(nil), nil, quietLogger())

	_, err := h.Handle(context.Background(), GetPropositionQuery{})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), GetPropositionQuery{PropositionID: shared.NewPropositionID()})
	assert.ErrorIs(t, err, proposition.ErrPropositionNotFound)
}

func TestListCandidatePropositions_AllContexts(t *testing.T) {
	ctx := context.Background()
	seq := memory.NewReferenceSequence(memory.DefaultReferenceBase)
	doctorates := memory.NewPropositionRepository(seq)
	generals := memory.NewGeneralRepository(seq)
	draft(t, doctorates)
	g := general.New(general.Continuing, candidate, shared.TrainingID{Acronym: "CERT", Year: 2024}, checklist.DefaultConfiguration(), now)
	require.NoError(t, generals.Save(ctx, g))

	h := NewListCandidatePropositionsHandler(doctorates, generals)
	got, err := h.Handle(ctx, ListCandidatePropositionsQuery{CandidateID: candidate})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "DOCTORAT", got[0].Context)
	assert.Equal(t, string(general.Continuing), got[1].Context)
}

// ─────────────────────────────────────────────────────────────────────────────
// Supervision
// ─────────────────────────────────────────────────────────────────────────────

func TestGetGroup_FlagsReferencePromoter(t *testing.T) {
	ctx := context.Background()
	groups := memory.NewGroupRepository()
	id := shared.NewPropositionID()
	g := supervision.NewGroup(id)
	limits := supervision.Limits{MaxPromoters: 5, MaxCAMembers: 5, MinCAMembers: 1}
	require.NoError(t, g.IdentifyPromoter("p1", limits))
	require.NoError(t, g.IdentifyPromoter("p2", limits))
	require.NoError(t, g.DesignateReferencePromoter("p2"))
	require.NoError(t, g.IdentifyCAMember("ca1", limits))
	require.NoError(t, g.Invite("ca1", now))
	require.NoError(t, groups.Save(ctx, g))

	dto, err := NewGetGroupHandler(groups).Handle(ctx, GetGroupQuery{PropositionID: id, Language: "en"})
	require.NoError(t, err)
	require.Len(t, dto.Promoters, 2)
	assert.False(t, dto.Promoters[0].IsReference)
	assert.True(t, dto.Promoters[1].IsReference)
	require.Len(t, dto.CAMembers, 1)
	assert.Equal(t, "Invited", dto.CAMembers[0].StateLabel)
}

func TestVerifyProject_ReportsEveryViolation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPropositionRepository(nil)
	groups := memory.NewGroupRepository()
	p := draft(t, repo)
	require.NoError(t, groups.Save(ctx, supervision.NewGroup(p.ID)))

	h := NewVerifyProjectHandler(repo, groups, directory{}, noScholarships{}, supervision.Limits{MinCAMembers: 2})
	dto, err := h.Handle(ctx, VerifyProjectQuery{PropositionID: p.ID})
	require.NoError(t, err)
	assert.False(t, dto.Complete)

	codes := make([]string, 0, len(dto.Violations))
	for _, v := range dto.Violations {
		codes = append(codes, v.Code)
	}
	assert.Contains(t, codes, proposition.ErrProjectIncomplete.Code)
	assert.Greater(t, len(codes), 1)
}

func TestVerifyProject_MissingGroup(t *testing.T) {
	repo := memory.NewPropositionRepository(nil)
	p := draft(t, repo)

	h := NewVerifyProjectHandler(repo, memory.NewGroupRepository(), directory{}, noScholarships{}, supervision.Limits{})
	_, err := h.Handle(context.Background(), VerifyProjectQuery{PropositionID: p.ID})
	assert.ErrorIs(t, err, supervision.ErrGroupNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Checklist, documents, history
// ─────────────────────────────────────────────────────────────────────────────

func TestGetChecklist_TabsInConfiguredOrder(t *testing.T) {
	ctx := context.Background()
	cfg := checklist.DefaultConfiguration()
	doctorates := memory.NewPropositionRepository(nil)
	generals := memory.NewGeneralRepository(nil)
	p := draft(t, doctorates)
	g := general.New(general.General, candidate, shared.TrainingID{Acronym: "DROI1BA", Year: 2024}, cfg, now)
	require.NoError(t, generals.Save(ctx, g))

	h := NewGetChecklistHandler(doctorates, generals, cfg)

	doc, err := h.Handle(ctx, GetChecklistQuery{PropositionID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, string(checklist.Doctorate), doc.Context)
	require.Len(t, doc.Tabs, len(cfg.Tabs(checklist.Doctorate)))
	for i, tab := range cfg.Tabs(checklist.Doctorate) {
		assert.Equal(t, string(tab), doc.Tabs[i].Tab)
	}

	gen, err := h.Handle(ctx, GetChecklistQuery{PropositionID: g.ID})
	require.NoError(t, err)
	assert.Equal(t, string(checklist.General), gen.Context)

	_, err = h.Handle(ctx, GetChecklistQuery{PropositionID: shared.NewPropositionID()})
	assert.ErrorIs(t, err, general.ErrPropositionNotFound)
}

func TestListDocuments_OnlyRequested(t *testing.T) {
	ctx := context.Background()
	slots := memory.NewSlotRepository()
	id := shared.NewPropositionID()
	b := document.NewIdentityBuilder(id)

	cv := document.InitializeToRequest(b.Key(document.Curriculum, "CV"), "missing CV", document.Immediately, "manager", now)
	diploma := document.InitializeToRequest(b.Key(document.Curriculum, "DIPLOME"), "", document.Immediately, "manager", now)
	require.NoError(t, cv.SpecifyRequest("missing CV", document.Requested, document.Immediately, nil, "manager", now))
	require.NoError(t, slots.Save(ctx, cv))
	require.NoError(t, slots.Save(ctx, diploma))

	h := NewListDocumentsHandler(slots)
	all, err := h.Handle(ctx, ListDocumentsQuery{PropositionID: id})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	requested, err := h.Handle(ctx, ListDocumentsQuery{PropositionID: id, OnlyRequested: true})
	require.NoError(t, err)
	require.Len(t, requested, 1)
	assert.Equal(t, cv.ID.Identifier, requested[0].Identifier)
	assert.Equal(t, "missing CV", requested[0].ManagerReason)
}

func TestGetHistory_LanguageAndTag(t *testing.T) {
	ctx := context.Background()
	store := memory.NewHistoryStore()
	id := shared.NewPropositionID()
	require.NoError(t, store.Record(ctx, notification.NewEntry(id, "cand", "Proposition soumise.", "Proposition submitted.", now, "proposition", "status-changed")))
	require.NoError(t, store.Record(ctx, notification.NewEntry(id, "mgr", "Documents réclamés.", "Documents requested.", now, "documents")))

	h := NewGetHistoryHandler(store)
	en, err := h.Handle(ctx, GetHistoryQuery{PropositionID: id, Language: "en-GB"})
	require.NoError(t, err)
	require.Len(t, en, 2)
	assert.Equal(t, "Proposition submitted.", en[0].Message)

	fr, err := h.Handle(ctx, GetHistoryQuery{PropositionID: id, Tag: "documents"})
	require.NoError(t, err)
	require.Len(t, fr, 1)
	assert.Equal(t, "Documents réclamés.", fr[0].Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// Doctoral follow-up
// ─────────────────────────────────────────────────────────────────────────────

func TestGetConfirmationExams_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	exams := memory.NewExamRepository()
	doctorate := shared.NewPropositionID()
	first := confirmation.Initiate(doctorate, nil, 24, now)
	second := confirmation.Initiate(doctorate, nil, 6, now.AddDate(2, 0, 0))
	require.NoError(t, exams.Save(ctx, first))
	require.NoError(t, exams.Save(ctx, second))

	got, err := NewGetConfirmationExamsHandler(exams).Handle(ctx, GetConfirmationExamsQuery{DoctorateID: doctorate})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID.String(), got[0].ID)
}

func TestListActivities_NestsAndTotals(t *testing.T) {
	ctx := context.Background()
	activities := memory.NewActivityRepository()
	doctorate := shared.NewPropositionID()

	seminar := training.NewActivity(doctorate, training.Seminar, "Research seminar", 3)
	talk := training.NewSubActivity(seminar, training.Communication, "Talk", 1)
	paper := training.NewActivity(doctorate, training.Paper, "Paper", 5)
	paper.Status = training.Accepted
	for _, a := range []*training.Activity{seminar, talk, paper} {
		require.NoError(t, activities.Save(ctx, a))
	}

	dto, err := NewListActivitiesHandler(activities).Handle(ctx, ListActivitiesQuery{DoctorateID: doctorate})
	require.NoError(t, err)
	require.Len(t, dto.Activities, 2)
	assert.Equal(t, 5.0, dto.TotalECTS)

	var nested []ActivityDTO
	for _, a := range dto.Activities {
		if a.UUID == seminar.ID.String() {
			nested = a.SubActivities
		}
	}
	require.Len(t, nested, 1)
	assert.Equal(t, talk.ID.String(), nested[0].UUID)
}

func TestGetJury_ExternalInstitution(t *testing.T) {
	ctx := context.Background()
	juries := memory.NewJuryRepository()
	doctorate := shared.NewPropositionID()
	j := jury.New(doctorate, []shared.PersonID{"p1"})
	_, err := j.AddMember(jury.JuryMember{
		Institution: "Université de Genève",
		Country:     "CH",
		LastName:    "Martin",
		FirstName:   "Alex",
		Title:       jury.Professor,
		Gender:      "X",
		Email:       "alex.martin@example.org",
	})
	require.NoError(t, err)
	require.NoError(t, juries.Save(ctx, j))

	dto, err := NewGetJuryHandler(juries).Handle(ctx, GetJuryQuery{DoctorateID: doctorate})
	require.NoError(t, err)
	require.Len(t, dto.Members, 2)
	assert.True(t, dto.Members[0].IsPromoter)
	assert.Equal(t, "Université de Genève", dto.Members[1].Institution)
	assert.Equal(t, string(jury.Member), dto.Members[1].Role)

	_, err = NewGetJuryHandler(memory.NewJuryRepository()).Handle(ctx, GetJuryQuery{DoctorateID: doctorate})
	assert.ErrorIs(t, err, jury.ErrJuryNotFound)
}
