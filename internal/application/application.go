// Package application assembles the command bus, the query handlers and the
// event handlers from their dependencies.
package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/uclouvain/admission-core/internal/application/bus"
	"github.com/uclouvain/admission-core/internal/application/command"
	"github.com/uclouvain/admission-core/internal/application/eventhandler"
	"github.com/uclouvain/admission-core/internal/application/query"
	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/identity"
	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
	"github.com/uclouvain/admission-core/internal/domain/training"
	"github.com/uclouvain/admission-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies lists everything the application layer needs. Optional
// fields are marked as such.
type Dependencies struct {
	// Repositories
	Propositions proposition.Repository
	Generals     general.Repository
	Groups       supervision.Repository
	Slots        document.Repository
	Exams        confirmation.Repository
	Activities   training.Repository
	Juries       jury.Repository
	History      notification.History

	// Translators and services
	Promoters      supervision.PromoterTranslator
	Doctorates     proposition.DoctorateTranslator
	Scholarships   proposition.ScholarshipTranslator
	Tickets        identity.TicketService
	TechnicalTasks checklist.TechnicalTasks
	Notifier       notification.Notifier
	Publisher      shared.EventPublisher

	// Cache is optional.
	Cache query.PropositionCache

	// Recorder and Tracer are optional.
	Recorder bus.Recorder
	Tracer   trace.Tracer

	Checklist       *checklist.Configuration
	Limits          supervision.Limits
	MaxPropositions int
	DeadlineMonths  int
	CommandTimeout  time.Duration

	Clock  shared.Clock
	Logger *slog.Logger
}

// Validate reports the missing mandatory dependencies.
func (d *Dependencies) Validate() error {
	var errs []error
	check := func(ok bool, name string) {
		if !ok {
			errs = append(errs, errors.New(name+" is required"))
		}
	}
	check(d.Propositions != nil, "propositions repository")
	check(d.Generals != nil, "general propositions repository")
	check(d.Groups != nil, "groups repository")
	check(d.Slots != nil, "slots repository")
	check(d.Exams != nil, "exams repository")
	check(d.Activities != nil, "activities repository")
	check(d.Juries != nil, "juries repository")
	check(d.History != nil, "history")
	check(d.Promoters != nil, "promoter translator")
	check(d.Doctorates != nil, "doctorate translator")
	check(d.Scholarships != nil, "scholarship translator")
	check(d.Tickets != nil, "ticket service")
	check(d.TechnicalTasks != nil, "technical tasks")
	check(d.Notifier != nil, "notifier")
	check(d.Publisher != nil, "event publisher")
	return errors.Join(errs...)
}

// Queries groups the read side.
type Queries struct {
	Proposition   *query.GetPropositionHandler
	Candidate     *query.ListCandidatePropositionsHandler
	Group         *query.GetGroupHandler
	VerifyProject *query.VerifyProjectHandler
	Checklist     *query.GetChecklistHandler
	Documents     *query.ListDocumentsHandler
	History       *query.GetHistoryHandler
	Exams         *query.GetConfirmationExamsHandler
	Activities    *query.ListActivitiesHandler
	Jury          *query.GetJuryHandler
}

// Application is the assembled application layer.
type Application struct {
	Bus             *bus.Bus
	Queries         Queries
	IdentityTickets *eventhandler.IdentityTicketHandler
}

// New wires every handler.
func New(deps Dependencies) (*Application, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Checklist
	if cfg == nil {
		cfg = checklist.DefaultConfiguration()
	}
	limits := deps.Limits
	if limits == (supervision.Limits{}) {
		limits = supervision.DefaultLimits()
	}
	timeout := deps.CommandTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	effects := command.Effects{
		Notifier:  deps.Notifier,
		History:   deps.History,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		Logger:    logger,
	}

	b := bus.New(logger)
	b.Use(bus.RecoveryMiddleware(logger), bus.LoggingMiddleware(logger))
	if deps.Recorder != nil {
		b.Use(bus.MetricsMiddleware(deps.Recorder))
	}
	if deps.Tracer != nil {
		b.Use(bus.TracingMiddleware(deps.Tracer))
	}
	b.Use(bus.TimeoutMiddleware(timeout))
	if deps.Cache != nil {
		b.Use(CacheInvalidationMiddleware(deps.Cache, logger))
	}

	registerDoctorate(b, &command.DoctorateDeps{
		Propositions:    deps.Propositions,
		Groups:          deps.Groups,
		Promoters:       deps.Promoters,
		Doctorates:      deps.Doctorates,
		Scholarships:    deps.Scholarships,
		Checklist:       cfg,
		Limits:          limits,
		MaxPropositions: deps.MaxPropositions,
		Effects:         effects,
	})
	registerDocuments(b, &command.DocumentDeps{
		Slots:        deps.Slots,
		Propositions: deps.Propositions,
		Effects:      effects,
	})
	registerFollowUp(b, deps, effects)
	registerGeneral(b, &command.GeneralDeps{
		Propositions:   deps.Generals,
		Checklist:      cfg,
		TechnicalTasks: deps.TechnicalTasks,
		Effects:        effects,
	})
	bus.MustRegister[command.RequestIdentityTicketCommand, *command.RequestIdentityTicketResult](b, command.NewRequestIdentityTicketHandler(deps.Tickets))

	app := &Application{
		Bus: b,
		Queries: Queries{
			Proposition:   query.NewGetPropositionHandler(deps.Propositions, deps.Cache, logger),
			Candidate:     query.NewListCandidatePropositionsHandler(deps.Propositions, deps.Generals),
			Group:         query.NewGetGroupHandler(deps.Groups),
			VerifyProject: query.NewVerifyProjectHandler(deps.Propositions, deps.Groups, deps.Promoters, deps.Scholarships, limits),
			Checklist:     query.NewGetChecklistHandler(deps.Propositions, deps.Generals, cfg),
			Documents:     query.NewListDocumentsHandler(deps.Slots),
			History:       query.NewGetHistoryHandler(deps.History),
			Exams:         query.NewGetConfirmationExamsHandler(deps.Exams),
			Activities:    query.NewListActivitiesHandler(deps.Activities),
			Jury:          query.NewGetJuryHandler(deps.Juries),
		},
		IdentityTickets: eventhandler.NewIdentityTicketHandler(b, retry.New(retry.Tickets), logger),
	}
	return app, nil
}

// Subscribe registers the event handlers on sub.
func (a *Application) Subscribe(sub shared.EventSubscriber) error {
	return a.IdentityTickets.Subscribe(sub)
}

// ─────────────────────────────────────────────────────────────────────────────
// Registration
// ─────────────────────────────────────────────────────────────────────────────

func registerDoctorate(b *bus.Bus, deps *command.DoctorateDeps) {
	bus.MustRegister[command.InitiatePropositionCommand, *command.PropositionResult](b, command.NewInitiatePropositionHandler(deps))
	bus.MustRegister[command.CompletePropositionCommand, *command.PropositionResult](b, command.NewCompletePropositionHandler(deps))
	bus.MustRegister[command.ModifyAdmissionTypeCommand, *command.PropositionResult](b, command.NewModifyAdmissionTypeHandler(deps))
	bus.MustRegister[command.CancelPropositionCommand, *command.PropositionResult](b, command.NewCancelPropositionHandler(deps))

	bus.MustRegister[command.IdentifyPromoterCommand, *command.GroupResult](b, command.NewIdentifyPromoterHandler(deps))
	bus.MustRegister[command.IdentifyCAMemberCommand, *command.GroupResult](b, command.NewIdentifyCAMemberHandler(deps))
	bus.MustRegister[command.RemovePromoterCommand, *command.GroupResult](b, command.NewRemovePromoterHandler(deps))
	bus.MustRegister[command.RemoveCAMemberCommand, *command.GroupResult](b, command.NewRemoveCAMemberHandler(deps))
	bus.MustRegister[command.DesignateReferencePromoterCommand, *command.GroupResult](b, command.NewDesignateReferencePromoterHandler(deps))
	bus.MustRegister[command.DefineCotutelleCommand, *command.GroupResult](b, command.NewDefineCotutelleHandler(deps))

	bus.MustRegister[command.RequestSignaturesCommand, *command.RequestSignaturesResult](b, command.NewRequestSignaturesHandler(deps))
	opinions := command.NewOpinionHandler(deps)
	bus.MustRegister[command.ApprovePropositionCommand, *command.OpinionResult](b, command.ApproveHandler{OpinionHandler: opinions})
	bus.MustRegister[command.RefusePropositionCommand, *command.OpinionResult](b, command.RefuseHandler{OpinionHandler: opinions})
	bus.MustRegister[command.ApproveByPDFCommand, *command.OpinionResult](b, command.ApproveByPDFHandler{OpinionHandler: opinions})

	bus.MustRegister[command.SubmitPropositionCommand, *command.SubmitPropositionResult](b, command.NewSubmitPropositionHandler(deps))
	bus.MustRegister[command.RefuseMergeCommand, *command.PropositionResult](b, command.NewRefuseMergeHandler(deps))
	bus.MustRegister[command.DecideCommand, *command.PropositionResult](b, command.NewDecideHandler(deps))
}

func registerDocuments(b *bus.Bus, deps *command.DocumentDeps) {
	bus.MustRegister[command.DefineDocumentToRequestCommand, *command.SlotResult](b, command.NewDefineDocumentToRequestHandler(deps))
	bus.MustRegister[command.UploadInternalDocumentCommand, *command.SlotResult](b, command.NewUploadInternalDocumentHandler(deps))
	bus.MustRegister[command.SpecifyDocumentRequestCommand, *command.SlotResult](b, command.NewSpecifyDocumentRequestHandler(deps))
	bus.MustRegister[command.CancelDocumentRequestCommand, *command.SlotResult](b, command.NewCancelDocumentRequestHandler(deps))
	bus.MustRegister[command.FillDocumentCommand, *command.SlotResult](b, command.NewFillDocumentHandler(deps))
	bus.MustRegister[command.SendDocumentsRequestCommand, *command.SendDocumentsRequestResult](b, command.NewSendDocumentsRequestHandler(deps))
}

func registerFollowUp(b *bus.Bus, deps Dependencies, effects command.Effects) {
	exams := &command.ConfirmationDeps{Exams: deps.Exams, DeadlineMonths: deps.DeadlineMonths, Effects: effects}
	bus.MustRegister[command.PlanConfirmationExamCommand, *command.ExamResult](b, command.NewPlanConfirmationExamHandler(exams))
	bus.MustRegister[command.CompleteConfirmationExamCommand, *command.ExamResult](b, command.NewCompleteConfirmationExamHandler(exams))
	bus.MustRegister[command.RequestExtensionCommand, *command.ExamResult](b, command.NewRequestExtensionHandler(exams))
	bus.MustRegister[command.SubmitExtensionOpinionCommand, *command.ExamResult](b, command.NewSubmitExtensionOpinionHandler(exams))

	activities := &command.TrainingDeps{Activities: deps.Activities, Effects: effects}
	bus.MustRegister[command.SubmitActivitiesCommand, *command.ActivitiesResult](b, command.NewSubmitActivitiesHandler(activities))
	bus.MustRegister[command.AcceptActivitiesCommand, *command.ActivitiesResult](b, command.NewAcceptActivitiesHandler(activities))
	bus.MustRegister[command.RefuseActivityCommand, *command.ActivitiesResult](b, command.NewRefuseActivityHandler(activities))
	bus.MustRegister[command.RevertActivityCommand, *command.ActivitiesResult](b, command.NewRevertActivityHandler(activities))

	juries := &command.JuryDeps{Juries: deps.Juries, Groups: deps.Groups, Effects: effects}
	bus.MustRegister[command.AddJuryMemberCommand, *command.JuryResult](b, command.NewAddJuryMemberHandler(juries))
	bus.MustRegister[command.ModifyJuryRoleCommand, *command.JuryResult](b, command.NewModifyJuryRoleHandler(juries))
	bus.MustRegister[command.RemoveJuryMemberCommand, *command.JuryResult](b, command.NewRemoveJuryMemberHandler(juries))
}

func registerGeneral(b *bus.Bus, deps *command.GeneralDeps) {
	bus.MustRegister[command.InitiateGeneralPropositionCommand, *command.GeneralResult](b, command.NewInitiateGeneralPropositionHandler(deps))
	bus.MustRegister[command.SubmitGeneralPropositionCommand, *command.GeneralResult](b, command.NewSubmitGeneralPropositionHandler(deps))
	bus.MustRegister[command.GeneralActionCommand, *command.GeneralResult](b, command.NewGeneralActionHandler(deps))
}

// ─────────────────────────────────────────────────────────────────────────────
// Cache invalidation
// ─────────────────────────────────────────────────────────────────────────────

// CacheInvalidationMiddleware drops the cached read model of the doctoral
// proposition a successful command touched.
func CacheInvalidationMiddleware(cache query.PropositionCache, logger *slog.Logger) bus.Middleware {
	return func(next bus.HandlerFunc) bus.HandlerFunc {
		return func(ctx context.Context, cmd bus.Command) (any, error) {
			res, err := next(ctx, cmd)
			if err != nil {
				return res, err
			}
			id, ok := touchedProposition(res)
			if !ok {
				return res, nil
			}
			if cerr := cache.Invalidate(ctx, id); cerr != nil {
				logger.WarnContext(ctx, "failed to invalidate proposition cache",
					"command", cmd.CommandName(),
					"proposition_id", id.String(),
					"error", cerr,
				)
			}
			return res, nil
		}
	}
}

func touchedProposition(res any) (shared.PropositionID, bool) {
	var id shared.PropositionID
	switch r := res.(type) {
	case *command.PropositionResult:
		if r != nil {
			id = r.PropositionID
		}
	case *command.OpinionResult:
		if r != nil {
			id = r.PropositionID
		}
	case *command.SubmitPropositionResult:
		if r != nil {
			id = r.PropositionID
		}
	case *command.RequestSignaturesResult:
		if r != nil {
			id = r.PropositionID
		}
	case *command.SendDocumentsRequestResult:
		if r != nil {
			id = r.PropositionID
		}
	}
	return id, !id.IsZero()
}
