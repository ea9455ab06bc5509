package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/uclouvain/admission-core/config"
	"github.com/uclouvain/admission-core/internal/application"
	"github.com/uclouvain/admission-core/internal/domain/confirmation"
	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/jury"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/supervision"
	"github.com/uclouvain/admission-core/internal/domain/training"
	"github.com/uclouvain/admission-core/internal/infrastructure/messaging"
	"github.com/uclouvain/admission-core/internal/infrastructure/metrics"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/memory"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/postgres"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/redis"
	"github.com/uclouvain/admission-core/internal/infrastructure/scheduler"
	"github.com/uclouvain/admission-core/internal/infrastructure/scheduler/jobs"
	"github.com/uclouvain/admission-core/internal/infrastructure/service"
	ophttp "github.com/uclouvain/admission-core/internal/interface/http"
	"github.com/uclouvain/admission-core/pkg/circuitbreaker"
	"github.com/uclouvain/admission-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORES
// ══════════════════════════════════════════════════════════════════════════════

// stores groups the repositories of one storage driver.
type stores struct {
	propositions proposition.Repository
	generals     general.Repository
	groups       supervision.Repository
	slots        document.Repository
	exams        confirmation.Repository
	activities   training.Repository
	juries       jury.Repository
	history      notification.History
}

func memoryStores(referenceBase int64) stores {
	references := memory.NewReferenceSequence(referenceBase)
	return stores{
		propositions: memory.NewPropositionRepository(references),
		generals:     memory.NewGeneralRepository(references),
		groups:       memory.NewGroupRepository(),
		slots:        memory.NewSlotRepository(),
		exams:        memory.NewExamRepository(),
		activities:   memory.NewActivityRepository(),
		juries:       memory.NewJuryRepository(),
		history:      memory.NewHistoryStore(),
	}
}

func postgresStores(conn *postgres.Connection) stores {
	return stores{
		propositions: postgres.NewPropositionRepository(conn),
		generals:     postgres.NewGeneralRepository(conn),
		groups:       postgres.NewGroupRepository(conn),
		slots:        postgres.NewSlotRepository(conn),
		exams:        postgres.NewExamRepository(conn),
		activities:   postgres.NewActivityRepository(conn),
		juries:       postgres.NewJuryRepository(conn),
		history:      postgres.NewHistoryRepository(conn),
	}
}

// connectPostgres opens the pool, retrying while the database starts.
func connectPostgres(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*postgres.Connection, error) {
	var conn *postgres.Connection
	r := retry.New(retry.Database).OnRetry(func(err error, wait time.Duration) {
		log.Warn("postgres not reachable yet", "error", err, "retry_in", wait.String())
	})
	err := r.Do(ctx, func(ctx context.Context) error {
		c, err := openPostgres(ctx, cfg)
		if err != nil {
			return retry.Retryable(err)
		}
		conn = c
		return nil
	})
	return conn, err
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*postgres.Connection, error) {
	if cfg.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.URL)
	}
	pc := postgres.DefaultConfig()
	pc.Host = cfg.Host
	pc.Port = cfg.Port
	pc.Database = cfg.Name
	pc.User = cfg.User
	pc.Password = cfg.Password
	pc.SSLMode = cfg.SSLMode
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.ConnectTimeout > 0 {
		pc.ConnectTimeout = cfg.ConnectTimeout
	}
	return postgres.NewConnection(ctx, pc)
}

func openRedis(cfg config.RedisConfig) (*redis.Cache, error) {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Host
	rc.Port = cfg.Port
	rc.Password = cfg.Password
	rc.DB = cfg.DB
	if cfg.PoolSize > 0 {
		rc.PoolSize = cfg.PoolSize
	}
	return redis.NewCache(rc)
}

// ══════════════════════════════════════════════════════════════════════════════
// RUNTIME
// ══════════════════════════════════════════════════════════════════════════════

// eventBus is implemented by both the in-memory and the Redis bus.
type eventBus interface {
	shared.EventBus
	Close() error
}

// runtime is the assembled process. close releases everything it opened,
// in reverse order.
type runtime struct {
	cfg      *config.Config
	log      *slog.Logger
	app      *application.Application
	events   eventBus
	conn     *postgres.Connection
	cache    *redis.Cache
	registry *prometheus.Registry
	health   *ophttp.HealthChecker
	jobs     *scheduler.Scheduler
	closers  []func()
}

func (r *runtime) onClose(fn func()) {
	r.closers = append(r.closers, fn)
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// build wires storage, cache, event bus, metrics and the application layer
// from cfg. On error everything opened so far is released.
func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *runtime, err error) {
	rt := &runtime{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
		health:   ophttp.NewHealthChecker(cfg.App.Version),
	}
	defer func() {
		if err != nil {
			rt.close()
		}
	}()

	var st stores
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		rt.conn, err = connectPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.onClose(rt.conn.Close)
		rt.health.AddCheck("postgres", ophttp.PingCheck(rt.conn))
		if cfg.Database.AutoMigrate {
			if err = postgres.NewMigrator(rt.conn).Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		st = postgresStores(rt.conn)
	default:
		st = memoryStores(cfg.Admission.ReferenceBase)
	}

	if cfg.Redis.Enabled {
		rt.cache, err = openRedis(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.onClose(func() { _ = rt.cache.Close() })
		rt.health.AddCheck("redis", ophttp.PingCheck(rt.cache))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(rt.registry)
	}

	rt.events, err = newEventBus(cfg, rt.cache, m, log)
	if err != nil {
		return nil, err
	}
	rt.onClose(func() { _ = rt.events.Close() })

	catalogue := service.DefaultCatalogue()
	if cfg.Admission.CatalogueFile != "" {
		catalogue, err = service.LoadCatalogue(cfg.Admission.CatalogueFile)
		if err != nil {
			return nil, fmt.Errorf("load catalogue: %w", err)
		}
	}

	stateChanges := service.LogStateChanges(log)
	notifier := service.NewBreakingNotifier(
		service.NewRetryingNotifier(service.NewLogNotifier(log), nil, log),
		circuitbreaker.New(circuitbreaker.NotifierSettings(stateChanges)),
	)
	tickets := service.NewBreakingTicketService(
		service.NewMemoryTicketService(nil, log),
		circuitbreaker.New(circuitbreaker.IdentitySettings(stateChanges)),
	)

	deps := application.Dependencies{
		Propositions:   st.propositions,
		Generals:       st.generals,
		Groups:         st.groups,
		Slots:          st.slots,
		Exams:          st.exams,
		Activities:     st.activities,
		Juries:         st.juries,
		History:        st.history,
		Promoters:      catalogue,
		Doctorates:     catalogue.Doctorates(),
		Scholarships:   catalogue.Scholarships(),
		Tickets:        tickets,
		TechnicalTasks: service.NewTechnicalTasks(log),
		Notifier:       notifier,
		Publisher:      rt.events,
		Limits: supervision.Limits{
			MaxPromoters: cfg.Admission.MaxPromoters,
			MaxCAMembers: cfg.Admission.MaxCAMembers,
			MinCAMembers: cfg.Admission.MinCAMembers,
		},
		MaxPropositions: cfg.Admission.MaxPropositions,
		DeadlineMonths:  cfg.Admission.DeadlineMonths,
		CommandTimeout:  cfg.Admission.CommandTimeout,
		Clock:           shared.SystemClock{},
		Logger:          log,
	}
	if rt.cache != nil {
		deps.Cache = redis.NewPropositionCache(rt.cache, cfg.Redis.CacheTTL)
	}
	if m != nil {
		deps.Recorder = m
	}
	if cfg.Metrics.Tracing {
		deps.Tracer = otel.Tracer("github.com/uclouvain/admission-core")
	}

	rt.app, err = application.New(deps)
	if err != nil {
		return nil, fmt.Errorf("assemble application: %w", err)
	}
	if err = rt.app.Subscribe(rt.events); err != nil {
		return nil, fmt.Errorf("subscribe event handlers: %w", err)
	}

	if cfg.Scheduler.Enabled {
		rt.jobs, err = newScheduler(cfg.Scheduler, jobs.OverdueDocumentsConfig{
			Slots:      st.slots,
			Candidates: jobs.PropositionCandidates(st.propositions, st.generals),
			Notifier:   notifier,
			History:    st.history,
			Logger:     log,
		}, m, log)
		if err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func newScheduler(cfg config.SchedulerConfig, overdue jobs.OverdueDocumentsConfig, observer *metrics.Metrics, log *slog.Logger) (*scheduler.Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	at, err := scheduler.ParseDaily(cfg.OverdueDocumentsAt)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	sc := scheduler.Config{Logger: log, Location: loc}
	if observer != nil {
		sc.Observer = observer
	}
	s := scheduler.New(sc)
	if err := s.Register(jobs.NewOverdueDocumentsJob(overdue), at); err != nil {
		return nil, err
	}
	return s, nil
}

func newEventBus(cfg *config.Config, cache *redis.Cache, observer *metrics.Metrics, log *slog.Logger) (eventBus, error) {
	local := messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.EventBus.Mode != config.BusSync,
		WorkerPoolSize: cfg.EventBus.WorkerPoolSize,
		Logger:         log,
	}
	if observer != nil {
		local.Observer = observer
	}

	if cfg.EventBus.Mode != config.BusRedis {
		return messaging.NewInMemoryEventBus(local), nil
	}
	if cache == nil {
		return nil, errors.New("event bus: redis mode requires a redis connection")
	}
	bus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
		Client:         redis.NewPubSub(cache),
		ChannelName:    cfg.EventBus.Channel,
		LocalBusConfig: local,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("event bus: %w", err)
	}
	return bus, nil
}
