// Package scheduler runs periodic maintenance jobs of the admission service,
// such as the reminder for overdue document requests.
package scheduler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job is one unit of periodic work.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler
	// stops.
	Run(ctx context.Context) error
}

// Schedule defines when a job should run.
type Schedule interface {
	// Next returns the first run time strictly after t.
	Next(t time.Time) time.Time
	String() string
}

// Observer is notified of every job execution. metrics.Metrics implements it.
type Observer interface {
	JobExecuted(name string, d time.Duration, err error)
}

// JobResult describes one execution.
type JobResult struct {
	JobName   string
	StartedAt time.Time
	Duration  time.Duration
	Manual    bool
	Err       error
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name      string
	Schedule  string
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	FailCount int64
	LastError error
}

var (
	ErrNilJob          = errors.New("job cannot be nil")
	ErrNilSchedule     = errors.New("schedule cannot be nil")
	ErrJobExists       = errors.New("job already exists")
	ErrJobNotFound     = errors.New("job not found")
	ErrAlreadyRunning  = errors.New("scheduler is already running")
	ErrJobStillRunning = errors.New("job is still running")
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Config configures a Scheduler.
type Config struct {
	Logger   *slog.Logger
	Location *time.Location
	Observer Observer

	// Tick is how often due jobs are looked for (default: 1s).
	Tick time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Scheduler runs registered jobs when their schedule is due. A job never
// overlaps with itself: a run that is still in progress when the job is due
// again makes the scheduler skip that slot.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*scheduledJob
	running bool
	wg      sync.WaitGroup

	logger   *slog.Logger
	location *time.Location
	observer Observer
	tick     time.Duration
	now      func() time.Time
}

type scheduledJob struct {
	job       Job
	schedule  Schedule
	nextRun   time.Time
	lastRun   time.Time
	runCount  int64
	failCount int64
	lastErr   error
	busy      bool
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		jobs:     make(map[string]*scheduledJob),
		logger:   cfg.Logger.With("component", "scheduler"),
		location: cfg.Location,
		observer: cfg.Observer,
		tick:     cfg.Tick,
		now:      cfg.Now,
	}
}

// Register adds a job with its schedule.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}
	sj := &scheduledJob{
		job:      job,
		schedule: schedule,
		nextRun:  schedule.Next(s.now().In(s.location)),
	}
	s.jobs[name] = sj
	s.logger.Info("job registered",
		"job", name,
		"schedule", schedule.String(),
		"next_run", sj.nextRun.Format(time.RFC3339),
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Run starts due jobs until ctx is cancelled, then waits for the jobs in
// progress. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("scheduler started", "jobs", len(s.Jobs()))
	ticker := time.NewTicker(s.tick)
	defer func() {
		ticker.Stop()
		s.wg.Wait()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.logger.Info("scheduler stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.startDue(ctx)
		}
	}
}

func (s *Scheduler) startDue(ctx context.Context) {
	now := s.now().In(s.location)

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, sj := range s.jobs {
		if now.Before(sj.nextRun) {
			continue
		}
		sj.nextRun = sj.schedule.Next(now)
		if sj.busy {
			s.logger.Warn("job skipped, previous run still in progress", "job", name)
			continue
		}
		sj.busy = true
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.execute(ctx, sj, false)
		}()
	}
}

// RunNow executes a job immediately, outside of its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) (JobResult, error) {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if sj.busy {
		s.mu.Unlock()
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobStillRunning, name)
	}
	sj.busy = true
	s.mu.Unlock()

	result := s.execute(ctx, sj, true)
	return result, result.Err
}

func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob, manual bool) JobResult {
	name := sj.job.Name()
	started := s.now()
	log := s.logger.With("job", name, "manual", manual)
	log.Debug("job started")

	err := sj.job.Run(ctx)
	result := JobResult{
		JobName:   name,
		StartedAt: started,
		Duration:  s.now().Sub(started),
		Manual:    manual,
		Err:       err,
	}

	s.mu.Lock()
	sj.busy = false
	sj.lastRun = started
	sj.runCount++
	sj.lastErr = err
	if err != nil {
		sj.failCount++
	}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.JobExecuted(name, result.Duration, err)
	}
	if err != nil {
		log.Error("job failed", "duration", result.Duration.String(), "error", err)
	} else {
		log.Info("job completed", "duration", result.Duration.String())
	}
	return result
}

// Jobs describes the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, sj := range s.jobs {
		infos = append(infos, JobInfo{
			Name:      name,
			Schedule:  sj.schedule.String(),
			LastRun:   sj.lastRun,
			NextRun:   sj.nextRun,
			RunCount:  sj.runCount,
			FailCount: sj.failCount,
			LastError: sj.lastErr,
		})
	}
	slices.SortFunc(infos, func(a, b JobInfo) int { return cmp.Compare(a.Name, b.Name) })
	return infos
}
