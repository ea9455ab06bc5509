package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/pkg/logger"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

type observerStub struct {
	mu    sync.Mutex
	calls map[string]int
	fails int
}

func (o *observerStub) JobExecuted(name string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = make(map[string]int)
	}
	o.calls[name]++
	if err != nil {
		o.fails++
	}
}

func TestScheduler_Register(t *testing.T) {
	s := New(Config{Logger: logger.Discard()})

	require.NoError(t, s.Register(&countingJob{name: "a"}, Every(time.Hour)))
	assert.ErrorIs(t, s.Register(&countingJob{name: "a"}, Every(time.Hour)), ErrJobExists)
	assert.ErrorIs(t, s.Register(nil, Every(time.Hour)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "b"}, nil), ErrNilSchedule)

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "@every 1h0m0s", jobs[0].Schedule)
}

func TestScheduler_RunNow(t *testing.T) {
	obs := &observerStub{}
	s := New(Config{Logger: logger.Discard(), Observer: obs})
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.Register(ok, Every(time.Hour)))
	require.NoError(t, s.Register(failing, Every(time.Hour)))

	result, err := s.RunNow(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, result.Manual)
	assert.Equal(t, int64(1), ok.runs.Load())

	_, err = s.RunNow(context.Background(), "failing")
	assert.EqualError(t, err, "boom")

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "failing", jobs[0].Name)
	assert.Equal(t, int64(1), jobs[0].FailCount)
	assert.Equal(t, int64(1), jobs[1].RunCount)
	assert.Equal(t, 1, obs.fails)
}

func TestScheduler_RunExecutesDueJobs(t *testing.T) {
	s := New(Config{Logger: logger.Discard(), Tick: 5 * time.Millisecond})
	job := &countingJob{name: "fast"}
	require.NoError(t, s.Register(job, Every(10*time.Millisecond)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestDaily(t *testing.T) {
	d, err := ParseDaily("06:30")
	require.NoError(t, err)
	assert.Equal(t, "@daily 06:30", d.String())

	before := time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC), d.Next(before))

	at := time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 6, 30, 0, 0, time.UTC), d.Next(at))

	_, err = ParseDaily("6h30")
	assert.Error(t, err)
}
