package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

var at = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func syncBus(observer Observer) *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Observer: observer,
	})
}

func submitted() shared.Event {
	return shared.NewDoctoralPropositionSubmittedEvent("p-1", "0123456", 300000, false, at)
}

type recordingObserver struct {
	mu        sync.Mutex
	published []shared.EventType
	failures  int
	runs      int
}

func (o *recordingObserver) EventPublished(t shared.EventType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published = append(o.published, t)
}

func (o *recordingObserver) HandlerExecuted(_ shared.EventType, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs++
	if err != nil {
		o.failures++
	}
}

func TestInMemoryEventBus_DeliversToTypedAndGlobalHandlers(t *testing.T) {
	bus := syncBus(nil)

	var typed, global, other int
	require.NoError(t, bus.Subscribe(shared.EventDoctoralPropositionSubmitted, func(shared.Event) error { typed++; return nil }))
	require.NoError(t, bus.Subscribe(shared.EventMergeRefused, func(shared.Event) error { other++; return nil }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { global++; return nil }))

	require.NoError(t, bus.Publish(submitted()))

	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, global)
	assert.Zero(t, other)
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	observer := &recordingObserver{}
	bus := syncBus(observer)

	var reached bool
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { panic("boom") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { return errors.New("failed") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { reached = true; return nil }))

	require.NoError(t, bus.Publish(submitted()))

	assert.True(t, reached)
	assert.Equal(t, []shared.EventType{shared.EventDoctoralPropositionSubmitted}, observer.published)
	assert.Equal(t, 3, observer.runs)
	assert.Equal(t, 2, observer.failures)
}

func TestInMemoryEventBus_RejectsNil(t *testing.T) {
	bus := syncBus(nil)

	assert.Error(t, bus.Subscribe(shared.EventMergeRefused, nil))
	assert.Error(t, bus.SubscribeAll(nil))
	assert.Error(t, bus.Publish(nil))
}

func TestInMemoryEventBus_Closed(t *testing.T) {
	bus := syncBus(nil)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(submitted()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventMergeRefused, func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_AsyncCloseWaitsForHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 2,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	var handled atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		time.Sleep(5 * time.Millisecond)
		handled.Add(1)
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(submitted()))
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, int32(5), handled.Load())
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis bus
// ─────────────────────────────────────────────────────────────────────────────

type fakePubSub struct {
	mu        sync.Mutex
	published []string
	messages  chan PubSubMessage
	failWith  error
}

func newFakePubSub() *fakePubSub {
	return &fakePubSub{messages: make(chan PubSubMessage, 8)}
}

func (f *fakePubSub) Publish(_ context.Context, _ string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, message)
	return nil
}

func (f *fakePubSub) Subscribe(context.Context, string) (<-chan PubSubMessage, error) {
	return f.messages, nil
}

func newRedisBus(t *testing.T, client PubSub) *RedisEventBus {
	t.Helper()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:     client,
		InstanceID: "instance-a",
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestRedisEventBus_PublishesAndDeliversLocally(t *testing.T) {
	client := newFakePubSub()
	bus := newRedisBus(t, client)

	var local atomic.Int32
	require.NoError(t, bus.Subscribe(shared.EventDoctoralPropositionSubmitted, func(shared.Event) error {
		local.Add(1)
		return nil
	}))

	require.NoError(t, bus.Publish(submitted()))

	require.Len(t, client.published, 1)
	instance, event, err := DecodeEnvelope([]byte(client.published[0]))
	require.NoError(t, err)
	assert.Equal(t, "instance-a", instance)
	assert.Equal(t, shared.EventDoctoralPropositionSubmitted, event.EventType())
	assert.Equal(t, "0123456", shared.PayloadString(event, "candidate_id"))
	assert.Eventually(t, func() bool { return local.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRedisEventBus_RedisFailureStillDeliversLocally(t *testing.T) {
	client := newFakePubSub()
	client.failWith = errors.New("connection refused")
	bus := newRedisBus(t, client)

	var local atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { local.Add(1); return nil }))

	require.NoError(t, bus.Publish(submitted()))
	assert.Eventually(t, func() bool { return local.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRedisEventBus_ReceivesRemoteEventsAndSkipsOwn(t *testing.T) {
	client := newFakePubSub()
	bus := newRedisBus(t, client)

	received := make(chan shared.Event, 2)
	require.NoError(t, bus.Subscribe(shared.EventMergeRefused, func(e shared.Event) error {
		received <- e
		return nil
	}))

	own, err := EncodeEnvelope("instance-a", shared.NewMergeRefusedEvent("p-1", "own", at))
	require.NoError(t, err)
	remote, err := EncodeEnvelope("instance-b", shared.NewMergeRefusedEvent("p-2", "0999999", at))
	require.NoError(t, err)

	client.messages <- PubSubMessage{Payload: string(own)}
	client.messages <- PubSubMessage{Payload: "not json"}
	client.messages <- PubSubMessage{Payload: string(remote)}

	select {
	case e := <-received:
		assert.Equal(t, "p-2", e.AggregateID())
		assert.Equal(t, "0999999", shared.PayloadString(e, "candidate_id"))
		assert.True(t, e.OccurredAt().Equal(at))
	case <-time.After(time.Second):
		t.Fatal("remote event not delivered")
	}
	assert.Empty(t, received)
}

func TestNewRedisEventBus_RequiresClient(t *testing.T) {
	_, err := NewRedisEventBus(RedisEventBusConfig{})
	assert.Error(t, err)
}
