package bus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

type greetCommand struct{ Name string }

func (greetCommand) CommandName() string { return "greet" }

type greetHandler struct{ calls int }

func (h *greetHandler) Handle(_ context.Context, cmd greetCommand) (string, error) {
	h.calls++
	if cmd.Name == "" {
		return "", shared.NewBusinessError("GREET-1", shared.ErrValidation, "name is required")
	}
	if cmd.Name == "panic" {
		panic("boom")
	}
	return "hello " + cmd.Name, nil
}

type otherCommand struct{}

func (otherCommand) CommandName() string { return "other" }

type recorder struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (r *recorder) ObserveCommand(name, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string][]string{}
	}
	r.outcomes[name] = append(r.outcomes[name], outcome)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatch(t *testing.T) {
	b := New(discard())
	h := &greetHandler{}
	require.NoError(t, Register[greetCommand, string](b, h))

	got, err := Dispatch[string](context.Background(), b, greetCommand{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "hello Ada", got)
	assert.Equal(t, 1, h.calls)
}

func TestRegisterTwice(t *testing.T) {
	b := New(discard())
	require.NoError(t, Register[greetCommand, string](b, &greetHandler{}))
	err := Register[greetCommand, string](b, &greetHandler{})
	assert.ErrorIs(t, err, ErrHandlerAlreadyRegistered)
}

func TestDispatchUnregistered(t *testing.T) {
	b := New(discard())
	_, err := b.Send(context.Background(), otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotRegistered)
}

func TestDispatchWrongResultType(t *testing.T) {
	b := New(discard())
	require.NoError(t, Register[greetCommand, string](b, &greetHandler{}))
	_, err := Dispatch[int](context.Background(), b, greetCommand{Name: "Ada"})
	assert.ErrorIs(t, err, ErrUnexpectedResult)
}

func TestMiddlewares(t *testing.T) {
	rec := &recorder{}
	b := New(discard())
	b.Use(
		RecoveryMiddleware(discard()),
		LoggingMiddleware(discard()),
		MetricsMiddleware(rec),
		TracingMiddleware(noop.NewTracerProvider().Tracer("test")),
		TimeoutMiddleware(time.Second),
	)
	require.NoError(t, Register[greetCommand, string](b, &greetHandler{}))
	ctx := context.Background()

	_, err := b.Send(ctx, greetCommand{Name: "Ada"})
	require.NoError(t, err)

	_, err = b.Send(ctx, greetCommand{})
	var be *shared.BusinessError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "GREET-1", be.Code)

	_, err = b.Send(ctx, greetCommand{Name: "panic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")

	assert.Equal(t, []string{OutcomeOK, OutcomeBusinessError}, rec.outcomes["greet"])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeError, Outcome(errors.New("db down")))
	multi := &shared.MultipleBusinessErrors{Errors: []*shared.BusinessError{
		shared.NewBusinessError("X-1", shared.ErrValidation, "x"),
	}}
	assert.Equal(t, OutcomeBusinessError, Outcome(multi))
}
