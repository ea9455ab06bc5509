// Package bus is the explicit command bus of the admission core. Each
// command type is mapped to exactly one handler when the bus is built.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrHandlerNotRegistered is returned when no handler accepts a command.
	ErrHandlerNotRegistered = errors.New("bus: no handler registered for command")
	// ErrHandlerAlreadyRegistered is returned when a command is registered twice.
	ErrHandlerAlreadyRegistered = errors.New("bus: handler already registered for command")
	// ErrUnexpectedResult is returned when a handler result does not have
	// the type expected by the caller.
	ErrUnexpectedResult = errors.New("bus: unexpected result type")
)

// ══════════════════════════════════════════════════════════════════════════════
// TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Command is an immutable request handled by exactly one handler.
type Command interface {
	// CommandName is the stable name used for registration, logs and metrics.
	CommandName() string
}

// Handler handles one command type.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc is the type-erased form of a handler.
type HandlerFunc func(ctx context.Context, cmd Command) (any, error)

// Middleware wraps handler execution.
type Middleware func(next HandlerFunc) HandlerFunc

// ══════════════════════════════════════════════════════════════════════════════
// BUS
// ══════════════════════════════════════════════════════════════════════════════

// Bus routes commands to their handler.
type Bus struct {
	mu          sync.RWMutex
	handlers    map[string]HandlerFunc
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates an empty bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[string]HandlerFunc),
		logger:   logger.With("component", "command_bus"),
	}
}

// Use appends middlewares. The first middleware is the outermost.
func (b *Bus) Use(middlewares ...Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, middlewares...)
}

// RegisterFunc registers a type-erased handler under name.
func (b *Bus) RegisterFunc(name string, h HandlerFunc) error {
	if h == nil {
		return fmt.Errorf("bus: nil handler for %s", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, name)
	}
	b.handlers[name] = h
	b.logger.Debug("registered handler", "command", name)
	return nil
}

// Register binds the handler of command type C.
func Register[C Command, R any](b *Bus, h Handler[C, R]) error {
	var zero C
	return b.RegisterFunc(zero.CommandName(), func(ctx context.Context, cmd Command) (any, error) {
		c, ok := cmd.(C)
		if !ok {
			return nil, fmt.Errorf("bus: %s received %T", zero.CommandName(), cmd)
		}
		return h.Handle(ctx, c)
	})
}

// MustRegister is Register for wiring code that cannot recover.
func MustRegister[C Command, R any](b *Bus, h Handler[C, R]) {
	if err := Register(b, h); err != nil {
		panic(err)
	}
}

// Registered lists the registered command names, sorted.
func (b *Bus) Registered() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Send runs the handler of cmd through the middleware chain.
func (b *Bus) Send(ctx context.Context, cmd Command) (any, error) {
	b.mu.RLock()
	h, ok := b.handlers[cmd.CommandName()]
	middlewares := b.middlewares
	b.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotRegistered, cmd.CommandName())
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h(ctx, cmd)
}

// Dispatch sends cmd and returns its typed result.
func Dispatch[R any](ctx context.Context, b *Bus, cmd Command) (R, error) {
	var zero R
	res, err := b.Send(ctx, cmd)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	r, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrUnexpectedResult, cmd.CommandName(), res)
	}
	return r, nil
}
