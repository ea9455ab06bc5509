package bus

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// Outcomes reported to a Recorder.
const (
	OutcomeOK            = "ok"
	OutcomeBusinessError = "business_error"
	OutcomeError         = "error"
)

// Outcome classifies the error returned by a handler.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case shared.IsBusiness(err):
		return OutcomeBusinessError
	default:
		return OutcomeError
	}
}

// RecoveryMiddleware turns a handler panic into an error.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command) (res any, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic recovered",
						"command", cmd.CommandName(),
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(ctx, cmd)
		}
	}
}

// LoggingMiddleware logs every command. Business errors are expected
// outcomes and are logged at info level with their codes.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command) (any, error) {
			start := time.Now()
			res, err := next(ctx, cmd)
			duration := time.Since(start)

			switch Outcome(err) {
			case OutcomeOK:
				logger.Debug("command handled",
					"command", cmd.CommandName(),
					"duration", duration,
				)
			case OutcomeBusinessError:
				var errCodes []string
				for _, be := range shared.BusinessErrors(err) {
					errCodes = append(errCodes, be.Code)
				}
				logger.Info("command rejected",
					"command", cmd.CommandName(),
					"codes", strings.Join(errCodes, ","),
					"duration", duration,
				)
			default:
				logger.Error("command failed",
					"command", cmd.CommandName(),
					"duration", duration,
					"error", err,
				)
			}
			return res, err
		}
	}
}

// Recorder receives one observation per handled command.
type Recorder interface {
	ObserveCommand(name, outcome string, duration time.Duration)
}

// MetricsMiddleware reports every command to rec.
func MetricsMiddleware(rec Recorder) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command) (any, error) {
			start := time.Now()
			res, err := next(ctx, cmd)
			rec.ObserveCommand(cmd.CommandName(), Outcome(err), time.Since(start))
			return res, err
		}
	}
}

// TracingMiddleware opens one span per command.
func TracingMiddleware(tracer trace.Tracer) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command) (any, error) {
			ctx, span := tracer.Start(ctx, "command "+cmd.CommandName(),
				trace.WithAttributes(attribute.String("admission.command", cmd.CommandName())),
			)
			defer span.End()

			res, err := next(ctx, cmd)
			outcome := Outcome(err)
			span.SetAttributes(attribute.String("admission.outcome", outcome))
			if outcome == OutcomeError {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return res, err
		}
	}
}

// TimeoutMiddleware bounds the context of every command.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, cmd)
		}
	}
}
