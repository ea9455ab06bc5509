// Package service holds adapters for the services the admission core calls
// but does not own: notification delivery, the identity system, the
// training catalogue and checklist technical tasks.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFIERS
// ══════════════════════════════════════════════════════════════════════════════

// LogNotifier writes messages to the log instead of delivering them. It is
// the notifier of development and test environments.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

// Notify implements notification.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg notification.Message) error {
	recipients := make([]string, 0, len(msg.Recipients))
	for _, r := range msg.Recipients {
		recipients = append(recipients, r.String())
	}
	n.logger.InfoContext(ctx, "notification",
		"message_id", msg.ID.String(),
		"kind", msg.Kind,
		"channel", msg.Channel,
		"proposition_id", msg.PropositionID.String(),
		"recipients", recipients,
		"subject", msg.Subject,
	)
	return nil
}

// RetryingNotifier retries transient delivery failures of another notifier.
type RetryingNotifier struct {
	next    notification.Notifier
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewRetryingNotifier wraps next. retrier may be nil.
func NewRetryingNotifier(next notification.Notifier, retrier *retry.Retrier, logger *slog.Logger) *RetryingNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if retrier == nil {
		retrier = retry.New(retry.Notifications)
	}
	return &RetryingNotifier{next: next, retrier: retrier, logger: logger}
}

// Notify implements notification.Notifier. A message the gateway rejects
// as invalid is not sent again; any other error is transient until the
// retrier gives up.
func (n *RetryingNotifier) Notify(ctx context.Context, msg notification.Message) error {
	start := time.Now()
	attempt := 0
	err := n.retrier.Do(ctx, func(ctx context.Context) error {
		attempt++
		err := n.next.Notify(ctx, msg)
		if err == nil || shared.IsValidation(err) {
			return err
		}
		n.logger.DebugContext(ctx, "notification delivery failed",
			"message_id", msg.ID.String(),
			"attempt", attempt,
			"error", err,
		)
		return retry.Retryable(err)
	})
	if err != nil {
		n.logger.WarnContext(ctx, "notification delivery gave up",
			"message_id", msg.ID.String(),
			"elapsed", time.Since(start).String(),
			"error", err,
		)
	}
	return err
}
