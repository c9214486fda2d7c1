package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/satsclub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// DefaultMaxRetries сколько раз задание reconcile.retry возвращается в очередь.
const DefaultMaxRetries = 5

// CheckoutPoller ограниченный опрос checkout.
type CheckoutPoller interface {
	Poll(ctx context.Context, checkoutID, userID string, trigger Trigger) (Outcome, error)
}

// RetryHandler обрабатывает задания reconcile.retry: оплата подтверждена,
// а подписка не записана.
type RetryHandler struct {
	poller     CheckoutPoller
	publisher  Publisher
	maxRetries int
	log        *slog.Logger
}

// NewRetryHandler создаёт RetryHandler. Неположительный maxRetries заменяется DefaultMaxRetries.
func NewRetryHandler(poller CheckoutPoller, publisher Publisher, maxRetries int, log *slog.Logger) *RetryHandler {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &RetryHandler{poller: poller, publisher: publisher, maxRetries: maxRetries, log: log}
}

// Handle повторяет сверку. Ошибка возвращается только если задание не удалось
// переопубликовать: тогда сообщение остаётся в очереди.
func (h *RetryHandler) Handle(ctx context.Context, body []byte) error {
	const op = "reconciler.RetryHandler.Handle"
	log := h.log.With(slog.String("op", op))

	var msg models.ReconcileRetryMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error("failed to unmarshal retry message, dropped", sl.Err(err))
		return nil
	}
	log = log.With(
		slog.String("checkout_id", msg.CheckoutID),
		slog.String("user_id", msg.UserID),
		slog.Int("attempt", msg.Attempt),
	)

	out, err := h.poller.Poll(ctx, msg.CheckoutID, msg.UserID, TriggerRetry)
	switch {
	case err == nil:
		log.Info("retry reconciled", slog.String("state", string(out.State)))
		return nil
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrMisconfigured):
		log.Error("retry abandoned", sl.Err(err))
		return nil
	case msg.Attempt >= h.maxRetries:
		log.Error("retry attempts exhausted, manual reconciliation required", sl.Err(err))
		return nil
	}

	log.Warn("retry failed, rescheduling", sl.Err(err))
	msg.Attempt++
	if err := h.publisher.Publish(ctx, rabbitmq.QueueReconcileRetry, msg); err != nil {
		log.Error("failed to reschedule retry", sl.Err(err))
		return err
	}
	return nil
}
