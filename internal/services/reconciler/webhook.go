package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/metrics"
	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
)

// WebhookResult итог обработки вебхука.
type WebhookResult struct {
	EventType string
	Handled   bool
	// Unsigned запрос принят без проверки подписи, секрет не настроен.
	Unsigned bool
	Outcome  Outcome
}

// Webhooks принимает уведомления провайдера и передаёт их в Reconciler.
type Webhooks struct {
	rec    *Reconciler
	store  Store
	secret string
	log    *slog.Logger
}

// NewWebhooks создаёт обработчик вебхуков. Если secret пуст, используется
// секрет из настроек сайта; если не задан и он, подпись не проверяется.
func NewWebhooks(rec *Reconciler, store Store, secret string, log *slog.Logger) *Webhooks {
	return &Webhooks{rec: rec, store: store, secret: secret, log: log}
}

// Permissive сообщает, что секрет не задан в конфигурации.
func (w *Webhooks) Permissive() bool {
	return w.secret == ""
}

func (w *Webhooks) resolveSecret(ctx context.Context) (string, error) {
	if w.secret != "" {
		return w.secret, nil
	}
	settings, err := w.store.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	return settings.WebhookSecret, nil
}

// Handle проверяет подпись, разбирает тело и применяет событие.
//
// Возвращает models.ErrInvalidSignature при неверной подписи и
// paymentprovider.ErrMalformedPayload при повреждённом теле; в обоих
// случаях в журнал пишется webhook_error.
func (w *Webhooks) Handle(ctx context.Context, body []byte, signature string) (WebhookResult, error) {
	const op = "reconciler.Webhooks.Handle"
	log := w.log.With(slog.String("op", op))

	var res WebhookResult

	secret, err := w.resolveSecret(ctx)
	if err != nil {
		metrics.WebhookTotal.WithLabelValues(metrics.WebhookError).Inc()
		log.Error("failed to load webhook secret", sl.Err(err))
		return res, fmt.Errorf("%s: %w", op, err)
	}

	if secret == "" {
		res.Unsigned = true
		metrics.WebhookTotal.WithLabelValues(metrics.WebhookUnsigned).Inc()
		log.Warn("webhook accepted without signature check, secret is not configured")
	} else if err := paymentprovider.VerifySignature(secret, body, signature); err != nil {
		metrics.WebhookTotal.WithLabelValues(metrics.WebhookInvalidSignature).Inc()
		log.Warn("webhook rejected", sl.Err(err))
		w.recordError(ctx, log, body)
		return res, fmt.Errorf("%s: %w", op, err)
	}

	ev, err := paymentprovider.ParseWebhook(body)
	if err != nil {
		metrics.WebhookTotal.WithLabelValues(metrics.WebhookMalformed).Inc()
		log.Warn("malformed webhook", sl.Err(err))
		w.recordError(ctx, log, body)
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res.EventType = ev.Type
	log = log.With(slog.String("event_type", ev.Type), slog.String("checkout_id", ev.CheckoutID))

	state, handled := ClassifyEvent(ev.Type)
	if !handled {
		metrics.WebhookTotal.WithLabelValues(metrics.WebhookUnhandled).Inc()
		log.Info("unhandled webhook event type")
		w.recordReceived(ctx, log, ev, body)
		return res, nil
	}
	res.Handled = true

	if ev.CheckoutID == "" {
		metrics.WebhookTotal.WithLabelValues(metrics.WebhookMalformed).Inc()
		log.Warn("webhook without checkout id")
		w.recordError(ctx, log, body)
		return res, fmt.Errorf("%s: %w: checkout id is missing", op, paymentprovider.ErrMalformedPayload)
	}

	out, err := w.rec.Reconcile(ctx, Observation{
		CheckoutID: ev.CheckoutID,
		UserID:     ev.UserID,
		State:      state,
		Amount:     ev.Amount.Ptr(),
		Currency:   ev.Currency,
		RawData:    string(body),
		Trigger:    TriggerWebhook,
	})
	res.Outcome = out
	if err != nil {
		metrics.WebhookTotal.WithLabelValues(metrics.WebhookError).Inc()
		return res, fmt.Errorf("%s: %w", op, err)
	}
	metrics.WebhookTotal.WithLabelValues(metrics.WebhookProcessed).Inc()
	return res, nil
}

func (w *Webhooks) recordError(ctx context.Context, log *slog.Logger, body []byte) {
	_, err := w.store.RecordEvent(ctx, models.PaymentEvent{
		EventType: models.EventWebhookError,
		RawData:   string(body),
		Processed: false,
	})
	if err != nil {
		log.Error("failed to record webhook error", sl.Err(err))
	}
}

func (w *Webhooks) recordReceived(ctx context.Context, log *slog.Logger, ev *paymentprovider.WebhookEvent, body []byte) {
	e := models.PaymentEvent{
		EventType: models.EventWebhookReceived,
		Amount:    ev.Amount.Ptr(),
		Currency:  ev.Currency,
		RawData:   string(body),
		Processed: false,
	}
	if ev.CheckoutID != "" {
		e.PaymentID = &ev.CheckoutID
	}
	if ev.UserID != "" {
		e.UserID = &ev.UserID
	}
	if _, err := w.store.RecordEvent(ctx, e); err != nil {
		log.Error("failed to record webhook", sl.Err(err))
	}
}

// IsClientError сообщает, что ошибку вызвал сам запрос, а не сервер.
func IsClientError(err error) bool {
	return errors.Is(err, models.ErrInvalidSignature) || errors.Is(err, paymentprovider.ErrMalformedPayload)
}
