// Package reconciler сводит наблюдения об оплате из опроса статуса и вебхуков
// к одному итоговому состоянию подписки.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/satsclub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/metrics"
	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
)

// Store хранилище подписок и журнала платежей.
type Store interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	ApplySettlement(ctx context.Context, st models.Settlement) (models.SettlementResult, error)
	RecordEvent(ctx context.Context, e models.PaymentEvent) (int64, error)
}

// Provider чтение состояния checkout у платёжного провайдера.
type Provider interface {
	GetCheckout(ctx context.Context, checkoutID string) (*paymentprovider.Checkout, error)
}

// Publisher публикация событий в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Observation наблюдаемое состояние одной попытки оплаты.
type Observation struct {
	CheckoutID string
	UserID     string
	State      State
	Amount     *int64
	Currency   string
	RawData    string
	Trigger    Trigger
}

// Outcome итог сверки.
type Outcome struct {
	State State
	// Paid оплата подтверждена провайдером, даже если подписку записать не удалось.
	Paid               bool
	EventRecorded      bool
	EntitlementApplied bool
	SubscriptionEnds   time.Time
	// EntitlementErr ошибка записи подписки после подтверждённой оплаты.
	EntitlementErr error
}

// Reconciler единая точка применения результата оплаты.
type Reconciler struct {
	store     Store
	provider  Provider
	publisher Publisher
	log       *slog.Logger
}

// New создаёт Reconciler. publisher может быть nil: события тогда не публикуются.
func New(store Store, provider Provider, publisher Publisher, log *slog.Logger) *Reconciler {
	return &Reconciler{
		store:     store,
		provider:  provider,
		publisher: publisher,
		log:       log,
	}
}

// ComputeExpiry момент окончания подписки, оплаченной в from.
func ComputeExpiry(from time.Time, p models.BillingPeriod) time.Time {
	return p.ExpiryFrom(from)
}

// Reconcile применяет наблюдение. Безопасен при повторных и конкурентных вызовах
// для одного checkout: запись payment_received создаётся не более одного раза,
// срок подписки не накапливается.
func (r *Reconciler) Reconcile(ctx context.Context, obs Observation) (Outcome, error) {
	const op = "reconciler.Reconcile"
	log := r.log.With(
		slog.String("op", op),
		slog.String("checkout_id", obs.CheckoutID),
		slog.String("user_id", obs.UserID),
		slog.String("trigger", string(obs.Trigger)),
	)

	if obs.CheckoutID == "" {
		return Outcome{}, fmt.Errorf("%s: %w: checkout id is required", op, models.ErrInvalidInput)
	}
	if obs.Currency == "" {
		obs.Currency = models.DefaultCurrency
	}

	var (
		out Outcome
		err error
	)
	switch obs.State {
	case StateSettled:
		out = r.settle(ctx, log, obs)
	case StateFailed:
		out, err = r.fail(ctx, obs)
	default:
		out = Outcome{State: StatePending}
	}

	result := metrics.ResultOK
	if err != nil || out.EntitlementErr != nil {
		result = metrics.ResultError
	}
	metrics.ReconcileTotal.WithLabelValues(string(obs.Trigger), strings.ToLower(string(out.State)), result).Inc()

	if err != nil {
		log.Error("failed to reconcile", sl.Err(err))
		return out, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *Reconciler) settle(ctx context.Context, log *slog.Logger, obs Observation) Outcome {
	out := Outcome{State: StateSettled, Paid: true}

	settings, err := r.store.GetSettings(ctx)
	if err != nil {
		r.entitlementFailed(ctx, log, obs, &out, err)
		return out
	}

	var amount int64
	if obs.Amount != nil {
		amount = *obs.Amount
	}
	res, err := r.store.ApplySettlement(ctx, models.Settlement{
		PaymentID: obs.CheckoutID,
		UserID:    obs.UserID,
		Amount:    amount,
		Currency:  obs.Currency,
		RawData:   obs.RawData,
		Period:    settings.SubscriptionPeriod,
	})
	if err != nil {
		r.entitlementFailed(ctx, log, obs, &out, err)
		return out
	}
	if !res.UserFound {
		out.EventRecorded = res.EventCreated
		r.entitlementFailed(ctx, log, obs, &out,
			fmt.Errorf("user %q for checkout %s: %w", obs.UserID, obs.CheckoutID, models.ErrNotFound))
		return out
	}

	out.EventRecorded = res.EventCreated
	out.EntitlementApplied = true
	out.SubscriptionEnds = res.SubscriptionEnds
	if !res.UserUpdated {
		log.Info("user already has a later expiry, left unchanged")
	}

	if res.EventCreated {
		log.Info("payment received, subscription activated", slog.Time("subscription_ends", res.SubscriptionEnds))
		r.publish(ctx, log, rabbitmq.QueueSubscriptionActivated, models.SubscriptionActivatedMessage{
			UserID:           obs.UserID,
			CheckoutID:       obs.CheckoutID,
			Amount:           amount,
			Currency:         obs.Currency,
			SubscriptionEnds: res.SubscriptionEnds,
		})
	}
	return out
}

// entitlementFailed фиксирует сбой записи подписки. Оплата при этом остаётся подтверждённой.
func (r *Reconciler) entitlementFailed(ctx context.Context, log *slog.Logger, obs Observation, out *Outcome, err error) {
	if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrInvalidInput) {
		err = fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}
	out.EntitlementErr = err
	metrics.EntitlementFailuresTotal.Inc()
	log.Error("payment settled but entitlement write failed", sl.Err(err))

	if obs.Trigger == TriggerRetry || errors.Is(err, models.ErrNotFound) {
		return
	}
	r.publish(ctx, log, rabbitmq.QueueReconcileRetry, models.ReconcileRetryMessage{
		CheckoutID: obs.CheckoutID,
		UserID:     obs.UserID,
		Attempt:    1,
	})
}

func (r *Reconciler) fail(ctx context.Context, obs Observation) (Outcome, error) {
	out := Outcome{State: StateFailed}

	e := models.PaymentEvent{
		EventType: models.EventPaymentFailed,
		Amount:    obs.Amount,
		Currency:  obs.Currency,
		PaymentID: &obs.CheckoutID,
		RawData:   obs.RawData,
		Processed: true,
	}
	if obs.UserID != "" {
		e.UserID = &obs.UserID
	}
	if _, err := r.store.RecordEvent(ctx, e); err != nil {
		return out, err
	}
	out.EventRecorded = true
	return out, nil
}

func (r *Reconciler) publish(ctx context.Context, log *slog.Logger, routingKey string, msg any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, routingKey, msg); err != nil {
		log.Error("failed to publish message", slog.String("routing_key", routingKey), sl.Err(err))
	}
}

// ReconcileCheckout запрашивает состояние checkout у провайдера и применяет его.
//
// Пользователь берётся из metadata checkout; userID вызывающего используется,
// только если провайдер его не вернул.
func (r *Reconciler) ReconcileCheckout(ctx context.Context, checkoutID, userID string, trigger Trigger) (Outcome, *paymentprovider.Checkout, error) {
	const op = "reconciler.ReconcileCheckout"

	co, err := r.provider.GetCheckout(ctx, checkoutID)
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	owner := co.Metadata.UserID
	if owner == "" {
		owner = userID
	} else if userID != "" && owner != userID {
		r.log.Warn("checkout belongs to another user",
			slog.String("op", op),
			slog.String("checkout_id", checkoutID),
			slog.String("caller_id", userID),
			slog.String("owner_id", owner),
		)
	}

	out, err := r.Reconcile(ctx, Observation{
		CheckoutID: checkoutID,
		UserID:     owner,
		State:      ClassifyStatus(co.State),
		Amount:     co.Amount.Ptr(),
		Currency:   co.Currency,
		RawData:    string(co.Raw),
		Trigger:    trigger,
	})
	if err != nil {
		return out, co, fmt.Errorf("%s: %w", op, err)
	}
	return out, co, nil
}
