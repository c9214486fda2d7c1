// Package checkout создание checkout у платёжного провайдера, передача
// wallet-connect и проверка статуса оплаты клиентом.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/satsclub/internal/cache"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/metrics"
	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
	"github.com/magabrotheeeer/satsclub/internal/services/reconciler"
)

// StatusTTL время хранения конечного статуса checkout в кеше.
const StatusTTL = 24 * time.Hour

// Provider операции провайдера, инициируемые пользователем.
type Provider interface {
	// CreateCheckout создаёт checkout для пользователя и возвращает ответ провайдера без изменений.
	CreateCheckout(ctx context.Context, userID string) (json.RawMessage, error)

	// Subscribe передаёт строку wallet-connect для оплаты checkout.
	Subscribe(ctx context.Context, checkoutID, walletConnect string) (json.RawMessage, error)
}

// Reconciler сверка checkout по его текущему статусу у провайдера.
type Reconciler interface {
	ReconcileCheckout(ctx context.Context, checkoutID, userID string, trigger reconciler.Trigger) (reconciler.Outcome, *paymentprovider.Checkout, error)
}

// Cache кеш конечных статусов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Status ответ клиенту на запрос статуса оплаты.
type Status struct {
	CheckoutID string          `json:"checkoutId"`
	State      string          `json:"state"`
	Paid       bool            `json:"paid"`
	Data       json.RawMessage `json:"data"`
}

// cachedStatus запись кеша: статус и владелец checkout.
type cachedStatus struct {
	Status
	OwnerID string `json:"ownerId"`
}

// Service операции оплаты подписки со стороны пользователя.
type Service struct {
	provider   Provider
	reconciler Reconciler
	cache      Cache
	log        *slog.Logger
}

// NewService создаёт Service. cache может быть nil.
func NewService(provider Provider, rec Reconciler, cache Cache, log *slog.Logger) *Service {
	return &Service{
		provider:   provider,
		reconciler: rec,
		cache:      cache,
		log:        log,
	}
}

// Create создаёт checkout для аутентифицированного пользователя.
func (s *Service) Create(ctx context.Context, userID string) (json.RawMessage, error) {
	const op = "checkout.Create"
	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}

	data, err := s.provider.CreateCheckout(ctx, userID)
	if err != nil {
		metrics.CheckoutTotal.WithLabelValues(metrics.ResultError).Inc()
		s.log.Error("failed to create checkout", slog.String("op", op), slog.String("user_id", userID), sl.Err(err))
		if errors.Is(err, models.ErrMisconfigured) || errors.Is(err, models.ErrCheckoutCreationFailed) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrCheckoutCreationFailed, err)
	}
	metrics.CheckoutTotal.WithLabelValues(metrics.ResultOK).Inc()
	s.log.Info("checkout created", slog.String("op", op), slog.String("user_id", userID))
	return data, nil
}

// Process передаёт wallet-connect провайдеру. Повторно не выполняется:
// провайдер может списать средства дважды.
func (s *Service) Process(ctx context.Context, userID, checkoutID, walletConnect string) (json.RawMessage, error) {
	const op = "checkout.Process"
	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	if strings.TrimSpace(checkoutID) == "" || strings.TrimSpace(walletConnect) == "" {
		return nil, fmt.Errorf("%s: %w: checkoutId and walletConnect are required", op, models.ErrInvalidInput)
	}

	data, err := s.provider.Subscribe(ctx, checkoutID, walletConnect)
	if err != nil {
		s.log.Error("failed to process subscription",
			slog.String("op", op),
			slog.String("user_id", userID),
			slog.String("checkout_id", checkoutID),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// Status запрашивает статус checkout и применяет его через сверку.
// Конечные статусы с записанной подпиской берутся из кеша.
// Чужой checkout (по metadata.user_id провайдера) считается не найденным.
func (s *Service) Status(ctx context.Context, userID, checkoutID string) (*Status, error) {
	const op = "checkout.Status"
	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	if strings.TrimSpace(checkoutID) == "" {
		return nil, fmt.Errorf("%s: %w: checkoutId is required", op, models.ErrInvalidInput)
	}
	log := s.log.With(slog.String("op", op), slog.String("checkout_id", checkoutID))
	key := cache.CheckoutKey(checkoutID)

	if s.cache != nil {
		var cached cachedStatus
		found, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			log.Warn("checkout status cache read failed", sl.Err(err))
		case found && cached.OwnerID == userID:
			return &cached.Status, nil
		case found && cached.OwnerID != "":
			log.Warn("status of another user's checkout requested", slog.String("user_id", userID))
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
	}

	out, co, err := s.reconciler.ReconcileCheckout(ctx, checkoutID, userID, reconciler.TriggerPoll)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	owner := co.Metadata.UserID
	if owner == "" {
		owner = userID
	}
	st := &Status{
		CheckoutID: checkoutID,
		State:      co.State,
		Paid:       out.Paid,
		Data:       co.Raw,
	}
	if out.State.Terminal() && out.EntitlementErr == nil && s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedStatus{Status: *st, OwnerID: owner}, StatusTTL); err != nil {
			log.Warn("checkout status cache write failed", sl.Err(err))
		}
	}
	if owner != userID {
		log.Warn("status of another user's checkout requested", slog.String("user_id", userID))
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return st, nil
}
