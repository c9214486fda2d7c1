package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/satsclub/internal/config"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// ErrStillPending попытки опроса исчерпаны, а checkout не перешёл в конечное состояние.
var ErrStillPending = errors.New("checkout is still pending")

// Poller повторяет сверку checkout до конечного состояния.
// Число попыток и общее время ограничены.
type Poller struct {
	rec *Reconciler
	cfg config.Polling
	log *slog.Logger
}

// NewPoller создаёт Poller. Нулевые значения cfg заменяются минимальными.
func NewPoller(rec *Reconciler, cfg config.Polling, log *slog.Logger) *Poller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Poller{rec: rec, cfg: cfg, log: log}
}

// Poll опрашивает провайдера, пока checkout не станет SETTLED или FAILED,
// а для SETTLED пока подписка не будет записана.
// Ошибки провайдера не прерывают опрос, отсутствие настроек прерывает сразу.
func (p *Poller) Poll(ctx context.Context, checkoutID, userID string, trigger Trigger) (Outcome, error) {
	const op = "reconciler.Poller.Poll"
	log := p.log.With(slog.String("op", op), slog.String("checkout_id", checkoutID))

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	var (
		last    Outcome
		lastErr error
	)
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		out, _, err := p.rec.ReconcileCheckout(ctx, checkoutID, userID, trigger)
		switch {
		case errors.Is(err, models.ErrMisconfigured):
			return out, fmt.Errorf("%s: %w", op, err)
		case err != nil:
			log.Warn("poll attempt failed", slog.Int("attempt", attempt), sl.Err(err))
			lastErr = err
		case out.State.Terminal() && out.EntitlementErr == nil:
			return out, nil
		case errors.Is(out.EntitlementErr, models.ErrNotFound):
			return out, fmt.Errorf("%s: %w", op, out.EntitlementErr)
		default:
			last, lastErr = out, out.EntitlementErr
		}

		if attempt == p.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return last, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-ticker.C:
		}
	}

	if lastErr != nil {
		return last, fmt.Errorf("%s: %w", op, lastErr)
	}
	return last, fmt.Errorf("%s: %w", op, ErrStillPending)
}
