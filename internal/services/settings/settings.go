// Package settings настройки сайта с кешированием публичной части.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/satsclub/internal/cache"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// CacheTTL время жизни настроек в кеше.
const CacheTTL = 10 * time.Minute

// Repository хранилище единственной записи настроек.
type Repository interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, st models.Settings) (*models.Settings, error)
}

// Cache кеш настроек.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Patch изменения настроек, nil-поля не меняются.
type Patch struct {
	SiteName           *string  `json:"siteName" validate:"omitempty,min=1,max=200"`
	Description        *string  `json:"description" validate:"omitempty,max=2000"`
	SubscriptionPrice  *float64 `json:"subscriptionPrice" validate:"omitempty,gte=0"`
	Currency           *string  `json:"currency" validate:"omitempty,len=3"`
	SubscriptionPeriod *string  `json:"subscriptionPeriod"`
	PaymentProvider    *string  `json:"paymentProvider"`
	WebhookSecret      *string  `json:"webhookSecret"`
	ProfilePicture     *string  `json:"profilePicture"`
	BannerPicture      *string  `json:"bannerPicture"`
}

// Service чтение и изменение настроек.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService создаёт Service. cache может быть nil.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Public возвращает настройки без секрета вебхука.
func (s *Service) Public(ctx context.Context) (*models.Settings, error) {
	const op = "settings.Public"
	log := s.log.With(slog.String("op", op))

	if s.cache != nil {
		var cached models.Settings
		found, err := s.cache.Get(ctx, cache.KeySettings, &cached)
		if err != nil {
			log.Warn("settings cache read failed", sl.Err(err))
		} else if found {
			return &cached, nil
		}
	}

	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	public := st.Public()
	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.KeySettings, public, CacheTTL); err != nil {
			log.Warn("settings cache write failed", sl.Err(err))
		}
	}
	return &public, nil
}

// Update применяет изменения и сбрасывает кеш.
func (s *Service) Update(ctx context.Context, p Patch) (*models.Settings, error) {
	const op = "settings.Update"
	log := s.log.With(slog.String("op", op))

	current, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	next, err := apply(*current, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.UpdateSettings(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cache.KeySettings); err != nil {
			log.Error("settings cache invalidation failed", sl.Err(err))
		}
	}
	log.Info("settings updated", slog.String("period", string(updated.SubscriptionPeriod)))

	public := updated.Public()
	return &public, nil
}

func apply(st models.Settings, p Patch) (models.Settings, error) {
	if p.SiteName != nil {
		st.SiteName = strings.TrimSpace(*p.SiteName)
	}
	if p.Description != nil {
		st.Description = *p.Description
	}
	if p.SubscriptionPrice != nil {
		if *p.SubscriptionPrice < 0 {
			return st, fmt.Errorf("%w: subscriptionPrice must not be negative", models.ErrInvalidInput)
		}
		st.SubscriptionPrice = *p.SubscriptionPrice
	}
	if p.Currency != nil {
		st.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.SubscriptionPeriod != nil {
		period := models.BillingPeriod(strings.ToUpper(strings.TrimSpace(*p.SubscriptionPeriod)))
		if !period.Valid() {
			return st, fmt.Errorf("%w: unknown subscriptionPeriod %q", models.ErrInvalidInput, *p.SubscriptionPeriod)
		}
		st.SubscriptionPeriod = period
	}
	if p.PaymentProvider != nil {
		st.PaymentProvider = *p.PaymentProvider
	}
	if p.WebhookSecret != nil {
		st.WebhookSecret = *p.WebhookSecret
	}
	if p.ProfilePicture != nil {
		st.ProfilePicture = *p.ProfilePicture
	}
	if p.BannerPicture != nil {
		st.BannerPicture = *p.BannerPicture
	}
	if st.SiteName == "" {
		return st, fmt.Errorf("%w: siteName must not be empty", models.ErrInvalidInput)
	}
	return st, nil
}
