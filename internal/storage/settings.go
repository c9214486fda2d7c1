package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

// GetSettings возвращает настройки, создавая запись со значениями по умолчанию при первом чтении.
// Создание идемпотентно при конкурентных вызовах.
func (s *Storage) GetSettings(ctx context.Context) (*models.Settings, error) {
	const op = "storage.GetSettings"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	d := models.DefaultSettings()
	_, err := s.DB.ExecContext(ctx, `INSERT INTO settings
		(id, site_name, description, subscription_price, currency, subscription_period, payment_provider)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		d.SiteName, d.Description, d.SubscriptionPrice, d.Currency, string(d.SubscriptionPeriod), d.PaymentProvider)
	if err != nil {
		return nil, mapErr(op, err)
	}

	st := &models.Settings{}
	var period string
	err = s.DB.QueryRowContext(ctx, `SELECT site_name, description, subscription_price, currency,
			subscription_period, payment_provider, webhook_secret, profile_picture, banner_picture, updated_at
		FROM settings WHERE id = 1`).
		Scan(&st.SiteName, &st.Description, &st.SubscriptionPrice, &st.Currency, &period,
			&st.PaymentProvider, &st.WebhookSecret, &st.ProfilePicture, &st.BannerPicture, &st.UpdatedAt)
	if err != nil {
		return nil, mapErr(op, err)
	}
	st.SubscriptionPeriod = models.BillingPeriod(period)
	return st, nil
}

// UpdateSettings полностью перезаписывает настройки.
func (s *Storage) UpdateSettings(ctx context.Context, st models.Settings) (*models.Settings, error) {
	const op = "storage.UpdateSettings"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO settings (id, site_name, description, subscription_price, currency,
			subscription_period, payment_provider, webhook_secret, profile_picture, banner_picture, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO UPDATE SET
			site_name = EXCLUDED.site_name,
			description = EXCLUDED.description,
			subscription_price = EXCLUDED.subscription_price,
			currency = EXCLUDED.currency,
			subscription_period = EXCLUDED.subscription_period,
			payment_provider = EXCLUDED.payment_provider,
			webhook_secret = EXCLUDED.webhook_secret,
			profile_picture = EXCLUDED.profile_picture,
			banner_picture = EXCLUDED.banner_picture,
			updated_at = now()
		RETURNING updated_at`
	err := s.DB.QueryRowContext(ctx, query,
		st.SiteName, st.Description, st.SubscriptionPrice, st.Currency, string(st.SubscriptionPeriod),
		st.PaymentProvider, st.WebhookSecret, st.ProfilePicture, st.BannerPicture).Scan(&st.UpdatedAt)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return &st, nil
}
