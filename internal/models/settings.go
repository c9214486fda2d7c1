package models

import (
	"strings"
	"time"
)

// BillingPeriod период продления подписки.
type BillingPeriod string

const (
	PeriodDaily     BillingPeriod = "DAILY"
	PeriodWeekly    BillingPeriod = "WEEKLY"
	PeriodMonthly   BillingPeriod = "MONTHLY"
	PeriodQuarterly BillingPeriod = "QUARTERLY"
	PeriodAnnually  BillingPeriod = "ANNUALLY"
)

// DefaultPeriodLength длительность периода, если он не задан или неизвестен.
const DefaultPeriodLength = 30 * 24 * time.Hour

// Length возвращает длительность оплаченного периода.
func (p BillingPeriod) Length() time.Duration {
	const day = 24 * time.Hour
	switch BillingPeriod(strings.ToUpper(string(p))) {
	case PeriodDaily:
		return day
	case PeriodWeekly:
		return 7 * day
	case PeriodMonthly:
		return 30 * day
	case PeriodQuarterly:
		return 90 * day
	case PeriodAnnually:
		return 365 * day
	default:
		return DefaultPeriodLength
	}
}

// ExpiryFrom возвращает момент окончания периода, начатого в from.
func (p BillingPeriod) ExpiryFrom(from time.Time) time.Time {
	return from.Add(p.Length())
}

// Valid сообщает, входит ли значение в перечень поддерживаемых периодов.
func (p BillingPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodAnnually:
		return true
	}
	return false
}

// Settings единственная запись с настройками сайта.
type Settings struct {
	SiteName           string        `json:"siteName"`
	Description        string        `json:"description"`
	SubscriptionPrice  float64       `json:"subscriptionPrice"`
	Currency           string        `json:"currency"`
	SubscriptionPeriod BillingPeriod `json:"subscriptionPeriod"`
	PaymentProvider    string        `json:"paymentProvider"`
	WebhookSecret      string        `json:"webhookSecret,omitempty"`
	ProfilePicture     string        `json:"profilePicture,omitempty"`
	BannerPicture      string        `json:"bannerPicture,omitempty"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// DefaultSettings значения, с которыми создаётся запись настроек при первом чтении.
func DefaultSettings() Settings {
	return Settings{
		SiteName:           "SatsClub",
		Description:        "Premium content powered by Bitcoin subscriptions",
		SubscriptionPrice:  10.00,
		Currency:           "USD",
		SubscriptionPeriod: PeriodMonthly,
		PaymentProvider:    "bitvora",
	}
}

// Public возвращает копию настроек без секрета вебхука.
func (s Settings) Public() Settings {
	s.WebhookSecret = ""
	return s
}
