package models

import "time"

// Типы записей журнала платёжных событий.
const (
	EventPaymentReceived = "payment_received"
	EventPaymentFailed   = "payment_failed"
	EventWebhookError    = "webhook_error"
	EventWebhookReceived = "webhook_received"
)

// DefaultCurrency собственная валюта платёжного провайдера.
const DefaultCurrency = "BTC"

// PaymentEvent запись журнала платежей. Журнал только дополняется.
type PaymentEvent struct {
	ID        int64     `json:"id"`
	EventType string    `json:"eventType"`
	Amount    *int64    `json:"amount,omitempty"` // в минимальных единицах (sats)
	Currency  string    `json:"currency"`
	PaymentID *string   `json:"paymentId,omitempty"`
	UserID    *string   `json:"userId,omitempty"`
	RawData   string    `json:"rawData"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Settlement данные подтверждённой оплаты, применяемые к хранилищу атомарно.
type Settlement struct {
	PaymentID  string
	UserID     string
	Amount     int64
	Currency   string
	RawData    string
	Period     BillingPeriod
	ObservedAt time.Time
}

// SettlementResult итог применения оплаты.
type SettlementResult struct {
	EventID          int64
	EventCreated     bool      // false, если запись payment_received уже была
	SettledAt        time.Time // момент первой фиксации оплаты
	SubscriptionEnds time.Time
	UserUpdated      bool // false, если у пользователя уже более поздний срок
	UserFound        bool // false, если оплата записана без пользователя
}
