package models

import "time"

// ReconcileRetryMessage задание повторной сверки, когда подписку не удалось записать.
type ReconcileRetryMessage struct {
	CheckoutID string `json:"checkout_id"`
	UserID     string `json:"user_id"`
	Attempt    int    `json:"attempt"`
}

// SubscriptionActivatedMessage событие о новой зафиксированной оплате.
type SubscriptionActivatedMessage struct {
	UserID           string    `json:"user_id"`
	CheckoutID       string    `json:"checkout_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	SubscriptionEnds time.Time `json:"subscription_ends"`
}
