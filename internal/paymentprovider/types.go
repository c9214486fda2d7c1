package paymentprovider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// CheckoutType тип checkout для подписки.
const CheckoutType = "subscription"

// CreateCheckoutRequest тело POST /checkout.
type CreateCheckoutRequest struct {
	ProductID     string            `json:"product_id"`
	RedirectURL   string            `json:"redirect_url"`
	Type          string            `json:"type"`
	Metadata      map[string]string `json:"metadata"`
	ExpiryMinutes int               `json:"expiry_minutes"`
}

// SubscribeRequest тело POST /checkout/{id}/subscribe.
type SubscribeRequest struct {
	WalletConnect string `json:"wallet_connect"`
}

// Metadata пользовательские данные, переданные при создании checkout.
type Metadata struct {
	UserID string `json:"user_id"`
}

// Amount сумма в sats. Провайдер присылает её числом или строкой.
type Amount struct {
	Value int64
	Valid bool
}

// UnmarshalJSON принимает число, строку с числом или null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*a = Amount{}
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid amount %q", s)
	}
	*a = Amount{Value: int64(math.Round(f)), Valid: true}
	return nil
}

// MarshalJSON пишет число или null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(a.Value, 10)), nil
}

// Ptr возвращает значение или nil, если сумма не передана.
func (a Amount) Ptr() *int64 {
	if !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

// Checkout состояние checkout-сессии у провайдера.
type Checkout struct {
	ID       string   `json:"id"`
	State    string   `json:"state"`
	Amount   Amount   `json:"amount"`
	Currency string   `json:"currency"`
	Metadata Metadata `json:"metadata"`
	// Raw исходный объект data, отдаётся клиенту без изменений.
	Raw json.RawMessage `json:"-"`
}

// checkoutEnvelope ответ GET /checkout/{id}.
type checkoutEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// WebhookEvent разобранный вебхук.
type WebhookEvent struct {
	Type       string
	CheckoutID string
	UserID     string
	Amount     Amount
	Currency   string
	// Data объект платежа из data, checkout или корня тела.
	Data json.RawMessage
}

type webhookPayload struct {
	Type      string          `json:"type"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Checkout  json.RawMessage `json:"checkout"`
}

type webhookData struct {
	ID         string   `json:"id"`
	CheckoutID string   `json:"checkout_id"`
	Amount     Amount   `json:"amount"`
	Currency   string   `json:"currency"`
	Metadata   Metadata `json:"metadata"`
}
