package paymentprovider

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Заголовки, в которых провайдер передаёт подпись.
const (
	HeaderSignature    = "X-Bitvora-Signature"
	HeaderSignatureAlt = "X-Webhook-Signature"
)

const signaturePrefix = "sha256="

// ErrMalformedPayload тело вебхука не является JSON-объектом.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// SignatureFromHeader возвращает подпись из первого заполненного заголовка.
func SignatureFromHeader(h http.Header) string {
	if s := h.Get(HeaderSignature); s != "" {
		return s
	}
	return h.Get(HeaderSignatureAlt)
}

// Sign вычисляет подпись тела в формате sha256=<hex>.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature проверяет HMAC-SHA256 тела. Сравнение выполняется за постоянное время.
// При пустом secret проверка не выполняется, решение принимает вызывающий код.
func VerifySignature(secret string, body []byte, signature string) error {
	const op = "paymentprovider.VerifySignature"
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%s: missing signature: %w", op, models.ErrInvalidSignature)
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return fmt.Errorf("%s: bad encoding: %w", op, models.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidSignature)
	}
	return nil
}

// ParseWebhook разбирает тело вебхука.
//
// Тип события берётся из type или event_type, объект платежа из data, checkout
// или корня тела; идентификатор из id или checkout_id.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	const op = "paymentprovider.ParseWebhook"

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedPayload)
	}
	var p webhookPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedPayload, err)
	}

	ev := &WebhookEvent{Type: p.Type}
	if ev.Type == "" {
		ev.Type = p.EventType
	}

	switch {
	case isObject(p.Data):
		ev.Data = p.Data
	case isObject(p.Checkout):
		ev.Data = p.Checkout
	default:
		ev.Data = json.RawMessage(trimmed)
	}

	var d webhookData
	if err := json.Unmarshal(ev.Data, &d); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedPayload, err)
	}
	ev.CheckoutID = d.ID
	if ev.CheckoutID == "" {
		ev.CheckoutID = d.CheckoutID
	}
	ev.UserID = d.Metadata.UserID
	ev.Amount = d.Amount
	ev.Currency = d.Currency
	return ev, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
