// Package paymentprovider клиент Bitvora Commerce API и разбор его вебхуков.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/satsclub/internal/config"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// maxErrorBody сколько байт тела ошибки сохраняется в UpstreamError.
const maxErrorBody = 2048

// UpstreamError провайдер ответил не 2xx.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("payment provider responded %d: %s", e.StatusCode, e.Body)
}

// Unwrap позволяет сравнивать с models.ErrUpstream.
func (e *UpstreamError) Unwrap() error {
	return models.ErrUpstream
}

// Client клиент Bitvora Commerce API.
type Client struct {
	host          string
	apiKey        string
	productID     string
	redirectURL   string
	expiryMinutes int
	httpClient    *http.Client
}

// NewClient создаёт клиент. Таймаут каждого запроса берётся из конфига.
func NewClient(cfg config.Bitvora) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		host:          strings.TrimRight(cfg.Host, "/"),
		apiKey:        cfg.APIKey,
		productID:     cfg.ProductID,
		redirectURL:   cfg.RedirectURL,
		expiryMinutes: cfg.ExpiryMinutes,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Configured сообщает, заданы ли адрес и ключ API.
func (c *Client) Configured() bool {
	return c.host != "" && c.apiKey != ""
}

// CreateCheckout создаёт checkout подписки для пользователя и возвращает ответ провайдера как есть.
func (c *Client) CreateCheckout(ctx context.Context, userID string) (json.RawMessage, error) {
	const op = "paymentprovider.CreateCheckout"
	if !c.Configured() || c.productID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrMisconfigured)
	}

	body := CreateCheckoutRequest{
		ProductID:     c.productID,
		RedirectURL:   c.redirectURL,
		Type:          CheckoutType,
		Metadata:      map[string]string{"user_id": userID},
		ExpiryMinutes: c.expiryMinutes,
	}
	raw, err := c.do(ctx, http.MethodPost, "/checkout", body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrCheckoutCreationFailed, err)
	}
	return raw, nil
}

// Subscribe передаёт провайдеру wallet-connect строку для оплаты checkout.
// Запрос изменяет состояние платежа и не повторяется.
func (c *Client) Subscribe(ctx context.Context, checkoutID, walletConnect string) (json.RawMessage, error) {
	const op = "paymentprovider.Subscribe"
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrMisconfigured)
	}

	raw, err := c.do(ctx, http.MethodPost, "/checkout/"+url.PathEscape(checkoutID)+"/subscribe",
		SubscribeRequest{WalletConnect: walletConnect})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return raw, nil
}

// GetCheckout возвращает текущее состояние checkout.
// Ответ 404 провайдера дополнительно оборачивает models.ErrNotFound.
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	const op = "paymentprovider.GetCheckout"
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrMisconfigured)
	}

	raw, err := c.do(ctx, http.MethodGet, "/checkout/"+url.PathEscape(checkoutID), nil)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: checkout %s: %w: %w", op, checkoutID, models.ErrNotFound, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var env checkoutEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w: %w", op, models.ErrUpstream, err)
	}
	co := &Checkout{Raw: env.Data}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, co); err != nil {
			return nil, fmt.Errorf("%s: decode data: %w: %w", op, models.ErrUpstream, err)
		}
	}
	if co.ID == "" {
		co.ID = checkoutID
	}
	return co, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", models.ErrUpstream, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: response is not JSON", models.ErrUpstream)
	}
	return raw, nil
}
