package paymentprovider

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

const testWebhookBody = `{"type":"payment.success","data":{"id":"ckt_123","amount":50000,"currency":"BTC","metadata":{"user_id":"u1"}}}`

func TestVerifySignature_Valid(t *testing.T) {
	body := []byte(testWebhookBody)
	sig := Sign("whsec", body)

	assert.NoError(t, VerifySignature("whsec", body, sig))
	assert.NoError(t, VerifySignature("whsec", body, sig[len("sha256="):]), "prefix is optional")
}

func TestVerifySignature_AnySingleByteMutationRejected(t *testing.T) {
	body := []byte(testWebhookBody)
	sig := Sign("whsec", body)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		err := VerifySignature("whsec", mutated, sig)
		require.ErrorIsf(t, err, models.ErrInvalidSignature, "mutation at byte %d accepted", i)
	}
}

func TestVerifySignature_Rejections(t *testing.T) {
	body := []byte(testWebhookBody)
	tests := []struct {
		name string
		sig  string
	}{
		{name: "missing", sig: ""},
		{name: "wrong secret", sig: Sign("other", body)},
		{name: "not hex", sig: "sha256=zzzz"},
		{name: "truncated", sig: Sign("whsec", body)[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, VerifySignature("whsec", body, tt.sig), models.ErrInvalidSignature)
		})
	}
}

func TestSignatureFromHeader(t *testing.T) {
	h := http.Header{}
	assert.Empty(t, SignatureFromHeader(h))

	h.Set("x-webhook-signature", "sha256=alt")
	assert.Equal(t, "sha256=alt", SignatureFromHeader(h))

	h.Set("x-bitvora-signature", "sha256=main")
	assert.Equal(t, "sha256=main", SignatureFromHeader(h))
}

func TestParseWebhook(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantType   string
		wantID     string
		wantUser   string
		wantAmount *int64
		wantCurr   string
	}{
		{
			name:       "type and data",
			body:       testWebhookBody,
			wantType:   "payment.success",
			wantID:     "ckt_123",
			wantUser:   "u1",
			wantAmount: ptr(50000),
			wantCurr:   "BTC",
		},
		{
			name:     "event_type and checkout with checkout_id",
			body:     `{"event_type":"checkout.paid","checkout":{"checkout_id":"ckt_9","amount":"10","metadata":{"user_id":"u2"}}}`,
			wantType: "checkout.paid", wantID: "ckt_9", wantUser: "u2", wantAmount: ptr(10),
		},
		{
			name:     "root payload",
			body:     `{"type":"payment.failed","id":"ckt_7"}`,
			wantType: "payment.failed", wantID: "ckt_7",
		},
		{
			name:     "type wins over event_type",
			body:     `{"type":"payment.cancelled","event_type":"payment.success","data":{"id":"x"}}`,
			wantType: "payment.cancelled", wantID: "x",
		},
		{
			name: "no type",
			body: `{"data":{"id":"x"}}`, wantID: "x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseWebhook([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ev.Type)
			assert.Equal(t, tt.wantID, ev.CheckoutID)
			assert.Equal(t, tt.wantUser, ev.UserID)
			assert.Equal(t, tt.wantAmount, ev.Amount.Ptr())
			assert.Equal(t, tt.wantCurr, ev.Currency)
			assert.NotEmpty(t, ev.Data)
		})
	}
}

func TestParseWebhook_Malformed(t *testing.T) {
	for _, body := range []string{"", "not json", "[1,2]", `{"type":`, `{"data":{"amount":"abc"}}`} {
		_, err := ParseWebhook([]byte(body))
		assert.ErrorIsf(t, err, ErrMalformedPayload, "body %q", body)
	}
}
