package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/magabrotheeeer/satsclub/internal/metrics"
	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

const paidBody = `{"type":"payment.success","data":{"id":"ckt_123","amount":50000,"currency":"BTC","metadata":{"user_id":"u1"}}}`

func newWebhooks(store *memStore, secret string) (*Webhooks, *publisherRecorder) {
	pub := &publisherRecorder{}
	rec := New(store, nil, pub, newNoopLogger())
	return NewWebhooks(rec, store, secret, newNoopLogger()), pub
}

func TestWebhooks_SignedSettlement(t *testing.T) {
	store := newMemStore(newUser("u1"))
	store.settings.SubscriptionPeriod = models.PeriodMonthly
	wh, _ := newWebhooks(store, testSecret)
	body := []byte(paidBody)

	res, err := wh.Handle(context.Background(), body, paymentprovider.Sign(testSecret, body))
	require.NoError(t, err)
	assert.True(t, res.Handled)
	assert.False(t, res.Unsigned)
	assert.Equal(t, "payment.success", res.EventType)
	assert.True(t, res.Outcome.Paid)
	assert.True(t, res.Outcome.EventRecorded)

	events := store.eventsOfType(models.EventPaymentReceived)
	require.Len(t, events, 1)
	assert.Equal(t, "ckt_123", *events[0].PaymentID)
	assert.Equal(t, int64(50000), *events[0].Amount)
	assert.Equal(t, paidBody, events[0].RawData)

	u := store.user("u1")
	require.NotNil(t, u.SubscriptionEnds)
	assert.Equal(t, events[0].CreatedAt.Add(30*24*time.Hour), *u.SubscriptionEnds)
	assert.Equal(t, models.RoleSubscriber, u.Role)
}

func TestWebhooks_RedeliveryAfterPoll(t *testing.T) {
	store := newMemStore(newUser("u1"))
	wh, pub := newWebhooks(store, testSecret)
	ctx := context.Background()

	polled, err := wh.rec.Reconcile(ctx, settledObservation(TriggerPoll))
	require.NoError(t, err)

	body := []byte(paidBody)
	for i := 0; i < 3; i++ {
		res, err := wh.Handle(ctx, body, paymentprovider.Sign(testSecret, body))
		require.NoError(t, err)
		assert.False(t, res.Outcome.EventRecorded)
		assert.Equal(t, polled.SubscriptionEnds, res.Outcome.SubscriptionEnds)
	}

	assert.Len(t, store.eventsOfType(models.EventPaymentReceived), 1)
	assert.Equal(t, polled.SubscriptionEnds, *store.user("u1").SubscriptionEnds)
	assert.Len(t, pub.msgs, 1)
}

func TestWebhooks_SettlementWithoutUserIsRecorded(t *testing.T) {
	tests := []struct {
		name       string
		checkoutID string
		body       string
	}{
		{
			name:       "no metadata",
			checkoutID: "ckt_999",
			body:       `{"type":"payment.success","data":{"id":"ckt_999","amount":50000,"currency":"BTC"}}`,
		},
		{
			name:       "unknown user",
			checkoutID: "ckt_998",
			body:       `{"type":"payment.success","data":{"id":"ckt_998","amount":50000,"currency":"BTC","metadata":{"user_id":"ghost"}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(newUser("u1"))
			wh, _ := newWebhooks(store, testSecret)
			body := []byte(tt.body)

			res, err := wh.Handle(context.Background(), body, paymentprovider.Sign(testSecret, body))

			require.NoError(t, err)
			assert.True(t, res.Outcome.Paid)
			assert.True(t, res.Outcome.EventRecorded)
			assert.ErrorIs(t, res.Outcome.EntitlementErr, models.ErrNotFound)

			events := store.eventsOfType(models.EventPaymentReceived)
			require.Len(t, events, 1)
			assert.Equal(t, tt.checkoutID, *events[0].PaymentID)
			assert.Nil(t, events[0].UserID)
			assert.Equal(t, tt.body, events[0].RawData)
		})
	}
}

func TestWebhooks_Rejections(t *testing.T) {
	body := []byte(paidBody)
	tests := []struct {
		name      string
		body      []byte
		signature string
		wantErr   error
	}{
		{"missing signature", body, "", models.ErrInvalidSignature},
		{"wrong secret", body, paymentprovider.Sign("other", body), models.ErrInvalidSignature},
		{"tampered body", []byte(paidBody + " "), paymentprovider.Sign(testSecret, body), models.ErrInvalidSignature},
		{"garbage signature", body, "sha256=zz", models.ErrInvalidSignature},
		{"malformed json", []byte(`{"type":`), paymentprovider.Sign(testSecret, []byte(`{"type":`)), paymentprovider.ErrMalformedPayload},
		{"not an object", []byte(`[1,2]`), paymentprovider.Sign(testSecret, []byte(`[1,2]`)), paymentprovider.ErrMalformedPayload},
		{
			"handled type without checkout id",
			[]byte(`{"type":"payment.success","data":{"amount":1}}`),
			paymentprovider.Sign(testSecret, []byte(`{"type":"payment.success","data":{"amount":1}}`)),
			paymentprovider.ErrMalformedPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(newUser("u1"))
			wh, pub := newWebhooks(store, testSecret)

			_, err := wh.Handle(context.Background(), tt.body, tt.signature)

			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsClientError(err))
			errs := store.eventsOfType(models.EventWebhookError)
			require.Len(t, errs, 1)
			assert.Equal(t, string(tt.body), errs[0].RawData)
			assert.False(t, errs[0].Processed)

			assert.Empty(t, store.eventsOfType(models.EventPaymentReceived))
			assert.Nil(t, store.user("u1").SubscriptionEnds)
			assert.Empty(t, pub.msgs)
		})
	}
}

func TestWebhooks_PermissiveWithoutSecret(t *testing.T) {
	store := newMemStore(newUser("u1"))
	wh, _ := newWebhooks(store, "")
	require.True(t, wh.Permissive())
	before := testutil.ToFloat64(metrics.WebhookTotal.WithLabelValues(metrics.WebhookUnsigned))

	res, err := wh.Handle(context.Background(), []byte(paidBody), "")

	require.NoError(t, err)
	assert.True(t, res.Unsigned)
	assert.True(t, res.Outcome.Paid)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.WebhookTotal.WithLabelValues(metrics.WebhookUnsigned)))
}

func TestWebhooks_SecretFromSettings(t *testing.T) {
	store := newMemStore(newUser("u1"))
	store.settings.WebhookSecret = "from-settings"
	wh, _ := newWebhooks(store, "")
	body := []byte(paidBody)

	_, err := wh.Handle(context.Background(), body, "")
	require.ErrorIs(t, err, models.ErrInvalidSignature)

	res, err := wh.Handle(context.Background(), body, paymentprovider.Sign("from-settings", body))
	require.NoError(t, err)
	assert.False(t, res.Unsigned)
	assert.True(t, res.Outcome.Paid)
}

func TestWebhooks_ConfigSecretWinsOverSettings(t *testing.T) {
	store := newMemStore(newUser("u1"))
	store.settings.WebhookSecret = "from-settings"
	wh, _ := newWebhooks(store, testSecret)
	body := []byte(paidBody)

	_, err := wh.Handle(context.Background(), body, paymentprovider.Sign("from-settings", body))
	assert.ErrorIs(t, err, models.ErrInvalidSignature)
}

func TestWebhooks_UnhandledType(t *testing.T) {
	store := newMemStore(newUser("u1"))
	wh, _ := newWebhooks(store, testSecret)
	body := []byte(`{"type":"checkout.created","data":{"id":"ckt_5","metadata":{"user_id":"u1"}}}`)

	res, err := wh.Handle(context.Background(), body, paymentprovider.Sign(testSecret, body))

	require.NoError(t, err)
	assert.False(t, res.Handled)
	received := store.eventsOfType(models.EventWebhookReceived)
	require.Len(t, received, 1)
	assert.False(t, received[0].Processed)
	assert.Equal(t, "ckt_5", *received[0].PaymentID)
	assert.Nil(t, store.user("u1").SubscriptionEnds)
}

func TestWebhooks_FailureEvent(t *testing.T) {
	store := newMemStore(newUser("u1"))
	wh, _ := newWebhooks(store, testSecret)
	body := []byte(`{"event_type":"payment.failed","checkout":{"checkout_id":"ckt_7","metadata":{"user_id":"u1"}}}`)

	res, err := wh.Handle(context.Background(), body, paymentprovider.Sign(testSecret, body))

	require.NoError(t, err)
	assert.Equal(t, StateFailed, res.Outcome.State)
	assert.False(t, res.Outcome.Paid)
	failed := store.eventsOfType(models.EventPaymentFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "ckt_7", *failed[0].PaymentID)
	assert.Nil(t, store.user("u1").SubscriptionEnds)
	assert.Equal(t, models.RoleGuest, store.user("u1").Role)
}

func TestWebhooks_EntitlementFailureAcknowledged(t *testing.T) {
	store := newMemStore(newUser("u1"))
	store.applyErr = errors.New("deadlock detected")
	wh, pub := newWebhooks(store, testSecret)
	body := []byte(paidBody)

	res, err := wh.Handle(context.Background(), body, paymentprovider.Sign(testSecret, body))

	require.NoError(t, err)
	assert.True(t, res.Outcome.Paid)
	assert.ErrorIs(t, res.Outcome.EntitlementErr, models.ErrPersistence)
	assert.Len(t, pub.msgs, 1)
}

func TestWebhooks_SettingsUnavailable(t *testing.T) {
	store := new(StoreMock)
	store.On("GetSettings", mock.Anything).Return(nil, models.ErrPersistence)
	rec := New(store, nil, nil, newNoopLogger())
	wh := NewWebhooks(rec, store, "", newNoopLogger())

	_, err := wh.Handle(context.Background(), []byte(paidBody), "")

	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.False(t, IsClientError(err))
	store.AssertNotCalled(t, "RecordEvent", mock.Anything, mock.Anything)
}
