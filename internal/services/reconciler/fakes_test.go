package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
	"github.com/stretchr/testify/mock"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func i64(v int64) *int64 { return &v }

type StoreMock struct{ mock.Mock }

func (m *StoreMock) GetSettings(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *StoreMock) ApplySettlement(ctx context.Context, st models.Settlement) (models.SettlementResult, error) {
	args := m.Called(ctx, st)
	return args.Get(0).(models.SettlementResult), args.Error(1)
}

func (m *StoreMock) RecordEvent(ctx context.Context, e models.PaymentEvent) (int64, error) {
	args := m.Called(ctx, e)
	return int64(args.Int(0)), args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) GetCheckout(ctx context.Context, checkoutID string) (*paymentprovider.Checkout, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Checkout), args.Error(1)
}

type published struct {
	routingKey string
	message    any
}

// publisherRecorder запоминает опубликованные сообщения.
type publisherRecorder struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *publisherRecorder) Publish(_ context.Context, routingKey string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{routingKey: routingKey, message: message})
	return p.err
}

func (p *publisherRecorder) byKey(routingKey string) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []any
	for _, m := range p.msgs {
		if m.routingKey == routingKey {
			out = append(out, m.message)
		}
	}
	return out
}

// memStore хранилище в памяти с той же семантикой ApplySettlement, что и PostgreSQL.
type memStore struct {
	mu       sync.Mutex
	settings models.Settings
	users    map[string]*models.User
	events   []models.PaymentEvent
	clock    time.Time
	applyErr error
}

func newMemStore(users ...*models.User) *memStore {
	s := &memStore{
		settings: models.DefaultSettings(),
		users:    make(map[string]*models.User),
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) GetSettings(_ context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := s.settings
	return &settings, nil
}

func (s *memStore) RecordEvent(_ context.Context, e models.PaymentEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.EventType == models.EventPaymentReceived {
		return 0, errors.New("use ApplySettlement")
	}
	e.ID = int64(len(s.events) + 1)
	e.CreatedAt = s.clock
	s.events = append(s.events, e)
	return e.ID, nil
}

func (s *memStore) ApplySettlement(_ context.Context, st models.Settlement) (models.SettlementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return models.SettlementResult{}, s.applyErr
	}
	u, ok := s.users[st.UserID]

	res := models.SettlementResult{UserFound: ok}
	found := false
	for i, e := range s.events {
		if e.EventType == models.EventPaymentReceived && e.PaymentID != nil && *e.PaymentID == st.PaymentID {
			res.EventID, res.SettledAt = e.ID, e.CreatedAt
			if ok && e.UserID == nil {
				userID := st.UserID
				s.events[i].UserID = &userID
				s.events[i].Processed = true
			}
			found = true
			break
		}
	}
	if !found {
		created := s.clock
		if !st.ObservedAt.IsZero() {
			created = st.ObservedAt
		}
		paymentID, amount := st.PaymentID, st.Amount
		e := models.PaymentEvent{
			ID:        int64(len(s.events) + 1),
			EventType: models.EventPaymentReceived,
			Amount:    &amount,
			Currency:  st.Currency,
			PaymentID: &paymentID,
			RawData:   st.RawData,
			Processed: ok,
			CreatedAt: created,
		}
		if ok {
			userID := st.UserID
			e.UserID = &userID
		}
		s.events = append(s.events, e)
		res.EventID, res.SettledAt, res.EventCreated = e.ID, e.CreatedAt, true
	}

	res.SubscriptionEnds = st.Period.ExpiryFrom(res.SettledAt)
	if !ok {
		return res, nil
	}
	if u.SubscriptionEnds == nil || !u.SubscriptionEnds.After(res.SubscriptionEnds) {
		ends := res.SubscriptionEnds
		u.SubscriptionEnds = &ends
		u.IsSubscribed = true
		sid := st.PaymentID
		u.SubscriptionID = &sid
		if u.Role != models.RoleAdmin {
			u.Role = models.RoleSubscriber
		}
		res.UserUpdated = true
	}
	return res, nil
}

func (s *memStore) user(id string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memStore) eventsOfType(eventType string) []models.PaymentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PaymentEvent
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// scriptedProvider отдаёт ответы по очереди, последний повторяется.
type scriptedProvider struct {
	mu    sync.Mutex
	steps []providerStep
	calls int
}

type providerStep struct {
	state string
	err   error
}

func (p *scriptedProvider) GetCheckout(_ context.Context, checkoutID string) (*paymentprovider.Checkout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	step := p.steps[min(p.calls, len(p.steps)-1)]
	p.calls++
	if step.err != nil {
		return nil, step.err
	}
	raw, _ := json.Marshal(map[string]any{"id": checkoutID, "state": step.state})
	return &paymentprovider.Checkout{
		ID:       checkoutID,
		State:    step.state,
		Amount:   paymentprovider.Amount{Value: 50000, Valid: true},
		Currency: "BTC",
		Metadata: paymentprovider.Metadata{UserID: "u1"},
		Raw:      raw,
	}, nil
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newUser(id string) *models.User {
	return &models.User{ID: id, Email: id + "@example.com", Name: id, Role: models.RoleGuest}
}
