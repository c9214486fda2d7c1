package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

func TestStorage_Users(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)

	id := factory.CreateUser(t, "Alice@Example.com")

	t.Run("get by id", func(t *testing.T) {
		u, err := s.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.Equal(t, models.RoleGuest, u.Role)
		assert.False(t, u.IsSubscribed)
		assert.Nil(t, u.SubscriptionEnds)
	})

	t.Run("get by email is case-insensitive", func(t *testing.T) {
		u, err := s.GetUserByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.CreateUser(ctx, models.User{Email: "alice@example.com", Name: "x", PasswordHash: "h"})
		assert.ErrorIs(t, err, models.ErrUserExists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetUser(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = s.GetUser(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("ensure admin promotes existing user", func(t *testing.T) {
		adminID, err := s.EnsureAdmin(ctx, "alice@example.com", "Alice", "other")
		require.NoError(t, err)
		assert.Equal(t, id, adminID)

		u, err := s.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, u.Role)
		assert.Equal(t, "hashedpassword", u.PasswordHash)
	})
}

func TestStorage_Settings(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	t.Run("lazy defaults under concurrency", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.GetSettings(ctx)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		st, err := s.GetSettings(ctx)
		require.NoError(t, err)
		d := models.DefaultSettings()
		assert.Equal(t, d.SiteName, st.SiteName)
		assert.Equal(t, d.Description, st.Description)
		assert.InDelta(t, 10.00, st.SubscriptionPrice, 0.001)
		assert.Equal(t, "USD", st.Currency)
		assert.Equal(t, models.PeriodMonthly, st.SubscriptionPeriod)
		assert.Equal(t, "bitvora", st.PaymentProvider)

		var rows int
		require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("update", func(t *testing.T) {
		st := models.DefaultSettings()
		st.SubscriptionPeriod = models.PeriodWeekly
		st.WebhookSecret = "whsec"
		st.SubscriptionPrice = 21.5

		updated, err := s.UpdateSettings(ctx, st)
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.IsZero())

		got, err := s.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PeriodWeekly, got.SubscriptionPeriod)
		assert.Equal(t, "whsec", got.WebhookSecret)
		assert.InDelta(t, 21.5, got.SubscriptionPrice, 0.001)
	})
}

func TestStorage_RecordEvent(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	userID := NewTestDataFactory(s).CreateUser(t, "bob@example.com")
	pid := "ckt_failed"

	for range 2 {
		_, err := s.RecordEvent(ctx, models.PaymentEvent{
			EventType: models.EventPaymentFailed,
			PaymentID: &pid,
			UserID:    &userID,
			RawData:   `{"state":"failed"}`,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, countEvents(t, s, pid, models.EventPaymentFailed))

	events, err := s.ListEventsByPayment(ctx, pid)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.DefaultCurrency, events[0].Currency)
	assert.Nil(t, events[0].Amount)

	t.Run("unknown user keeps the record", func(t *testing.T) {
		ghost := "00000000-0000-0000-0000-000000000000"
		errID := "ckt_ghost"
		_, err := s.RecordEvent(ctx, models.PaymentEvent{
			EventType: models.EventWebhookError,
			PaymentID: &errID,
			UserID:    &ghost,
			RawData:   "garbage",
		})
		require.NoError(t, err)

		events, err := s.ListEventsByPayment(ctx, errID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Nil(t, events[0].UserID)
		assert.False(t, events[0].Processed)
	})

	t.Run("webhook error without payment id", func(t *testing.T) {
		_, err := s.RecordEvent(ctx, models.PaymentEvent{EventType: models.EventWebhookError, RawData: "{"})
		require.NoError(t, err)
		n, err := s.CountEvents(ctx, models.EventWebhookError)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestStorage_ApplySettlement_SingleApplication(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	userID := NewTestDataFactory(s).CreateUser(t, "carol@example.com")

	before := time.Now()
	res, err := s.ApplySettlement(ctx, models.Settlement{
		PaymentID: "ckt_123",
		UserID:    userID,
		Amount:    50000,
		RawData:   `{"state":"paid"}`,
		Period:    models.PeriodMonthly,
	})
	require.NoError(t, err)
	assert.True(t, res.EventCreated)
	assert.True(t, res.UserUpdated)
	assert.WithinDuration(t, before.Add(30*24*time.Hour), res.SubscriptionEnds, time.Minute)

	u, err := s.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, u.IsSubscribed)
	assert.Equal(t, models.RoleSubscriber, u.Role)
	require.NotNil(t, u.SubscriptionID)
	assert.Equal(t, "ckt_123", *u.SubscriptionID)
	require.NotNil(t, u.SubscriptionEnds)
	assert.WithinDuration(t, res.SubscriptionEnds, *u.SubscriptionEnds, time.Millisecond)

	e, err := s.FindReceivedEvent(ctx, "ckt_123")
	require.NoError(t, err)
	require.NotNil(t, e.Amount)
	assert.Equal(t, int64(50000), *e.Amount)
	assert.Equal(t, models.DefaultCurrency, e.Currency)
	assert.True(t, e.Processed)
	require.NotNil(t, e.UserID)
	assert.Equal(t, userID, *e.UserID)
}

func TestStorage_ApplySettlement_Redelivery(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	userID := NewTestDataFactory(s).CreateUser(t, "dave@example.com")

	st := models.Settlement{PaymentID: "ckt_123", UserID: userID, Amount: 50000, Period: models.PeriodMonthly}
	first, err := s.ApplySettlement(ctx, st)
	require.NoError(t, err)

	u1, err := s.GetUser(ctx, userID)
	require.NoError(t, err)

	second, err := s.ApplySettlement(ctx, st)
	require.NoError(t, err)
	assert.False(t, second.EventCreated)
	assert.Equal(t, first.EventID, second.EventID)
	assert.True(t, first.SubscriptionEnds.Equal(second.SubscriptionEnds), "expiry must not compound")

	u2, err := s.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, u1.SubscriptionEnds)
	require.NotNil(t, u2.SubscriptionEnds)
	assert.True(t, u1.SubscriptionEnds.Equal(*u2.SubscriptionEnds))
	assert.Equal(t, 1, countEvents(t, s, "ckt_123", models.EventPaymentReceived))
}

func TestStorage_ApplySettlement_ConcurrentConvergence(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	userID := NewTestDataFactory(s).CreateUser(t, "erin@example.com")

	const workers = 16
	st := models.Settlement{PaymentID: "ckt_race", UserID: userID, Amount: 1000, Period: models.PeriodWeekly}

	var wg sync.WaitGroup
	results := make(chan models.SettlementResult, workers)
	errs := make(chan error, workers)
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := s.ApplySettlement(ctx, st)
			if err != nil {
				errs <- err
				return
			}
			results <- res
		}()
	}
	close(start)
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	created := 0
	var ends []time.Time
	for r := range results {
		if r.EventCreated {
			created++
		}
		ends = append(ends, r.SubscriptionEnds)
	}
	assert.Equal(t, 1, created)
	for _, e := range ends {
		assert.True(t, ends[0].Equal(e))
	}

	u, err := s.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, u.SubscriptionEnds)
	assert.True(t, ends[0].Equal(*u.SubscriptionEnds))
	assert.Equal(t, 1, countEvents(t, s, "ckt_race", models.EventPaymentReceived))
}

func TestStorage_ApplySettlement_DoesNotShortenLaterExpiry(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	userID := factory.CreateUser(t, "frank@example.com")

	later := time.Now().Add(200 * 24 * time.Hour).UTC().Truncate(time.Microsecond)
	factory.SetSubscriptionEnds(t, userID, later)

	res, err := s.ApplySettlement(ctx, models.Settlement{
		PaymentID: "ckt_old",
		UserID:    userID,
		Period:    models.PeriodDaily,
	})
	require.NoError(t, err)
	assert.True(t, res.EventCreated)
	assert.False(t, res.UserUpdated)

	u, err := s.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, u.SubscriptionEnds)
	assert.True(t, later.Equal(*u.SubscriptionEnds))
}

func TestStorage_ApplySettlement_RenewalExtends(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	userID := factory.CreateUser(t, "grace@example.com")

	expiring := time.Now().Add(time.Hour).UTC()
	factory.SetSubscriptionEnds(t, userID, expiring)

	res, err := s.ApplySettlement(ctx, models.Settlement{PaymentID: "ckt_renew", UserID: userID, Period: models.PeriodMonthly})
	require.NoError(t, err)
	assert.True(t, res.UserUpdated)

	u, err := s.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, u.SubscriptionEnds.After(expiring))
	assert.Equal(t, "ckt_renew", *u.SubscriptionID)
}

func TestStorage_ApplySettlement_ObservedAtAnchorsExpiry(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	userID := NewTestDataFactory(s).CreateUser(t, "heidi@example.com")

	observed := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	res, err := s.ApplySettlement(ctx, models.Settlement{
		PaymentID:  "ckt_future",
		UserID:     userID,
		Period:     models.PeriodQuarterly,
		ObservedAt: observed,
	})
	require.NoError(t, err)
	assert.True(t, observed.Add(90*24*time.Hour).Equal(res.SubscriptionEnds))
}

func TestStorage_ApplySettlement_Errors(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplySettlement(ctx, models.Settlement{UserID: "00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.ApplySettlement(cctx, models.Settlement{PaymentID: "x", UserID: "y"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorage_ApplySettlement_UnknownUserKeepsLedger(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		paymentID string
		userID    string
	}{
		{name: "no user id", paymentID: "ckt_999", userID: ""},
		{name: "not a uuid", paymentID: "ckt_998", userID: "ghost"},
		{name: "missing user", paymentID: "ckt_997", userID: "00000000-0000-0000-0000-000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := models.Settlement{
				PaymentID: tt.paymentID,
				UserID:    tt.userID,
				Amount:    50000,
				RawData:   `{"type":"payment.success"}`,
				Period:    models.PeriodMonthly,
			}
			res, err := s.ApplySettlement(ctx, st)
			require.NoError(t, err)
			assert.True(t, res.EventCreated)
			assert.False(t, res.UserFound)
			assert.False(t, res.UserUpdated)

			again, err := s.ApplySettlement(ctx, st)
			require.NoError(t, err)
			assert.False(t, again.EventCreated)
			assert.Equal(t, res.EventID, again.EventID)

			e, err := s.FindReceivedEvent(ctx, tt.paymentID)
			require.NoError(t, err)
			assert.Nil(t, e.UserID)
			assert.False(t, e.Processed)
			assert.Equal(t, `{"type":"payment.success"}`, e.RawData)
			assert.Equal(t, 1, countEvents(t, s, tt.paymentID, models.EventPaymentReceived))
		})
	}

	t.Run("later delivery with known user claims the row", func(t *testing.T) {
		userID := NewTestDataFactory(s).CreateUser(t, "ivan@example.com")

		res, err := s.ApplySettlement(ctx, models.Settlement{PaymentID: "ckt_999", UserID: userID, Period: models.PeriodMonthly})
		require.NoError(t, err)
		assert.True(t, res.UserFound)
		assert.True(t, res.UserUpdated)
		assert.False(t, res.EventCreated)

		e, err := s.FindReceivedEvent(ctx, "ckt_999")
		require.NoError(t, err)
		require.NotNil(t, e.UserID)
		assert.Equal(t, userID, *e.UserID)
		assert.True(t, e.Processed)
	})
}

func TestStorage_Content(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	adminID := factory.CreateAdmin(t, "admin@satsclub.local")
	otherAdmin := factory.CreateAdmin(t, "other@satsclub.local")

	desc := "first post"
	draft, err := s.CreateContent(ctx, models.Content{
		Title: "Draft", Description: &desc, Body: "hello", Type: models.ContentBlogPost, OwnerID: adminID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, "Admin", draft.OwnerName)
	assert.False(t, draft.IsPublished)

	video, err := s.CreateContent(ctx, models.Content{
		Title: "Video", Body: "/uploads/abc.mp4", Type: models.ContentVideo, IsPublished: true, OwnerID: adminID,
	})
	require.NoError(t, err)

	t.Run("list published", func(t *testing.T) {
		list, err := s.ListPublished(ctx, 50, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, video.ID, list[0].ID)
	})

	t.Run("list by owner newest first", func(t *testing.T) {
		list, err := s.ListByOwner(ctx, adminID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, video.ID, list[0].ID)
	})

	t.Run("update by owner", func(t *testing.T) {
		pub := true
		title := "Published"
		updated, err := s.UpdateContent(ctx, draft.ID, adminID, models.ContentPatch{Title: &title, IsPublished: &pub})
		require.NoError(t, err)
		assert.Equal(t, "Published", updated.Title)
		assert.True(t, updated.IsPublished)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "first post", *updated.Description)
	})

	t.Run("update by another owner", func(t *testing.T) {
		title := "Hijack"
		_, err := s.UpdateContent(ctx, draft.ID, otherAdmin, models.ContentPatch{Title: &title})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("find by location", func(t *testing.T) {
		c, err := s.FindContentByLocation(ctx, "/uploads/abc.mp4")
		require.NoError(t, err)
		assert.Equal(t, video.ID, c.ID)

		_, err = s.FindContentByLocation(ctx, "/uploads/missing.png")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		assert.ErrorIs(t, s.RemoveContent(ctx, video.ID, otherAdmin), models.ErrNotFound)
		require.NoError(t, s.RemoveContent(ctx, video.ID, adminID))
		_, err := s.GetContent(ctx, video.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		n, err := s.CountContent(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestStorage_CountActiveSubscribers(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)

	active := factory.CreateUser(t, "active@example.com")
	expired := factory.CreateUser(t, "expired@example.com")
	factory.CreateUser(t, "guest@example.com")

	factory.SetSubscriptionEnds(t, active, time.Now().Add(24*time.Hour))
	factory.SetSubscriptionEnds(t, expired, time.Now().Add(-24*time.Hour))

	n, err := s.CountActiveSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStorage_CheckDatabaseReady(t *testing.T) {
	s := setupTestStorage(t)
	require.NoError(t, s.CheckDatabaseReady(context.Background()))
}
