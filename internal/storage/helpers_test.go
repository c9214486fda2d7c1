package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/satsclub/internal/migrations"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// setupTestStorage поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB))
	return storage
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает пользователя с ролью guest
func (f *TestDataFactory) CreateUser(t *testing.T, email string) string {
	t.Helper()
	id, err := f.storage.CreateUser(context.Background(), models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hashedpassword",
		Role:         models.RoleGuest,
	})
	require.NoError(t, err)
	return id
}

// CreateAdmin создает администратора
func (f *TestDataFactory) CreateAdmin(t *testing.T, email string) string {
	t.Helper()
	id, err := f.storage.EnsureAdmin(context.Background(), email, "Admin", "hashedpassword")
	require.NoError(t, err)
	return id
}

// SetSubscriptionEnds выставляет пользователю срок подписки напрямую
func (f *TestDataFactory) SetSubscriptionEnds(t *testing.T, userID string, ends time.Time) {
	t.Helper()
	_, err := f.storage.DB.Exec(`UPDATE users SET role = 'subscriber', is_subscribed = TRUE,
		subscription_ends = $2 WHERE id = $1`, userID, ends)
	require.NoError(t, err)
}

// countEvents считает записи журнала по платежу и типу
func countEvents(t *testing.T, s *Storage, paymentID, eventType string) int {
	t.Helper()
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM payment_events WHERE payment_id = $1 AND event_type = $2`,
		paymentID, eventType).Scan(&n)
	require.NoError(t, err)
	return n
}
