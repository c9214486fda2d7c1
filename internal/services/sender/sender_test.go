package sender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/satsclub/internal/lib/smtp"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetSettings(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context) (smtp.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) Sender() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error { return m.Called(from).Error(0) }
func (m *MockSMTPClient) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *MockSMTPClient) Quit() error            { return m.Called().Error(0) }
func (m *MockSMTPClient) Close() error           { return m.Called().Error(0) }

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

// bufferWriter собирает тело письма.
type bufferWriter struct {
	strings.Builder
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const activatedBody = `{"user_id":"user123","checkout_id":"ckt_123","amount":50000,"currency":"BTC","subscription_ends":"2025-02-01T00:00:00Z"}`

func TestService_SendSubscriptionActivated(t *testing.T) {
	user := &models.User{ID: "user123", Email: "test@example.com", Name: "Alice"}

	t.Run("success", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)
		client := new(MockSMTPClient)
		writer := &bufferWriter{}

		repo.On("GetUser", mock.Anything, "user123").Return(user, nil).Once()
		repo.On("GetSettings", mock.Anything).Return(&models.Settings{SiteName: "Sats Club"}, nil).Once()
		transport.On("Sender").Return("noreply@satsclub.local")
		transport.On("Connect", mock.Anything).Return(client, nil).Once()
		client.On("Mail", "noreply@satsclub.local").Return(nil).Once()
		client.On("Rcpt", "test@example.com").Return(nil).Once()
		client.On("Data").Return(writer, nil).Once()
		client.On("Quit").Return(nil).Once()
		client.On("Close").Return(nil).Once()

		err := NewService(repo, newNoopLogger(), transport).SendSubscriptionActivated(context.Background(), []byte(activatedBody))

		assert.NoError(t, err)
		assert.True(t, writer.closed)
		assert.Contains(t, writer.String(), "Subject: Подписка на Sats Club активирована")
		assert.Contains(t, writer.String(), "50000 BTC")
		assert.Contains(t, writer.String(), "01.02.2025")
		repo.AssertExpectations(t)
		transport.AssertExpectations(t)
		client.AssertExpectations(t)
	})

	t.Run("invalid JSON is dropped", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)

		err := NewService(repo, newNoopLogger(), transport).SendSubscriptionActivated(context.Background(), []byte("invalid json"))

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
		transport.AssertNotCalled(t, "Connect", mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)
		repo.On("GetUser", mock.Anything, "user123").Return(nil, errors.New("user not found")).Once()

		err := NewService(repo, newNoopLogger(), transport).SendSubscriptionActivated(context.Background(), []byte(activatedBody))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get user: user not found")
	})
}

func TestService_SMTPErrorHandling(t *testing.T) {
	user := &models.User{ID: "user123", Email: "test@example.com", Name: "Alice"}

	tests := []struct {
		name         string
		setupClient  func(*MockSMTPClient)
		connectErr   error
		errorMessage string
	}{
		{
			name:         "connect error",
			connectErr:   errors.New("connection error"),
			errorMessage: "connection error",
		},
		{
			name: "mail error",
			setupClient: func(c *MockSMTPClient) {
				c.On("Mail", "noreply@satsclub.local").Return(errors.New("mail error")).Once()
			},
			errorMessage: "mail error",
		},
		{
			name: "rcpt error",
			setupClient: func(c *MockSMTPClient) {
				c.On("Mail", "noreply@satsclub.local").Return(nil).Once()
				c.On("Rcpt", "test@example.com").Return(errors.New("rcpt error")).Once()
			},
			errorMessage: "rcpt error",
		},
		{
			name: "data error",
			setupClient: func(c *MockSMTPClient) {
				c.On("Mail", "noreply@satsclub.local").Return(nil).Once()
				c.On("Rcpt", "test@example.com").Return(nil).Once()
				c.On("Data").Return(nil, errors.New("data error")).Once()
			},
			errorMessage: "data error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			transport := new(MockTransport)
			repo.On("GetUser", mock.Anything, "user123").Return(user, nil).Once()
			repo.On("GetSettings", mock.Anything).Return(nil, errors.New("db down")).Once()
			transport.On("Sender").Return("noreply@satsclub.local")

			if tt.connectErr != nil {
				transport.On("Connect", mock.Anything).Return(nil, tt.connectErr).Once()
			} else {
				client := new(MockSMTPClient)
				tt.setupClient(client)
				client.On("Close").Return(nil).Once()
				transport.On("Connect", mock.Anything).Return(client, nil).Once()
			}

			err := NewService(repo, newNoopLogger(), transport).SendSubscriptionActivated(context.Background(), []byte(activatedBody))

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)
			transport.AssertExpectations(t)
		})
	}
}
