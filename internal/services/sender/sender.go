// Package sender отправляет подписчикам письма о подтверждённой оплате.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/lib/smtp"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Repository источник данных о получателе и сайте.
type Repository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetSettings(ctx context.Context) (*models.Settings, error)
}

// Service формирует и отправляет письма.
type Service struct {
	repo      Repository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger, transport smtp.TransportInterface) *Service {
	return &Service{
		repo:      repo,
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionActivated обрабатывает сообщение subscription.activated из очереди.
// Повреждённое сообщение не подлежит повторной доставке, поэтому ошибка разбора не возвращается.
func (s *Service) SendSubscriptionActivated(ctx context.Context, body []byte) error {
	const op = "sender.SendSubscriptionActivated"
	log := s.log.With(slog.String("op", op))

	var msg models.SubscriptionActivatedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error("failed to unmarshal message body, dropped", sl.Err(err))
		return nil
	}

	user, err := s.repo.GetUser(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("%s: failed to get user: %w", op, err)
	}
	siteName := models.DefaultSettings().SiteName
	if st, err := s.repo.GetSettings(ctx); err != nil {
		log.Warn("failed to load settings, using default site name", sl.Err(err))
	} else {
		siteName = st.SiteName
	}

	subject := fmt.Sprintf("Подписка на %s активирована", siteName)
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\n"+
		"Оплата %d %s получена (checkout %s).\n"+
		"Доступ к материалам %s открыт до %s.\n",
		user.Name, msg.Amount, msg.Currency, msg.CheckoutID,
		siteName, msg.SubscriptionEnds.UTC().Format("02.01.2006 15:04 MST"))

	if err := s.sendEmail(ctx, []string{user.Email}, subject, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("activation email sent", slog.String("user_id", user.ID), slog.String("checkout_id", msg.CheckoutID))
	return nil
}

func (s *Service) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from %s: %w", from, err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}
	return nil
}
