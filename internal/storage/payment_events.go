package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

const eventColumns = `id, event_type, amount, currency, payment_id, user_id, raw_data, processed, created_at`

func scanEvent(row rowScanner) (*models.PaymentEvent, error) {
	e := &models.PaymentEvent{}
	var (
		amount    sql.NullInt64
		paymentID sql.NullString
		userID    sql.NullString
	)
	if err := row.Scan(&e.ID, &e.EventType, &amount, &e.Currency, &paymentID, &userID,
		&e.RawData, &e.Processed, &e.CreatedAt); err != nil {
		return nil, err
	}
	if amount.Valid {
		v := amount.Int64
		e.Amount = &v
	}
	e.PaymentID = ptrString(paymentID)
	e.UserID = ptrString(userID)
	return e, nil
}

// RecordEvent добавляет запись в журнал платежей.
// Повторная запись payment_received для того же платежа отклоняется ограничением уникальности,
// для неё следует использовать ApplySettlement.
func (s *Storage) RecordEvent(ctx context.Context, e models.PaymentEvent) (int64, error) {
	const op = "storage.RecordEvent"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	if e.Currency == "" {
		e.Currency = models.DefaultCurrency
	}

	var amount sql.NullInt64
	if e.Amount != nil {
		amount = sql.NullInt64{Int64: *e.Amount, Valid: true}
	}

	var id int64
	query := `INSERT INTO payment_events (event_type, amount, currency, payment_id, user_id, raw_data, processed)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query, e.EventType, amount, e.Currency,
		nullString(e.PaymentID), nullString(e.UserID), e.RawData, e.Processed).Scan(&id)
	if err != nil {
		if errors.Is(mapErr(op, err), models.ErrNotFound) && e.UserID != nil {
			// неизвестный пользователь не должен терять запись журнала
			e.UserID = nil
			return s.RecordEvent(ctx, e)
		}
		return 0, mapErr(op, err)
	}
	return id, nil
}

// FindReceivedEvent возвращает запись payment_received для внешнего идентификатора платежа.
func (s *Storage) FindReceivedEvent(ctx context.Context, paymentID string) (*models.PaymentEvent, error) {
	const op = "storage.FindReceivedEvent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM payment_events
		WHERE payment_id = $1 AND event_type = $2`, paymentID, models.EventPaymentReceived)
	e, err := scanEvent(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return e, nil
}

// ListEventsByPayment возвращает все записи журнала по платежу в порядке добавления.
func (s *Storage) ListEventsByPayment(ctx context.Context, paymentID string) ([]models.PaymentEvent, error) {
	const op = "storage.ListEventsByPayment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+eventColumns+` FROM payment_events
		WHERE payment_id = $1 ORDER BY id`, paymentID)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.PaymentEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return result, nil
}

// CountEvents считает записи заданного типа.
func (s *Storage) CountEvents(ctx context.Context, eventType string) (int, error) {
	const op = "storage.CountEvents"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM payment_events WHERE event_type = $1`, eventType).
		Scan(&n); err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}

// ApplySettlement в одной транзакции фиксирует оплату в журнале и продлевает подписку.
//
// Запись payment_received вставляется через ON CONFLICT DO NOTHING, поэтому
// конкурентные и повторные вызовы для одного платежа оставляют ровно одну запись.
// Срок подписки отсчитывается от created_at этой записи: повторное применение
// даёт то же значение. Более поздний срок, уже сохранённый у пользователя, не сокращается.
//
// Если пользователь не указан или не найден, запись журнала всё равно сохраняется
// с пустым user_id, а UserFound в результате равен false.
func (s *Storage) ApplySettlement(ctx context.Context, st models.Settlement) (models.SettlementResult, error) {
	const op = "storage.ApplySettlement"
	var res models.SettlementResult
	if err := checkCtx(ctx, op); err != nil {
		return res, err
	}
	if st.PaymentID == "" {
		return res, fmt.Errorf("%s: %w: payment id is required", op, models.ErrInvalidInput)
	}
	if st.Currency == "" {
		st.Currency = models.DefaultCurrency
	}
	observedAt := sql.NullTime{Time: st.ObservedAt, Valid: !st.ObservedAt.IsZero()}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, mapErr(op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, parseErr := uuid.Parse(st.UserID); parseErr == nil {
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, st.UserID).
			Scan(&res.UserFound); err != nil {
			return res, mapErr(op, err)
		}
	}
	var userID sql.NullString
	if res.UserFound {
		userID = sql.NullString{String: st.UserID, Valid: true}
	}

	err = tx.QueryRowContext(ctx, `INSERT INTO payment_events
			(event_type, amount, currency, payment_id, user_id, raw_data, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
		ON CONFLICT (payment_id, event_type) WHERE event_type = 'payment_received' DO NOTHING
		RETURNING id, created_at`,
		models.EventPaymentReceived, st.Amount, st.Currency, st.PaymentID, userID, st.RawData,
		res.UserFound, observedAt).
		Scan(&res.EventID, &res.SettledAt)
	switch {
	case err == nil:
		res.EventCreated = true
	case errors.Is(err, sql.ErrNoRows):
		// запись уже есть: берём момент первой фиксации
		err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM payment_events
			WHERE payment_id = $1 AND event_type = $2`, st.PaymentID, models.EventPaymentReceived).
			Scan(&res.EventID, &res.SettledAt)
		if err != nil {
			return res, mapErr(op, err)
		}
	default:
		return res, mapErr(op, err)
	}

	res.SubscriptionEnds = st.Period.ExpiryFrom(res.SettledAt).UTC()

	if res.UserFound {
		result, err := tx.ExecContext(ctx, `UPDATE users SET
				role = CASE WHEN role = 'admin' THEN role ELSE 'subscriber' END,
				is_subscribed = TRUE,
				subscription_id = $2,
				subscription_ends = $3,
				updated_at = now()
			WHERE id = $1 AND (subscription_ends IS NULL OR subscription_ends <= $3)`,
			st.UserID, st.PaymentID, res.SubscriptionEnds)
		if err != nil {
			return res, mapErr(op, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return res, mapErr(op, err)
		}
		res.UserUpdated = n > 0

		// запись, сохранённая раньше без пользователя, получает его при повторной доставке
		if _, err := tx.ExecContext(ctx, `UPDATE payment_events SET user_id = $1, processed = TRUE
			WHERE id = $2 AND user_id IS NULL`, st.UserID, res.EventID); err != nil {
			return res, mapErr(op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return res, mapErr(op, err)
	}
	return res, nil
}
