package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

const userColumns = `id, email, name, password_hash, role, is_subscribed,
	subscription_id, subscription_ends, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		role    string
		subID   sql.NullString
		subEnds sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.IsSubscribed,
		&subID, &subEnds, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = r
	u.SubscriptionID = ptrString(subID)
	if subEnds.Valid {
		t := subEnds.Time
		u.SubscriptionEnds = &t
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Email уже занят: models.ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	role := user.Role
	if role == "" {
		role = models.RoleGuest
	}

	var newID string
	query := `INSERT INTO users (email, name, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		strings.ToLower(user.Email), user.Name, user.PasswordHash, string(role)).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, models.ErrUserExists)
		}
		return "", mapErr(op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

// EnsureAdmin создаёт администратора или повышает существующего пользователя до admin.
// Пароль существующего пользователя не меняется.
func (s *Storage) EnsureAdmin(ctx context.Context, email, name, passwordHash string) (string, error) {
	const op = "storage.EnsureAdmin"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var id string
	query := `INSERT INTO users (email, name, password_hash, role)
			  VALUES ($1, $2, $3, 'admin')
			  ON CONFLICT (email) DO UPDATE SET role = 'admin', updated_at = now()
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, strings.ToLower(email), name, passwordHash).Scan(&id); err != nil {
		return "", mapErr(op, err)
	}
	return id, nil
}

// CountActiveSubscribers считает подписчиков с действующим доступом.
func (s *Storage) CountActiveSubscribers(ctx context.Context) (int, error) {
	const op = "storage.CountActiveSubscribers"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	query := `SELECT COUNT(*) FROM users
			  WHERE role = 'subscriber' AND is_subscribed
			  AND (subscription_ends IS NULL OR subscription_ends > now())`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}
