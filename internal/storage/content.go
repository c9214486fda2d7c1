package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

const contentColumns = `c.id, c.title, c.description, c.body, c.type, c.thumbnail, c.is_published,
	c.owner_id, u.name, c.created_at, c.updated_at`

const contentFrom = ` FROM content c JOIN users u ON u.id = c.owner_id`

func scanContent(row rowScanner) (*models.Content, error) {
	c := &models.Content{}
	var (
		description sql.NullString
		thumbnail   sql.NullString
		typ         string
	)
	if err := row.Scan(&c.ID, &c.Title, &description, &c.Body, &typ, &thumbnail, &c.IsPublished,
		&c.OwnerID, &c.OwnerName, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Type = models.ContentType(typ)
	c.Description = ptrString(description)
	c.Thumbnail = ptrString(thumbnail)
	return c, nil
}

func (s *Storage) queryContent(ctx context.Context, op, query string, args ...any) ([]*models.Content, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return result, nil
}

// CreateContent сохраняет публикацию и возвращает её с заполненными ID и временем.
func (s *Storage) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	const op = "storage.CreateContent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var id string
	query := `INSERT INTO content (title, description, body, type, thumbnail, is_published, owner_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query, c.Title, nullString(c.Description), c.Body, string(c.Type),
		nullString(c.Thumbnail), c.IsPublished, c.OwnerID).Scan(&id)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return s.GetContent(ctx, id)
}

// GetContent возвращает публикацию по ID независимо от статуса.
func (s *Storage) GetContent(ctx context.Context, id string) (*models.Content, error) {
	const op = "storage.GetContent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanContent(s.DB.QueryRowContext(ctx, `SELECT `+contentColumns+contentFrom+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return c, nil
}

// ListPublished возвращает опубликованные записи, новые первыми.
func (s *Storage) ListPublished(ctx context.Context, limit, offset int) ([]*models.Content, error) {
	const op = "storage.ListPublished"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryContent(ctx, op, `SELECT `+contentColumns+contentFrom+`
		WHERE c.is_published ORDER BY c.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

// ListByOwner возвращает все записи владельца, новые первыми.
func (s *Storage) ListByOwner(ctx context.Context, ownerID string) ([]*models.Content, error) {
	const op = "storage.ListByOwner"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryContent(ctx, op, `SELECT `+contentColumns+contentFrom+`
		WHERE c.owner_id = $1 ORDER BY c.created_at DESC`, ownerID)
}

// UpdateContent применяет частичное обновление к записи владельца.
func (s *Storage) UpdateContent(ctx context.Context, id, ownerID string, p models.ContentPatch) (*models.Content, error) {
	const op = "storage.UpdateContent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var isPublished sql.NullBool
	if p.IsPublished != nil {
		isPublished = sql.NullBool{Bool: *p.IsPublished, Valid: true}
	}
	result, err := s.DB.ExecContext(ctx, `UPDATE content SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			body = COALESCE($5, body),
			is_published = COALESCE($6, is_published),
			updated_at = now()
		WHERE id = $1 AND owner_id = $2`,
		id, ownerID, nullString(p.Title), nullString(p.Description), nullString(p.Body), isPublished)
	if err != nil {
		return nil, mapErr(op, err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, mapErr(op, err)
	} else if n == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return s.GetContent(ctx, id)
}

// RemoveContent удаляет запись владельца.
func (s *Storage) RemoveContent(ctx context.Context, id, ownerID string) error {
	const op = "storage.RemoveContent"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM content WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return mapErr(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return mapErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// FindContentByLocation ищет публикацию, ссылающуюся на загруженный файл.
func (s *Storage) FindContentByLocation(ctx context.Context, location string) (*models.Content, error) {
	const op = "storage.FindContentByLocation"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanContent(s.DB.QueryRowContext(ctx, `SELECT `+contentColumns+contentFrom+`
		WHERE c.body = $1 OR c.thumbnail = $1
		ORDER BY c.is_published DESC LIMIT 1`, location))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return c, nil
}

// CountContent считает все публикации.
func (s *Storage) CountContent(ctx context.Context) (int, error) {
	const op = "storage.CountContent"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM content`).Scan(&n); err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}
