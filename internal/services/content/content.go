// Package content закрытые публикации: выдача подписчикам, управление
// администратором и хранение загруженных файлов.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// UploadsPrefix префикс пути, под которым загруженные файлы хранятся в публикациях.
const UploadsPrefix = "/uploads/"

// DefaultPageSize размер страницы списка публикаций по умолчанию.
const DefaultPageSize = 50

// Repository хранилище публикаций.
type Repository interface {
	CreateContent(ctx context.Context, c models.Content) (*models.Content, error)
	GetContent(ctx context.Context, id string) (*models.Content, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Content, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Content, error)
	UpdateContent(ctx context.Context, id, ownerID string, p models.ContentPatch) (*models.Content, error)
	RemoveContent(ctx context.Context, id, ownerID string) error
	FindContentByLocation(ctx context.Context, location string) (*models.Content, error)
}

// Summary элемент ленты: публикация без тела.
type Summary struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description,omitempty"`
	Type        models.ContentType `json:"type"`
	Thumbnail   *string            `json:"thumbnail,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Draft данные новой текстовой публикации.
type Draft struct {
	Title       string
	Description *string
	Body        string
	Type        models.ContentType
	Thumbnail   *string
	IsPublished bool
}

// Upload данные публикации с файлом.
type Upload struct {
	Title       string
	Description *string
	Type        models.ContentType
	IsPublished bool
	Filename    string
	MIME        string
	File        io.Reader
}

// Service операции над публикациями.
type Service struct {
	repo       Repository
	uploadsDir string
	log        *slog.Logger
	now        func() time.Time
}

// NewService создаёт Service, файлы пишутся в uploadsDir.
func NewService(repo Repository, uploadsDir string, log *slog.Logger) *Service {
	return &Service{repo: repo, uploadsDir: uploadsDir, log: log, now: time.Now}
}

// Feed возвращает опубликованные записи без тела, новые первыми.
func (s *Service) Feed(ctx context.Context, limit, offset int) ([]Summary, error) {
	const op = "content.Feed"
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]Summary, 0, len(items))
	for _, c := range items {
		result = append(result, summarize(c))
	}
	return result, nil
}

func summarize(c *models.Content) Summary {
	return Summary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Type:        c.Type,
		Thumbnail:   c.Thumbnail,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Published возвращает опубликованную запись; черновики считаются отсутствующими.
func (s *Service) Published(ctx context.Context, id string) (*models.Content, error) {
	const op = "content.Published"
	c, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !c.IsPublished {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return c, nil
}

// Create сохраняет текстовую публикацию администратора.
func (s *Service) Create(ctx context.Context, ownerID string, d Draft) (*models.Content, error) {
	const op = "content.Create"
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%s: %w: title is required", op, models.ErrInvalidInput)
	}
	if !d.Type.Valid() {
		return nil, fmt.Errorf("%s: %w: invalid content type %q", op, models.ErrInvalidInput, d.Type)
	}

	c, err := s.repo.CreateContent(ctx, models.Content{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Body:        d.Body,
		Type:        d.Type,
		Thumbnail:   d.Thumbnail,
		IsPublished: d.IsPublished,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("content created", slog.String("op", op), slog.String("content_id", c.ID))
	return c, nil
}

// Owned возвращает записи администратора.
func (s *Service) Owned(ctx context.Context, ownerID string) ([]*models.Content, error) {
	const op = "content.Owned"
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// OwnedOne возвращает запись, только если она принадлежит ownerID.
func (s *Service) OwnedOne(ctx context.Context, id, ownerID string) (*models.Content, error) {
	const op = "content.OwnedOne"
	c, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.OwnerID != ownerID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return c, nil
}

// Update частично обновляет запись владельца.
func (s *Service) Update(ctx context.Context, id, ownerID string, p models.ContentPatch) (*models.Content, error) {
	const op = "content.Update"
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, fmt.Errorf("%s: %w: title must not be empty", op, models.ErrInvalidInput)
	}
	c, err := s.repo.UpdateContent(ctx, id, ownerID, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Remove удаляет запись владельца. Загруженный файл остаётся на диске.
func (s *Service) Remove(ctx context.Context, id, ownerID string) error {
	const op = "content.Remove"
	if err := s.repo.RemoveContent(ctx, id, ownerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("content removed", slog.String("op", op), slog.String("content_id", id))
	return nil
}

// Upload сохраняет файл под случайным именем и создаёт публикацию, ссылающуюся на него.
// Для VIDEO и IMAGE проверяется MIME-тип файла.
func (s *Service) Upload(ctx context.Context, ownerID string, u Upload) (*models.Content, error) {
	const op = "content.Upload"
	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(u.Title) == "" || u.File == nil {
		return nil, fmt.Errorf("%s: %w: missing required fields", op, models.ErrInvalidInput)
	}
	if !u.Type.Valid() {
		return nil, fmt.Errorf("%s: %w: invalid content type %q", op, models.ErrInvalidInput, u.Type)
	}
	if !u.Type.AcceptsMIME(u.MIME) {
		return nil, fmt.Errorf("%s: %w: file %q is not a valid %s", op, models.ErrInvalidInput, u.MIME, u.Type)
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(u.Filename)))
	fullPath := filepath.Join(s.uploadsDir, name)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(f, u.File); err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("%s: write file: %w", op, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.repo.CreateContent(ctx, models.Content{
		Title:       strings.TrimSpace(u.Title),
		Description: u.Description,
		Body:        UploadsPrefix + name,
		Type:        u.Type,
		IsPublished: u.IsPublished,
		OwnerID:     ownerID,
	})
	if err != nil {
		if rmErr := os.Remove(fullPath); rmErr != nil {
			log.Error("failed to remove orphaned upload", slog.String("file", name), sl.Err(rmErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("file uploaded", slog.String("content_id", c.ID), slog.String("file", name))
	return c, nil
}

// ResolveFile проверяет доступ к загруженному файлу и возвращает путь к нему на диске.
//
// Файлы доступны только пользователям с действующей подпиской и администраторам.
// Выход за каталог загрузок даёт models.ErrUnauthorized, файл без публикации
// models.ErrNotFound, неопубликованный файл доступен только администратору.
func (s *Service) ResolveFile(ctx context.Context, user *models.User, rel string) (string, error) {
	const op = "content.ResolveFile"

	if !user.HasAccess(s.now()) {
		return "", fmt.Errorf("%s: %w: subscription required", op, models.ErrUnauthorized)
	}

	clean := path.Clean("/" + rel)
	if strings.Contains(rel, "..") || clean == "/" {
		return "", fmt.Errorf("%s: %w: path outside uploads", op, models.ErrUnauthorized)
	}
	root, err := filepath.Abs(s.uploadsDir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	fullPath := filepath.Join(root, filepath.FromSlash(clean))
	if !strings.HasPrefix(fullPath, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w: path outside uploads", op, models.ErrUnauthorized)
	}

	c, err := s.repo.FindContentByLocation(ctx, UploadsPrefix+strings.TrimPrefix(clean, "/"))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !c.IsPublished && !user.Role.IsAdmin() {
		return "", fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fullPath, nil
}
