// Package contentcreate создаёт текстовую публикацию администратора.
package contentcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/services/content"
)

// Request данные новой публикации.
type Request struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Description *string `json:"description"`
	Content     string  `json:"content"`
	Type        string  `json:"type" validate:"required,oneof=BLOG_POST VIDEO IMAGE"`
	Thumbnail   *string `json:"thumbnail"`
	IsPublished bool    `json:"isPublished"`
}

// Service создание публикации.
type Service interface {
	Create(ctx context.Context, ownerID string, d content.Draft) (*models.Content, error)
}

// Handler обрабатывает POST /admin/content.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать публикацию
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Публикация"
// @Success 201 {object} models.Content "Созданная публикация"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/content [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contentcreate"
	ownerID := middlewarectx.UserIDFrom(r.Context())
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", ownerID),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	c, err := h.service.Create(r.Context(), ownerID, content.Draft{
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Content,
		Type:        models.ContentType(req.Type),
		Thumbnail:   req.Thumbnail,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		log.Error("failed to create content", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}
