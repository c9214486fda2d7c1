// Package contentupdate частично изменяет публикацию администратора.
package contentupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Request изменения публикации, отсутствующие поля не меняются.
type Request struct {
	Title       *string `json:"title" validate:"omitempty,max=300"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"isPublished"`
}

// Service изменение публикации.
type Service interface {
	Update(ctx context.Context, id, ownerID string, p models.ContentPatch) (*models.Content, error)
}

// Handler обрабатывает PATCH /admin/content/{id}.
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
// @Summary Изменить публикацию
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор публикации"
// @Param request body Request true "Изменения"
// @Success 200 {object} models.Content "Обновлённая публикация"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Публикация не найдена"
// @Router /admin/content/{id} [patch]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contentupdate"
	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("content_id", id),
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

	c, err := h.service.Update(r.Context(), id, middlewarectx.UserIDFrom(r.Context()), models.ContentPatch{
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Content,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		log.Error("failed to update content", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, c)
}
