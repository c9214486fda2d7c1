// Package read отдаёт подписчику опубликованный материал целиком.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Service чтение опубликованного материала.
type Service interface {
	Published(ctx context.Context, id string) (*models.Content, error)
}

// Handler обрабатывает GET /content/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Материал
// @Description Опубликованный материал с телом. Черновики не отдаются.
// @Tags Content
// @Produce  json
// @Param id path string true "Идентификатор материала"
// @Success 200 {object} models.Content "Материал"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 404 {object} response.ErrorResponse "Материал не найден"
// @Router /content/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.read"
	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("content_id", id),
	)

	c, err := h.service.Published(r.Context(), id)
	if err != nil {
		log.Info("failed to read content", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, c)
}
