// Package contentread отдаёт администратору его публикацию.
package contentread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Service чтение публикации владельца.
type Service interface {
	OwnedOne(ctx context.Context, id, ownerID string) (*models.Content, error)
}

// Handler обрабатывает GET /admin/content/{id}.
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
// @Summary Публикация администратора
// @Tags Admin
// @Produce  json
// @Param id path string true "Идентификатор публикации"
// @Success 200 {object} models.Content "Публикация"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Публикация не найдена"
// @Router /admin/content/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contentread"
	id := chi.URLParam(r, "id")

	c, err := h.service.OwnedOne(r.Context(), id, middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		h.log.Info("failed to read content",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("content_id", id),
			sl.Err(err),
		)
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, c)
}
