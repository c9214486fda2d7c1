// Package contentremove удаляет публикацию администратора.
package contentremove

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
)

// Service удаление публикации.
type Service interface {
	Remove(ctx context.Context, id, ownerID string) error
}

// Handler обрабатывает DELETE /admin/content/{id}.
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
// @Summary Удалить публикацию
// @Tags Admin
// @Produce  json
// @Param id path string true "Идентификатор публикации"
// @Success 200 {object} response.Response "Публикация удалена"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Публикация не найдена"
// @Router /admin/content/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contentremove"
	id := chi.URLParam(r, "id")

	if err := h.service.Remove(r.Context(), id, middlewarectx.UserIDFrom(r.Context())); err != nil {
		h.log.Error("failed to remove content",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("content_id", id),
			sl.Err(err),
		)
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK())
}
