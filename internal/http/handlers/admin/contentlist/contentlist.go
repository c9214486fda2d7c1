// Package contentlist отдаёт администратору его публикации, включая черновики.
package contentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Service список публикаций владельца.
type Service interface {
	Owned(ctx context.Context, ownerID string) ([]*models.Content, error)
}

// Handler обрабатывает GET /admin/content.
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
// @Summary Публикации администратора
// @Tags Admin
// @Produce  json
// @Success 200 {array} models.Content "Публикации"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/content [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contentlist"
	ownerID := middlewarectx.UserIDFrom(r.Context())

	items, err := h.service.Owned(r.Context(), ownerID)
	if err != nil {
		h.log.Error("failed to list content",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}
