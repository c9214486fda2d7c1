// Package list отдаёт подписчику ленту опубликованных материалов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/services/content"
)

// Service лента публикаций.
type Service interface {
	Feed(ctx context.Context, limit, offset int) ([]content.Summary, error)
}

// Handler обрабатывает GET /content.
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
// @Summary Лента материалов
// @Description Опубликованные материалы без тела, новые первыми. Требуется активная подписка.
// @Tags Content
// @Produce  json
// @Param limit query int false "Размер страницы (до 50)"
// @Param offset query int false "Смещение"
// @Success 200 {array} content.Summary "Материалы"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Router /content [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	feed, err := h.service.Feed(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list content", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, feed)
}
