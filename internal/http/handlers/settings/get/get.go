// Package get отдаёт публичные настройки сайта.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Service чтение настроек.
type Service interface {
	Public(ctx context.Context) (*models.Settings, error)
}

// Handler обрабатывает GET /settings.
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
// @Summary Настройки сайта
// @Description Название, описание, цена и период подписки. Секрет вебхука не возвращается.
// @Tags Settings
// @Produce  json
// @Success 200 {object} models.Settings "Настройки"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	st, err := h.service.Public(r.Context())
	if err != nil {
		log.Error("failed to get settings", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, st)
}
