// Package checkout обрабатывает создание checkout подписки у платёжного провайдера.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
)

// Service создание checkout.
type Service interface {
	Create(ctx context.Context, userID string) (json.RawMessage, error)
}

// Handler обрабатывает POST /subscription/checkout.
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
// @Summary Создать checkout подписки
// @Description Создаёт checkout у Bitvora для текущего пользователя. Ответ провайдера возвращается без изменений.
// @Tags Subscription
// @Produce  json
// @Success 200 {object} map[string]any "Checkout провайдера"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Платёжная система не настроена"
// @Failure 502 {object} response.ErrorResponse "Провайдер не создал checkout"
// @Router /subscription/checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.checkout"
	userID := middlewarectx.UserIDFrom(r.Context())
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
	)

	data, err := h.service.Create(r.Context(), userID)
	if err != nil {
		log.Error("failed to create checkout", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("checkout created")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
