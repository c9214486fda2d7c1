// Package status отдаёт клиенту состояние оплаты checkout и применяет его к подписке.
package status

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
	checkoutservice "github.com/magabrotheeeer/satsclub/internal/services/checkout"
)

// Service проверка статуса checkout.
type Service interface {
	Status(ctx context.Context, userID, checkoutID string) (*checkoutservice.Status, error)
}

// Handler обрабатывает GET /subscription/status/{checkoutId}.
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
// @Summary Статус оплаты
// @Description Запрашивает состояние checkout у провайдера. При оплате активирует подписку.
// @Description Клиент повторяет запрос, пока paid == false и состояние не конечное.
// @Tags Subscription
// @Produce  json
// @Param checkoutId path string true "Идентификатор checkout"
// @Success 200 {object} checkoutservice.Status "Состояние checkout"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Checkout не найден"
// @Failure 502 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /subscription/status/{checkoutId} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"
	userID := middlewarectx.UserIDFrom(r.Context())
	checkoutID := chi.URLParam(r, "checkoutId")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
		slog.String("checkout_id", checkoutID),
	)

	st, err := h.service.Status(r.Context(), userID, checkoutID)
	if err != nil {
		log.Error("failed to check payment status", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("payment status checked", slog.String("state", st.State), slog.Bool("paid", st.Paid))
	render.JSON(w, r, st)
}
