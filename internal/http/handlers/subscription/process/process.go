// Package process передаёт провайдеру wallet-connect строку для оплаты checkout.
package process

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
)

// Request данные для оплаты checkout.
type Request struct {
	CheckoutID    string `json:"checkoutId" validate:"required"`
	WalletConnect string `json:"walletConnect" validate:"required"`
}

// Result ответ клиенту после передачи оплаты провайдеру.
type Result struct {
	Success    bool            `json:"success"`
	CheckoutID string          `json:"checkoutId"`
	Data       json.RawMessage `json:"data"`
}

// Service передача wallet-connect.
type Service interface {
	Process(ctx context.Context, userID, checkoutID, walletConnect string) (json.RawMessage, error)
}

// Handler обрабатывает POST /subscription/process.
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
// @Summary Оплатить checkout
// @Description Передаёт строку wallet-connect провайдеру. Запрос не повторяется автоматически.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Param request body Request true "Checkout и wallet-connect"
// @Success 200 {object} Result "Оплата передана провайдеру"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /subscription/process [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.process"
	userID := middlewarectx.UserIDFrom(r.Context())
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
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

	data, err := h.service.Process(r.Context(), userID, req.CheckoutID, req.WalletConnect)
	if err != nil {
		log.Error("failed to process subscription", slog.String("checkout_id", req.CheckoutID), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("payment submitted", slog.String("checkout_id", req.CheckoutID))
	render.JSON(w, r, Result{Success: true, CheckoutID: req.CheckoutID, Data: data})
}
