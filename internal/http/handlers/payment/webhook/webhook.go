// Package webhook принимает уведомления платёжного провайдера.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/config"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
	"github.com/magabrotheeeer/satsclub/internal/services/reconciler"
)

// Ack ответ провайдеру о приёме уведомления.
type Ack struct {
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
}

// Service обработка тела уведомления.
type Service interface {
	Handle(ctx context.Context, body []byte, signature string) (reconciler.WebhookResult, error)
}

// Handler обрабатывает POST /webhooks/payment.
type Handler struct {
	log     *slog.Logger
	service Service
	cfg     config.Webhook
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cfg config.Webhook) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cfg:     cfg,
	}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Проверяет HMAC-SHA256 подпись тела (заголовок X-Bitvora-Signature) и применяет событие.
// @Description Повторная доставка одного и того же события не продлевает подписку повторно.
// @Tags Webhooks
// @Accept  json
// @Produce  json
// @Param X-Bitvora-Signature header string false "Подпись тела"
// @Success 200 {object} Ack "Уведомление принято"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 413 {object} response.ErrorResponse "Тело слишком большое"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки, провайдер повторит доставку"
// @Router /webhooks/payment [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("webhook body too large", slog.Int64("limit", tooLarge.Limit))
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("request body too large"))
			return
		}
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	result, err := h.service.Handle(r.Context(), body, paymentprovider.SignatureFromHeader(r.Header))
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvalidSignature):
		log.Warn("webhook rejected: invalid signature")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	case errors.Is(err, paymentprovider.ErrMalformedPayload):
		if h.cfg.AckOnError {
			log.Warn("malformed webhook acknowledged", sl.Err(err))
			render.JSON(w, r, Ack{Received: true})
			return
		}
		log.Warn("malformed webhook rejected", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payload"))
		return
	default:
		log.Error("failed to process webhook", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	if result.Unsigned {
		log.Warn("webhook accepted without signature check, secret is not configured")
	}
	log.Info("webhook processed",
		slog.String("event", result.EventType),
		slog.Bool("handled", result.Handled),
	)
	render.JSON(w, r, Ack{Received: true, Event: result.EventType})
}
