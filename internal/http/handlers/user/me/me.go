// Package me отдаёт текущему пользователю его права доступа.
package me

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// View права доступа пользователя.
type View struct {
	ID               string      `json:"id"`
	Email            string      `json:"email"`
	Name             string      `json:"name"`
	Role             models.Role `json:"role"`
	IsSubscribed     bool        `json:"isSubscribed"`
	SubscriptionEnds *time.Time  `json:"subscriptionEnds,omitempty"`
	HasAccess        bool        `json:"hasAccess"`
}

// Handler обрабатывает GET /me.
type Handler struct {
	log *slog.Logger
	now func() time.Time
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log, now: time.Now}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Роль, состояние подписки и право на просмотр контента.
// @Tags User
// @Produce  json
// @Success 200 {object} response.Response{data=View} "Данные пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /me [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.me"
	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		h.log.Warn("user missing in context",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	render.JSON(w, r, response.OKWithData(View{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Role:             user.Role,
		IsSubscribed:     user.IsSubscribed,
		SubscriptionEnds: user.SubscriptionEnds,
		HasAccess:        user.HasAccess(h.now()),
	}))
}
