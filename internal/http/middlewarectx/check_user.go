package middlewarectx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Capability проверка права пользователя на доступ к группе маршрутов.
type Capability func(u *models.User, now time.Time) bool

// CanViewContent право на просмотр закрытого контента.
func CanViewContent(u *models.User, now time.Time) bool {
	return u.HasAccess(now)
}

// CanAdminister право на управление контентом и настройками.
func CanAdminister(u *models.User, _ time.Time) bool {
	return u != nil && u.Role.IsAdmin()
}

// RequireSubscription пропускает администраторов и подписчиков с действующим сроком.
// Остальным отвечает 403 с кодом SUBSCRIPTION_REQUIRED.
func RequireSubscription(log *slog.Logger) func(http.Handler) http.Handler {
	return RequireCapability(log, CanViewContent,
		response.ErrorWithCode("active subscription required", response.CodeSubscriptionRequired))
}

// RequireAdmin пропускает только администраторов.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return RequireCapability(log, CanAdminister, response.Error("forbidden"))
}

// RequireCapability пропускает запрос, только если пользователь из контекста обладает правом can,
// иначе отвечает 403 с телом denied.
func RequireCapability(log *slog.Logger, can Capability, denied response.ErrorResponse) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			if !can(user, time.Now()) {
				log.Info("access denied", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, denied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
