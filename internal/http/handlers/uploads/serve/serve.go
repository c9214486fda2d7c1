// Package serve отдаёт загруженные файлы с проверкой доступа.
package serve

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
)

// Service проверка доступа к файлу.
type Service interface {
	ResolveFile(ctx context.Context, user *models.User, rel string) (string, error)
}

// Handler обрабатывает GET /uploads/*.
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
// @Summary Загруженный файл
// @Description Файл должен принадлежать публикации. Файлы черновиков доступны только администратору.
// @Tags Content
// @Param path path string true "Имя файла"
// @Success 200 {file} file "Файл"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Router /uploads/{path} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.uploads.serve"
	rel := chi.URLParam(r, "*")
	user, _ := middlewarectx.UserFrom(r.Context())

	fullPath, err := h.service.ResolveFile(r.Context(), user, rel)
	if err != nil {
		h.log.Warn("file access denied",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", rel),
			sl.Err(err),
		)
		response.WriteError(w, r, err)
		return
	}
	http.ServeFile(w, r, fullPath)
}
