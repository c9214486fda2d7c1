// Package contentupload принимает файл видео или изображения и создаёт публикацию.
package contentupload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/satsclub/internal/http/response"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/models"
	"github.com/magabrotheeeer/satsclub/internal/services/content"
)

// memoryLimit часть формы, которая держится в памяти, остальное уходит во временные файлы.
const memoryLimit = 32 << 20

// Service сохранение загруженного файла.
type Service interface {
	Upload(ctx context.Context, ownerID string, u content.Upload) (*models.Content, error)
}

// Handler обрабатывает POST /admin/content/upload.
type Handler struct {
	log      *slog.Logger
	service  Service
	maxBytes int64
}

// New создает новый экземпляр Handler. maxBytes ограничивает размер запроса, 0 без ограничения.
func New(log *slog.Logger, service Service, maxBytes int64) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		maxBytes: maxBytes,
	}
}

// ServeHTTP godoc
// @Summary Загрузить файл
// @Description Тип VIDEO принимает только video/*, IMAGE только image/*.
// @Tags Admin
// @Accept  multipart/form-data
// @Produce  json
// @Param file formData file true "Файл"
// @Param title formData string true "Заголовок"
// @Param description formData string false "Описание"
// @Param type formData string true "VIDEO или IMAGE"
// @Param isPublished formData bool false "Опубликовать сразу"
// @Success 201 {object} models.Content "Созданная публикация"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Router /admin/content/upload [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contentupload"
	ownerID := middlewarectx.UserIDFrom(r.Context())
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", ownerID),
	)

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("upload too large", slog.Int64("limit", tooLarge.Limit))
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("file too large"))
			return
		}
		log.Info("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Info("file is missing", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	u := content.Upload{
		Title:       r.FormValue("title"),
		Type:        models.ContentType(strings.ToUpper(r.FormValue("type"))),
		Filename:    header.Filename,
		MIME:        header.Header.Get("Content-Type"),
		File:        file,
		IsPublished: parseBool(r.FormValue("isPublished")),
	}
	if d := r.FormValue("description"); d != "" {
		u.Description = &d
	}

	c, err := h.service.Upload(r.Context(), ownerID, u)
	if err != nil {
		log.Error("failed to upload content", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
