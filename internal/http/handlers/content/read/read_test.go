package read

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/satsclub/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Published(ctx context.Context, id string) (*models.Content, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Content)
	return c, args.Error(1)
}

func TestHandler_ServeHTTP(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Published", mock.Anything, "c1").Return(&models.Content{ID: "c1", Title: "Post", Body: "text", IsPublished: true}, nil)
	svc.On("Published", mock.Anything, "draft").Return(nil, fmt.Errorf("content.Published: %w", models.ErrNotFound))

	r := chi.NewRouter()
	r.Get("/content/{id}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP)

	tests := []struct {
		id         string
		wantStatus int
		wantIn     string
	}{
		{id: "c1", wantStatus: http.StatusOK, wantIn: `"content":"text"`},
		{id: "draft", wantStatus: http.StatusNotFound, wantIn: `"error":"not found"`},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/content/"+tt.id, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantIn)
		})
	}
}
