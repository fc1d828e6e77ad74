package read

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id int64) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение плана",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, int64(3)).Return(&models.Plan{ID: 3, Name: "Quarter", DurationDays: 90}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Quarter"`,
		},
		{
			name:           "некорректный id в URL",
			id:             "abc",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid plan id",
		},
		{
			name: "план не найден",
			id:   "77",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, int64(77)).Return(nil, apperr.New(apperr.NotFound, "Plan not found with id: 77"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"kind":"NOT_FOUND"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
