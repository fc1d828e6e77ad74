package revenue

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) MonthlyRevenue(ctx context.Context, month, year int) (*models.MonthlyRevenue, error) {
	args := m.Called(ctx, month, year)
	if res := args.Get(0); res != nil {
		return res.(*models.MonthlyRevenue), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRevenueHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "выручка за указанный месяц",
			query: "?month=2&year=2025",
			setupMock: func(m *MockService) {
				m.On("MonthlyRevenue", mock.Anything, 2, 2025).
					Return(&models.MonthlyRevenue{Month: 2, Year: 2025, PlanRevenue: 120.5}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"planRevenue":120.5`,
		},
		{
			name:  "без параметров передаются нули",
			query: "",
			setupMock: func(m *MockService) {
				m.On("MonthlyRevenue", mock.Anything, 0, 0).
					Return(&models.MonthlyRevenue{Month: 4, Year: 2025}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"month":4`,
		},
		{
			name:           "месяц не число",
			query:          "?month=march",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid month",
		},
		{
			name:           "год не число",
			query:          "?month=3&year=20x5",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid year",
		},
		{
			name:  "месяц вне диапазона",
			query: "?month=13",
			setupMock: func(m *MockService) {
				m.On("MonthlyRevenue", mock.Anything, 13, 0).
					Return(nil, apperr.New(apperr.BadRequest, "month must be between 1 and 12"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"kind":"BAD_REQUEST"`,
		},
		{
			name:  "ошибка хранилища",
			query: "?month=1&year=2025",
			setupMock: func(m *MockService) {
				m.On("MonthlyRevenue", mock.Anything, 1, 2025).
					Return(nil, apperr.New(apperr.Unexpected, "failed to calculate revenue"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "failed to calculate revenue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/revenue"+tt.query, nil)
			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
