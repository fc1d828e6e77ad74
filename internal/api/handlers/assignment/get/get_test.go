package get

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fithub/membership-service/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetPlanForMember(ctx context.Context, memberID int64) (*models.PlanResponse, error) {
	args := m.Called(ctx, memberID)
	if res := args.Get(0); res != nil {
		return res.(*models.PlanResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func serve(h http.Handler, memberID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/member/"+memberID+"/plan", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("memberId", memberID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	start := models.NewDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	resp := models.NewPlanResponse(models.Plan{ID: 2, Name: "Cardio", DurationDays: 28}, start, start.AddDays(3))

	m := new(MockService)
	m.On("GetPlanForMember", mock.Anything, int64(7)).Return(&resp, nil).Once()
	m.On("GetPlanForMember", mock.Anything, int64(8)).Return(nil, nil).Once()
	h := New(logger, m)

	w := serve(h, "7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"daysLeft":25`)

	w = serve(h, "8")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = serve(h, "-")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.AssertExpectations(t)
}
