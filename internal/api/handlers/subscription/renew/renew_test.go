package renew

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Renew(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRenewHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := models.SubscriptionRequest{MemberID: 10, PlanID: 1}

	t.Run("created", func(t *testing.T) {
		m := new(MockService)
		m.On("Renew", mock.Anything, req).Return(&models.Subscription{ID: 8, MemberID: 10, Status: models.StatusActive}, nil).Once()

		w := httptest.NewRecorder()
		New(logger, m).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/renew",
			strings.NewReader(`{"memberId":10,"planId":1}`)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":8`)
	})

	t.Run("no history", func(t *testing.T) {
		m := new(MockService)
		m.On("Renew", mock.Anything, req).
			Return(nil, apperr.New(apperr.BadRequest, "No existing subscription found for member 10, use subscribe")).Once()

		w := httptest.NewRecorder()
		New(logger, m).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/renew",
			strings.NewReader(`{"memberId":10,"planId":1}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "use subscribe")
	})

	t.Run("negative member id", func(t *testing.T) {
		m := new(MockService)
		w := httptest.NewRecorder()
		New(logger, m).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/renew",
			strings.NewReader(`{"memberId":-1,"planId":1}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.AssertNotCalled(t, "Renew", mock.Anything, mock.Anything)
	})
}
