package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fithub/membership-service/internal/config"
	"github.com/fithub/membership-service/internal/models"
)

func TestClient_Send(t *testing.T) {
	var got models.NotificationMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/notifications/send", r.URL.Path)
		assert.Equal(t, "n-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(config.NotificationService{BaseURL: srv.URL, Timeout: time.Second}, config.CircuitBreaker{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	msg := models.NotificationMessage{
		ID:                   "n-1",
		RecipientPhoneNumber: "+100",
		NotificationType:     models.NotificationMembershipRenewal,
		Message:              "Dear Alice, your membership has been successfully renewed.",
		TemplateParams:       map[string]string{"name": "Alice"},
	}
	require.NoError(t, c.Send(context.Background(), msg))
	assert.Equal(t, msg, got)
}

func TestClient_Send_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(config.NotificationService{BaseURL: srv.URL, Timeout: time.Second}, config.CircuitBreaker{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := c.Send(context.Background(), models.NotificationMessage{ID: "n-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifier.Send")
}
