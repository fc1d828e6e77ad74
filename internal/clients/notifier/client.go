// Package notifier клиент внешнего сервиса уведомлений, который доставляет
// сообщения участникам (WhatsApp).
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/fithub/membership-service/internal/config"
	"github.com/fithub/membership-service/internal/lib/breaker"
	"github.com/fithub/membership-service/internal/models"
)

const sendPath = "/api/notifications/send"

// Client отправляет уведомления POST-запросом через автоматический выключатель.
type Client struct {
	url  string
	http *http.Client
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// New создаёт клиента сервиса уведомлений.
func New(cfg config.NotificationService, cbCfg config.CircuitBreaker, log *slog.Logger) *Client {
	return &Client{
		url:  strings.TrimRight(cfg.BaseURL, "/") + sendPath,
		http: &http.Client{Timeout: cfg.Timeout},
		cb:   breaker.New[struct{}]("notification-service", cbCfg, log, nil),
	}
}

// Send доставляет сообщение. Любой ответ кроме 2xx считается ошибкой.
func (c *Client) Send(ctx context.Context, msg models.NotificationMessage) error {
	const op = "notifier.Send"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = c.cb.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		if msg.ID != "" {
			req.Header.Set("Idempotency-Key", msg.ID)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return struct{}{}, fmt.Errorf("notification service responded %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
