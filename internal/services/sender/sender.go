// Package services доставляет уведомления из очереди во внешний сервис уведомлений.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fithub/membership-service/internal/lib/metrics"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
)

var errEmptyMessage = errors.New("message has no recipient or text")

// Transport отправляет сообщение во внешний сервис.
type Transport interface {
	Send(ctx context.Context, msg models.NotificationMessage) error
}

type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// Handle разбирает тело сообщения из очереди и отправляет его. Ошибка означает,
// что сообщение не доставлено. Повторной попытки не будет.
func (s *SenderService) Handle(ctx context.Context, body []byte) error {
	const op = "sender.Handle"

	var msg models.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log := s.log.With(
		slog.String("op", op),
		slog.String("message_id", msg.ID),
		slog.String("type", string(msg.NotificationType)),
	)

	if msg.RecipientPhoneNumber == "" || msg.Message == "" {
		metrics.Notifications.WithLabelValues(string(msg.NotificationType), "rejected").Inc()
		return fmt.Errorf("%s: %w", op, errEmptyMessage)
	}

	if err := s.transport.Send(ctx, msg); err != nil {
		metrics.Notifications.WithLabelValues(string(msg.NotificationType), "rejected").Inc()
		log.Warn("notification delivery failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.Notifications.WithLabelValues(string(msg.NotificationType), "delivered").Inc()
	log.Info("notification delivered")
	return nil
}
