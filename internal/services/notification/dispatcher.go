// Package notification формирует уведомления участникам и отправляет их
// в очередь по принципу "отправил и забыл". Ошибки не пробрасываются
// вызывающему коду, а возвращаются как Result.
package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fithub/membership-service/internal/lib/metrics"
	"github.com/fithub/membership-service/internal/lib/rabbitmq"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
)

// Этапы, на которых отправка может не состояться.
const (
	StageRecipient = "recipient"
	StageRender    = "render"
	StagePublish   = "publish"
)

// Result итог попытки отправить уведомление.
type Result struct {
	MessageID string
	Stage     string
	Err       error
}

// OK сообщает, что сообщение опубликовано.
func (r Result) OK() bool {
	return r.Err == nil
}

// Publisher публикует сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey, messageID string, message any) error
}

// Dispatcher рендерит события в сообщения и публикует их в обменник уведомлений.
type Dispatcher struct {
	pub       Publisher
	templates Templates
	log       *slog.Logger
}

// NewDispatcher создаёт Dispatcher со встроенными шаблонами.
func NewDispatcher(pub Publisher, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		pub:       pub,
		templates: DefaultTemplates(),
		log:       log,
	}
}

// Notify публикует уведомление о событии ev. Метод никогда не возвращает ошибку:
// неудача описывается в Result и пишется в лог.
func (d *Dispatcher) Notify(ctx context.Context, ev models.NotificationEvent) Result {
	const op = "notification.Notify"
	log := d.log.With(slog.String("op", op), slog.String("type", string(ev.Type)), sl.MemberID(ev.MemberID))

	res := Result{MessageID: uuid.NewString()}
	fail := func(stage string, err error) Result {
		res.Stage, res.Err = stage, err
		metrics.Notifications.WithLabelValues(string(ev.Type), "failed").Inc()
		log.Warn("notification not sent", slog.String("stage", stage), sl.Err(err))
		return res
	}

	if ev.Recipient == "" {
		return fail(StageRecipient, errNoRecipient)
	}

	text, err := d.templates.Render(ev.Type, ev.Params)
	if err != nil {
		return fail(StageRender, err)
	}

	msg := models.NotificationMessage{
		ID:                   res.MessageID,
		RecipientPhoneNumber: ev.Recipient,
		NotificationType:     ev.Type,
		Message:              text,
		TemplateParams:       ev.Params,
	}
	if err := d.pub.Publish(ctx, rabbitmq.ExchangeNotifications, rabbitmq.RoutingKeyWhatsApp, res.MessageID, msg); err != nil {
		return fail(StagePublish, err)
	}

	metrics.Notifications.WithLabelValues(string(ev.Type), "published").Inc()
	log.Debug("notification published", slog.String("message_id", res.MessageID))
	return res
}
