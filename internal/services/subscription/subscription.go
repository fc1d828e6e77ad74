// Package services содержит бизнес-логику журнала подписок: оформление,
// продление, подтверждение оплаты и ежедневное истечение.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fithub/membership-service/internal/clients/userdir"
	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/lib/metrics"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
	"github.com/fithub/membership-service/internal/services/notification"
	"github.com/fithub/membership-service/internal/storage/repository"
)

// SubscriptionRepository хранилище периодов подписки.
type SubscriptionRepository interface {
	// WithMemberLock выполняет fn под блокировкой участника в одной транзакции.
	WithMemberLock(ctx context.Context, memberID int64, fn func(ctx context.Context) error) error
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	LatestSubscription(ctx context.Context, memberID int64) (*models.Subscription, error)
	SetSubscriptionStatus(ctx context.Context, id int64, status models.SubscriptionStatus) error
	ConfirmPayment(ctx context.Context, id int64, paidOn models.Date) (bool, error)
	ListSubscriptionsByMember(ctx context.Context, memberID int64) ([]models.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	ExpireSubscriptions(ctx context.Context, today models.Date, limit int) ([]models.Subscription, error)
}

// PlanCatalog отдаёт план по ID. Отсутствующий план возвращается как apperr.NotFound.
type PlanCatalog interface {
	Get(ctx context.Context, id int64) (*models.Plan, error)
}

// UserDirectory внешний справочник пользователей.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Member, error)
}

// PaymentProcessor списывает стоимость плана.
type PaymentProcessor interface {
	Charge(ctx context.Context, member models.Member, plan models.Plan) error
}

// Notifier отправляет уведомление. Результат только логируется.
type Notifier interface {
	Notify(ctx context.Context, ev models.NotificationEvent) notification.Result
}

// SubscriptionService реализует операции журнала подписок.
type SubscriptionService struct {
	repo      SubscriptionRepository
	plans     PlanCatalog
	users     UserDirectory
	payments  PaymentProcessor
	notifier  Notifier
	log       *slog.Logger
	now       func() time.Time
	batchSize int
}

// Option настраивает SubscriptionService.
type Option func(*SubscriptionService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *SubscriptionService) { s.now = now }
}

// WithBatchSize задаёт размер пачки при истечении подписок.
func WithBatchSize(n int) Option {
	return func(s *SubscriptionService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(
	repo SubscriptionRepository,
	plans PlanCatalog,
	users UserDirectory,
	payments PaymentProcessor,
	notifier Notifier,
	log *slog.Logger,
	opts ...Option,
) *SubscriptionService {
	s := &SubscriptionService{
		repo:      repo,
		plans:     plans,
		users:     users,
		payments:  payments,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
		batchSize: 500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SubscriptionService) today() models.Date {
	return models.NewDate(s.now())
}

// member проверяет, что участник существует и имеет роль MEMBER.
func (s *SubscriptionService) member(ctx context.Context, id int64) (*models.Member, error) {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to check member")
	}
	if !exists {
		return nil, apperr.New(apperr.NotFound, "Member not found with id: %d", id)
	}

	m, err := s.users.GetByID(ctx, id)
	if errors.Is(err, userdir.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Member not found with id: %d", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to load member")
	}
	if !m.IsMember() {
		return nil, apperr.New(apperr.BadRequest, "User with id %d is not a member", id)
	}
	return m, nil
}

// Subscribe оформляет новую подписку участника на план начиная с сегодняшнего дня.
// Уже действующие подписки не проверяются.
func (s *SubscriptionService) Subscribe(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error) {
	const op = "services.Subscribe"
	log := s.log.With(slog.String("op", op), sl.MemberID(req.MemberID), slog.Int64("plan_id", req.PlanID))

	member, err := s.member(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	err = s.repo.WithMemberLock(ctx, member.ID, func(ctx context.Context) error {
		if err := s.payments.Charge(ctx, *member, *plan); err != nil {
			return apperr.Wrap(apperr.PaymentFailed, err, "Payment failed for plan: %s", plan.Name)
		}

		start := s.today()
		sub = models.Subscription{
			MemberID:  member.ID,
			Plan:      *plan,
			StartDate: start,
			EndDate:   start.AddDays(plan.DurationDays),
			Status:    models.StatusActive,
		}
		id, err := s.repo.CreateSubscription(ctx, sub)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		sub.ID = id
		return nil
	})
	if apperr.KindOf(err) == apperr.PaymentFailed {
		log.Warn("payment failed", sl.Err(err))
		s.notify(ctx, models.NotificationPaymentFailed, member, plan.Name, nil)
		return nil, err
	}
	if err != nil {
		return nil, unexpected(err, "failed to create subscription")
	}

	metrics.SubscriptionsCreated.WithLabelValues("subscribe").Inc()
	log.Info("subscription created", slog.Int64("subscription_id", sub.ID), slog.String("end_date", sub.EndDate.String()))
	s.notify(ctx, models.NotificationPaymentConfirmation, member, plan.Name, &sub)
	return &sub, nil
}

// Renew продлевает последнюю подписку участника на тот же план. Новый период
// начинается с более поздней из дат: сегодня или окончание прошлого периода.
// PlanID запроса не используется.
func (s *SubscriptionService) Renew(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error) {
	const op = "services.Renew"
	log := s.log.With(slog.String("op", op), sl.MemberID(req.MemberID))

	member, err := s.member(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	err = s.repo.WithMemberLock(ctx, member.ID, func(ctx context.Context) error {
		prev, err := s.repo.LatestSubscription(ctx, member.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.BadRequest, "No existing subscription found for member %d, use subscribe", member.ID)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if req.PlanID != 0 && req.PlanID != prev.Plan.ID {
			log.Debug("requested plan ignored on renewal",
				slog.Int64("requested_plan_id", req.PlanID),
				slog.Int64("plan_id", prev.Plan.ID))
		}

		if err := s.payments.Charge(ctx, *member, prev.Plan); err != nil {
			return apperr.Wrap(apperr.PaymentFailed, err, "Payment failed for plan: %s", prev.Plan.Name)
		}

		start := models.LaterOf(s.today(), prev.EndDate)
		if prev.Status == models.StatusActive {
			if err := s.repo.SetSubscriptionStatus(ctx, prev.ID, models.StatusExpired); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		sub = models.Subscription{
			MemberID:  member.ID,
			Plan:      prev.Plan,
			StartDate: start,
			EndDate:   start.AddDays(prev.Plan.DurationDays),
			Status:    models.StatusActive,
		}
		id, err := s.repo.CreateSubscription(ctx, sub)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		sub.ID = id
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.PaymentFailed {
			log.Warn("payment failed", sl.Err(err))
		}
		return nil, unexpected(err, "failed to renew subscription")
	}

	metrics.SubscriptionsCreated.WithLabelValues("renew").Inc()
	log.Info("subscription renewed", slog.Int64("subscription_id", sub.ID), slog.String("end_date", sub.EndDate.String()))
	s.notify(ctx, models.NotificationMembershipRenewal, member, sub.Plan.Name, &sub)
	return &sub, nil
}

// ConfirmPayment отмечает оплату подписки id. Повторное подтверждение
// возвращает подписку без изменений и без уведомления.
func (s *SubscriptionService) ConfirmPayment(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "services.ConfirmPayment"
	log := s.log.With(slog.String("op", op), slog.Int64("subscription_id", id))

	sub, err := s.repo.GetSubscription(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Subscription not found with id: %d", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to load subscription")
	}
	if sub.PaymentConfirmed {
		return sub, nil
	}

	today := s.today()
	changed, err := s.repo.ConfirmPayment(ctx, id, today)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to confirm payment")
	}
	if !changed {
		return s.reload(ctx, id)
	}
	sub.PaymentConfirmed = true
	sub.PaymentDate = &today
	log.Info("payment confirmed", sl.MemberID(sub.MemberID))

	member, err := s.users.GetByID(ctx, sub.MemberID)
	if err != nil {
		log.Warn("member lookup for notification failed", sl.Err(err))
		return sub, nil
	}
	s.notify(ctx, models.NotificationPaymentConfirmation, member, sub.Plan.Name, sub)
	return sub, nil
}

func (s *SubscriptionService) reload(ctx context.Context, id int64) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to load subscription")
	}
	return sub, nil
}

// ListByUser возвращает все подписки участника без фильтрации по статусу.
func (s *SubscriptionService) ListByUser(ctx context.Context, memberID int64) ([]models.Subscription, error) {
	subs, err := s.repo.ListSubscriptionsByMember(ctx, memberID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to list subscriptions")
	}
	return subs, nil
}

// ListAll возвращает все подписки.
func (s *SubscriptionService) ListAll(ctx context.Context) ([]models.Subscription, error) {
	subs, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to list subscriptions")
	}
	return subs, nil
}

// ExpireSubscriptions переводит в EXPIRED все активные подписки, закончившиеся
// до сегодняшнего дня, и уведомляет их владельцев. Повторный запуск в тот же
// день ничего не меняет. Возвращает число изменённых подписок.
func (s *SubscriptionService) ExpireSubscriptions(ctx context.Context) (int, error) {
	const op = "services.ExpireSubscriptions"
	log := s.log.With(slog.String("op", op))

	today := s.today()
	total := 0
	for {
		batch, err := s.repo.ExpireSubscriptions(ctx, today, s.batchSize)
		if err != nil {
			metrics.SweepRuns.WithLabelValues("error").Inc()
			return total, fmt.Errorf("%s: %w", op, err)
		}
		total += len(batch)
		metrics.SubscriptionsExpired.Add(float64(len(batch)))

		for i := range batch {
			s.notifyExpired(ctx, batch[i])
		}
		if len(batch) < s.batchSize {
			break
		}
	}

	metrics.SweepRuns.WithLabelValues("ok").Inc()
	log.Info("expiry sweep finished", slog.Int("expired", total), slog.String("today", today.String()))
	return total, nil
}

func (s *SubscriptionService) notifyExpired(ctx context.Context, sub models.Subscription) {
	member, err := s.users.GetByID(ctx, sub.MemberID)
	if err != nil {
		s.log.Warn("member lookup for expiry notification failed", sl.MemberID(sub.MemberID), sl.Err(err))
		return
	}
	s.notify(ctx, models.NotificationMembershipExpiry, member, sub.Plan.Name, &sub)
}

func (s *SubscriptionService) notify(ctx context.Context, kind models.NotificationType, member *models.Member, planName string, sub *models.Subscription) {
	params := map[string]string{
		models.ParamName: member.Name,
		models.ParamPlan: planName,
	}
	if sub != nil {
		params[models.ParamStart] = sub.StartDate.String()
		params[models.ParamEnd] = sub.EndDate.String()
	}
	s.notifier.Notify(ctx, models.NotificationEvent{
		Type:      kind,
		MemberID:  member.ID,
		Recipient: member.Phone,
		Params:    params,
	})
}

// unexpected оставляет доменные ошибки как есть, остальные заворачивает в Unexpected.
func unexpected(err error, msg string) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Wrap(apperr.Unexpected, err, "%s", msg)
}
