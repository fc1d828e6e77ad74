// Package services отвечает за текущий план, назначенный участнику.
// Дата окончания не хранится и считается при каждом чтении.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/lib/metrics"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
	"github.com/fithub/membership-service/internal/services/notification"
	"github.com/fithub/membership-service/internal/storage/repository"
)

// AssignmentRepository хранилище назначений, не больше одного на участника.
type AssignmentRepository interface {
	UpsertAssignment(ctx context.Context, a models.PlanAssignment) (int64, error)
	GetAssignment(ctx context.Context, memberID int64) (*models.PlanAssignment, error)
	DeleteAssignment(ctx context.Context, memberID int64) (int64, error)
}

// PlanCatalog каталог планов.
type PlanCatalog interface {
	Get(ctx context.Context, id int64) (*models.Plan, error)
}

// MemberLookup ищет карточку участника для уведомления.
type MemberLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Member, error)
}

// Notifier отправляет уведомление. Результат только логируется.
type Notifier interface {
	Notify(ctx context.Context, ev models.NotificationEvent) notification.Result
}

// AssignmentService управляет назначением плана участнику.
type AssignmentService struct {
	repo     AssignmentRepository
	plans    PlanCatalog
	members  MemberLookup
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// Option настраивает AssignmentService.
type Option func(*AssignmentService)

// WithClock задаёт источник текущего времени для расчёта expired и daysLeft.
func WithClock(now func() time.Time) Option {
	return func(s *AssignmentService) { s.now = now }
}

// NewAssignmentService создает новый экземпляр AssignmentService.
func NewAssignmentService(repo AssignmentRepository, plans PlanCatalog, members MemberLookup, notifier Notifier, log *slog.Logger, opts ...Option) *AssignmentService {
	s := &AssignmentService{
		repo:     repo,
		plans:    plans,
		members:  members,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AssignPlan назначает участнику план planID с датой начала startDate (yyyy-MM-dd),
// заменяя предыдущее назначение.
func (s *AssignmentService) AssignPlan(ctx context.Context, memberID, planID int64, startDate string) (*models.PlanResponse, error) {
	const op = "services.AssignPlan"
	log := s.log.With(slog.String("op", op), sl.MemberID(memberID), slog.Int64("plan_id", planID))

	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	start, err := models.ParseDate(startDate)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, err, "Invalid start date %q, expected yyyy-MM-dd", startDate)
	}

	a := models.PlanAssignment{MemberID: memberID, Plan: *plan, StartDate: start}
	if a.ID, err = s.repo.UpsertAssignment(ctx, a); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, apperr.New(apperr.NotFound, "Plan not found with id: %d", planID)
		}
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to assign plan")
	}

	metrics.PlanAssignments.WithLabelValues("assign").Inc()
	resp := models.NewPlanResponse(a.Plan, a.StartDate, models.NewDate(s.now()))
	log.Info("plan assigned", slog.String("start_date", start.String()), slog.String("end_date", resp.EndDate.String()))

	s.notifyAssigned(ctx, log, memberID, plan.Name, start)
	return &resp, nil
}

// GetPlanForMember возвращает назначенный план или nil, если назначения нет.
func (s *AssignmentService) GetPlanForMember(ctx context.Context, memberID int64) (*models.PlanResponse, error) {
	a, err := s.repo.GetAssignment(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to load assignment")
	}

	resp := models.NewPlanResponse(a.Plan, a.StartDate, models.NewDate(s.now()))
	return &resp, nil
}

// RemovePlanFromMember удаляет назначение. Отсутствие назначения не ошибка.
func (s *AssignmentService) RemovePlanFromMember(ctx context.Context, memberID int64) error {
	n, err := s.repo.DeleteAssignment(ctx, memberID)
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, err, "failed to remove assignment")
	}
	if n > 0 {
		metrics.PlanAssignments.WithLabelValues("remove").Inc()
		s.log.Info("plan assignment removed", sl.MemberID(memberID))
	}
	return nil
}

func (s *AssignmentService) notifyAssigned(ctx context.Context, log *slog.Logger, memberID int64, planName string, start models.Date) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		log.Warn("member lookup for notification failed", sl.Err(err))
		return
	}
	s.notifier.Notify(ctx, models.NotificationEvent{
		Type:      models.NotificationPlanAssigned,
		MemberID:  memberID,
		Recipient: member.Phone,
		Params: map[string]string{
			models.ParamName:  member.Name,
			models.ParamPlan:  planName,
			models.ParamStart: start.String(),
		},
	})
}
