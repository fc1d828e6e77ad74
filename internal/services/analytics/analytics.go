// Package services считает выручку от назначенных участникам планов.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
)

// TrendMonths длина ряда RevenueTrend.
const TrendMonths = 12

// RevenueRepository агрегирует цены планов по месяцу начала назначения.
type RevenueRepository interface {
	PlanRevenueByMonth(ctx context.Context, from, to models.Date) ([]models.MonthlyRevenue, error)
}

// AnalyticsService отдаёт помесячную выручку.
type AnalyticsService struct {
	repo RevenueRepository
	log  *slog.Logger
	now  func() time.Time
}

// Option настраивает AnalyticsService.
type Option func(*AnalyticsService)

// WithClock задаёт источник текущего времени для месяца по умолчанию.
func WithClock(now func() time.Time) Option {
	return func(s *AnalyticsService) { s.now = now }
}

// NewAnalyticsService создает новый экземпляр AnalyticsService.
func NewAnalyticsService(repo RevenueRepository, log *slog.Logger, opts ...Option) *AnalyticsService {
	s := &AnalyticsService{repo: repo, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MonthlyRevenue выручка за месяц month года year.
// Нулевые month или year заменяются текущими.
func (s *AnalyticsService) MonthlyRevenue(ctx context.Context, month, year int) (*models.MonthlyRevenue, error) {
	trend, err := s.revenue(ctx, "services.MonthlyRevenue", month, year, 1)
	if err != nil {
		return nil, err
	}
	return &trend[0], nil
}

// RevenueTrend выручка за TrendMonths месяцев, заканчивая month/year,
// по возрастанию. Месяцы без назначений идут с нулём.
func (s *AnalyticsService) RevenueTrend(ctx context.Context, month, year int) ([]models.MonthlyRevenue, error) {
	return s.revenue(ctx, "services.RevenueTrend", month, year, TrendMonths)
}

func (s *AnalyticsService) revenue(ctx context.Context, op string, month, year, months int) ([]models.MonthlyRevenue, error) {
	log := s.log.With(slog.String("op", op), slog.Int("month", month), slog.Int("year", year))

	month, year, err := s.resolve(month, year)
	if err != nil {
		return nil, err
	}

	last := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	first := last.AddDate(0, 1-months, 0)
	rows, err := s.repo.PlanRevenueByMonth(ctx, models.NewDate(first), models.NewDate(last.AddDate(0, 1, 0)))
	if err != nil {
		log.Error("failed to aggregate revenue", sl.Err(err))
		return nil, apperr.Wrap(apperr.Unexpected, err, "failed to calculate revenue")
	}

	byMonth := make(map[[2]int]float64, len(rows))
	for _, r := range rows {
		byMonth[[2]int{r.Year, r.Month}] = r.PlanRevenue
	}
	result := make([]models.MonthlyRevenue, 0, months)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		key := [2]int{m.Year(), int(m.Month())}
		result = append(result, models.MonthlyRevenue{Month: key[1], Year: key[0], PlanRevenue: byMonth[key]})
	}
	return result, nil
}

func (s *AnalyticsService) resolve(month, year int) (int, int, error) {
	now := s.now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return 0, 0, apperr.New(apperr.BadRequest, "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return 0, 0, apperr.New(apperr.BadRequest, "year must be between 1 and 9999")
	}
	return month, year, nil
}
