package repository

import (
	"context"
	"fmt"

	"github.com/fithub/membership-service/internal/models"
)

// PlanRevenueByMonth суммирует текущие цены планов по назначениям,
// начавшимся в [from, to), с группировкой по месяцу даты начала.
// Месяцы без назначений в результат не попадают.
func (s *Storage) PlanRevenueByMonth(ctx context.Context, from, to models.Date) ([]models.MonthlyRevenue, error) {
	const op = "storage.PlanRevenueByMonth"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT EXTRACT(YEAR FROM a.start_date)::int AS year,
			      EXTRACT(MONTH FROM a.start_date)::int AS month,
			      COALESCE(SUM(p.price), 0)::float8 AS revenue
			  FROM plan_assignments a
			  JOIN plans p ON p.id = a.plan_id
			  WHERE a.start_date >= $1 AND a.start_date < $2
			  GROUP BY 1, 2
			  ORDER BY 1, 2`
	rows, err := s.conn(ctx).QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.MonthlyRevenue, 0)
	for rows.Next() {
		var r models.MonthlyRevenue
		if err := rows.Scan(&r.Year, &r.Month, &r.PlanRevenue); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
