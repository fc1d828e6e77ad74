package repository

import (
	"context"
	"fmt"

	"github.com/fithub/membership-service/internal/models"
)

// UpsertAssignment создаёт назначение плана участнику или перезаписывает
// существующее (у участника не больше одного назначения). Возвращает ID строки.
func (s *Storage) UpsertAssignment(ctx context.Context, a models.PlanAssignment) (int64, error) {
	const op = "storage.UpsertAssignment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO plan_assignments (member_id, plan_id, start_date)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (member_id) DO UPDATE
			  SET plan_id = EXCLUDED.plan_id, start_date = EXCLUDED.start_date, updated_at = now()
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query, a.MemberID, a.Plan.ID, a.StartDate).Scan(&id); err != nil {
		return 0, translate(op, err)
	}
	return id, nil
}

// GetAssignment возвращает назначение участника или ErrNotFound.
func (s *Storage) GetAssignment(ctx context.Context, memberID int64) (*models.PlanAssignment, error) {
	const op = "storage.GetAssignment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT a.id, a.member_id, a.start_date,
			      p.id, p.name, p.description, p.price, p.duration_days
			  FROM plan_assignments a
			  JOIN plans p ON p.id = a.plan_id
			  WHERE a.member_id = $1`
	var a models.PlanAssignment
	err := s.conn(ctx).QueryRowContext(ctx, query, memberID).Scan(&a.ID, &a.MemberID, &a.StartDate,
		&a.Plan.ID, &a.Plan.Name, &a.Plan.Description, &a.Plan.Price, &a.Plan.DurationDays)
	if err != nil {
		return nil, translate(op, err)
	}
	return &a, nil
}

// DeleteAssignment удаляет назначение участника и возвращает число удалённых строк.
func (s *Storage) DeleteAssignment(ctx context.Context, memberID int64) (int64, error) {
	const op = "storage.DeleteAssignment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM plan_assignments WHERE member_id = $1`, memberID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
