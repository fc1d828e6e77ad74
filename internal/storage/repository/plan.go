package repository

import (
	"context"
	"fmt"

	"github.com/fithub/membership-service/internal/models"
)

// CreatePlan добавляет план в каталог и возвращает его ID.
func (s *Storage) CreatePlan(ctx context.Context, p models.Plan) (int64, error) {
	const op = "storage.CreatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO plans (name, description, price, duration_days)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query, p.Name, p.Description, p.Price, p.DurationDays).Scan(&id); err != nil {
		return 0, translate(op, err)
	}
	return id, nil
}

// GetPlan возвращает план по ID.
func (s *Storage) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.GetPlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, name, description, price, duration_days FROM plans WHERE id = $1`
	var p models.Plan
	err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays)
	if err != nil {
		return nil, translate(op, err)
	}
	return &p, nil
}

// ListPlans возвращает весь каталог по порядку ID.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListPlans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT id, name, description, price, duration_days FROM plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Plan, 0)
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePlan перезаписывает поля плана p.ID.
func (s *Storage) UpdatePlan(ctx context.Context, p models.Plan) error {
	const op = "storage.UpdatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE plans
			  SET name = $1, description = $2, price = $3, duration_days = $4
			  WHERE id = $5`
	res, err := s.conn(ctx).ExecContext(ctx, query, p.Name, p.Description, p.Price, p.DurationDays, p.ID)
	if err != nil {
		return translate(op, err)
	}
	return expectAffected(op, res)
}

// DeletePlan удаляет план. План, на который ссылаются подписки или назначения, удалить нельзя.
func (s *Storage) DeletePlan(ctx context.Context, id int64) error {
	const op = "storage.DeletePlan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return translate(op, err)
	}
	return expectAffected(op, res)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectAffected(op string, res rowsAffecter) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
