package repository

import (
	"context"
	"fmt"

	"github.com/fithub/membership-service/internal/models"
)

const subscriptionColumns = `s.id, s.member_id, s.start_date, s.end_date, s.status, s.payment_confirmed, s.payment_date,
			  p.id, p.name, p.description, p.price, p.duration_days`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.MemberID, &sub.StartDate, &sub.EndDate, &sub.Status, &sub.PaymentConfirmed, &sub.PaymentDate,
		&sub.Plan.ID, &sub.Plan.Name, &sub.Plan.Description, &sub.Plan.Price, &sub.Plan.DurationDays)
	return sub, err
}

// CreateSubscription вставляет период подписки и возвращает его ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO subscriptions (member_id, plan_id, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var id int64
	err := s.conn(ctx).QueryRowContext(ctx, query,
		sub.MemberID, sub.Plan.ID, sub.StartDate, sub.EndDate, string(sub.Status)).Scan(&id)
	if err != nil {
		return 0, translate(op, err)
	}
	return id, nil
}

// GetSubscription возвращает подписку по ID.
func (s *Storage) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.id = $1`
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate(op, err)
	}
	return &sub, nil
}

// LatestSubscription возвращает подписку участника с самой поздней датой окончания.
// Внутри транзакции строка блокируется до её завершения.
func (s *Storage) LatestSubscription(ctx context.Context, memberID int64) (*models.Subscription, error) {
	const op = "storage.LatestSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.member_id = $1
			  ORDER BY s.end_date DESC, s.id DESC
			  LIMIT 1
			  FOR UPDATE OF s`
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query, memberID))
	if err != nil {
		return nil, translate(op, err)
	}
	return &sub, nil
}

// SetSubscriptionStatus меняет статус подписки.
func (s *Storage) SetSubscriptionStatus(ctx context.Context, id int64, status models.SubscriptionStatus) error {
	const op = "storage.SetSubscriptionStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE subscriptions SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectAffected(op, res)
}

// ConfirmPayment отмечает оплату подписки датой paidOn. Возвращает false,
// если оплата уже была подтверждена ранее.
func (s *Storage) ConfirmPayment(ctx context.Context, id int64, paidOn models.Date) (bool, error) {
	const op = "storage.ConfirmPayment"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `UPDATE subscriptions
			  SET payment_confirmed = true, payment_date = $1
			  WHERE id = $2 AND NOT payment_confirmed`
	res, err := s.conn(ctx).ExecContext(ctx, query, paidOn, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// ListSubscriptionsByMember возвращает все подписки участника, новые первыми.
func (s *Storage) ListSubscriptionsByMember(ctx context.Context, memberID int64) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptionsByMember"
	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.member_id = $1
			  ORDER BY s.start_date DESC, s.id DESC`
	return s.listSubscriptions(ctx, op, query, memberID)
}

// ListSubscriptions возвращает все подписки.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  ORDER BY s.id`
	return s.listSubscriptions(ctx, op, query)
}

// ExpireSubscriptions переводит в EXPIRED не более limit активных подписок
// с датой окончания раньше today и возвращает изменённые строки. Строки,
// заблокированные параллельным продлением, пропускаются.
func (s *Storage) ExpireSubscriptions(ctx context.Context, today models.Date, limit int) ([]models.Subscription, error) {
	const op = "storage.ExpireSubscriptions"
	query := `WITH due AS (
				  SELECT id FROM subscriptions
				  WHERE status = 'ACTIVE' AND end_date < $1
				  ORDER BY id
				  LIMIT $2
				  FOR UPDATE SKIP LOCKED
			  )
			  UPDATE subscriptions s
			  SET status = 'EXPIRED'
			  FROM due, plans p
			  WHERE s.id = due.id AND p.id = s.plan_id
			  RETURNING ` + subscriptionColumns
	return s.listSubscriptions(ctx, op, query, today, limit)
}

func (s *Storage) listSubscriptions(ctx context.Context, op, query string, args ...any) ([]models.Subscription, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
