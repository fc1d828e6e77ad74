// Package payment содержит имитацию платёжного шлюза. Реальной интеграции
// нет: списание всегда проходит успешно.
package payment

import (
	"context"
	"log/slog"

	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
)

// Simulator имитирует списание стоимости плана с участника.
type Simulator struct {
	log *slog.Logger
}

// NewSimulator создаёт Simulator.
func NewSimulator(log *slog.Logger) *Simulator {
	return &Simulator{log: log}
}

// Charge "списывает" стоимость plan с участника member. Всегда успешно.
func (s *Simulator) Charge(ctx context.Context, member models.Member, plan models.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Debug("payment simulated",
		sl.MemberID(member.ID),
		slog.Int64("plan_id", plan.ID),
		slog.Float64("amount", plan.Price),
	)
	return nil
}
