// Package breaker создаёт автоматические выключатели для HTTP-клиентов внешних сервисов.
package breaker

import (
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/fithub/membership-service/internal/config"
	"github.com/fithub/membership-service/internal/lib/metrics"
)

// New создаёт выключатель name по настройкам cfg. Выключатель размыкается после
// cfg.FailureThreshold подряд неудачных вызовов. isSuccessful решает, какие ошибки
// не считать отказом сервиса (например, 404). При nil любая ошибка считается отказом.
func New[T any](name string, cfg config.CircuitBreaker, log *slog.Logger, isSuccessful func(error) bool) *gobreaker.CircuitBreaker[T] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name, to.String()).Inc()
		},
		IsSuccessful: isSuccessful,
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}
