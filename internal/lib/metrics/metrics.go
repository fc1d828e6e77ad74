// Package metrics регистрирует prometheus-метрики сервиса абонементов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubscriptionsCreated созданные периоды подписки, kind=subscribe|renew.
	SubscriptionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membership",
		Name:      "subscriptions_created_total",
		Help:      "Number of subscription periods created.",
	}, []string{"kind"})

	// SubscriptionsExpired подписки, переведённые проверкой в EXPIRED.
	SubscriptionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "membership",
		Name:      "subscriptions_expired_total",
		Help:      "Number of subscriptions flipped to EXPIRED by the daily sweep.",
	})

	// SweepRuns запуски ежедневной проверки, result=ok|error.
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membership",
		Name:      "sweep_runs_total",
		Help:      "Number of expiry sweep runs.",
	}, []string{"result"})

	// Notifications уведомления, event=тип, result=published|failed|delivered|rejected.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membership",
		Name:      "notifications_total",
		Help:      "Notifications by event type and outcome.",
	}, []string{"event", "result"})

	// PlanAssignments операции с назначенными планами, op=assign|remove.
	PlanAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membership",
		Name:      "plan_assignments_total",
		Help:      "Plan assignment operations.",
	}, []string{"op"})

	// BreakerState переключения автоматических выключателей внешних клиентов.
	BreakerState = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membership",
		Name:      "circuit_breaker_transitions_total",
		Help:      "Circuit breaker state transitions.",
	}, []string{"name", "to"})
)
