// Package membership собирает HTTP API сервиса абонементов.
package membership

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fithub/membership-service/internal/api/handlers/analytics/revenue"
	"github.com/fithub/membership-service/internal/api/handlers/analytics/trend"
	"github.com/fithub/membership-service/internal/api/handlers/assignment/assign"
	assignmentget "github.com/fithub/membership-service/internal/api/handlers/assignment/get"
	assignmentremove "github.com/fithub/membership-service/internal/api/handlers/assignment/remove"
	"github.com/fithub/membership-service/internal/api/handlers/health"
	plancreate "github.com/fithub/membership-service/internal/api/handlers/plan/create"
	planlist "github.com/fithub/membership-service/internal/api/handlers/plan/list"
	planread "github.com/fithub/membership-service/internal/api/handlers/plan/read"
	planremove "github.com/fithub/membership-service/internal/api/handlers/plan/remove"
	planupdate "github.com/fithub/membership-service/internal/api/handlers/plan/update"
	"github.com/fithub/membership-service/internal/api/handlers/subscription/confirm"
	"github.com/fithub/membership-service/internal/api/handlers/subscription/listall"
	"github.com/fithub/membership-service/internal/api/handlers/subscription/listbyuser"
	"github.com/fithub/membership-service/internal/api/handlers/subscription/renew"
	"github.com/fithub/membership-service/internal/api/handlers/subscription/subscribe"
	"github.com/fithub/membership-service/internal/api/middlewarectx"
	"github.com/fithub/membership-service/internal/config"
	analyticsservice "github.com/fithub/membership-service/internal/services/analytics"
	assignmentservice "github.com/fithub/membership-service/internal/services/assignment"
	planservice "github.com/fithub/membership-service/internal/services/plan"
	subservice "github.com/fithub/membership-service/internal/services/subscription"

	_ "github.com/fithub/membership-service/docs"
)

// Services бизнес-логика, которую обслуживает API.
type Services struct {
	Plans         *planservice.PlanService
	Subscriptions *subservice.SubscriptionService
	Assignments   *assignmentservice.AssignmentService
	Analytics     *analyticsservice.AnalyticsService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services, auth middlewarectx.TokenParser, checks map[string]health.Pinger) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	admin := middlewarectx.RequireRole(logger, middlewarectx.RoleAdmin)
	staff := middlewarectx.RequireRole(logger, middlewarectx.RoleAdmin, middlewarectx.RoleTrainer)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, checks).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			r.Use(middlewarectx.JWTMiddleware(auth, logger))

			r.Post("/subscriptions", subscribe.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/renew", renew.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/user/{memberId}", listbyuser.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/{id}/confirm-payment", confirm.New(logger, svc.Subscriptions).ServeHTTP)
			r.With(admin).Get("/subscriptions", listall.New(logger, svc.Subscriptions).ServeHTTP)

			r.Get("/member/{memberId}/plan", assignmentget.New(logger, svc.Assignments).ServeHTTP)
			r.With(staff).Post("/member/{memberId}/plan/{planId}", assign.New(logger, svc.Assignments).ServeHTTP)
			r.With(staff).Delete("/member/{memberId}/plan", assignmentremove.New(logger, svc.Assignments).ServeHTTP)

			r.Get("/plans", planlist.New(logger, svc.Plans).ServeHTTP)
			r.Get("/plans/{id}", planread.New(logger, svc.Plans).ServeHTTP)
			r.With(admin).Post("/plans", plancreate.New(logger, svc.Plans).ServeHTTP)
			r.With(admin).Put("/plans/{id}", planupdate.New(logger, svc.Plans).ServeHTTP)
			r.With(admin).Delete("/plans/{id}", planremove.New(logger, svc.Plans).ServeHTTP)

			r.With(admin).Get("/analytics/revenue", revenue.New(logger, svc.Analytics).ServeHTTP)
			r.With(admin).Get("/analytics/revenue/trend", trend.New(logger, svc.Analytics).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
