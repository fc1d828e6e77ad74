// Package trend реализует HTTP-обработчик выручки за последние 12 месяцев.
package trend

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fithub/membership-service/internal/api/handlers/analytics/revenue"
	"github.com/fithub/membership-service/internal/api/response"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
)

// Handler обрабатывает запросы ряда выручки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики ряда выручки.
type Service interface {
	RevenueTrend(ctx context.Context, month, year int) ([]models.MonthlyRevenue, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выручка от планов за 12 месяцев
// @Description Ряд по возрастанию, последний элемент указанный месяц (по умолчанию текущий).
// @Tags Analytics
// @Produce  json
// @Security BearerAuth
// @Param month query int false "Последний месяц ряда 1-12"
// @Param year query int false "Год последнего месяца"
// @Success 200 {array} models.MonthlyRevenue
// @Failure 400 {object} response.ErrorResponse "Некорректный месяц или год"
// @Failure 403 {object} response.ErrorResponse "Нет роли ROLE_ADMIN"
// @Router /analytics/revenue/trend [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.trend"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	month, year, err := revenue.ParsePeriod(r)
	if err != nil {
		log.Error("failed to parse period", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	series, err := h.service.RevenueTrend(r.Context(), month, year)
	if err != nil {
		log.Error("failed to calculate revenue trend", sl.Err(err))
		status, body := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}
	render.JSON(w, r, series)
}
