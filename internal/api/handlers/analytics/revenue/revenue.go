// Package revenue реализует HTTP-обработчик выручки от планов за месяц.
package revenue

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fithub/membership-service/internal/api/response"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
)

// Handler обрабатывает запросы выручки за месяц.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выручки.
type Service interface {
	MonthlyRevenue(ctx context.Context, month, year int) (*models.MonthlyRevenue, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выручка от планов за месяц
// @Description Сумма цен планов по назначениям, начавшимся в указанном месяце. По умолчанию текущий месяц.
// @Tags Analytics
// @Produce  json
// @Security BearerAuth
// @Param month query int false "Месяц 1-12"
// @Param year query int false "Год"
// @Success 200 {object} models.MonthlyRevenue
// @Failure 400 {object} response.ErrorResponse "Некорректный месяц или год"
// @Failure 403 {object} response.ErrorResponse "Нет роли ROLE_ADMIN"
// @Router /analytics/revenue [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.revenue"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	month, year, err := ParsePeriod(r)
	if err != nil {
		log.Error("failed to parse period", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	rev, err := h.service.MonthlyRevenue(r.Context(), month, year)
	if err != nil {
		log.Error("failed to calculate revenue", sl.Err(err))
		status, body := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}
	render.JSON(w, r, rev)
}

// ParsePeriod читает необязательные параметры month и year.
// Отсутствующий параметр возвращается нулём.
func ParsePeriod(r *http.Request) (month, year int, err error) {
	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("invalid month: %q", v)
		}
	}
	if v := q.Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("invalid year: %q", v)
		}
	}
	return month, year, nil
}
