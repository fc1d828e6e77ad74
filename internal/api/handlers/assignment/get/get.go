// Package get реализует HTTP-обработчик получения текущего плана участника.
//
// Отсутствие назначения считается нормальным состоянием: ответ 200 с телом null.
package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fithub/membership-service/internal/api/response"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/models"
)

// Handler обрабатывает запросы на получение назначенного плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения назначения.
type Service interface {
	GetPlanForMember(ctx context.Context, memberID int64) (*models.PlanResponse, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий план участника
// @Description Возвращает назначенный план с вычисленной датой окончания или null.
// @Tags Plan assignment
// @Produce  json
// @Security BearerAuth
// @Param memberId path int true "ID участника"
// @Success 200 {object} models.PlanResponse "План или null"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /member/{memberId}/plan [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assignment.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberId"), 10, 64)
	if err != nil {
		log.Error("failed to decode member id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid member id"))
		return
	}

	plan, err := h.service.GetPlanForMember(r.Context(), memberID)
	if err != nil {
		log.Error("failed to get plan for member", sl.Err(err))
		status, body := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	render.JSON(w, r, plan)
}
