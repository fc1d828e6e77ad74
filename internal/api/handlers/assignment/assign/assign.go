// Package assign реализует HTTP-обработчик назначения плана участнику.
package assign

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

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики назначения плана.
type Service interface {
	AssignPlan(ctx context.Context, memberID, planID int64, startDate string) (*models.PlanResponse, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Назначить план
// @Description Назначает участнику план с указанной датой начала, заменяя прежнее назначение.
// @Tags Plan assignment
// @Produce  json
// @Security BearerAuth
// @Param memberId path int true "ID участника"
// @Param planId path int true "ID плана"
// @Param startDate query string true "Дата начала, yyyy-MM-dd"
// @Success 200 {object} models.PlanResponse
// @Failure 400 {object} response.ErrorResponse "Некорректная дата или ID"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /member/{memberId}/plan/{planId} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assignment.assign"
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
	planID, err := strconv.ParseInt(chi.URLParam(r, "planId"), 10, 64)
	if err != nil {
		log.Error("failed to decode plan id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan id"))
		return
	}

	plan, err := h.service.AssignPlan(r.Context(), memberID, planID, r.URL.Query().Get("startDate"))
	if err != nil {
		log.Error("failed to assign plan", sl.Err(err))
		status, body := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("plan assigned", sl.MemberID(memberID), slog.Int64("plan_id", planID))
	render.JSON(w, r, plan)
}
