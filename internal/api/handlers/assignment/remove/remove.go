// Package remove реализует HTTP-обработчик снятия плана с участника.
package remove

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
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	RemovePlanFromMember(ctx context.Context, memberID int64) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Снять план с участника
// @Description Удаляет назначение, если оно есть.
// @Tags Plan assignment
// @Security BearerAuth
// @Param memberId path int true "ID участника"
// @Success 204 "Нет содержимого"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /member/{memberId}/plan [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assignment.remove"
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

	if err := h.service.RemovePlanFromMember(r.Context(), memberID); err != nil {
		log.Error("failed to remove plan", sl.Err(err))
		status, body := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
