// Package listbyuser реализует HTTP-обработчик получения всех подписок участника.
package listbyuser

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

// Handler обрабатывает запросы на получение подписок участника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения подписок участника.
type Service interface {
	ListByUser(ctx context.Context, memberID int64) ([]models.Subscription, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подписки участника
// @Description Возвращает все подписки участника в любом статусе.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param memberId path int true "ID участника"
// @Success 200 {array} models.Subscription
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/user/{memberId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.listbyuser"
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

	subs, err := h.service.ListByUser(r.Context(), memberID)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		status, body := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}

	log.Debug("subscriptions listed", sl.MemberID(memberID), slog.Int("count", len(subs)))
	render.JSON(w, r, subs)
}
