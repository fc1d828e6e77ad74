// Package models содержит доменные структуры сервиса абонементов:
// тарифные планы, подписки, назначения планов и данные участника,
// а также DTO для HTTP-запросов и сообщений в очередь уведомлений.
package models

// Plan описывает тарифный план из каталога.
type Plan struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"durationDays"`
}

// PlanRequest используется для создания и изменения плана через HTTP.
type PlanRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gte=0"`
	DurationDays int     `json:"durationDays"`
}

// PlanResponse назначенный участнику план с вычисленной датой окончания.
type PlanResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"durationDays"`
	StartDate    Date    `json:"startDate"`
	EndDate      Date    `json:"endDate"`
	Expired      bool    `json:"expired"`
	DaysLeft     int     `json:"daysLeft"`
}

// NewPlanResponse собирает ответ по плану и дате начала.
// EndDate не хранится и всегда считается как start + DurationDays.
func NewPlanResponse(p Plan, start, today Date) PlanResponse {
	end := start.AddDays(p.DurationDays)
	resp := PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		DurationDays: p.DurationDays,
		StartDate:    start,
		EndDate:      end,
		Expired:      end.Before(today),
	}
	if !resp.Expired {
		resp.DaysLeft = today.DaysUntil(end)
	}
	return resp
}
