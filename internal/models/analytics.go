package models

// MonthlyRevenue выручка от назначенных планов за календарный месяц.
type MonthlyRevenue struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	PlanRevenue float64 `json:"planRevenue"`
}
