package models

// SubscriptionStatus статус периода подписки.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "ACTIVE"
	StatusExpired   SubscriptionStatus = "EXPIRED"
	StatusCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription один оплаченный период членства.
// EndDate вычисляется один раз при создании и хранится.
type Subscription struct {
	ID               int64              `json:"id"`
	MemberID         int64              `json:"memberId"`
	Plan             Plan               `json:"plan"`
	StartDate        Date               `json:"startDate"`
	EndDate          Date               `json:"endDate"`
	Status           SubscriptionStatus `json:"status"`
	PaymentConfirmed bool               `json:"paymentConfirmed"`
	PaymentDate      *Date              `json:"paymentDate,omitempty"`
}

// SubscriptionRequest тело запросов subscribe и renew.
type SubscriptionRequest struct {
	MemberID int64 `json:"memberId" validate:"required,gt=0"`
	PlanID   int64 `json:"planId" validate:"required,gt=0"`
}

// PlanAssignment текущий назначенный участнику план, не более одного на участника.
type PlanAssignment struct {
	ID        int64 `json:"id"`
	MemberID  int64 `json:"memberId"`
	Plan      Plan  `json:"plan"`
	StartDate Date  `json:"startDate"`
}
