package models

// NotificationType тип события, о котором уведомляется участник.
type NotificationType string

const (
	NotificationPaymentConfirmation NotificationType = "PAYMENT_CONFIRMATION"
	NotificationPaymentFailed       NotificationType = "PAYMENT_FAILED"
	NotificationMembershipRenewal   NotificationType = "MEMBERSHIP_RENEWAL"
	NotificationMembershipExpiry    NotificationType = "MEMBERSHIP_EXPIRY"
	NotificationPlanAssigned        NotificationType = "WORKOUT_PLAN_ASSIGNED"
)

// Имена плейсхолдеров шаблонов уведомлений.
const (
	ParamName  = "name"
	ParamPlan  = "plan"
	ParamStart = "start"
	ParamEnd   = "end"
)

// NotificationEvent событие, порождённое успешной (или неуспешной оплатой) операцией.
type NotificationEvent struct {
	Type      NotificationType
	MemberID  int64
	Recipient string
	Params    map[string]string
}

// NotificationMessage сообщение, которое публикуется в очередь и отправляется
// во внешний сервис уведомлений.
type NotificationMessage struct {
	ID                   string            `json:"id"`
	RecipientPhoneNumber string            `json:"recipientPhoneNumber"`
	NotificationType     NotificationType  `json:"notificationType"`
	Message              string            `json:"message"`
	TemplateParams       map[string]string `json:"templateParams"`
}
