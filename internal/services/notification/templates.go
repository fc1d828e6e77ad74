package notification

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/fithub/membership-service/internal/models"
)

var templateSources = map[models.NotificationType]string{
	models.NotificationPaymentConfirmation: "Dear {{.name}}, your payment for the plan '{{.plan}}' was successful. Your subscription is active until {{.end}}.",
	models.NotificationPaymentFailed:       "Dear {{.name}}, your payment for the plan '{{.plan}}' failed. Please try again.",
	models.NotificationMembershipRenewal:   "Dear {{.name}}, your membership has been successfully renewed. Your new subscription is active until {{.end}}.",
	models.NotificationMembershipExpiry:    "Dear {{.name}}, your membership has expired. Please renew to continue enjoying our services.",
	models.NotificationPlanAssigned:        "Hi {{.name}}, a new workout plan has been assigned to you: {{.plan}}. Start Date: {{.start}}.",
}

// Templates набор разобранных шаблонов по типу события.
type Templates map[models.NotificationType]*template.Template

// DefaultTemplates разбирает встроенные шаблоны. Отсутствующий в параметрах
// плейсхолдер приводит к ошибке рендеринга.
func DefaultTemplates() Templates {
	t := make(Templates, len(templateSources))
	for kind, src := range templateSources {
		t[kind] = template.Must(template.New(string(kind)).Option("missingkey=error").Parse(src))
	}
	return t
}

// Render подставляет params в шаблон события kind.
func (t Templates) Render(kind models.NotificationType, params map[string]string) (string, error) {
	tmpl, ok := t[kind]
	if !ok {
		return "", fmt.Errorf("no template for %s", kind)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, params); err != nil {
		return "", err
	}
	return b.String(), nil
}
