// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: ошибок, сообщений валидации
// и отображения доменных ошибок в HTTP-коды.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/fithub/membership-service/internal/lib/apperr"
)

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKResponse ответ служебных эндпоинтов (health).
type OKResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse описывает стандартную структуру JSON‑ответа с ошибкой.
// Поле Kind содержит категорию доменной ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Kind   string `json:"kind,omitempty" example:"BAD_REQUEST"`
	Error  string `json:"error" example:"invalid request body"`
}

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) OKResponse {
	return OKResponse{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Kind:   apperr.BadRequest.String(),
		Error:  msg,
	}
}

// FromError выбирает HTTP-код и тело ответа по категории доменной ошибки.
// Текст не доменных ошибок клиенту не показывается.
func FromError(err error) (int, ErrorResponse) {
	kind := apperr.KindOf(err)
	resp := ErrorResponse{
		Status: StatusError,
		Kind:   kind.String(),
		Error:  apperr.Message(err),
	}

	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound, resp
	case apperr.BadRequest, apperr.PaymentFailed:
		return http.StatusBadRequest, resp
	default:
		return http.StatusInternalServerError, resp
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return ErrorResponse{
		Status: StatusError,
		Kind:   apperr.BadRequest.String(),
		Error:  strings.Join(errsMsgs, ", "),
	}
}
