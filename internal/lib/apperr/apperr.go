// Package apperr описывает доменные ошибки сервиса с категорией (Kind),
// по которой HTTP-слой выбирает код ответа.
package apperr

import (
	"errors"
	"fmt"
)

// Kind категория доменной ошибки.
type Kind int

const (
	// Unexpected любая непредвиденная ошибка (500).
	Unexpected Kind = iota
	// NotFound участник, план или подписка не найдены (404).
	NotFound
	// BadRequest нарушено бизнес-правило или неверный ввод (400).
	BadRequest
	// PaymentFailed платёж отклонён (400).
	PaymentFailed
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NOT_FOUND"
	case BadRequest:
		return "BAD_REQUEST"
	case PaymentFailed:
		return "PAYMENT_FAILED"
	default:
		return "UNEXPECTED"
	}
}

// Error доменная ошибка. Msg безопасно показывать клиенту, в Err лежит внутренняя причина.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку заданной категории.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap создаёт ошибку заданной категории поверх причины err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf возвращает категорию err, либо Unexpected если err не доменная.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Message возвращает текст для клиента. Для не доменных ошибок текст не раскрывается.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
