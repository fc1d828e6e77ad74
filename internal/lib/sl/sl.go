// Package sl содержит вспомогательные функции для работы с логгером slog:
// создание логгера под окружение и единообразные атрибуты для ошибок и участников.
package sl

import (
	"io"
	"log/slog"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil возвращает пустую строку, чтобы вызов в логах не паниковал.
//
// Пример:
//
//	log.Error("failed to renew subscription", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// MemberID атрибут идентификатора участника.
func MemberID(id int64) slog.Attr {
	return slog.Int64("member_id", id)
}

// New создаёт логгер для окружения env: text/debug для local, json/info для prod,
// text/info для остальных.
func New(env string, w io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
