// Package logging настраивает глобальный zerolog-логгер для всех бинарников.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init выставляет уровень логирования и консольный вывод в stderr.
func Init(level string) {
	SetOutput(os.Stderr)
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// SetOutput перенаправляет глобальный логгер, например в буфер в тестах.
func SetOutput(w io.Writer) {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// Get возвращает дочерний логгер с полем component.
func Get(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ParseLevel понимает стандартные имена уровней zerolog; неизвестное значение даёт info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
