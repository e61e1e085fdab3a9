package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// zl adapts a zerolog.Logger to the core Logger interface.
type zl struct {
	log zerolog.Logger
}

// NewZerologLogger builds the process logger for one component. Output is
// human-readable console text when APP_ENV is "dev", structured JSON
// otherwise; every line carries the component field.
func NewZerologLogger(component string) Logger {
	z := zerolog.New(output()).With().Timestamp().Str("component", component).Logger()
	return zl{log: z}
}

func output() io.Writer {
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}

func (l zl) Debugf(format string, args ...any) { l.log.Debug().Msgf(format, args...) }

func (l zl) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l zl) Infof(format string, args ...any)  { l.log.Info().Msgf(format, args...) }
func (l zl) Warnf(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l zl) Errorf(format string, args ...any) { l.log.Error().Msgf(format, args...) }
