package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// BadgerLogger adapts a zerolog logger to badger's Logger interface. Badger's
// own info output is demoted to debug.
type BadgerLogger struct {
	l zerolog.Logger
}

func NewBadgerLogger(component string) *BadgerLogger {
	return &BadgerLogger{l: With().Str("component", component).Logger()}
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error().Msgf(trim(format), args...)
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn().Msgf(trim(format), args...)
}

func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug().Msgf(trim(format), args...)
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Trace().Msgf(trim(format), args...)
}

// badger terminates most messages with a newline.
func trim(format string) string {
	return strings.TrimRight(format, "\n")
}
