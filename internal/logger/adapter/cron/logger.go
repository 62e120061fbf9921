// Package cron adapts zerolog to the robfig/cron Logger interface.
package cron

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Logger implements cron.Logger.
type Logger struct {
	log zerolog.Logger
}

// New returns a cron logger writing to l. Info messages of the cron runtime are logged at debug level.
func New(l zerolog.Logger) *Logger {
	return &Logger{log: l}
}

// Info logs routine scheduler messages.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	fields(l.log.Debug(), keysAndValues).Msg(msg)
}

// Error logs job panics and scheduling failures.
func (l *Logger) Error(err error, msg string, keysAndValues ...any) {
	fields(l.log.Error().Err(err), keysAndValues).Msg(msg)
}

func fields(e *zerolog.Event, keysAndValues []any) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		e = e.Interface(key, keysAndValues[i+1])
	}

	return e
}
