// Package trace logs simulated transfer activity. All methods are safe
// on a nil *Logger so callers can wire tracing in or out with a single
// assignment.
package trace

import (
	"io"

	"github.com/rs/zerolog"
)

type Logger struct {
	log zerolog.Logger
}

// New creates a logger emitting structured JSON lines to w.
func New(w io.Writer) *Logger {
	return &Logger{log: zerolog.New(w).With().Timestamp().Logger()}
}

// NewConsole creates a logger with human-readable output, for verbose
// CLI runs.
func NewConsole(w io.Writer) *Logger {
	cw := zerolog.ConsoleWriter{Out: w}
	return &Logger{log: zerolog.New(cw).With().Timestamp().Logger()}
}

// Schedule records an exchange entering the running set.
func (l *Logger) Schedule(id uint64, token, method, url string) {
	if l == nil {
		return
	}
	l.log.Debug().
		Uint64("exchange", id).
		Str("token", token).
		Str("method", method).
		Str("url", url).
		Msg("scheduled")
}

// Event records one surfaced activity unit.
func (l *Logger) Event(id uint64, kind string, size int, offset int64, err error) {
	if l == nil {
		return
	}
	ev := l.log.Debug().
		Uint64("exchange", id).
		Str("kind", kind)
	if size > 0 {
		ev = ev.Int("bytes", size)
	}
	if offset > 0 {
		ev = ev.Int64("offset", offset)
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("activity")
}

// Done records an exchange reaching its terminal state.
func (l *Logger) Done(id uint64, status int, downloaded int64, failure error) {
	if l == nil {
		return
	}
	ev := l.log.Info().
		Uint64("exchange", id).
		Int("status", status).
		Int64("downloaded", downloaded)
	if failure != nil {
		ev = ev.Err(failure)
	}
	ev.Msg("transfer complete")
}
