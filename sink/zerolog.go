package sink

import (
	"github.com/rs/zerolog"

	"go.jacobcolvin.com/ulog"
)

// Zerolog is a [ulog.Subscriber] that forwards messages to a
// [zerolog.Logger].
//
// CRITICAL is written at zerolog's fatal level through
// [zerolog.Logger.WithLevel], which never exits the process. Source
// locations become "file" and "line" fields.
//
// Create instances with [NewZerolog].
type Zerolog struct {
	l zerolog.Logger
}

// NewZerolog creates a [Zerolog] subscriber.
func NewZerolog(l zerolog.Logger) *Zerolog {
	return &Zerolog{l: l}
}

// Log emits one event. Levels below the logger's own level return before an
// event is allocated.
func (z *Zerolog) Log(level ulog.Level, src ulog.Source, msg []byte) {
	zl := zerologLevel(level)
	if zl < z.l.GetLevel() {
		return
	}

	ev := z.l.WithLevel(zl)
	if !src.IsZero() {
		ev = ev.Str("file", src.File).Int("line", src.Line)
	}

	ev.Msg(string(msg))
}

func zerologLevel(l ulog.Level) zerolog.Level {
	switch l {
	case ulog.LevelTrace:
		return zerolog.TraceLevel
	case ulog.LevelDebug:
		return zerolog.DebugLevel
	case ulog.LevelInfo:
		return zerolog.InfoLevel
	case ulog.LevelWarning:
		return zerolog.WarnLevel
	case ulog.LevelError:
		return zerolog.ErrorLevel
	}

	return zerolog.FatalLevel
}
