package sink

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.jacobcolvin.com/ulog"
)

// SeverityKey is the field that carries the ulog level name when the bridged
// logger has no matching level of its own.
const SeverityKey = "severity"

// Zap is a [ulog.Subscriber] that forwards messages to a [zap.Logger].
//
// zap has no trace or critical level: TRACE is written at debug and CRITICAL
// at error, each with a [SeverityKey] field naming the original level. Source
// locations become "file" and "line" fields.
//
// Create instances with [NewZap].
type Zap struct {
	l *zap.Logger
}

// NewZap creates a [Zap] subscriber. A nil l discards everything.
func NewZap(l *zap.Logger) *Zap {
	if l == nil {
		l = zap.NewNop()
	}

	return &Zap{l: l}
}

// Log emits one entry, skipping field construction when zap would drop it.
func (z *Zap) Log(level ulog.Level, src ulog.Source, msg []byte) {
	ce := z.l.Check(zapLevel(level), string(msg))
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 3)
	if !src.IsZero() {
		fields = append(fields, zap.String("file", src.File), zap.Int("line", src.Line))
	}

	if level == ulog.LevelTrace || level == ulog.LevelCritical {
		fields = append(fields, zap.String(SeverityKey, ulog.LevelName(level)))
	}

	ce.Write(fields...)
}

// zapLevel avoids Fatal and DPanic so library code never exits or panics.
func zapLevel(l ulog.Level) zapcore.Level {
	switch l {
	case ulog.LevelTrace, ulog.LevelDebug:
		return zapcore.DebugLevel
	case ulog.LevelInfo:
		return zapcore.InfoLevel
	case ulog.LevelWarning:
		return zapcore.WarnLevel
	}

	return zapcore.ErrorLevel
}
