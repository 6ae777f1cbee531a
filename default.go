package ulog

import (
	"sync/atomic"
)

var std atomic.Pointer[Logger]

// Init creates the package-level [Logger] from opts, replacing any previous
// one. Until Init is called the package-level emission functions do nothing
// and [Subscribe] and [Unsubscribe] return [ErrNotInitialized].
//
// Init must not run concurrently with other package-level calls.
func Init(opts ...Option) *Logger {
	l := New(opts...)
	std.Store(l)

	return l
}

// Default returns the package-level [Logger], or nil before [Init].
func Default() *Logger {
	return std.Load()
}

// SetDefault replaces the package-level [Logger]. A nil l returns the package
// to its uninitialized state.
func SetDefault(l *Logger) {
	std.Store(l)
}

// Subscribe calls [Logger.Subscribe] on the package-level logger.
func Subscribe(sub Subscriber, threshold Level) error {
	l := std.Load()
	if l == nil {
		return ErrNotInitialized
	}

	return l.Subscribe(sub, threshold)
}

// Unsubscribe calls [Logger.Unsubscribe] on the package-level logger.
func Unsubscribe(sub Subscriber) error {
	l := std.Load()
	if l == nil {
		return ErrNotInitialized
	}

	return l.Unsubscribe(sub)
}

// SetQuiet calls [Logger.SetQuiet] on the package-level logger.
func SetQuiet(quiet bool) {
	if l := std.Load(); l != nil {
		l.SetQuiet(quiet)
	}
}

// SetLock calls [Logger.SetLock] on the package-level logger.
func SetLock(fn LockFunc) {
	if l := std.Load(); l != nil {
		l.SetLock(fn)
	}
}

// Enabled calls [Logger.Enabled] on the package-level logger.
func Enabled(level Level) bool {
	l := std.Load()

	return l != nil && l.Enabled(level)
}

// Notify calls [Logger.Notify] on the package-level logger.
func Notify(level Level, src Source, format string, args ...any) {
	if l := std.Load(); l != nil {
		l.Notify(level, src, format, args...)
	}
}

// Tracef logs at [LevelTrace] on the package-level logger.
func Tracef(format string, args ...any) { logf(LevelTrace, format, args) }

// Debugf logs at [LevelDebug] on the package-level logger.
func Debugf(format string, args ...any) { logf(LevelDebug, format, args) }

// Infof logs at [LevelInfo] on the package-level logger.
func Infof(format string, args ...any) { logf(LevelInfo, format, args) }

// Warningf logs at [LevelWarning] on the package-level logger.
func Warningf(format string, args ...any) { logf(LevelWarning, format, args) }

// Errorf logs at [LevelError] on the package-level logger.
func Errorf(format string, args ...any) { logf(LevelError, format, args) }

// Criticalf logs at [LevelCritical] on the package-level logger.
func Criticalf(format string, args ...any) { logf(LevelCritical, format, args) }

func logf(level Level, format string, args []any) {
	if l := std.Load(); l != nil {
		l.logf(2, level, format, args)
	}
}
