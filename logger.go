package ulog

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
)

const (
	// DefaultCapacity is the number of subscriber slots used when
	// [WithCapacity] is not given.
	DefaultCapacity = 6
	// DefaultMessageLength is the size in bytes of the shared message buffer
	// used when [WithMessageLength] is not given.
	DefaultMessageLength = 128
)

var (
	// ErrCapacityExceeded indicates every subscriber slot is taken.
	ErrCapacityExceeded = errors.New("subscriber capacity exceeded")
	// ErrNotSubscribed indicates the subscriber is not in the table.
	ErrNotSubscribed = errors.New("not subscribed")
	// ErrNilSubscriber indicates a nil subscriber was provided.
	ErrNilSubscriber = errors.New("nil subscriber")
	// ErrIncomparableSubscriber indicates a subscriber whose dynamic type
	// cannot be compared for identity.
	ErrIncomparableSubscriber = errors.New("subscriber type is not comparable")
	// ErrNotInitialized indicates use of the package-level logger before
	// [Init].
	ErrNotInitialized = errors.New("logger not initialized")
	// ErrUnknownLevel indicates an unrecognized level string.
	ErrUnknownLevel = errors.New("unknown log level")
)

// Logger fans formatted messages out to a fixed-capacity table of
// subscribers.
//
// Each dispatch renders the message once into a single buffer owned by the
// Logger and hands that buffer to every subscriber whose threshold is met, in
// slot order. Nothing is queued and nothing is allocated by the Logger after
// construction.
//
// A Logger is not safe for concurrent use unless a [LockFunc] is installed
// with [Logger.SetLock]; the hook then serializes [Logger.Subscribe],
// [Logger.Unsubscribe], and [Logger.Notify].
//
// Create instances with [New].
type Logger struct {
	lockFn atomic.Pointer[LockFunc]
	reg    registry
	buf    fixedBuffer
	quiet  atomic.Bool
	source bool
}

// Option configures a [Logger] at construction.
type Option func(*options)

type options struct {
	capacity      int
	messageLength int
	source        bool
}

// WithCapacity sets the number of subscriber slots.
// Values less than 1 are clamped to 1.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = max(n, 1)
	}
}

// WithMessageLength sets the size of the shared message buffer in bytes.
// Longer messages are truncated. Values less than 1 are clamped to 1.
func WithMessageLength(n int) Option {
	return func(o *options) {
		o.messageLength = max(n, 1)
	}
}

// WithSource controls whether the emission methods ([Logger.Infof] and
// friends) capture the caller's file and line. Enabled by default.
func WithSource(enabled bool) Option {
	return func(o *options) {
		o.source = enabled
	}
}

// New creates a ready-to-use [Logger] with the given options. The default
// capacity is [DefaultCapacity] subscribers and the default buffer size is
// [DefaultMessageLength] bytes.
func New(opts ...Option) *Logger {
	o := options{
		capacity:      DefaultCapacity,
		messageLength: DefaultMessageLength,
		source:        true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Logger{
		reg:    newRegistry(o.capacity),
		buf:    newFixedBuffer(o.messageLength),
		source: o.source,
	}
}

// Init resets l to its freshly constructed state: every slot is emptied, the
// buffer is zeroed, quiet mode is off, and the lock hook is removed.
//
// Init must not run concurrently with any other method.
func (l *Logger) Init() {
	if !Compiled {
		return
	}

	l.reg.reset()
	l.buf.zero()
	l.quiet.Store(false)
	l.lockFn.Store(nil)
}

// Cap returns the number of subscriber slots.
func (l *Logger) Cap() int { return len(l.reg.slots) }

// MessageLength returns the size of the shared message buffer.
func (l *Logger) MessageLength() int { return len(l.buf.b) }

// Len returns the number of occupied subscriber slots.
func (l *Logger) Len() int {
	if !Compiled {
		return 0
	}

	defer release(l.acquire())

	return l.reg.occupied()
}

// Threshold returns the threshold sub is subscribed with.
func (l *Logger) Threshold(sub Subscriber) (Level, bool) {
	if !Compiled || checkSubscriber(sub) != nil {
		return 0, false
	}

	defer release(l.acquire())

	return l.reg.lookup(sub)
}

// Subscribe adds sub to the table with the given threshold. If sub is already
// subscribed its threshold is updated in place and no new slot is used.
//
// Returns [ErrCapacityExceeded] when sub is new and no slot is free; the
// table is left unchanged.
func (l *Logger) Subscribe(sub Subscriber, threshold Level) error {
	if !Compiled {
		return nil
	}

	err := checkSubscriber(sub)
	if err != nil {
		return err
	}

	defer release(l.acquire())

	return l.reg.add(sub, threshold)
}

// Unsubscribe removes sub from the table. Returns [ErrNotSubscribed] if sub
// is not present.
func (l *Logger) Unsubscribe(sub Subscriber) error {
	if !Compiled {
		return nil
	}

	if checkSubscriber(sub) != nil {
		return ErrNotSubscribed
	}

	defer release(l.acquire())

	return l.reg.remove(sub)
}

// SetQuiet enables or disables quiet mode. While quiet, [Logger.Notify]
// returns without formatting or notifying anyone.
func (l *Logger) SetQuiet(quiet bool) {
	l.quiet.Store(quiet)
}

// Quiet reports whether quiet mode is on.
func (l *Logger) Quiet() bool {
	return l.quiet.Load()
}

// SetLock installs fn as the mutual-exclusion hook. A nil fn disables
// locking. Replacing the hook while another goroutine is inside a locked
// section is undefined; the in-flight call releases the hook it acquired.
func (l *Logger) SetLock(fn LockFunc) {
	if fn == nil {
		l.lockFn.Store(nil)

		return
	}

	l.lockFn.Store(&fn)
}

// Enabled reports whether a message at level would reach at least one
// subscriber. Use it to skip building expensive arguments.
func (l *Logger) Enabled(level Level) bool {
	if !Compiled || l.quiet.Load() {
		return false
	}

	defer release(l.acquire())

	return l.reg.wants(level)
}

// Notify renders format with args into the shared buffer and delivers the
// result to every subscriber whose threshold is at most level, in slot
// order. Output longer than the buffer is silently truncated.
//
// Notify does nothing in quiet mode.
func (l *Logger) Notify(level Level, src Source, format string, args ...any) {
	if !Compiled || l.quiet.Load() {
		return
	}

	defer release(l.acquire())

	l.buf.start()
	fmt.Fprintf(&l.buf, format, args...)

	msg := l.buf.bytes()

	for i := range l.reg.slots {
		s := &l.reg.slots[i]
		if s.sub != nil && level >= s.threshold {
			s.sub.Log(level, src, msg)
		}
	}
}

// logf is the shared body of the emission methods. depth is the number of
// frames between logf and the user's call site.
func (l *Logger) logf(depth int, level Level, format string, args []any) {
	if !Compiled || l.quiet.Load() {
		return
	}

	var src Source

	if l.source {
		_, file, line, ok := runtime.Caller(depth + 1)
		if ok {
			src = Source{File: file, Line: line}
		}
	}

	l.Notify(level, src, format, args...)
}

// Tracef logs at [LevelTrace].
func (l *Logger) Tracef(format string, args ...any) { l.logf(1, LevelTrace, format, args) }

// Debugf logs at [LevelDebug].
func (l *Logger) Debugf(format string, args ...any) { l.logf(1, LevelDebug, format, args) }

// Infof logs at [LevelInfo].
func (l *Logger) Infof(format string, args ...any) { l.logf(1, LevelInfo, format, args) }

// Warningf logs at [LevelWarning].
func (l *Logger) Warningf(format string, args ...any) { l.logf(1, LevelWarning, format, args) }

// Errorf logs at [LevelError].
func (l *Logger) Errorf(format string, args ...any) { l.logf(1, LevelError, format, args) }

// Criticalf logs at [LevelCritical].
func (l *Logger) Criticalf(format string, args ...any) { l.logf(1, LevelCritical, format, args) }
