package ulog

// Source is the origin of a log message. The zero value means no source
// information was captured.
type Source struct {
	File string
	Line int
}

// IsZero reports whether s carries no location.
func (s Source) IsZero() bool { return s.File == "" && s.Line == 0 }

// Subscriber receives rendered log messages from a [Logger].
//
// msg aliases the logger's shared message buffer and is only valid for the
// duration of the call: implementations that need the text afterwards must
// copy it. Log must not block indefinitely and must not call back into the
// logger that invoked it.
//
// A Subscriber's identity is its interface value, so the dynamic type must
// be comparable. Use [NewFuncSubscriber] to subscribe a plain function.
type Subscriber interface {
	Log(level Level, src Source, msg []byte)
}

// FuncSubscriber adapts an ordinary function to [Subscriber].
//
// Create instances with [NewFuncSubscriber]. Each instance has its own
// identity, even when two wrap the same function.
type FuncSubscriber struct {
	fn func(level Level, src Source, msg []byte)
}

// NewFuncSubscriber wraps fn in a [*FuncSubscriber].
func NewFuncSubscriber(fn func(level Level, src Source, msg []byte)) *FuncSubscriber {
	return &FuncSubscriber{fn: fn}
}

// Log calls the wrapped function.
func (f *FuncSubscriber) Log(level Level, src Source, msg []byte) {
	if f.fn != nil {
		f.fn(level, src, msg)
	}
}
