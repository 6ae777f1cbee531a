package ulog

import (
	"sync"
)

// LockFunc is a mutual-exclusion hook. The [Logger] calls it with true before
// touching the subscriber table or message buffer and with false afterwards.
//
// A LockFunc must not call back into the logger. Every call into a [Logger]
// from multiple goroutines must go through the same hook.
type LockFunc func(acquire bool)

// LockerFunc returns a [LockFunc] backed by mu.
func LockerFunc(mu sync.Locker) LockFunc {
	return func(acquire bool) {
		if acquire {
			mu.Lock()
		} else {
			mu.Unlock()
		}
	}
}

// acquire calls the installed hook, if any, and returns it so the matching
// release goes to the same hook even if [Logger.SetLock] runs in between.
func (l *Logger) acquire() LockFunc {
	p := l.lockFn.Load()
	if p == nil || *p == nil {
		return nil
	}

	fn := *p
	fn(true)

	return fn
}

func release(fn LockFunc) {
	if fn != nil {
		fn(false)
	}
}
