// Package ulog is a small, allocation-free log fan-out for constrained
// environments.
//
// A [Logger] holds a fixed number of subscriber slots and one message buffer.
// Each call to [Logger.Notify] (or the leveled helpers such as
// [Logger.Infof]) formats the message once into that buffer and hands it,
// synchronously and in slot order, to every [Subscriber] whose threshold the
// message meets:
//
//	l := ulog.New(ulog.WithCapacity(4), ulog.WithMessageLength(128))
//
//	console := ulog.NewFuncSubscriber(func(lvl ulog.Level, _ ulog.Source, msg []byte) {
//	    fmt.Printf("[%s] %s\n", lvl, msg)
//	})
//
//	// Deliver WARNING and above to the console. Subscribing again later
//	// with a different level changes the threshold in place.
//	err := l.Subscribe(console, ulog.LevelWarning)
//
//	l.Infof("arg is %d", 42) // filtered out for console
//
// The buffer passed to subscribers is overwritten by the next message. Print
// or copy it; never keep the slice.
//
// Messages longer than the buffer are truncated without error. There is no
// queueing and no asynchronous delivery: a slow subscriber slows the caller.
//
// # Concurrency
//
// A Logger does no locking of its own. Programs that log from several
// goroutines install a [LockFunc] with [Logger.SetLock], for example
// [LockerFunc] over a [sync.Mutex]. Calling back into the Logger from a
// subscriber or from the lock hook is not supported.
//
// # Package-level logger
//
// [Init] creates a package-level Logger used by [Subscribe], [Infof] and the
// other package functions. Before Init they are no-ops.
//
// # Disabling
//
// Building with the ulog_disabled tag sets [Compiled] to false and turns
// every operation into a no-op.
package ulog
