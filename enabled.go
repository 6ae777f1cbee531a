//go:build !ulog_disabled

package ulog

// Compiled reports whether ulog is built in. Build with the ulog_disabled tag
// to make every operation a no-op the compiler can discard.
const Compiled = true
