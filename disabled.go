//go:build ulog_disabled

package ulog

// Compiled reports whether ulog is built in. This build was made with the
// ulog_disabled tag, so every operation is a no-op.
const Compiled = false
