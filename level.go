package ulog

import (
	"strings"
)

// Level is the severity of a log message. Levels are totally ordered; a
// subscriber receives a message when the message level is greater than or
// equal to the subscriber's threshold.
type Level uint8

const (
	// LevelTrace is for very fine-grained diagnostics.
	LevelTrace Level = iota
	// LevelDebug is for diagnostics useful during development.
	LevelDebug
	// LevelInfo is for normal operational messages.
	LevelInfo
	// LevelWarning is for conditions that may need attention.
	LevelWarning
	// LevelError is for failures the program can recover from.
	LevelError
	// LevelCritical is for failures that threaten continued operation.
	LevelCritical
)

var levelNames = [...]string{
	LevelTrace:    "TRACE",
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

// LevelName returns the upper-case label of l, or "UNKNOWN" when l is not
// one of the defined levels. It never allocates.
func LevelName(l Level) string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}

	return "UNKNOWN"
}

// String implements [fmt.Stringer] using [LevelName].
func (l Level) String() string {
	return LevelName(l)
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return int(l) < len(levelNames)
}

// Levels returns all defined levels in ascending order.
func Levels() []Level {
	return []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}
}

// ParseLevel parses a case-insensitive level name. "warn" is accepted as an
// alias for [LevelWarning].
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	}

	return 0, ErrUnknownLevel
}

// AllLevelStrings returns the lower-case names accepted by [ParseLevel],
// in ascending severity order.
func AllLevelStrings() []string {
	levels := Levels()
	out := make([]string, 0, len(levels))

	for _, l := range levels {
		out = append(out, strings.ToLower(LevelName(l)))
	}

	return out
}
