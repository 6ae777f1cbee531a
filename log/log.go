package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	charmlog "charm.land/log/v2"

	"go.jacobcolvin.com/ulog"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs human-readable, colorized logs.
	FormatText Format = "text"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewHandlerFromStrings creates a [slog.Handler] from level and format
// strings, as accepted by [ulog.ParseLevel] and [ParseFormat].
func NewHandlerFromStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	logLvl, err := ulog.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	logFmt, err := ParseFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, logLvl, logFmt), nil
}

// NewHandler creates a [slog.Handler] writing to w with the given minimum
// level and format. Level names in the output use ulog's names, so
// [ulog.LevelCritical] renders as CRITICAL rather than ERROR+4.
func NewHandler(w io.Writer, logLvl ulog.Level, logFmt Format) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       SlogLevel(logLvl),
		ReplaceAttr: replaceLevel,
	}

	switch logFmt {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)

	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)

	case FormatText:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(SlogLevel(logLvl)),
			ReportTimestamp: true,
		})
	}

	return nil
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(ulog.LevelName(FromSlogLevel(lvl)))
		}
	}

	return a
}

// SlogLevel maps a [ulog.Level] onto the [slog.Level] scale. TRACE sits four
// below DEBUG and CRITICAL four above ERROR.
func SlogLevel(l ulog.Level) slog.Level {
	switch l {
	case ulog.LevelTrace:
		return slog.LevelDebug - 4
	case ulog.LevelDebug:
		return slog.LevelDebug
	case ulog.LevelInfo:
		return slog.LevelInfo
	case ulog.LevelWarning:
		return slog.LevelWarn
	case ulog.LevelError:
		return slog.LevelError
	}

	return slog.LevelError + 4
}

// FromSlogLevel maps an [slog.Level] to the nearest [ulog.Level] at or below
// it.
func FromSlogLevel(l slog.Level) ulog.Level {
	switch {
	case l < slog.LevelDebug:
		return ulog.LevelTrace
	case l < slog.LevelInfo:
		return ulog.LevelDebug
	case l < slog.LevelWarn:
		return ulog.LevelInfo
	case l < slog.LevelError:
		return ulog.LevelWarning
	case l < slog.LevelError+4:
		return ulog.LevelError
	}

	return ulog.LevelCritical
}

// ParseFormat parses a log format string and returns the corresponding
// [Format].
func ParseFormat(format string) (Format, error) {
	logFmt := Format(strings.ToLower(format))
	if slices.Contains(formats, logFmt) {
		return logFmt, nil
	}

	return "", ErrUnknownLogFormat
}

var formats = []Format{FormatJSON, FormatLogfmt, FormatText}

// GetAllFormatStrings returns all valid format strings.
func GetAllFormatStrings() []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, string(f))
	}

	return out
}
