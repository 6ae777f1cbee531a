package log

import (
	"context"
	"log/slog"

	"github.com/trickstertwo/xclock"

	"go.jacobcolvin.com/ulog"
)

// Subscriber is a [ulog.Subscriber] that forwards each message to a
// [slog.Handler] as a record. Source locations become a "source" group with
// "file" and "line" attributes.
//
// Handler errors are dropped; a failing output never disrupts the caller.
//
// Create instances with [NewSubscriber].
type Subscriber struct {
	handler slog.Handler
}

// NewSubscriber creates a [Subscriber] that writes to h.
func NewSubscriber(h slog.Handler) *Subscriber {
	return &Subscriber{handler: h}
}

// Handler returns the wrapped [slog.Handler].
func (s *Subscriber) Handler() slog.Handler {
	return s.handler
}

// Log converts the message to a [slog.Record] and hands it to the handler.
func (s *Subscriber) Log(level ulog.Level, src ulog.Source, msg []byte) {
	ctx := context.Background()
	lvl := SlogLevel(level)

	if !s.handler.Enabled(ctx, lvl) {
		return
	}

	rec := slog.NewRecord(xclock.Now(), lvl, string(msg), 0)
	if !src.IsZero() {
		rec.AddAttrs(slog.Group("source",
			slog.String("file", src.File),
			slog.Int("line", src.Line),
		))
	}

	//nolint:errcheck // Output errors must not reach the logging caller.
	s.handler.Handle(ctx, rec)
}
