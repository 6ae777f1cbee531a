package sink

import (
	"time"

	"github.com/trickstertwo/xclock"
)

// Option configures a subscriber in this package.
type Option func(*options)

type options struct {
	clock      xclock.Clock
	template   string
	timeFormat string
}

func newOptions(opts []Option) options {
	o := options{
		template:   DefaultTemplate,
		timeFormat: time.RFC3339,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// now returns the configured clock's time, or the process default clock's.
func (o *options) now() time.Time {
	if o.clock != nil {
		return o.clock.Now()
	}

	return xclock.Now()
}

// WithClock sets the clock used to timestamp messages. By default the
// process-wide [xclock.Default] clock is used.
func WithClock(c xclock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithTemplate sets the line template for a [LineWriter].
// See [NewLineWriter] for the available tags.
func WithTemplate(tmpl string) Option {
	return func(o *options) {
		o.template = tmpl
	}
}

// WithTimeFormat sets the layout used to render the {{time}} tag of a
// [LineWriter]. Defaults to [time.RFC3339].
func WithTimeFormat(layout string) Option {
	return func(o *options) {
		o.timeFormat = layout
	}
}
