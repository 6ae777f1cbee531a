package log

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"

	"go.jacobcolvin.com/ulog"
)

const defaultBufferSize = 64

// Entry is a copy of one dispatched message, safe to keep.
type Entry struct {
	Time    time.Time
	Source  ulog.Source
	Message string
	Level   ulog.Level
}

// Publisher is a [ulog.Subscriber] that fans messages out to channel-based
// subscriptions.
//
// Each call to [Publisher.Log] copies the message once into an [Entry] and
// delivers it to every active [Subscription] via a buffered channel with
// ring-buffer semantics: when a subscription's channel is full the oldest
// entry is dropped so Log never blocks the dispatching goroutine. Safe for
// concurrent use.
//
// Create instances with [NewPublisher].
type Publisher struct {
	subscribers []*Subscription
	bufSize     int
	mu          sync.Mutex
	closed      bool
}

// NewPublisher creates a [Publisher] with the given options.
// The default buffer size is 64.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		bufSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithBufferSize sets the channel buffer size for new subscriptions.
// Values less than 1 are clamped to 1.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n < 1 {
			n = 1
		}

		p.bufSize = n
	}
}

// Log copies msg into an [Entry] and sends it to all active subscriptions.
// When a subscription's channel is full the oldest entry is dropped to make
// room. Closed subscriptions are compacted out of the subscriber list.
func (p *Publisher) Log(level ulog.Level, src ulog.Source, msg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	entry := Entry{
		Time:    xclock.Now(),
		Level:   level,
		Source:  src,
		Message: string(msg),
	}

	// Compact closed subscriptions and deliver in one pass.
	alive := p.subscribers[:0]
	for _, sub := range p.subscribers {
		if sub.closed.Load() {
			close(sub.ch)
			continue
		}
		// Ring-buffer: drop oldest if full.
		select {
		case sub.ch <- entry:
		default:
			select {
			case <-sub.ch:
			default:
			}

			sub.ch <- entry
		}

		alive = append(alive, sub)
	}
	// Clear trailing references for GC.
	for i := len(alive); i < len(p.subscribers); i++ {
		p.subscribers[i] = nil
	}

	p.subscribers = alive
}

// Subscribe creates and registers a new [Subscription]. If the Publisher is
// already closed the returned subscription's channel is immediately closed.
func (p *Publisher) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription{
		ch: make(chan Entry, p.bufSize),
	}

	if p.closed {
		close(sub.ch)
		return sub
	}

	p.subscribers = append(p.subscribers, sub)

	return sub
}

// Close marks the Publisher as closed, closes all subscription channels,
// and releases the subscriber list. Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	for _, sub := range p.subscribers {
		close(sub.ch)
	}

	p.subscribers = nil

	return nil
}

// Subscription receives entries from a [Publisher].
type Subscription struct {
	ch     chan Entry
	closed atomic.Bool
}

// C returns the read-only channel that delivers entries.
func (s *Subscription) C() <-chan Entry {
	return s.ch
}

// Close marks the subscription as closed. The Publisher will close the
// underlying channel on its next Log or Close call. Idempotent.
func (s *Subscription) Close() {
	s.closed.Store(true)
}
