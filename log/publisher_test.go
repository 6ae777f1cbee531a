package log_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/log"
)

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts    []log.PublisherOption
		wantCap int
	}{
		"default buffer size": {
			opts:    nil,
			wantCap: 64,
		},
		"custom buffer size": {
			opts:    []log.PublisherOption{log.WithBufferSize(128)},
			wantCap: 128,
		},
		"clamp zero to one": {
			opts:    []log.PublisherOption{log.WithBufferSize(0)},
			wantCap: 1,
		},
		"clamp negative to one": {
			opts:    []log.PublisherOption{log.WithBufferSize(-5)},
			wantCap: 1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := log.NewPublisher(tc.opts...)

			sub := pub.Subscribe()
			defer sub.Close()

			assert.Equal(t, tc.wantCap, cap(sub.C()))
		})
	}
}

func TestPublisherLog(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		numSubscribers int
	}{
		"single subscriber":    {numSubscribers: 1},
		"multiple subscribers": {numSubscribers: 3},
		"no subscribers":       {numSubscribers: 0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := log.NewPublisher()

			subs := make([]*log.Subscription, tc.numSubscribers)
			for i := range subs {
				subs[i] = pub.Subscribe()
			}

			src := ulog.Source{File: "main.go", Line: 12}
			pub.Log(ulog.LevelWarning, src, []byte("hello"))

			for _, sub := range subs {
				got := <-sub.C()
				assert.Equal(t, "hello", got.Message)
				assert.Equal(t, ulog.LevelWarning, got.Level)
				assert.Equal(t, src, got.Source)
				assert.False(t, got.Time.IsZero())
			}
		})
	}

	t.Run("log copies input", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		buf := []byte("original")
		pub.Log(ulog.LevelInfo, ulog.Source{}, buf)

		buf[0] = 'X'

		got := <-sub.C()
		assert.Equal(t, "original", got.Message, "subscriber should receive a copy, not the original slice")
	})
}

func TestPublisherRingBuffer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		bufSize int
		writes  []string
		want    []string
	}{
		"drops oldest on full": {
			bufSize: 2,
			writes:  []string{"a", "b", "c", "d"},
			want:    []string{"c", "d"},
		},
		"preserves newest entries": {
			bufSize: 3,
			writes:  []string{"1", "2", "3", "4", "5"},
			want:    []string{"3", "4", "5"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := log.NewPublisher(log.WithBufferSize(tc.bufSize))
			sub := pub.Subscribe()

			for _, w := range tc.writes {
				pub.Log(ulog.LevelInfo, ulog.Source{}, []byte(w))
			}

			var got []string
			for range tc.want {
				got = append(got, (<-sub.C()).Message)
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSubscriptionClose(t *testing.T) {
	t.Parallel()

	t.Run("stops delivery", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		pub.Log(ulog.LevelInfo, ulog.Source{}, []byte("before"))

		sub.Close()

		// Triggers compaction.
		pub.Log(ulog.LevelInfo, ulog.Source{}, []byte("after"))

		got := <-sub.C()
		assert.Equal(t, "before", got.Message)

		_, open := <-sub.C()
		assert.False(t, open, "channel should be closed after subscription close + compaction")
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		sub.Close()
		sub.Close()

		pub.Log(ulog.LevelInfo, ulog.Source{}, []byte("x"))

		_, open := <-sub.C()
		assert.False(t, open)
	})
}

func TestPublisherClose(t *testing.T) {
	t.Parallel()

	t.Run("closes all subscriptions", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub1 := pub.Subscribe()
		sub2 := pub.Subscribe()

		require.NoError(t, pub.Close())

		_, open1 := <-sub1.C()
		_, open2 := <-sub2.C()

		assert.False(t, open1)
		assert.False(t, open2)
	})

	t.Run("log after close is no-op", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		require.NoError(t, pub.Close())

		pub.Log(ulog.LevelError, ulog.Source{}, []byte("ignored"))

		_, open := <-sub.C()
		assert.False(t, open)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		require.NoError(t, pub.Close())
		require.NoError(t, pub.Close())
	})

	t.Run("subscribe after close", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		require.NoError(t, pub.Close())

		sub := pub.Subscribe()
		_, open := <-sub.C()
		assert.False(t, open, "subscription from closed publisher should have closed channel")
	})
}

func TestPublisherConcurrency(t *testing.T) {
	t.Parallel()

	pub := log.NewPublisher(log.WithBufferSize(8))

	var wg sync.WaitGroup

	for range 5 {
		wg.Go(func() {
			for range 100 {
				pub.Log(ulog.LevelDebug, ulog.Source{}, []byte("data"))
			}
		})
	}

	for range 5 {
		wg.Go(func() {
			sub := pub.Subscribe()
			for range 20 {
				select {
				case <-sub.C():
				default:
				}
			}

			sub.Close()
		})
	}

	wg.Wait()
	require.NoError(t, pub.Close())
}

func TestPublisherWithLogger(t *testing.T) {
	t.Parallel()

	if !ulog.Compiled {
		t.Skip("logging compiled out")
	}

	pub := log.NewPublisher()
	t.Cleanup(func() { require.NoError(t, pub.Close()) })

	sub := pub.Subscribe()

	logger := ulog.New(ulog.WithSource(false))
	require.NoError(t, logger.Subscribe(pub, ulog.LevelInfo))

	logger.Debugf("dropped")
	logger.Infof("hello from %s", "publisher")

	entry := <-sub.C()
	assert.Equal(t, "hello from publisher", entry.Message)
	assert.Equal(t, ulog.LevelInfo, entry.Level)
	assert.True(t, entry.Source.IsZero())

	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected entry %q", extra.Message)
	default:
	}
}
