package sink_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	frozenclock "github.com/trickstertwo/xclock/adapter/frozen"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/sink"
	"go.jacobcolvin.com/ulog/ulogtest"
)

var frozen = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLineWriter(t *testing.T) {
	t.Parallel()

	src := ulog.Source{File: "/src/app/main.go", Line: 27}

	tcs := map[string]struct {
		opts []sink.Option
		src  ulog.Source
		want string
	}{
		"default template": {
			src:  src,
			want: "2025-01-01T00:00:00Z [ERROR] disk full\n",
		},
		"source tags": {
			opts: []sink.Option{sink.WithTemplate("{{file}}|{{shortfile}}|{{line}}|{{source}}|{{message}}")},
			src:  src,
			want: "/src/app/main.go|main.go|27|main.go:27|disk full",
		},
		"empty source": {
			opts: []sink.Option{sink.WithTemplate("[{{source}}] {{message}}")},
			want: "[] disk full",
		},
		"time format": {
			opts: []sink.Option{
				sink.WithTemplate("{{time}} {{level}}"),
				sink.WithTimeFormat(time.DateOnly),
			},
			want: "2025-01-01 ERROR",
		},
		"no tags": {
			opts: []sink.Option{sink.WithTemplate("static")},
			want: "static",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			opts := append([]sink.Option{sink.WithClock(frozenclock.New(frozen))}, tc.opts...)

			lw, err := sink.NewLineWriter(&buf, opts...)
			require.NoError(t, err)

			lw.Log(ulog.LevelError, tc.src, []byte("disk full"))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestNewLineWriterErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		template string
		wantErr  error
	}{
		"unknown tag": {
			template: "{{level}} {{pid}}",
			wantErr:  sink.ErrUnknownTag,
		},
		"unterminated tag": {
			template: "{{level",
			wantErr:  sink.ErrInvalidTemplate,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := sink.NewLineWriter(&bytes.Buffer{}, sink.WithTemplate(tc.template))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLineWriterWithLogger(t *testing.T) {
	t.Parallel()

	if !ulog.Compiled {
		t.Skip("logging compiled out")
	}

	var buf bytes.Buffer

	lw, err := sink.NewLineWriter(&buf, sink.WithTemplate("[{{level}}] {{message}}\n"))
	require.NoError(t, err)

	logger := ulog.New(ulog.WithSource(false))
	require.NoError(t, logger.Subscribe(lw, ulog.LevelInfo))

	logger.Debugf("hidden")
	logger.Infof("one")
	logger.Warningf("two %d", 2)
	logger.Criticalf("three")

	want := ulogtest.JoinLF(
		"[INFO] one",
		"[WARNING] two 2",
		"[CRITICAL] three",
	) + "\n"
	assert.Equal(t, want, buf.String())
}

func TestLineWriterConcurrent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	lw, err := sink.NewLineWriter(&buf, sink.WithTemplate("{{message}}\n"))
	require.NoError(t, err)

	var wg sync.WaitGroup

	for range 4 {
		wg.Go(func() {
			for range 50 {
				lw.Log(ulog.LevelInfo, ulog.Source{File: "a.go", Line: 1}, []byte("x"))
			}
		})
	}

	wg.Wait()
	assert.Equal(t, 200, bytes.Count(buf.Bytes(), []byte("x\n")))
}

func TestLineWriterLogAt(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	lw, err := sink.NewLineWriter(&buf, sink.WithTemplate("{{time}} {{source}} {{message}}\n"))
	require.NoError(t, err)

	rec := sink.Record{Time: frozen, Level: ulog.LevelInfo, Message: "replayed", File: "/x/y.go", Line: 4}
	lw.LogAt(rec.Time, rec.Level, rec.Source(), []byte(rec.Message))

	assert.Equal(t, "2025-01-01T00:00:00Z y.go:4 replayed\n", buf.String())
}
