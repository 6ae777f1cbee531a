package sink_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/sink"
)

func TestZap(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src        ulog.Source
		wantFields map[string]any
		level      ulog.Level
		wantLevel  zapcore.Level
	}{
		"trace maps to debug": {
			level:      ulog.LevelTrace,
			wantLevel:  zapcore.DebugLevel,
			wantFields: map[string]any{sink.SeverityKey: "TRACE"},
		},
		"warning with source": {
			level:      ulog.LevelWarning,
			src:        ulog.Source{File: "net.go", Line: 9},
			wantLevel:  zapcore.WarnLevel,
			wantFields: map[string]any{"file": "net.go", "line": int64(9)},
		},
		"critical maps to error": {
			level:      ulog.LevelCritical,
			wantLevel:  zapcore.ErrorLevel,
			wantFields: map[string]any{sink.SeverityKey: "CRITICAL"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			z := sink.NewZap(zap.New(core))

			z.Log(tc.level, tc.src, []byte("event"))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, "event", entries[0].Message)
			assert.Equal(t, tc.wantLevel, entries[0].Level)
			assert.Equal(t, tc.wantFields, entries[0].ContextMap())
		})
	}

	t.Run("disabled level skipped", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zapcore.WarnLevel)
		z := sink.NewZap(zap.New(core))

		z.Log(ulog.LevelInfo, ulog.Source{}, []byte("event"))
		assert.Zero(t, logs.Len())
	})

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()

		assert.NotPanics(t, func() {
			sink.NewZap(nil).Log(ulog.LevelError, ulog.Source{}, []byte("event"))
		})
	})
}

func TestZerolog(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src       ulog.Source
		level     ulog.Level
		wantLevel string
		wantFile  string
	}{
		"trace": {
			level:     ulog.LevelTrace,
			wantLevel: "trace",
		},
		"info with source": {
			level:     ulog.LevelInfo,
			src:       ulog.Source{File: "db.go", Line: 301},
			wantLevel: "info",
			wantFile:  "db.go",
		},
		"critical does not exit": {
			level:     ulog.LevelCritical,
			wantLevel: "fatal",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			z := sink.NewZerolog(zerolog.New(&buf))
			z.Log(tc.level, tc.src, []byte("event"))

			var logEntry map[string]any

			require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
			assert.Equal(t, "event", logEntry["message"])
			assert.Equal(t, tc.wantLevel, logEntry["level"])

			if tc.wantFile == "" {
				assert.NotContains(t, logEntry, "file")

				return
			}

			assert.Equal(t, tc.wantFile, logEntry["file"])
			assert.InDelta(t, float64(tc.src.Line), logEntry["line"], 0)
		})
	}

	t.Run("below logger level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		z := sink.NewZerolog(zerolog.New(&buf).Level(zerolog.ErrorLevel))
		z.Log(ulog.LevelWarning, ulog.Source{}, []byte("event"))
		assert.Empty(t, buf.String())
	})
}
