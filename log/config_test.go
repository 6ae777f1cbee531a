package log_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/log"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRegisterFlags(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse(nil))
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, ulog.DefaultCapacity, cfg.Subscribers)
	assert.Equal(t, ulog.DefaultMessageLength, cfg.MessageLength)
	assert.True(t, cfg.Source)
	assert.Empty(t, cfg.File)

	require.NoError(t, flags.Parse([]string{
		"--log-level=debug",
		"--log-format=json",
		"--log-quiet",
		"--log-subscribers=2",
		"--log-message-length=16",
		"--log-source=false",
	}))
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, 2, cfg.Subscribers)
	assert.Equal(t, 16, cfg.MessageLength)
	assert.False(t, cfg.Source)
}

func TestCustomFlagNames(t *testing.T) {
	t.Parallel()

	cfg := log.Flags{
		Level:         "level",
		Format:        "format",
		Quiet:         "quiet",
		Subscribers:   "subs",
		MessageLength: "msg-len",
		Source:        "source",
		File:          "config",
	}.NewConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{"--level=error", "--subs=9"}))
	assert.Equal(t, "error", cfg.Level)
	assert.Equal(t, 9, cfg.Subscribers)
	assert.Nil(t, flags.Lookup("log-level"))
}

func TestRegisterCompletions(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())

	require.NoError(t, cfg.RegisterCompletions(cmd))

	tcs := map[string]struct {
		flag string
		want []string
	}{
		"level": {flag: "log-level", want: ulog.AllLevelStrings()},
		"format": {flag: "log-format", want: log.GetAllFormatStrings()},
		"subscribers": {flag: "log-subscribers", want: nil},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fn, ok := cmd.GetFlagCompletionFunc(tc.flag)
			require.True(t, ok)

			got, directive := fn(cmd, nil, "")
			assert.Equal(t, tc.want, got)
			assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
		})
	}

	t.Run("unregistered flags", func(t *testing.T) {
		t.Parallel()

		err := log.NewConfig().RegisterCompletions(&cobra.Command{Use: "bare"})
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want    *log.Config
		name    string
		content string
		wantErr error
	}{
		"yaml": {
			name:    "log.yaml",
			content: "level: warning\nformat: json\nsubscribers: 3\nmessage_length: 64\nquiet: true\nsource: true\n",
			want: &log.Config{
				Level: "warning", Format: "json", Subscribers: 3,
				MessageLength: 64, Quiet: true, Source: true,
			},
		},
		"yml": {
			name:    "log.yml",
			content: "level: trace\n",
			want:    &log.Config{Level: "trace"},
		},
		"json": {
			name:    "log.json",
			content: `{"level": "error", "format": "logfmt"}`,
			want:    &log.Config{Level: "error", Format: "logfmt"},
		},
		"toml": {
			name:    "log.toml",
			content: "level = \"critical\"\nmessage_length = 256\n",
			want:    &log.Config{Level: "critical", MessageLength: 256},
		},
		"unknown extension": {
			name:    "log.ini",
			content: "level=info",
			wantErr: log.ErrUnknownConfigFormat,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, tc.name, tc.content)

			got := &log.Config{}

			err := got.LoadFile(path)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		err := log.NewConfig().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed toml reports position", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "bad.toml", "level = \n")

		err := log.NewConfig().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "log.yaml", "level: error\nformat: json\nsubscribers: 2\n")

	tcs := map[string]struct {
		args       []string
		wantLevel  string
		wantFormat string
		wantSubs   int
	}{
		"file overrides defaults": {
			args:       []string{"--log-config", path},
			wantLevel:  "error",
			wantFormat: "json",
			wantSubs:   2,
		},
		"explicit flags override file": {
			args:       []string{"--log-config", path, "--log-level", "debug", "--log-subscribers=4"},
			wantLevel:  "debug",
			wantFormat: "json",
			wantSubs:   4,
		},
		"no file keeps flags": {
			args:       []string{"--log-format", "logfmt"},
			wantLevel:  "info",
			wantFormat: "logfmt",
			wantSubs:   ulog.DefaultCapacity,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := log.NewConfig()
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			cfg.RegisterFlags(flags)
			require.NoError(t, flags.Parse(tc.args))

			require.NoError(t, cfg.Load(flags))
			assert.Equal(t, tc.wantLevel, cfg.Level)
			assert.Equal(t, tc.wantFormat, cfg.Format)
			assert.Equal(t, tc.wantSubs, cfg.Subscribers)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg     *log.Config
		wantMsg string
	}{
		"zero value": {
			cfg: &log.Config{},
		},
		"valid": {
			cfg: &log.Config{Level: "WARN", Format: "json", Subscribers: 8, MessageLength: 64},
		},
		"unknown level": {
			cfg:     &log.Config{Level: "loud"},
			wantMsg: `level: unknown level "loud"`,
		},
		"unknown format": {
			cfg:     &log.Config{Format: "xml"},
			wantMsg: `format: unknown format "xml"`,
		},
		"negative subscribers": {
			cfg:     &log.Config{Subscribers: -1},
			wantMsg: "subscribers: must be at least 0",
		},
		"oversized buffer": {
			cfg:     &log.Config{MessageLength: 1 << 30},
			wantMsg: "message_length: must be at most 1048576",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.Validate()
			if tc.wantMsg == "" {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, log.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestConfigNewLogger(t *testing.T) {
	t.Parallel()

	if !ulog.Compiled {
		t.Skip("logging compiled out")
	}

	t.Run("writes at configured level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		cfg := &log.Config{Level: "warning", Format: "json", Subscribers: 2, MessageLength: 8}

		logger, err := cfg.NewLogger(&buf)
		require.NoError(t, err)
		assert.Equal(t, 2, logger.Cap())
		assert.Equal(t, 8, logger.MessageLength())
		assert.Equal(t, 1, logger.Len())

		logger.Infof("skipped")
		assert.Empty(t, buf.String())

		logger.Warningf("truncated message")

		var logEntry map[string]any

		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
		assert.Equal(t, "truncate", logEntry["msg"])
		assert.Equal(t, "WARNING", logEntry["level"])
		assert.NotContains(t, logEntry, "source")
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		logger, err := (&log.Config{}).NewLogger(&bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, ulog.DefaultCapacity, logger.Cap())
		assert.Equal(t, ulog.DefaultMessageLength, logger.MessageLength())

		th, ok := logger.Threshold(nil)
		assert.False(t, ok)
		assert.Equal(t, ulog.Level(0), th)
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger, err := (&log.Config{Quiet: true}).NewLogger(&buf)
		require.NoError(t, err)
		assert.True(t, logger.Quiet())

		logger.Criticalf("nothing")
		assert.Empty(t, buf.String())
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := (&log.Config{Format: "xml"}).NewLogger(&bytes.Buffer{})
		require.ErrorIs(t, err, log.ErrInvalidConfig)
	})
}

func TestSchema(t *testing.T) {
	t.Parallel()

	schema, err := log.Schema()
	require.NoError(t, err)
	assert.Equal(t, "ulog configuration", schema.Title)

	for _, key := range []string{"level", "format", "subscribers", "message_length", "quiet", "source"} {
		assert.Contains(t, schema.Properties, key)
	}

	assert.NotContains(t, schema.Properties, "Flags")
	assert.NotContains(t, schema.Properties, "File")
	assert.Equal(t, "suppress all log output", schema.Properties["quiet"].Description)
}
