// Package log connects [ulog] to [log/slog] handlers and CLI configuration.
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt], and
// [FormatText]). Use [NewHandler] to create a handler and [NewSubscriber] to
// turn it into a [ulog.Subscriber], or use [Config] with CLI flag integration
// via [github.com/spf13/pflag] and shell completion support via
// [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a logger at
// startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	err := cfg.Load(rootCmd.PersistentFlags()) // optional --log-config file
//	logger, err := cfg.NewLogger(os.Stderr)
//	logger.Infof("listening on %s", addr)
//
// Config files may be YAML, JSON, or TOML; [Schema] describes their shape.
//
// A [Publisher] fans messages out to channel subscriptions, which is useful
// for displaying logs inside a Bubble Tea TUI or streaming them over HTTP:
//
//	pub := log.NewPublisher()
//	err := logger.Subscribe(pub, ulog.LevelDebug)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        // Deliver entry to the TUI.
//	    }
//	}()
package log
