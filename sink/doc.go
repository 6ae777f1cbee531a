// Package sink provides [ulog.Subscriber] implementations that write
// messages somewhere other than a [log/slog] handler.
//
//   - [LineWriter] renders each message through a {{tag}} template.
//   - [CBORWriter] appends compact binary records that [CBORReader] reads
//     back.
//   - [Zap] and [Zerolog] bridge into existing go.uber.org/zap and
//     github.com/rs/zerolog loggers.
//
// Every subscriber here copies what it needs out of the message before Log
// returns, so each is safe to register with any [ulog.Logger]:
//
//	lw, err := sink.NewLineWriter(os.Stderr, sink.WithTemplate("{{level}} {{source}} {{message}}\n"))
//	err = logger.Subscribe(lw, ulog.LevelInfo)
package sink
