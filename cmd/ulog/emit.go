package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/sink"
)

type emitOptions struct {
	level    string
	template string
	record   string
}

func newEmitCmd(a *app) *cobra.Command {
	opts := &emitOptions{}

	cmd := &cobra.Command{
		Use:   "emit [flags] <format> [args...]",
		Short: "Dispatch one message",
		Long: `emit formats a message printf-style and dispatches it once. The console
subscriber configured by the --log-* flags writes to stderr; --template adds a
line subscriber on stdout and --record appends the message to a CBOR file.

Each argument is converted to suit the verb that consumes it: integer verbs
(%d %x %c ...) parse integers, float verbs (%f %g %e) parse floats, and %t
parses booleans. Arguments that do not parse, and those for %s or %v, are
passed as strings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.emit(opts, args[0], args[1:])
		},
	}

	cmd.Flags().StringVar(&opts.level, "level", "info", "message level")
	cmd.Flags().StringVar(&opts.template, "template", "", "also write the message to stdout using this line template")
	cmd.Flags().StringVar(&opts.record, "record", "", "append the message to this CBOR record file")

	err := cmd.RegisterFlagCompletionFunc("level", levelCompletions())
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func (a *app) emit(opts *emitOptions, format string, args []string) error {
	level, err := ulog.ParseLevel(opts.level)
	if err != nil {
		return fmt.Errorf("--level %q: %w", opts.level, err)
	}

	if opts.template != "" {
		lw, err := sink.NewLineWriter(a.stdout, sink.WithTemplate(opts.template))
		if err != nil {
			return fmt.Errorf("--template: %w", err)
		}

		err = a.logger.Subscribe(lw, ulog.LevelTrace)
		if err != nil {
			return fmt.Errorf("subscribing template writer: %w", err)
		}
	}

	if opts.record != "" {
		cw, err := sink.OpenCBORFile(opts.record)
		if err != nil {
			return err
		}

		defer cw.Close() //nolint:errcheck // Nothing useful to do after the message is written.

		err = a.logger.Subscribe(cw, ulog.LevelTrace)
		if err != nil {
			return fmt.Errorf("subscribing record writer: %w", err)
		}
	}

	a.logger.Notify(level, ulog.Source{}, format, formatArgs(format, args)...)

	return nil
}

// formatArgs converts command line arguments to the types expected by the
// verbs in format. Arguments beyond the verbs, and formats using explicit
// argument indexes, are left as strings.
func formatArgs(format string, args []string) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = arg
	}

	if strings.Contains(format, "[") {
		return out
	}

	next := 0

	for i := 0; i < len(format) && next < len(args); i++ {
		if format[i] != '%' {
			continue
		}

		i++

		for ; i < len(format); i++ {
			c := format[i]
			if c == '*' {
				// Star widths must be ints.
				if next < len(args) {
					if n, err := strconv.Atoi(args[next]); err == nil {
						out[next] = n
					}

					next++
				}

				continue
			}

			if strings.IndexByte("+-# 0123456789.", c) < 0 {
				break
			}
		}

		if i >= len(format) || format[i] == '%' {
			continue
		}

		if next < len(args) {
			out[next] = convertArg(format[i], args[next])
			next++
		}
	}

	return out
}

// convertArg parses arg for verb, falling back to the string itself.
func convertArg(verb byte, arg string) any {
	switch verb {
	case 'd', 'b', 'o', 'O', 'x', 'X', 'c', 'U':
		n, err := strconv.ParseInt(arg, 10, 64)
		if err == nil {
			return n
		}

		// Hex verbs also format strings, so prefixed literals only count for
		// the others.
		if verb != 'x' && verb != 'X' {
			n, err = strconv.ParseInt(arg, 0, 64)
			if err == nil {
				return n
			}
		}

	case 'e', 'E', 'f', 'F', 'g', 'G':
		f, err := strconv.ParseFloat(arg, 64)
		if err == nil {
			return f
		}

	case 't':
		b, err := strconv.ParseBool(arg)
		if err == nil {
			return b
		}
	}

	return arg
}
