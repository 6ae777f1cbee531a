package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/sink"
)

type readOptions struct {
	minLevel string
	file     string
	template string
}

func newReadCmd(a *app) *cobra.Command {
	opts := &readOptions{}

	cmd := &cobra.Command{
		Use:   "read [flags] <file.cbor>",
		Short: "Print records stored by emit --record",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.read(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.minLevel, "min-level", "trace", "skip records below this level")
	cmd.Flags().StringVar(&opts.file, "file", "", "only print records from this source file")
	cmd.Flags().StringVar(&opts.template, "template", sink.DefaultTemplate, "line template")

	err := cmd.RegisterFlagCompletionFunc("min-level", levelCompletions())
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func (a *app) read(opts *readOptions, path string) error {
	level, err := ulog.ParseLevel(opts.minLevel)
	if err != nil {
		return fmt.Errorf("--min-level %q: %w", opts.minLevel, err)
	}

	lw, err := sink.NewLineWriter(a.stdout, sink.WithTemplate(opts.template))
	if err != nil {
		return fmt.Errorf("--template: %w", err)
	}

	f, err := os.Open(path) //nolint:gosec // Record path from CLI argument is expected.
	if err != nil {
		return fmt.Errorf("opening records: %w", err)
	}

	defer f.Close() //nolint:errcheck // Read-only file.

	r := sink.NewCBORReader(f, sink.Filter{Level: level, File: opts.file})

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		lw.LogAt(rec.Time, rec.Level, rec.Source(), []byte(rec.Message))
	}
}
