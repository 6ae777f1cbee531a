// Command ulog drives a [ulog.Logger] from the command line.
//
// Every subcommand shares the --log-* flags, which may also come from a YAML,
// JSON, or TOML file named by --log-config. Explicit flags win over the file.
// The --*-profile flags write pprof profiles for the whole run; with any of
// them set, the heap allocations made during the run are logged at debug.
//
// # Usage
//
//	ulog emit [--level L] [--template T] [--record F] <format> [args...]
//	ulog read [--min-level L] [--template T] <file.cbor>
//	ulog schema
//	ulog serve [--addr A]
//	ulog tail [--interval D]
//	ulog version [--output text|json|yaml]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/log"
	"go.jacobcolvin.com/ulog/profile"
)

func main() {
	err := run(os.Stdout, os.Stderr, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by all subcommands.
type app struct {
	cfg     *log.Config
	profCfg *profile.Config
	prof    *profile.Profiler
	logger  *ulog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// run executes the command line in args and stops any profiling it started,
// whether or not the command succeeded.
func run(stdout, stderr io.Writer, args []string) error {
	a := &app{
		cfg:     log.NewConfig(),
		profCfg: profile.NewConfig(),
		stdout:  stdout,
		stderr:  stderr,
	}

	cmd := newRootCmd(a)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return errors.Join(err, a.stopProfile())
}

func newRootCmd(a *app) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "ulog",
		Short: "Dispatch, store, serve, and watch leveled log messages",
		Long: `ulog builds a fixed-capacity leveled logger from the --log-* flags and uses
it to emit messages, replay stored records, serve an HTTP endpoint, or watch
messages live in the terminal.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	a.cfg.RegisterFlags(rootCmd.PersistentFlags())
	a.profCfg.RegisterFlags(rootCmd.PersistentFlags())

	completionErr := errors.Join(
		a.cfg.RegisterCompletions(rootCmd),
		a.profCfg.RegisterCompletions(rootCmd),
	)
	if completionErr != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.AddCommand(
		newEmitCmd(a),
		newReadCmd(a),
		newSchemaCmd(a),
		newServeCmd(a),
		newTailCmd(a),
		newVersionCmd(a),
	)

	return rootCmd
}

// setup loads the config file, builds the logger with a console subscriber
// on stderr, and starts profiling.
func (a *app) setup(cmd *cobra.Command) error {
	err := a.cfg.Load(cmd.Flags())
	if err != nil {
		return err
	}

	a.logger, err = a.cfg.NewLogger(a.stderr)
	if err != nil {
		return err
	}

	a.prof = a.profCfg.NewProfiler()

	err = a.prof.Start()
	if err != nil {
		a.prof = nil

		return err
	}

	return nil
}

// stopProfile writes the requested profiles and, when profiling was asked
// for, logs the allocations made during the run.
func (a *app) stopProfile() error {
	if a.prof == nil {
		return nil
	}

	stats, err := a.prof.Stop()
	a.prof = nil

	if a.profCfg.Enabled() {
		a.logger.Debugf("profile: %d allocations, %d bytes in %s", stats.Allocs, stats.Bytes, stats.Elapsed)
	}

	return err
}

func levelCompletions() cobra.CompletionFunc {
	return cobra.FixedCompletions(ulog.AllLevelStrings(), cobra.ShellCompDirectiveNoFileComp)
}
