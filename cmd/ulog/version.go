package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/ulog/version"
)

var errUnknownOutput = errors.New("unknown output format")

func newVersionCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.version(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format, one of: [text json yaml]")

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func (a *app) version(output string) error {
	info := version.Get()

	var (
		out []byte
		err error
	)

	switch output {
	case "text":
		out = []byte(info.String() + "\n")

	case "json":
		out, err = json.MarshalIndent(info, "", "  ")
		out = append(out, '\n')

	case "yaml":
		out, err = yaml.Marshal(info)

	default:
		return fmt.Errorf("%w: %q", errUnknownOutput, output)
	}

	if err != nil {
		return fmt.Errorf("encoding version: %w", err)
	}

	_, err = a.stdout.Write(out)
	if err != nil {
		return fmt.Errorf("writing version: %w", err)
	}

	return nil
}
