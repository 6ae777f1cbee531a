package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultMemProfileRate matches the runtime's default sampling rate.
const DefaultMemProfileRate = 512 * 1024

// Flags holds CLI flag names for profiling configuration.
type Flags struct {
	CPUProfile           string
	HeapProfile          string
	AllocsProfile        string
	MutexProfile         string
	MemProfileRate       string
	MutexProfileFraction string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:          f,
		MemProfileRate: DefaultMemProfileRate,
	}
}

// Config holds profile output paths and sampling rates. A zero-value path
// disables that profile; a Config with no paths set profiles nothing.
//
// Create instances with [NewConfig].
type Config struct {
	Flags Flags

	CPUProfile    string
	HeapProfile   string
	AllocsProfile string
	MutexProfile  string

	MemProfileRate       int
	MutexProfileFraction int
}

// NewConfig creates a new [Config] with default flag names and every profile
// disabled.
func NewConfig() *Config {
	f := Flags{
		CPUProfile:           "cpu-profile",
		HeapProfile:          "heap-profile",
		AllocsProfile:        "allocs-profile",
		MutexProfile:         "mutex-profile",
		MemProfileRate:       "mem-profile-rate",
		MutexProfileFraction: "mutex-profile-fraction",
	}

	return f.NewConfig()
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, c.Flags.CPUProfile, "", "write CPU profile to file")
	flags.StringVar(&c.HeapProfile, c.Flags.HeapProfile, "", "write heap profile to file")
	flags.StringVar(&c.AllocsProfile, c.Flags.AllocsProfile, "", "write allocs profile to file")
	flags.StringVar(&c.MutexProfile, c.Flags.MutexProfile, "", "write mutex profile to file; useful with a lock hook installed")

	flags.IntVar(&c.MemProfileRate, c.Flags.MemProfileRate, DefaultMemProfileRate,
		"memory profile rate (bytes per sample, 1 records every allocation)")
	flags.IntVar(&c.MutexProfileFraction, c.Flags.MutexProfileFraction, 1, "mutex profile fraction (1/N sampling)")
}

// RegisterCompletions disables file completion for the numeric flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	noFileComp := cobra.FixedCompletions(nil, cobra.ShellCompDirectiveNoFileComp)

	for _, name := range []string{c.Flags.MemProfileRate, c.Flags.MutexProfileFraction} {
		err := cmd.RegisterFlagCompletionFunc(name, noFileComp)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// Enabled reports whether any profile output is configured.
func (c *Config) Enabled() bool {
	return c.CPUProfile != "" || c.HeapProfile != "" || c.AllocsProfile != "" || c.MutexProfile != ""
}

// NewProfiler creates a new [Profiler] using this [Config]. The profiler
// reads the config when [Profiler.Start] runs, so flags parsed after this
// call still apply.
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{cfg: c}
}
