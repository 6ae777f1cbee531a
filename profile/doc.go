// Package profile adds runtime profiling to the ulog command.
//
// It writes CPU, heap, allocs, and mutex profiles named by command-line flags
// and counts the heap allocations made while a command ran, which makes the
// allocation-free dispatch path visible from the command line:
//
//	ulog emit --allocs-profile=allocs.prof --log-level=debug 'x=%d' 5
//
// Create a [Config], register its flags, and wrap command execution with
// [Profiler.Start] and [Profiler.Stop]:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	p := cfg.NewProfiler()
//	err := p.Start()
//	// run the command
//	stats, err := p.Stop()
package profile
