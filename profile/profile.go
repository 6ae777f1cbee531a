package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"
)

// rateMu guards runtime.MemProfileRate, which is a plain variable.
var rateMu sync.Mutex

// ErrNotStarted is returned by [Profiler.Stop] without a matching
// [Profiler.Start].
var ErrNotStarted = errors.New("profiler not started")

// Stats summarizes the heap activity between [Profiler.Start] and
// [Profiler.Stop].
type Stats struct {
	// Allocs is the number of heap objects allocated.
	Allocs uint64
	// Bytes is the cumulative number of bytes allocated.
	Bytes   uint64
	Elapsed time.Duration
}

// Profiler controls one profiling session.
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	cfg     *Config
	cpuFile *os.File
	start   time.Time
	base    runtime.MemStats
	running bool
}

// Start applies the sampling rates when any profile is enabled, starts CPU
// profiling if requested, and records the allocation baseline.
func (p *Profiler) Start() error {
	if p.running {
		return nil
	}

	if p.cfg.Enabled() {
		rateMu.Lock()
		runtime.MemProfileRate = p.cfg.MemProfileRate
		rateMu.Unlock()

		runtime.SetMutexProfileFraction(p.cfg.MutexProfileFraction)
	}

	if p.cfg.CPUProfile != "" {
		f, err := os.Create(p.cfg.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
		if err != nil {
			return fmt.Errorf("creating CPU profile: %w", err)
		}

		err = pprof.StartCPUProfile(f)
		if err != nil {
			closeErr := f.Close()

			return errors.Join(fmt.Errorf("starting CPU profile: %w", err), closeErr)
		}

		p.cpuFile = f
	}

	p.running = true
	p.start = time.Now()
	runtime.ReadMemStats(&p.base)

	return nil
}

// Stop ends CPU profiling, writes the enabled snapshot profiles, and returns
// the allocations made since [Profiler.Start].
func (p *Profiler) Stop() (Stats, error) {
	if !p.running {
		return Stats{}, ErrNotStarted
	}

	var now runtime.MemStats

	runtime.ReadMemStats(&now)

	stats := Stats{
		Allocs:  now.Mallocs - p.base.Mallocs,
		Bytes:   now.TotalAlloc - p.base.TotalAlloc,
		Elapsed: time.Since(p.start),
	}

	p.running = false

	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("closing CPU profile: %w", err))
		}

		p.cpuFile = nil
	}

	for _, snap := range []struct {
		name string
		path string
	}{
		{"heap", p.cfg.HeapProfile},
		{"allocs", p.cfg.AllocsProfile},
		{"mutex", p.cfg.MutexProfile},
	} {
		if snap.path == "" {
			continue
		}

		err := writeProfile(snap.name, snap.path)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return stats, errors.Join(errs...)
}

// writeProfile writes the named pprof profile to path.
func writeProfile(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("unknown profile: %s", name)
	}

	f, err := os.Create(path) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("create %s profile: %w", name, err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		return errors.Join(fmt.Errorf("write %s profile: %w", name, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("write %s profile: %w", name, err)
	}

	return nil
}
