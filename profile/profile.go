package profile

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/cockroachdb/errors"
)

// ErrNotStarted is returned by [Profiler.Stop] without a prior
// [Profiler.Start].
var ErrNotStarted = errors.New("profiler not started")

// Profiler controls one profiling session. Create instances with
// [Config.NewProfiler].
type Profiler struct {
	cpuFile *os.File
	cfg     Config
	started bool
}

// Enabled reports whether any profile output is configured.
func (p *Profiler) Enabled() bool {
	return p.cfg.CPUProfile != "" || len(p.snapshots()) > 0
}

// Start sets the sampling rates and starts CPU profiling if enabled.
func (p *Profiler) Start() error {
	runtime.MemProfileRate = p.cfg.MemProfileRate
	runtime.SetBlockProfileRate(p.cfg.BlockProfileRate)
	runtime.SetMutexProfileFraction(p.cfg.MutexProfileFraction)

	p.started = true

	if p.cfg.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.cfg.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating CPU profile: %w", err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		return errors.CombineErrors(fmt.Errorf("starting CPU profile: %w", err), f.Close())
	}

	p.cpuFile = f

	return nil
}

// Stop stops CPU profiling and writes the enabled snapshot profiles. Every
// profile is attempted; failures are combined.
func (p *Profiler) Stop() error {
	if !p.started {
		return ErrNotStarted
	}

	p.started = false

	var err error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		closeErr := p.cpuFile.Close()
		if closeErr != nil {
			err = fmt.Errorf("closing CPU profile: %w", closeErr)
		}

		p.cpuFile = nil
	}

	for name, path := range p.snapshots() {
		err = errors.CombineErrors(err, writeProfile(name, path))
	}

	return err
}

// Run starts profiling, calls fn, and stops profiling. The error of fn takes
// precedence over profiling errors.
func (p *Profiler) Run(fn func() error) error {
	err := p.Start()
	if err != nil {
		return err
	}

	return errors.CombineErrors(fn(), p.Stop())
}

func (p *Profiler) snapshots() map[string]string {
	out := map[string]string{}

	for name, path := range map[string]string{
		"heap":  p.cfg.HeapProfile,
		"block": p.cfg.BlockProfile,
		"mutex": p.cfg.MutexProfile,
	} {
		if path != "" {
			out[name] = path
		}
	}

	return out
}

func writeProfile(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return errors.Newf("unknown profile %q", name)
	}

	f, err := os.Create(path) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating %s profile: %w", name, err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		return errors.CombineErrors(fmt.Errorf("writing %s profile: %w", name, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("closing %s profile: %w", name, err)
	}

	return nil
}
