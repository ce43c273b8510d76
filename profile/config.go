package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration.
type Flags struct {
	CPUProfile   string
	HeapProfile  string
	BlockProfile string
	MutexProfile string

	MemProfileRate       string
	BlockProfileRate     string
	MutexProfileFraction string
}

// Config holds profiling configuration. A zero-value Config has all
// profiles disabled.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewProfiler] to create a [Profiler].
type Config struct {
	Flags Flags

	// Output paths; empty disables the profile.
	CPUProfile   string
	HeapProfile  string
	BlockProfile string
	MutexProfile string

	MemProfileRate       int
	BlockProfileRate     int
	MutexProfileFraction int
}

// NewConfig creates a new [Config] with default flag names and all profiles
// disabled.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			CPUProfile:           "cpu-profile",
			HeapProfile:          "heap-profile",
			BlockProfile:         "block-profile",
			MutexProfile:         "mutex-profile",
			MemProfileRate:       "mem-profile-rate",
			BlockProfileRate:     "block-profile-rate",
			MutexProfileFraction: "mutex-profile-fraction",
		},
	}
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, c.Flags.CPUProfile, "", "write a CPU profile of the run to file")
	flags.StringVar(&c.HeapProfile, c.Flags.HeapProfile, "", "write a heap profile to file after the run")
	flags.StringVar(&c.BlockProfile, c.Flags.BlockProfile, "", "write a worker blocking profile to file after the run")
	flags.StringVar(&c.MutexProfile, c.Flags.MutexProfile, "", "write a mutex contention profile to file after the run")

	flags.IntVar(&c.MemProfileRate, c.Flags.MemProfileRate, 512*1024, "memory profile rate (bytes per sample)")
	flags.IntVar(&c.BlockProfileRate, c.Flags.BlockProfileRate, 1, "block profile rate (nanoseconds)")
	flags.IntVar(&c.MutexProfileFraction, c.Flags.MutexProfileFraction, 1, "mutex profile fraction (1/N sampling)")
}

// RegisterCompletions registers shell completions for profile flags on cmd.
// Integer flags disable file completion; path flags use default file
// completion.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{c.Flags.MemProfileRate, c.Flags.BlockProfileRate, c.Flags.MutexProfileFraction} {
		err := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	return nil
}

// NewProfiler creates a new [Profiler] using this [Config].
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{cfg: *c}
}
